package query

import (
	"fmt"
	"strings"
)

// Join combines the terms of a WHERE clause.
type Join string

const (
	JoinAnd Join = "AND"
	JoinOr  Join = "OR"
)

// Match selects how criteria values are compared.
type Match int

const (
	// MatchExact compares with "=".
	MatchExact Match = iota
	// MatchLike compares with LIKE and binds the value unchanged.
	MatchLike
	// MatchLeadingWildcard binds "%value".
	MatchLeadingWildcard
	// MatchTrailingWildcard binds "value%".
	MatchTrailingWildcard
	// MatchBothWildcards binds "%value%".
	MatchBothWildcards
)

var matchNames = map[Match]string{
	MatchExact:            "exact",
	MatchLike:             "like",
	MatchLeadingWildcard:  "leading",
	MatchTrailingWildcard: "trailing",
	MatchBothWildcards:    "both",
}

// ParseMatch converts a textual mode ("exact", "like", "leading",
// "trailing", "both") into a Match.
func ParseMatch(s string) (Match, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return MatchExact, nil
	}
	for m, name := range matchNames {
		if name == s {
			return m, nil
		}
	}
	return MatchExact, fmt.Errorf("unknown match mode %q", s)
}

func (m Match) String() string {
	if name, ok := matchNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Match(%d)", int(m))
}

// MarshalText implements encoding.TextMarshaler.
func (m Match) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Match) UnmarshalText(text []byte) error {
	parsed, err := ParseMatch(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

func (m Match) operator() string {
	if m == MatchExact {
		return "="
	}
	return "LIKE"
}

// Wrap returns the value to bind for v under this mode. Literal % and _
// inside v are not escaped.
func (m Match) Wrap(v any) any {
	switch m {
	case MatchLeadingWildcard:
		return "%" + fmt.Sprint(v)
	case MatchTrailingWildcard:
		return fmt.Sprint(v) + "%"
	case MatchBothWildcards:
		return "%" + fmt.Sprint(v) + "%"
	default:
		return v
	}
}

// Clause is a compiled, parameterized boolean expression.
type Clause struct {
	SQL  string
	Args []any
}

// Empty reports whether the clause has no terms.
func (c Clause) Empty() bool {
	return c.SQL == ""
}

// Compile turns criteria into "col1 <op> ? JOIN col2 <op> ? ..." with one
// bind value per term in criteria order. Empty criteria yields an empty
// clause.
func Compile(criteria Fields, join Join, match Match) (Clause, error) {
	if len(criteria) == 0 {
		return Clause{}, nil
	}
	if join != JoinAnd && join != JoinOr {
		return Clause{}, fmt.Errorf("invalid join %q", join)
	}

	terms := make([]string, 0, len(criteria))
	args := make([]any, 0, len(criteria))
	for _, field := range criteria {
		if err := ValidateIdentifier(field.Column); err != nil {
			return Clause{}, err
		}
		terms = append(terms, QuoteIdentifier(field.Column)+" "+match.operator()+" ?")
		args = append(args, match.Wrap(field.Value))
	}

	return Clause{
		SQL:  strings.Join(terms, " "+string(join)+" "),
		Args: args,
	}, nil
}
