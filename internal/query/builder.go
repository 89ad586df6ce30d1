package query

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrNoColumns is returned when a write statement has nothing to write.
var ErrNoColumns = errors.New("at least one column is required")

// Statement is SQL text plus positional bind values.
type Statement struct {
	SQL  string
	Args []any
}

// Order is a single-column ORDER BY specification.
type Order struct {
	Column    string `json:"column" yaml:"column" msgpack:"column"`
	Direction string `json:"direction,omitempty" yaml:"direction,omitempty" msgpack:"direction"`
}

// Insert builds INSERT INTO db.table (cols...) VALUES (?...).
func Insert(database, table string, data Fields) (Statement, error) {
	target, err := QualifiedTable(database, table)
	if err != nil {
		return Statement{}, err
	}
	if len(data) == 0 {
		return Statement{}, ErrNoColumns
	}

	cols, err := quoteColumns(data.Columns())
	if err != nil {
		return Statement{}, err
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(data)), ", ")

	return Statement{
		SQL:  fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", target, cols, placeholders),
		Args: data.Values(),
	}, nil
}

// Update builds UPDATE db.table SET c1 = ?, ... WHERE k1 = ? AND ...
// Data values are bound before criteria values. Empty criteria is refused.
func Update(database, table string, data, criteria Fields) (Statement, error) {
	target, err := QualifiedTable(database, table)
	if err != nil {
		return Statement{}, err
	}
	if len(data) == 0 || len(criteria) == 0 {
		return Statement{}, ErrNoColumns
	}

	sets := make([]string, 0, len(data))
	for _, field := range data {
		if err := ValidateIdentifier(field.Column); err != nil {
			return Statement{}, err
		}
		sets = append(sets, QuoteIdentifier(field.Column)+" = ?")
	}

	where, err := Compile(criteria, JoinAnd, MatchExact)
	if err != nil {
		return Statement{}, err
	}

	args := append(data.Values(), where.Args...)
	return Statement{
		SQL:  fmt.Sprintf("UPDATE %s SET %s WHERE %s", target, strings.Join(sets, ", "), where.SQL),
		Args: args,
	}, nil
}

// Delete builds DELETE FROM db.table WHERE k1 = ? AND ...
// Empty criteria is refused.
func Delete(database, table string, criteria Fields) (Statement, error) {
	target, err := QualifiedTable(database, table)
	if err != nil {
		return Statement{}, err
	}
	if len(criteria) == 0 {
		return Statement{}, ErrNoColumns
	}

	where, err := Compile(criteria, JoinAnd, MatchExact)
	if err != nil {
		return Statement{}, err
	}

	return Statement{
		SQL:  fmt.Sprintf("DELETE FROM %s WHERE %s", target, where.SQL),
		Args: where.Args,
	}, nil
}

// SelectSpec describes a SELECT statement.
type SelectSpec struct {
	Database string
	Table    string
	Columns  []string
	Criteria Fields
	Join     Join
	Match    Match
	OrderBy  *Order
	Limit    int
}

// Select builds SELECT cols FROM db.table [WHERE ...] [ORDER BY ...] [LIMIT n].
func Select(spec SelectSpec) (Statement, error) {
	target, err := QualifiedTable(spec.Database, spec.Table)
	if err != nil {
		return Statement{}, err
	}

	projection := "*"
	if len(spec.Columns) > 0 {
		if projection, err = quoteColumns(spec.Columns); err != nil {
			return Statement{}, err
		}
	}

	join := spec.Join
	if join == "" {
		join = JoinAnd
	}
	where, err := Compile(spec.Criteria, join, spec.Match)
	if err != nil {
		return Statement{}, err
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(projection)
	b.WriteString(" FROM ")
	b.WriteString(target)
	if !where.Empty() {
		b.WriteString(" WHERE ")
		b.WriteString(where.SQL)
	}

	if spec.OrderBy != nil && spec.OrderBy.Column != "" {
		if err := ValidateIdentifier(spec.OrderBy.Column); err != nil {
			return Statement{}, err
		}
		dir, err := NormalizeDirection(spec.OrderBy.Direction)
		if err != nil {
			return Statement{}, err
		}
		b.WriteString(" ORDER BY ")
		b.WriteString(QuoteIdentifier(spec.OrderBy.Column))
		b.WriteString(" ")
		b.WriteString(dir)
	}

	if spec.Limit < 0 {
		return Statement{}, fmt.Errorf("limit must be non-negative, got: %d", spec.Limit)
	}
	if spec.Limit > 0 {
		b.WriteString(" LIMIT ")
		b.WriteString(strconv.Itoa(spec.Limit))
	}

	return Statement{SQL: b.String(), Args: where.Args}, nil
}
