package query

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ErrInvalidIdentifier is returned when a database, table or column name
// fails the identifier allow-list.
var ErrInvalidIdentifier = errors.New("invalid identifier")

// MaxIdentifierLength matches the MySQL limit for table and column names.
const MaxIdentifierLength = 64

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$]*$`)

var identifierRules = []validation.Rule{
	validation.Required,
	validation.Length(1, MaxIdentifierLength),
	validation.Match(identifierPattern),
}

// ValidateIdentifier checks name against the identifier allow-list.
func ValidateIdentifier(name string) error {
	if err := validation.Validate(name, identifierRules...); err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidIdentifier, name, err)
	}
	return nil
}

// QuoteIdentifier wraps a validated identifier in backticks.
func QuoteIdentifier(name string) string {
	return "`" + name + "`"
}

// QualifiedTable validates both parts and returns `database`.`table`.
func QualifiedTable(database, table string) (string, error) {
	if err := ValidateIdentifier(database); err != nil {
		return "", err
	}
	if err := ValidateIdentifier(table); err != nil {
		return "", err
	}
	return QuoteIdentifier(database) + "." + QuoteIdentifier(table), nil
}

func quoteColumns(columns []string) (string, error) {
	quoted := make([]string, 0, len(columns))
	for _, c := range columns {
		if err := ValidateIdentifier(c); err != nil {
			return "", err
		}
		quoted = append(quoted, QuoteIdentifier(c))
	}
	return strings.Join(quoted, ", "), nil
}

// NormalizeDirection upper-cases dir and checks it is ASC or DESC.
// An empty direction means ASC.
func NormalizeDirection(dir string) (string, error) {
	dir = strings.ToUpper(strings.TrimSpace(dir))
	if dir == "" {
		return "ASC", nil
	}
	if err := validation.Validate(dir, validation.In("ASC", "DESC")); err != nil {
		return "", fmt.Errorf("invalid order direction %q: %w", dir, err)
	}
	return dir, nil
}
