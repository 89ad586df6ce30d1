package query

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Patrick-Hull/MySQLWrapper/internal/core"
)

// Fields is an ordered column/value mapping. Order is significant: it
// decides column order in generated SQL and the order of bind values.
type Fields []core.Field

// F builds Fields from alternating column/value arguments. It panics when a
// column is not a string, which only happens on programmer error.
func F(pairs ...any) Fields {
	if len(pairs)%2 != 0 {
		panic("query.F: odd number of arguments")
	}
	var out Fields
	for i := 0; i < len(pairs); i += 2 {
		col, ok := pairs[i].(string)
		if !ok {
			panic(fmt.Sprintf("query.F: column at position %d is %T, not string", i, pairs[i]))
		}
		out.Set(col, pairs[i+1])
	}
	return out
}

// Set replaces the value of an existing column or appends a new one.
func (f *Fields) Set(column string, value any) {
	for i := range *f {
		if (*f)[i].Column == column {
			(*f)[i].Value = value
			return
		}
	}
	*f = append(*f, core.Field{Column: column, Value: value})
}

// Columns returns the column names in order.
func (f Fields) Columns() []string {
	cols := make([]string, len(f))
	for i, field := range f {
		cols[i] = field.Column
	}
	return cols
}

// Values returns the bound values in order.
func (f Fields) Values() []any {
	vals := make([]any, len(f))
	for i, field := range f {
		vals[i] = field.Value
	}
	return vals
}

// Dump renders a stable textual form of the mapping. Two mappings with the
// same columns, values and order always dump to the same string.
func (f Fields) Dump() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, field := range f {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%q=%T:%v", field.Column, field.Value, field.Value)
	}
	b.WriteByte(']')
	return b.String()
}

// UnmarshalJSON accepts either a list of {"column","value"} objects or a
// plain object. Object keys keep their document order.
func (f *Fields) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	if len(data) > 0 && data[0] == '[' {
		var pairs []core.Field
		if err := dec.Decode(&pairs); err != nil {
			return fmt.Errorf("failed to decode fields: %w", err)
		}
		var out Fields
		for _, p := range pairs {
			out.Set(p.Column, p.Value)
		}
		*f = out
		return nil
	}

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("failed to decode fields: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("fields must be a JSON object or array")
	}

	var out Fields
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("failed to decode fields: %w", err)
		}
		column, _ := tok.(string)

		var value any
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("failed to decode value of %q: %w", column, err)
		}
		out.Set(column, value)
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("failed to decode fields: %w", err)
	}

	*f = out
	return nil
}
