package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Patrick-Hull/MySQLWrapper/pkg/mysqlwrapper"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
)

// printRecord writes rec as indented JSON to stdout and a colored status
// line to stderr. It returns ErrOperationFailed for failure records.
func printRecord(cmd *cobra.Command, rec mysqlwrapper.Record) error {
	out, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))

	stderr := cmd.ErrOrStderr()
	if !rec.Status {
		errorColor.Fprintf(stderr, "✖ %s\n", rec.Msg)
		return ErrOperationFailed
	}
	successColor.Fprintf(stderr, "✔ %s\n", rec.Msg)
	if rec.CacheWarning != "" {
		warningColor.Fprintf(stderr, "! cache: %s\n", rec.CacheWarning)
	}
	return nil
}

// parseFields turns "col=value" arguments into ordered Fields. Values are
// passed as strings.
func parseFields(pairs []string) (mysqlwrapper.Fields, error) {
	var fields mysqlwrapper.Fields
	for _, pair := range pairs {
		col, val, ok := strings.Cut(pair, "=")
		if !ok || col == "" {
			return nil, fmt.Errorf("expected column=value, got %q", pair)
		}
		fields.Set(col, val)
	}
	return fields, nil
}

// parseOrder parses "col" or "col:dir".
func parseOrder(s string) *mysqlwrapper.Order {
	if s == "" {
		return nil
	}
	col, dir, _ := strings.Cut(s, ":")
	return &mysqlwrapper.Order{Column: col, Direction: dir}
}
