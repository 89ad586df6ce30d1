package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Patrick-Hull/MySQLWrapper/pkg/mysqlwrapper"
)

func setupDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cli.db")

	db, err := mysqlwrapper.Connect(context.Background(), mysqlwrapper.DatabaseConfig{Driver: "sqlite3", Path: path})
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(context.Background(),
		"CREATE TABLE users (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT NOT NULL, age TEXT)")
	require.NoError(t, err)
	return path
}

func writeConfig(t *testing.T, dbPath string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := fmt.Sprintf("database:\n  driver: sqlite3\n  path: %q\ncache:\n  enabled: true\n  type: memory\n", dbPath)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func run(t *testing.T, args ...string) (map[string]any, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := NewRootCommand("test")
	root.SetArgs(args)
	root.SetOut(&stdout)
	root.SetErr(&stderr)

	err := root.Execute()

	var rec map[string]any
	if stdout.Len() > 0 {
		require.NoError(t, json.Unmarshal(stdout.Bytes(), &rec), stdout.String())
	}
	return rec, stderr.String(), err
}

func TestCLI_CRUD(t *testing.T) {
	cfg := writeConfig(t, setupDB(t))

	rec, stderr, err := run(t, "--config", cfg, "insert", "--table", "users", "--set", "name=Alice", "--set", "age=30")
	require.NoError(t, err, stderr)
	assert.Equal(t, true, rec["status"])
	assert.Equal(t, float64(1), rec["insert_id"])
	assert.Contains(t, stderr, "Data added successfully!")

	rec, _, err = run(t, "--config", cfg, "select", "--table", "users", "--where", "name=Alice", "--columns", "id,age")
	require.NoError(t, err)
	assert.Equal(t, float64(1), rec["data_count"])
	row := rec["data"].(map[string]any)["1"].(map[string]any)
	assert.Equal(t, "30", row["age"])
	assert.NotContains(t, row, "name")

	rec, _, err = run(t, "--config", cfg, "update", "--table", "users", "--set", "age=31", "--where", "id=1")
	require.NoError(t, err)
	assert.Equal(t, float64(1), rec["rows_affected"])

	rec, _, err = run(t, "--config", cfg, "select", "--table", "users", "--where", "name=li",
		"--match", "both", "--order", "id:desc", "--limit", "5", "--datatable")
	require.NoError(t, err)
	assert.Equal(t, "31", rec["data"].(map[string]any)["0"].(map[string]any)["age"])

	rec, _, err = run(t, "--config", cfg, "delete", "--table", "users", "--where", "id=1")
	require.NoError(t, err)
	assert.Equal(t, "Data Deleted Successfully", rec["msg"])

	rec, _, err = run(t, "--config", cfg, "select", "--table", "users")
	require.NoError(t, err)
	assert.Equal(t, "No Data Exists for Table", rec["msg"])
}

func TestCLI_FailureRecord(t *testing.T) {
	cfg := writeConfig(t, setupDB(t))

	rec, stderr, err := run(t, "--config", cfg, "delete", "--table", "users")
	require.ErrorIs(t, err, ErrOperationFailed)
	assert.Equal(t, false, rec["status"])
	assert.Equal(t, "Criteria must be presented for a Delete Statement", rec["msg"])
	assert.Contains(t, stderr, "Criteria must be presented")

	_, _, err = run(t, "--config", cfg, "insert", "--table", "users", "--set", "broken")
	assert.ErrorContains(t, err, "expected column=value")

	_, _, err = run(t, "--config", cfg, "select", "--table", "users", "--match", "fuzzy")
	assert.Error(t, err)

	_, _, err = run(t, "--config", cfg, "select")
	assert.Error(t, err, "--table is required")
}

func TestCLI_EnvFile(t *testing.T) {
	dbPath := setupDB(t)
	envPath := filepath.Join(t.TempDir(), "test.env")
	content := fmt.Sprintf("MYSQLWRAPPER_DATABASE_DRIVER=sqlite3\nMYSQLWRAPPER_DATABASE_PATH=%s\n", dbPath)
	require.NoError(t, os.WriteFile(envPath, []byte(content), 0o600))
	t.Cleanup(func() {
		_ = os.Unsetenv("MYSQLWRAPPER_DATABASE_DRIVER")
		_ = os.Unsetenv("MYSQLWRAPPER_DATABASE_PATH")
	})

	rec, _, err := run(t, "--env-file", envPath, "insert", "--table", "users", "--set", "name=Env")
	require.NoError(t, err)
	assert.Equal(t, true, rec["status"])

	_, _, err = run(t, "--env-file", filepath.Join(t.TempDir(), "missing.env"), "select", "--table", "users")
	assert.ErrorContains(t, err, "failed to load env file")
}

func TestParseFields(t *testing.T) {
	fields, err := parseFields([]string{"name=Alice", "note=a=b", "name=Bob"})
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "note"}, fields.Columns())
	assert.Equal(t, []any{"Bob", "a=b"}, fields.Values())

	_, err = parseFields([]string{"=x"})
	assert.Error(t, err)
}

func TestParseOrder(t *testing.T) {
	assert.Nil(t, parseOrder(""))
	assert.Equal(t, &mysqlwrapper.Order{Column: "id"}, parseOrder("id"))
	assert.Equal(t, &mysqlwrapper.Order{Column: "id", Direction: "desc"}, parseOrder("id:desc"))
}
