package mysqlwrapper

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Patrick-Hull/MySQLWrapper/internal/database"
	"github.com/Patrick-Hull/MySQLWrapper/internal/kvstore"
)

// valueRows yields one row of fixed driver values.
type valueRows struct {
	columns []string
	values  []any
	done    bool
}

func (r *valueRows) Next() bool {
	if r.done {
		return false
	}
	r.done = true
	return true
}

func (r *valueRows) Scan(dest ...any) error {
	for i, d := range dest {
		*(d.(*any)) = r.values[i]
	}
	return nil
}

func (r *valueRows) Columns() ([]string, error) { return r.columns, nil }
func (r *valueRows) Close() error               { return nil }
func (r *valueRows) Err() error                 { return nil }

// withLocalZone runs the test with time.Local set to a non-UTC zone.
func withLocalZone(t *testing.T) {
	t.Helper()
	prev := time.Local
	time.Local = time.FixedZone("EST", -5*60*60)
	t.Cleanup(func() { time.Local = prev })
}

func TestEncodeDecodeResult_KeepsDriverValues(t *testing.T) {
	withLocalZone(t)

	newYork := time.FixedZone("NY", -4*60*60)
	rows := &valueRows{
		columns: []string{"id", "price", "at", "note", "hits", "name"},
		values: []any{
			int64(1),
			float32(1.1),
			time.Date(2024, 1, 2, 3, 4, 5, 6000, newYork),
			nil,
			uint64(7),
			[]byte("Alice"),
		},
	}
	require.True(t, rows.Next())
	values, err := database.ScanMap(rows, rows.columns)
	require.NoError(t, err)

	assert.Equal(t, 1.1, values["price"])
	assert.Equal(t, time.UTC, values["at"].(time.Time).Location())
	assert.Equal(t, "Alice", values["name"])

	live := &SelectResult{
		Message:   "Data Retrieved Successfully",
		Rows:      []Row{{Key: values["id"], Values: values}},
		Count:     1,
		Statement: "SELECT * FROM `main`.`readings`",
	}
	data, err := encodeResult(live)
	require.NoError(t, err)
	cached, err := decodeResult(data)
	require.NoError(t, err)

	want, err := json.Marshal(live.Data())
	require.NoError(t, err)
	got, err := json.Marshal(cached.Data())
	require.NoError(t, err)
	assert.Equal(t, string(want), string(got))
	assert.Contains(t, string(got), `"price":1.1}`)
	assert.Contains(t, string(got), `"at":"2024-01-02T07:04:05.000006Z"`)
	assert.Contains(t, string(got), `"note":null`)
	assert.Equal(t, live.Count, cached.Count)
	assert.Equal(t, live.Statement, cached.Statement)
}

func TestSelect_CacheHitKeepsTimesAndFloats(t *testing.T) {
	withLocalZone(t)
	ctx := context.Background()

	db, err := database.NewSQLiteDatabase(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	_, err = db.Exec(ctx, "CREATE TABLE readings (id INTEGER PRIMARY KEY, at DATETIME, price REAL)")
	require.NoError(t, err)
	_, err = db.Exec(ctx, "INSERT INTO readings (id, at, price) VALUES (?, ?, ?)",
		1, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), 1.1)
	require.NoError(t, err)

	store, err := kvstore.NewMemoryKVStore(kvstore.DefaultMemoryOptions())
	require.NoError(t, err)
	defer store.Close()

	sel := NewSelectQuery(db)
	sel.Store = store
	sel.Database = "main"
	sel.Table = "readings"
	sel.Cache = true

	first, err := sel.Execute(ctx)
	require.NoError(t, err)
	require.True(t, first.CacheCreated)

	second, err := sel.Execute(ctx)
	require.NoError(t, err)
	require.True(t, second.Cached)

	firstData, err := json.Marshal(first.Data())
	require.NoError(t, err)
	secondData, err := json.Marshal(second.Data())
	require.NoError(t, err)
	assert.Equal(t, `{"1":{"at":"2024-01-02T03:04:05Z","id":1,"price":1.1}}`, string(firstData))
	assert.Equal(t, string(firstData), string(secondData))
}
