package query

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile_OnePlaceholderPerTermInOrder(t *testing.T) {
	criteria := F("name", "Alice", "age", 30, "city", "Oslo")

	for _, join := range []Join{JoinAnd, JoinOr} {
		clause, err := Compile(criteria, join, MatchExact)
		require.NoError(t, err)

		assert.Equal(t, "`name` = ? "+string(join)+" `age` = ? "+string(join)+" `city` = ?", clause.SQL)
		assert.Equal(t, 3, strings.Count(clause.SQL, "?"))
		assert.False(t, strings.HasSuffix(clause.SQL, string(join)))
		assert.Equal(t, []any{"Alice", 30, "Oslo"}, clause.Args)
	}
}

func TestCompile_EmptyCriteria(t *testing.T) {
	clause, err := Compile(nil, JoinAnd, MatchExact)
	require.NoError(t, err)
	assert.True(t, clause.Empty())
	assert.Empty(t, clause.Args)
}

func TestCompile_RejectsBadColumn(t *testing.T) {
	_, err := Compile(F("name; DROP TABLE x", 1), JoinAnd, MatchExact)
	assert.ErrorIs(t, err, ErrInvalidIdentifier)
}

func TestMatch_Wrap(t *testing.T) {
	tests := []struct {
		match Match
		want  any
		op    string
	}{
		{MatchExact, "abc", "="},
		{MatchLike, "abc", "LIKE"},
		{MatchLeadingWildcard, "%abc", "LIKE"},
		{MatchTrailingWildcard, "abc%", "LIKE"},
		{MatchBothWildcards, "%abc%", "LIKE"},
	}
	for _, tt := range tests {
		t.Run(tt.match.String(), func(t *testing.T) {
			clause, err := Compile(F("name", "abc"), JoinAnd, tt.match)
			require.NoError(t, err)
			assert.Equal(t, []any{tt.want}, clause.Args)
			assert.Equal(t, "`name` "+tt.op+" ?", clause.SQL)
		})
	}
}

func TestParseMatch(t *testing.T) {
	m, err := ParseMatch("Trailing")
	require.NoError(t, err)
	assert.Equal(t, MatchTrailingWildcard, m)

	m, err = ParseMatch("")
	require.NoError(t, err)
	assert.Equal(t, MatchExact, m)

	_, err = ParseMatch("fuzzy")
	assert.Error(t, err)
}

func TestIdentifiers(t *testing.T) {
	assert.NoError(t, ValidateIdentifier("users_2024"))
	assert.NoError(t, ValidateIdentifier("_tmp$1"))
	assert.ErrorIs(t, ValidateIdentifier(""), ErrInvalidIdentifier)
	assert.ErrorIs(t, ValidateIdentifier("1users"), ErrInvalidIdentifier)
	assert.ErrorIs(t, ValidateIdentifier("users`"), ErrInvalidIdentifier)
	assert.ErrorIs(t, ValidateIdentifier(strings.Repeat("a", MaxIdentifierLength+1)), ErrInvalidIdentifier)

	target, err := QualifiedTable("shop", "orders")
	require.NoError(t, err)
	assert.Equal(t, "`shop`.`orders`", target)
}

func TestNormalizeDirection(t *testing.T) {
	dir, err := NormalizeDirection("desc")
	require.NoError(t, err)
	assert.Equal(t, "DESC", dir)

	dir, err = NormalizeDirection("")
	require.NoError(t, err)
	assert.Equal(t, "ASC", dir)

	_, err = NormalizeDirection("DESC; DROP TABLE x")
	assert.Error(t, err)
}

func TestInsert(t *testing.T) {
	stmt, err := Insert("shop", "users", F("name", "Alice", "age", "30"))
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO `shop`.`users` (`name`, `age`) VALUES (?, ?)", stmt.SQL)
	assert.Equal(t, []any{"Alice", "30"}, stmt.Args)

	_, err = Insert("shop", "users", nil)
	assert.ErrorIs(t, err, ErrNoColumns)
}

func TestUpdate_BindsDataThenCriteria(t *testing.T) {
	stmt, err := Update("shop", "users", F("name", "Bob"), F("id", "5"))
	require.NoError(t, err)
	assert.Equal(t, "UPDATE `shop`.`users` SET `name` = ? WHERE `id` = ?", stmt.SQL)
	assert.Equal(t, []any{"Bob", "5"}, stmt.Args)

	_, err = Update("shop", "users", F("name", "Bob"), nil)
	assert.ErrorIs(t, err, ErrNoColumns)
}

func TestDelete(t *testing.T) {
	stmt, err := Delete("shop", "users", F("id", 1, "name", "x"))
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM `shop`.`users` WHERE `id` = ? AND `name` = ?", stmt.SQL)

	_, err = Delete("shop", "users", nil)
	assert.ErrorIs(t, err, ErrNoColumns)
}

func TestSelect(t *testing.T) {
	stmt, err := Select(SelectSpec{
		Database: "shop",
		Table:    "users",
		Columns:  []string{"id", "name"},
		Criteria: F("name", "Al", "city", "Oslo"),
		Join:     JoinOr,
		Match:    MatchTrailingWildcard,
		OrderBy:  &Order{Column: "id", Direction: "desc"},
		Limit:    10,
	})
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT `id`, `name` FROM `shop`.`users` WHERE `name` LIKE ? OR `city` LIKE ? ORDER BY `id` DESC LIMIT 10",
		stmt.SQL)
	assert.Equal(t, []any{"Al%", "Oslo%"}, stmt.Args)

	stmt, err = Select(SelectSpec{Database: "shop", Table: "users"})
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM `shop`.`users`", stmt.SQL)
	assert.Empty(t, stmt.Args)

	_, err = Select(SelectSpec{Database: "shop", Table: "users", Limit: -1})
	assert.Error(t, err)
}

func TestFields_UnmarshalJSONKeepsObjectOrder(t *testing.T) {
	var f Fields
	require.NoError(t, json.Unmarshal([]byte(`{"zeta": "z", "alpha": 1, "mid": null}`), &f))
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, f.Columns())
	assert.Equal(t, json.Number("1"), f[1].Value)
	assert.Nil(t, f[2].Value)

	var pairs Fields
	require.NoError(t, json.Unmarshal([]byte(`[{"column":"b","value":"x"},{"column":"a","value":"y"}]`), &pairs))
	assert.Equal(t, []string{"b", "a"}, pairs.Columns())

	assert.Error(t, json.Unmarshal([]byte(`"nope"`), &f))
}

func TestFields_SetReplacesInPlace(t *testing.T) {
	f := F("a", 1, "b", 2)
	f.Set("a", 3)
	assert.Equal(t, []any{3, 2}, f.Values())
	assert.Equal(t, []string{"a", "b"}, f.Columns())
}

func TestFingerprint(t *testing.T) {
	sql := "SELECT * FROM `shop`.`users` WHERE `id` = ?"

	a := Fingerprint(sql, F("id", 1))
	assert.Equal(t, a, Fingerprint(sql, F("id", 1)))
	assert.NotEqual(t, a, Fingerprint(sql, F("id", 2)))
	assert.NotEqual(t, a, Fingerprint(sql, F("id", "1")))
	assert.NotEqual(t, a, Fingerprint(sql, F("id", 1), "datatable"))

	kb := NewKeyBuilder("mysqlwrapper")
	assert.Equal(t, "mysqlwrapper:shop.users:"+a, kb.BuildKey("shop", "users", a))
	assert.Equal(t, "shop.users:"+a, NewKeyBuilder("").BuildKey("shop", "users", a))
}
