// Package mysqlwrapper builds and executes parameterized INSERT, SELECT,
// UPDATE and DELETE statements from ordered column/value data, with an
// optional result cache for SELECT.
//
// Typical usage:
//
//	db, _ := mysqlwrapper.Connect(ctx, mysqlwrapper.DatabaseConfig{Host: "localhost", Username: "app"})
//	defer db.Close()
//
//	sel := mysqlwrapper.NewSelectQuery(db)
//	sel.Database, sel.Table = "shop", "users"
//	sel.Criteria = mysqlwrapper.F("name", "Alice")
//	res, err := sel.Execute(ctx)
package mysqlwrapper

import (
	"github.com/Patrick-Hull/MySQLWrapper/internal/core"
	"github.com/Patrick-Hull/MySQLWrapper/internal/query"
)

type (
	// Database is a borrowed connection handle.
	Database = core.Database

	// CacheStore is the key-value store SELECT results are cached in.
	CacheStore = core.KVStore

	// Publisher receives an event for every successful write.
	Publisher = core.Publisher

	MutationEvent = core.MutationEvent

	Field = core.Field

	// Fields is an ordered column/value mapping.
	Fields = query.Fields

	// Order is a single-column ORDER BY specification.
	Order = query.Order

	// Match selects exact or LIKE comparison of criteria values.
	Match = query.Match
)

const (
	MatchExact = query.MatchExact
	MatchLike  = query.MatchLike
	// MatchLikeStart places the wildcard before the value: "%abc".
	MatchLikeStart = query.MatchLeadingWildcard
	// MatchLikeEnd places the wildcard after the value: "abc%".
	MatchLikeEnd  = query.MatchTrailingWildcard
	MatchLikeBoth = query.MatchBothWildcards
)

// F builds Fields from alternating column/value arguments.
func F(pairs ...any) Fields {
	return query.F(pairs...)
}

// ParseMatch converts "exact", "like", "leading", "trailing" or "both".
func ParseMatch(s string) (Match, error) {
	return query.ParseMatch(s)
}
