package query

import (
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint hashes the compiled SQL together with a dump of the criteria,
// so bound values take part in the cache key. Extra discriminators (result
// shaping flags that do not show in the SQL) are appended in order.
func Fingerprint(sql string, criteria Fields, extra ...string) string {
	d := xxhash.New()
	_, _ = d.WriteString(sql)
	_, _ = d.WriteString("|")
	_, _ = d.WriteString(criteria.Dump())
	for _, e := range extra {
		_, _ = d.WriteString("|")
		_, _ = d.WriteString(e)
	}
	return strconv.FormatUint(d.Sum64(), 16)
}

// KeyBuilder builds cache keys in the format {namespace}:{database}.{table}:{fingerprint}.
type KeyBuilder struct {
	namespace string
}

// NewKeyBuilder creates a new key builder.
func NewKeyBuilder(namespace string) *KeyBuilder {
	return &KeyBuilder{namespace: namespace}
}

// BuildKey constructs the cache key for a fingerprint of a table's query.
func (kb *KeyBuilder) BuildKey(database, table, fingerprint string) string {
	if kb.namespace != "" {
		return fmt.Sprintf("%s:%s.%s:%s", kb.namespace, database, table, fingerprint)
	}
	return fmt.Sprintf("%s.%s:%s", database, table, fingerprint)
}
