package proxy

import (
	"github.com/ashpect/edgeproxy/pkg/upstream"
)

// ResponseCache is the store the pipeline reads from and fills.
// *cache.Sharded[*upstream.CachedResponse] satisfies it.
type ResponseCache interface {
	Get(key string) (*upstream.CachedResponse, bool)
	Set(key string, value *upstream.CachedResponse)
}

// CacheKey is path followed by "?"+rawQuery when the query is non-empty.
// The query is used verbatim, so parameter order matters. The request method
// is deliberately not part of the key.
func CacheKey(path, rawQuery string) string {
	if rawQuery == "" {
		return path
	}
	return path + "?" + rawQuery
}
