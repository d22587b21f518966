package proxy

import (
	"net/http"
	"strconv"
)

const (
	headerContentType  = "Content-Type"
	headerCacheControl = "Cache-Control"
	headerXCache       = "X-Cache"

	cacheHit  = "HIT"
	cacheMiss = "MISS"
)

func cacheControl(ttlSeconds int) string {
	return "public, max-age=" + strconv.Itoa(ttlSeconds)
}

// copyHeader replaces dst's values with src's. A nil value is copied as-is,
// which stops net/http from sniffing a Content-Type.
func copyHeader(dst, src http.Header) {
	for key, values := range src {
		dst[key] = values
	}
}
