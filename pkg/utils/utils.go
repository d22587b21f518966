package utils

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"
)

// redactedHeaders never reach the logs with their values.
var redactedHeaders = map[string]bool{
	"X-Api-Key":     true,
	"Authorization": true,
	"Cookie":        true,
}

// LogRequest logs a request with a title at debug level, credentials redacted.
func LogRequest(logger zerolog.Logger, req *http.Request, title string) {
	if logger.GetLevel() > zerolog.DebugLevel {
		return
	}
	headers := zerolog.Dict()
	for key, values := range req.Header {
		if redactedHeaders[http.CanonicalHeaderKey(key)] {
			headers.Str(key, "[redacted]")
			continue
		}
		headers.Str(key, strings.Join(values, ", "))
	}
	logger.Debug().
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Str("host", req.Host).
		Dict("headers", headers).
		Msg(title)
}
