package upstream

import (
	"context"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/ashpect/edgeproxy/pkg/client"
	"github.com/ashpect/edgeproxy/pkg/utils"
)

// APIKeyHeader carries the service credential on every upstream request.
const APIKeyHeader = "X-Api-Key"

// Fetcher issues GET requests against one fixed upstream base URL.
type Fetcher struct {
	baseURL string
	apiKey  string
	client  *http.Client
	log     zerolog.Logger
}

type Option func(*Fetcher)

func WithClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.client = c
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(f *Fetcher) {
		f.log = l
	}
}

func New(baseURL, apiKey string, opts ...Option) *Fetcher {
	f := &Fetcher{
		baseURL: baseURL,
		apiKey:  apiKey,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.client == nil {
		f.client = client.NewClient()
	}
	return f
}

// URL concatenates the base URL, path and, when non-empty, "?"+rawQuery.
func (f *Fetcher) URL(path, rawQuery string) string {
	u := f.baseURL + path
	if rawQuery != "" {
		u += "?" + rawQuery
	}
	return u
}

// Fetch performs a single GET and buffers the whole body. It never retries.
// Errors are *FetchError values matching ErrTransport or ErrBodyRead.
func (f *Fetcher) Fetch(ctx context.Context, path, rawQuery string) (*CachedResponse, error) {
	target := f.URL(path, rawQuery)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &FetchError{Kind: TransportFailure, URL: target, Err: err}
	}
	req.Header.Set(APIKeyHeader, f.apiKey)
	utils.LogRequest(f.log, req, "Upstream request")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{Kind: TransportFailure, URL: target, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Kind: BodyReadFailure, URL: target, Err: err}
	}

	out := &CachedResponse{
		Status: resp.StatusCode,
		Body:   body,
	}
	if values, ok := resp.Header["Content-Type"]; ok && len(values) > 0 {
		out.ContentType = values[0]
		out.HasContentType = true
	}

	f.log.Debug().
		Str("url", target).
		Int("status", out.Status).
		Int("bytes", len(body)).
		Msg("Upstream response")
	return out, nil
}
