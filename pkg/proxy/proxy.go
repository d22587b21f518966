package proxy

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/ashpect/edgeproxy/pkg/upstream"
)

const (
	bodyUpstreamFailed = `{"error": "Upstream request failed"}`
	bodyReadFailed     = `{"error": "Failed to read response"}`
)

// Fetcher performs the upstream round trip on a cache miss.
type Fetcher interface {
	Fetch(ctx context.Context, path, rawQuery string) (*upstream.CachedResponse, error)
}

// Outbound is the complete response the pipeline produced for one request.
type Outbound struct {
	Status int
	Header http.Header
	Body   []byte
}

// Write sends the response on w.
func (o *Outbound) Write(w http.ResponseWriter) error {
	copyHeader(w.Header(), o.Header)
	w.WriteHeader(o.Status)
	_, err := w.Write(o.Body)
	return err
}

// Pipeline serves requests from the cache and falls back to the upstream.
type Pipeline struct {
	fetcher      Fetcher
	cache        ResponseCache
	ttlSeconds   int
	singleFlight bool
	group        singleflight.Group
	log          zerolog.Logger
}

type PipelineOption func(*Pipeline)

// WithSingleFlight makes concurrent misses on one key share a single upstream fetch.
func WithSingleFlight(enabled bool) PipelineOption {
	return func(p *Pipeline) {
		p.singleFlight = enabled
	}
}

func WithLogger(l zerolog.Logger) PipelineOption {
	return func(p *Pipeline) {
		p.log = l
	}
}

// NewPipeline wires the fetcher and cache. ttl is only advertised in
// Cache-Control; expiry itself belongs to the cache.
func NewPipeline(fetcher Fetcher, cache ResponseCache, ttl time.Duration, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		fetcher:    fetcher,
		cache:      cache,
		ttlSeconds: int(ttl / time.Second),
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Pipeline) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	out, err := p.Handle(r.Context(), r.URL.EscapedPath(), r.URL.RawQuery)
	if err != nil {
		// the client went away while waiting on a shared fetch
		p.log.Debug().Err(err).Str("path", r.URL.Path).Msg("Request abandoned")
		return
	}
	if err := out.Write(w); err != nil {
		p.log.Debug().Err(err).Str("path", r.URL.Path).Msg("Error writing response body")
	}
}

// Handle resolves one request. Upstream failures become 502 responses; the
// only error returned is ctx's, when ctx ends while waiting on a shared fetch.
func (p *Pipeline) Handle(ctx context.Context, path, rawQuery string) (*Outbound, error) {
	key := CacheKey(path, rawQuery)

	if cached, ok := p.cache.Get(key); ok {
		p.log.Info().Str("key", key).Msg("Cache HIT")
		return p.build(cached, true), nil
	}
	p.log.Info().Str("key", key).Msg("Cache MISS")

	resp, err := p.fetch(ctx, key, path, rawQuery)
	switch {
	case err == nil:
		return p.build(resp, false), nil
	case errors.Is(err, upstream.ErrBodyRead):
		p.log.Error().Err(err).Str("path", path).Msg("Failed to read upstream response")
		return jsonError(http.StatusBadGateway, bodyReadFailed), nil
	case errors.Is(err, upstream.ErrTransport):
		p.log.Error().Err(err).Str("path", path).Msg("Upstream request failed")
		return jsonError(http.StatusBadGateway, bodyUpstreamFailed), nil
	case ctx.Err() != nil:
		return nil, err
	default:
		p.log.Error().Err(err).Str("path", path).Msg("Upstream request failed")
		return jsonError(http.StatusBadGateway, bodyUpstreamFailed), nil
	}
}

func (p *Pipeline) fetch(ctx context.Context, key, path, rawQuery string) (*upstream.CachedResponse, error) {
	if !p.singleFlight {
		return p.fetchAndStore(ctx, key, path, rawQuery)
	}

	// The shared fetch must not die with whichever caller started it; the
	// client timeout still bounds it.
	shared := context.WithoutCancel(ctx)
	ch := p.group.DoChan(key, func() (interface{}, error) {
		return p.fetchAndStore(shared, key, path, rawQuery)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			p.log.Debug().Str("key", key).Msg("Joined in-flight upstream fetch")
		}
		return res.Val.(*upstream.CachedResponse), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// fetchAndStore caches only complete 2xx responses.
func (p *Pipeline) fetchAndStore(ctx context.Context, key, path, rawQuery string) (*upstream.CachedResponse, error) {
	resp, err := p.fetcher.Fetch(ctx, path, rawQuery)
	if err != nil {
		return nil, err
	}
	if resp.IsSuccess() {
		p.cache.Set(key, resp)
	}
	return resp, nil
}

func (p *Pipeline) build(resp *upstream.CachedResponse, hit bool) *Outbound {
	header := make(http.Header, 3)
	if resp.HasContentType {
		header.Set(headerContentType, resp.ContentType)
	} else {
		header[headerContentType] = nil
	}
	header.Set(headerCacheControl, cacheControl(p.ttlSeconds))
	if hit {
		header.Set(headerXCache, cacheHit)
	} else {
		header.Set(headerXCache, cacheMiss)
	}
	return &Outbound{
		Status: resp.Status,
		Header: header,
		Body:   resp.Body,
	}
}

func jsonError(status int, body string) *Outbound {
	header := make(http.Header, 1)
	header.Set(headerContentType, "application/json")
	return &Outbound{
		Status: status,
		Header: header,
		Body:   []byte(body),
	}
}
