package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/ashpect/edgeproxy/pkg/cache"
	"github.com/ashpect/edgeproxy/pkg/client"
	"github.com/ashpect/edgeproxy/pkg/config"
	"github.com/ashpect/edgeproxy/pkg/origin"
	"github.com/ashpect/edgeproxy/pkg/proxy"
	"github.com/ashpect/edgeproxy/pkg/stats"
	"github.com/ashpect/edgeproxy/pkg/upstream"
)

// Server owns the cache and the HTTP handler tree built from one config.
type Server struct {
	cfg     *config.SystemCfg
	log     zerolog.Logger
	store   *cache.Sharded[*upstream.CachedResponse]
	handler http.Handler
}

// New builds every component from cfg. Close releases the cache janitor.
func New(cfg *config.SystemCfg, logger zerolog.Logger) (*Server, error) {
	store, err := cache.NewSharded[*upstream.CachedResponse](cfg.Cache.MaxCapacity, cfg.Cache.Shards,
		cache.WithDefaultTTL[string, *upstream.CachedResponse](cfg.Cache.TTLSeconds),
		cache.WithCleanupInterval[string, *upstream.CachedResponse](cfg.Cache.CleanupIntervalSeconds),
	)
	if err != nil {
		return nil, err
	}

	transport := client.NewTransport(
		client.WithConnectTimeout(cfg.Proxy.ConnectTimeout),
		client.WithKeepAlive(cfg.Proxy.KeepAlive),
		client.WithMaxIdleConnsPerHost(cfg.Proxy.MaxIdleConnsPerHost),
		client.WithIdleConnTimeout(cfg.Proxy.IdleConnTimeout),
	)
	httpClient := client.NewClient(
		client.WithTimeout(cfg.Proxy.RequestTimeout),
		client.WithTransport(transport),
	)

	fetcher := upstream.New(cfg.Proxy.UpstreamURL, cfg.Proxy.APIKey,
		upstream.WithClient(httpClient),
		upstream.WithLogger(component(logger, "upstream")),
	)
	pipeline := proxy.NewPipeline(fetcher, store, cfg.CacheTTL(),
		proxy.WithSingleFlight(cfg.Cache.SingleFlight),
		proxy.WithLogger(component(logger, "proxy")),
	)
	gate := origin.NewGate(cfg.Origin.Exact, cfg.Origin.Suffix,
		origin.WithLogger(component(logger, "origin")),
	)
	reporter := stats.NewReporter(store, cfg.CacheTTL(), cfg.Cache.MaxCapacity)

	return &Server{
		cfg:     cfg,
		log:     logger,
		store:   store,
		handler: NewRouter(gate.Middleware, pipeline, reporter, logger),
	}, nil
}

func component(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str("component", name).Logger()
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) Close() {
	s.store.Close()
}

// ListenAndServe listens on the configured address until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.ListenAddr())
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then drains
// in-flight requests for at most the configured shutdown timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.log.Info().Str("addr", "http://"+ln.Addr().String()).Msg("Listening")

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info().Msg("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
