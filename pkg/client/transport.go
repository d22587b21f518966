package client

import (
	"net"
	"net/http"
	"time"
)

const (
	defaultConnectTimeout = 10 * time.Second
	defaultKeepAlive      = 60 * time.Second
)

type TransportOption func(*transportSettings)

type transportSettings struct {
	transport      *http.Transport
	connectTimeout time.Duration
	keepAlive      time.Duration
}

func WithMaxIdleConns(maxIdleConns int) TransportOption {
	return func(s *transportSettings) {
		s.transport.MaxIdleConns = maxIdleConns
	}
}

func WithMaxIdleConnsPerHost(maxIdleConnsPerHost int) TransportOption {
	return func(s *transportSettings) {
		s.transport.MaxIdleConnsPerHost = maxIdleConnsPerHost
	}
}

func WithIdleConnTimeout(timeout time.Duration) TransportOption {
	return func(s *transportSettings) {
		s.transport.IdleConnTimeout = timeout
	}
}

// WithConnectTimeout bounds TCP connection establishment.
func WithConnectTimeout(timeout time.Duration) TransportOption {
	return func(s *transportSettings) {
		s.connectTimeout = timeout
	}
}

// WithKeepAlive sets the TCP keep-alive period of upstream connections.
func WithKeepAlive(period time.Duration) TransportOption {
	return func(s *transportSettings) {
		s.keepAlive = period
	}
}

// NewTransport starts from http.DefaultTransport's settings (proxy from env,
// HTTP/2, transparent gzip) and applies opts.
func NewTransport(opts ...TransportOption) *http.Transport {
	s := &transportSettings{
		transport:      http.DefaultTransport.(*http.Transport).Clone(),
		connectTimeout: defaultConnectTimeout,
		keepAlive:      defaultKeepAlive,
	}
	for _, opt := range opts {
		opt(s)
	}

	dialer := &net.Dialer{
		Timeout:   s.connectTimeout,
		KeepAlive: s.keepAlive,
	}
	s.transport.DialContext = dialer.DialContext
	return s.transport
}
