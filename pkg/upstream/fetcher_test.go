package upstream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashpect/edgeproxy/pkg/client"
)

func TestFetcher_URL(t *testing.T) {
	f := New("https://api.example", "k")
	assert.Equal(t, "https://api.example/items", f.URL("/items", ""))
	assert.Equal(t, "https://api.example/items?b=2&a=1", f.URL("/items", "b=2&a=1"))
}

func TestFetcher_Fetch(t *testing.T) {
	var gotKey, gotURI, gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get(APIKeyHeader)
		gotURI = r.URL.RequestURI()
		gotMethod = r.Method
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	resp, err := New(srv.URL, "secret").Fetch(context.Background(), "/v1/items", "a=1&b=2")
	require.NoError(t, err)

	assert.Equal(t, "secret", gotKey)
	assert.Equal(t, "/v1/items?a=1&b=2", gotURI)
	assert.Equal(t, http.MethodGet, gotMethod)
	assert.Equal(t, http.StatusCreated, resp.Status)
	assert.Equal(t, `{"ok":true}`, string(resp.Body))
	assert.True(t, resp.HasContentType)
	assert.Equal(t, "application/json; charset=utf-8", resp.ContentType)
	assert.True(t, resp.IsSuccess())
}

func TestFetcher_FetchWithoutContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header()["Content-Type"] = nil
		_, _ = w.Write([]byte{0xff, 0xfe, 0x00})
	}))
	defer srv.Close()

	resp, err := New(srv.URL, "k").Fetch(context.Background(), "/bin", "")
	require.NoError(t, err)
	assert.False(t, resp.HasContentType)
	assert.Equal(t, []byte{0xff, 0xfe, 0x00}, resp.Body)
}

func TestFetcher_FetchPassesNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	resp, err := New(srv.URL, "k").Fetch(context.Background(), "/missing", "")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.Status)
	assert.False(t, resp.IsSuccess())
}

func TestFetcher_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	_, err := New(base, "k").Fetch(context.Background(), "/x", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTransport))
	assert.False(t, errors.Is(err, ErrBodyRead))

	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, TransportFailure, fe.Kind)
	assert.Equal(t, base+"/x", fe.URL)
}

func TestFetcher_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	f := New(srv.URL, "k", WithClient(client.NewClient(client.WithTimeout(50*time.Millisecond))))
	_, err := f.Fetch(context.Background(), "/slow", "")
	assert.True(t, errors.Is(err, ErrTransport))
}

func TestFetcher_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(srv.URL, "k").Fetch(ctx, "/x", "")
	assert.True(t, errors.Is(err, ErrTransport))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestFetcher_BodyReadFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "100")
		_, _ = w.Write([]byte("short"))
	}))
	defer srv.Close()

	_, err := New(srv.URL, "k").Fetch(context.Background(), "/truncated", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBodyRead))

	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "body_read", fe.Kind.String())
}
