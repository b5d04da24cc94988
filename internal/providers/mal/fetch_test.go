package mal

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brogergvhs/malview/internal/overview"
	"github.com/brogergvhs/malview/internal/providers"
)

func TestFetch_OK(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_, _ = w.Write([]byte(`<span itemprop="name">Monster</span>`))
	}))
	defer srv.Close()

	p := New(srv.Client(), Options{Origin: srv.URL})
	rec, _, err := providers.FetchParse(context.Background(), p, overview.Ref{Type: overview.Manga, ID: 1})
	require.NoError(t, err)

	assert.Equal(t, "/manga/1", path)
	assert.Equal(t, "Monster", rec.Title)
}

func TestFetch_StatusIsNetworkErrorWithoutRetry(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := New(srv.Client(), Options{Origin: srv.URL})
	_, err := p.Fetch(context.Background(), overview.Ref{Type: overview.Anime, ID: 1})

	var netErr *NetworkError
	require.True(t, errors.As(err, &netErr))
	assert.Equal(t, http.StatusServiceUnavailable, netErr.StatusCode)
	assert.Equal(t, srv.URL+"/anime/1", netErr.URL)
	assert.Equal(t, int32(1), hits.Load())
}

func TestFetch_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	origin := srv.URL
	srv.Close()

	p := New(nil, Options{Origin: origin})
	_, err := p.Fetch(context.Background(), overview.Ref{Type: overview.Anime, ID: 1})

	var netErr *NetworkError
	require.True(t, errors.As(err, &netErr))
	assert.Zero(t, netErr.StatusCode)
	assert.NotNil(t, errors.Unwrap(netErr))
}

func TestMatch(t *testing.T) {
	p := New(nil, Options{})

	ref, ok := p.Match("https://myanimelist.net/anime/1/Cowboy_Bebop")
	require.True(t, ok)
	assert.Equal(t, overview.Ref{Type: overview.Anime, ID: 1}, ref)

	_, ok = p.Match("https://example.com/anime/1")
	assert.False(t, ok)
}
