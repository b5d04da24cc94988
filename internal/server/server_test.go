package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brogergvhs/malview/internal/providers/mal"
	"github.com/brogergvhs/malview/internal/settings"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fixture struct {
	srv     *Server
	store   *settings.Store
	backend *settings.MemoryBackend
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	page, err := os.ReadFile(filepath.Join("..", "providers", "mal", "testdata", "anime_1.html"))
	require.NoError(t, err)

	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/anime/1":
			_, _ = w.Write(page)
		case "/anime/500":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(site.Close)

	backend := settings.NewMemoryBackend()
	store, err := settings.Open(context.Background(), backend, settings.WithDebounce(20*time.Millisecond))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	p := mal.New(site.Client(), mal.Options{
		Origin:        site.URL,
		PreferEnglish: func() bool { return store.Bool(settings.ForceEnglishTitles) },
	})

	return &fixture{srv: New(p, store, nil), store: store, backend: backend}
}

func (f *fixture) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, target, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	f.srv.Handler().ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","provider":"mal"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))
}

func TestRequestIDIsEchoed(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	f.srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get(requestIDHeader))
}

func TestOverviewJSON(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/api/overview/anime/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")

	var got map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "Cowboy Bebop", got["title"])
	assert.NotEmpty(t, got["info"])
}

func TestOverviewFollowsForceEnglishTitles(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPut, "/api/settings/forceEnglishTitles", map[string]any{"value": true})
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodGet, "/api/overview/anime/1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "Cowboy Bebop (English)", got["title"])
}

func TestOverviewMarkdown(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/api/overview/anime/1?format=markdown", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/markdown")
	assert.Contains(t, w.Body.String(), "# Cowboy Bebop")
}

func TestOverviewErrors(t *testing.T) {
	f := newFixture(t)

	cases := []struct {
		target string
		code   int
	}{
		{"/api/overview/anime/abc", http.StatusBadRequest},
		{"/api/overview/novel/1", http.StatusBadRequest},
		{"/api/overview/anime/0", http.StatusBadRequest},
		{"/api/overview/anime/1?format=pdf", http.StatusBadRequest},
		{"/api/overview/anime/2", http.StatusNotFound},
		{"/api/overview/anime/500", http.StatusBadGateway},
	}

	for _, tc := range cases {
		w := f.do(t, http.MethodGet, tc.target, nil)
		assert.Equal(t, tc.code, w.Code, tc.target)
	}
}

func TestSettingsList(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Set(context.Background(), "malToken", "secret"))

	w := f.do(t, http.MethodGet, "/api/settings", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "auto", got["theme"])
	assert.Equal(t, "********", got["malToken"])
	assert.Len(t, got, len(settings.Names()))
}

func TestSettingsGet(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/api/settings/videoDuration", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"key":"videoDuration","value":85}`, w.Body.String())

	w = f.do(t, http.MethodGet, "/api/settings/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSettingsPut(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPut, "/api/settings/theme", map[string]any{"value": "dark"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"key":"theme","value":"dark"}`, w.Body.String())
	assert.Equal(t, 1, f.backend.Writes())

	v, _ := f.store.Get("theme")
	assert.Equal(t, "dark", v)
}

func TestSettingsPutDebounced(t *testing.T) {
	f := newFixture(t)

	for _, n := range []int{10, 20, 30} {
		w := f.do(t, http.MethodPut, "/api/settings/delay", map[string]any{"value": n, "debounce": true})
		require.Equal(t, http.StatusOK, w.Code)
	}

	v, _ := f.store.Get("delay")
	assert.Equal(t, float64(30), v)
	assert.Eventually(t, func() bool { return f.backend.Writes() == 1 }, time.Second, 5*time.Millisecond)
}

func TestSettingsPutErrors(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPut, "/api/settings/nope", map[string]any{"value": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "nope is not a defined option")

	req := httptest.NewRequest(http.MethodPut, "/api/settings/theme", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSettingsRoutesNeedStore(t *testing.T) {
	srv := New(mal.New(nil, mal.Options{}), nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/settings", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
