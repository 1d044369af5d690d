package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dkeye/Boxcall/internal/app"
	"github.com/dkeye/Boxcall/internal/app/orch"
	"github.com/dkeye/Boxcall/internal/config"
	"github.com/dkeye/Boxcall/internal/core"
	"github.com/dkeye/Boxcall/internal/metrics"
	"github.com/dkeye/Boxcall/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Mode:           "test",
		StaticPath:     t.TempDir(),
		ReadLimit:      32768,
		PingPeriod:     10 * time.Second,
		SendBuffer:     16,
		Secret:         "test-secret",
		TokenTTL:       time.Hour,
		AllowedOrigins: []string{"example.com"},
		ICEServers:     []config.ICEServer{{URLs: []string{"stun:stun.example.com:3478"}}},
	}
}

func newRouter(t *testing.T, withStore bool) (*gin.Engine, *orch.Orchestrator) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	o := orch.New(app.DropPolicy{}, metrics.New(), time.Second)
	var st store.Store
	if withStore {
		s, err := store.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "test.db"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		st = s
	}
	return SetupRouter(context.Background(), testConfig(t), o, st), o
}

func do(r http.Handler, method, path string, body any, header map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

type failure struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func TestHealthAndSnapshots(t *testing.T) {
	r, o := newRouter(t, false)

	w := do(r, http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.Contains(t, w.Header().Get("Set-Cookie"), "BoxcallSessions=")

	o.Users.Add("aaaaaaaaaaaaaaaa", "alice")
	o.Devices.Add("bbbbbbbbbbbbbbbb", "cam1")

	w = do(r, http.MethodGet, "/api/users", nil, nil)
	assert.JSONEq(t, `[{"id":"aaaaaaaaaaaaaaaa","name":"alice"}]`, w.Body.String())
	w = do(r, http.MethodGet, "/api/devices", nil, nil)
	assert.JSONEq(t, `[{"id":"bbbbbbbbbbbbbbbb","name":"cam1"}]`, w.Body.String())
	w = do(r, http.MethodGet, "/api/rooms", nil, nil)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = do(r, http.MethodGet, "/api/ice", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "stun:stun.example.com:3478")
}

func TestMetricsEndpoint(t *testing.T) {
	r, o := newRouter(t, false)
	o.Metrics.Event(core.EventIdentify)

	w := do(r, http.MethodGet, "/metrics", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `boxcall_events_total{event="identify"} 1`)
}

func TestCORS(t *testing.T) {
	r, _ := newRouter(t, false)

	w := do(r, http.MethodOptions, "/api/users", nil, map[string]string{"Origin": "https://app.example.com"})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	w = do(r, http.MethodGet, "/api/users", nil, map[string]string{"Origin": "https://evil.org"})
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestAccountRoutesDisabledWithoutStore(t *testing.T) {
	r, _ := newRouter(t, false)
	w := do(r, http.MethodPost, "/reg", map[string]string{"username": "a"}, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func register(t *testing.T, r http.Handler, name string) string {
	t.Helper()
	w := do(r, http.MethodPost, "/reg", map[string]string{
		"username": name, "email": name + "@example.com", "password": "pw-" + name,
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	tok := decode[tokenResponse](t, w)
	assert.True(t, tok.Success)
	assert.Equal(t, "Token generated", tok.Message)
	assert.Equal(t, "Bearer", tok.TokenType)
	require.NotEmpty(t, tok.AccessToken)
	return tok.AccessToken
}

func TestRegisterAndAuthorize(t *testing.T) {
	r, _ := newRouter(t, true)
	register(t, r, "alice")

	w := do(r, http.MethodPost, "/reg", map[string]string{
		"username": "alice", "email": "other@example.com", "password": "x",
	}, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(r, http.MethodPost, "/reg", map[string]string{
		"username": "bob", "email": "not-an-email", "password": "x",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, failure{Message: "Missing credentials"}, decode[failure](t, w))

	w = do(r, http.MethodPost, "/auth", map[string]string{"username": "alice", "password": "pw-alice"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decode[tokenResponse](t, w).AccessToken)

	w = do(r, http.MethodPost, "/auth", map[string]string{"username": "alice", "password": "nope"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, failure{Message: "Wrong credentials"}, decode[failure](t, w))

	w = do(r, http.MethodPost, "/auth", map[string]string{"username": "ghost", "password": "nope"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodPost, "/auth", map[string]string{"username": "alice"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTopicFlow(t *testing.T) {
	r, _ := newRouter(t, true)
	alice := map[string]string{"Authorization": "Bearer " + register(t, r, "alice")}
	bob := map[string]string{"Authorization": "Bearer " + register(t, r, "bob")}

	w := do(r, http.MethodPost, "/api/topics", map[string]string{"title": "t"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, failure{Message: "Invalid token"}, decode[failure](t, w))

	w = do(r, http.MethodPost, "/api/topics", map[string]string{"title": "t"},
		map[string]string{"Authorization": "Bearer garbage"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/api/topics", map[string]string{
		"channel": "cams", "title": "Pan drift", "content": "cam1 drifts left",
	}, alice)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[topicResponse](t, w)
	require.NotEmpty(t, created.ID)

	w = do(r, http.MethodGet, "/api/topics/"+created.ID, nil, bob)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[topicResponse](t, w)
	assert.Equal(t, "Topic queried", got.Message)
	assert.Equal(t, "alice", got.Author.Name)
	assert.Equal(t, "alice@example.com", got.Author.Email)
	assert.Equal(t, topicChannel{CID: "cams", Title: "unset", Tags: []string{}}, got.Channel)
	assert.Equal(t, "Pan drift", got.Title)
	assert.Equal(t, created.CreatedAt, got.CreatedAt)

	w = do(r, http.MethodDelete, "/api/topics/"+created.ID, nil, bob)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = do(r, http.MethodDelete, "/api/topics/"+created.ID, nil, alice)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodGet, "/api/topics/"+created.ID, nil, alice)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, failure{Message: "Topic not found"}, decode[failure](t, w))
}

func TestSignalEndpoint(t *testing.T) {
	r, o := newRouter(t, false)
	srv := httptest.NewServer(r)
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws/signal"

	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"https://evil.org"}})
	require.Error(t, err)
	if resp != nil {
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	}

	ws, _, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"https://example.com"}})
	require.NoError(t, err)
	defer ws.Close()

	frame, err := core.EncodeEvent(core.EventIdentify, 0, "alice")
	require.NoError(t, err)
	require.NoError(t, ws.WriteMessage(websocket.TextMessage, frame))
	require.Eventually(t, func() bool { return o.Users.Len() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, ws.Close())
	require.Eventually(t, func() bool { return o.Registry.Len() == 0 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, o.Users.Len())
}
