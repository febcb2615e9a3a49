package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	gocas "github.com/njchilds90/gocas"
	"github.com/njchilds90/gocas/internal/config"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return New(config.DefaultConfig(), zaptest.NewLogger(t))
}

func postTool(t *testing.T, s *Server, body string) (*httptest.ResponseRecorder, gocas.ToolResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/tool", strings.NewReader(body))
	s.Handler().ServeHTTP(rec, req)
	var resp gocas.ToolResponse
	if rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

func TestTool_Diff(t *testing.T) {
	s := newTestServer(t)
	rec, resp := postTool(t, s, `{"tool":"diff","params":{"expr":"x^2","var":"x"}}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, resp.Error)
	assert.Equal(t, "2*x", resp.String)
	_, err := uuid.Parse(rec.Header().Get(RequestIDHeader))
	assert.NoError(t, err, "request id should be a UUID")
}

func TestTool_ToolErrorIsReturnedInBody(t *testing.T) {
	s := newTestServer(t)
	rec, resp := postTool(t, s, `{"tool":"simplify","params":{"expr":"x/0"}}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, resp.Error, "division by zero")
	assert.Equal(t, 0, s.Cache().Len(), "failures are not cached")
}

func TestTool_BadRequests(t *testing.T) {
	s := newTestServer(t)
	tests := []struct {
		name string
		body string
	}{
		{"not json", `{`},
		{"unknown field", `{"tool":"diff","extra":1}`},
		{"trailing data", `{"tool":"diff"} {}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := postTool(t, s, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestTool_BodyTooLarge(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server.MaxBodyBytes = 32
	s := New(cfg, nil)
	rec, _ := postTool(t, s, `{"tool":"parse","params":{"expr":"`+strings.Repeat("x+", 64)+`x"}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTool_HonoursEngineMaxDepth(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Engine.MaxDepth = 3
	s := New(cfg, zaptest.NewLogger(t))

	_, ok := postTool(t, s, `{"tool":"parse","params":{"expr":"x+y"}}`)
	assert.Empty(t, ok.Error)

	_, deep := postTool(t, s, `{"tool":"parse","params":{"expr":"((x+y)*z)^2"}}`)
	assert.Contains(t, deep.Error, "too deep")

	obj := `{"type":"neg","arg":{"type":"neg","arg":{"type":"neg","arg":{"type":"name","name":"x"}}}}`
	_, deepObj := postTool(t, s, `{"tool":"parse","params":{"expr":`+obj+`}}`)
	assert.Contains(t, deepObj.Error, "too deep")
	assert.Equal(t, 1, s.Cache().Len(), "only the successful call is cached")
}

func TestTool_MethodNotAllowed(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tool", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestTool_CacheSharedBetweenTextAndObject(t *testing.T) {
	s := newTestServer(t)
	_, first := postTool(t, s, `{"tool":"integrate","params":{"expr":"x+1","var":"x"}}`)
	obj := `{"type":"op","op":"+","left":{"type":"name","name":"x"},"right":{"type":"num","value":"1"}}`
	_, second := postTool(t, s, `{"tool":"integrate","params":{"expr":`+obj+`,"var":"x"}}`)

	assert.Equal(t, first.String, second.String)
	assert.Equal(t, 1, s.Cache().Len())
	hits, misses := s.Cache().Stats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(1), misses)

	// a different variable is a different entry
	postTool(t, s, `{"tool":"integrate","params":{"expr":"x+1","var":"y"}}`)
	assert.Equal(t, 2, s.Cache().Len())
}

func TestSchema(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/schema", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	assert.Contains(t, m, "tools")
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	s.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	assert.Equal(t, "ok", m["status"])
	assert.Equal(t, "2024-01-02T03:04:05Z", m["time"])
}

func TestListenAndServe_Shutdown(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server.Addr = "127.0.0.1:0"
	s := New(cfg, zaptest.NewLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
