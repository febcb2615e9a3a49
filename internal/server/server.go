// Package server exposes gocas tools over HTTP for agent frameworks.
//
//	POST /tool   execute a tool call
//	GET  /schema tool schema for agent registration
//	GET  /health liveness check
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	gocas "github.com/njchilds90/gocas"
	"github.com/njchilds90/gocas/internal/config"
	"github.com/njchilds90/gocas/internal/logging"
)

// RequestIDHeader carries the per-request ID in responses.
const RequestIDHeader = "X-Request-ID"

// Server serves gocas tool calls.
type Server struct {
	cfg   config.ServerConfig
	tools gocas.Toolbox
	log   *zap.Logger
	cache *Cache
	mux   *http.ServeMux
	now   func() time.Time
}

// New returns a server for cfg.Server whose parser honours
// cfg.Engine.MaxDepth. A nil logger discards output.
func New(cfg *config.Config, log *zap.Logger) *Server {
	s := &Server{
		cfg:   cfg.Server,
		tools: gocas.Toolbox{MaxDepth: cfg.Engine.MaxDepth},
		log:   logging.OrNop(log),
		cache: NewCache(cfg.Server.CacheSize),
		mux:   http.NewServeMux(),
		now:   time.Now,
	}
	s.mux.HandleFunc("/tool", s.handleTool)
	s.mux.HandleFunc("/schema", s.handleSchema)
	s.mux.HandleFunc("/health", s.handleHealth)
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.mux }

// Cache returns the response cache.
func (s *Server) Cache() *Cache { return s.cache }

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       config.Timeout(s.cfg.ReadTimeout, 15*time.Second),
		WriteTimeout:      config.Timeout(s.cfg.WriteTimeout, 15*time.Second),
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("gocas MCP server listening", zap.String("addr", s.cfg.Addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.Timeout(s.cfg.ShutdownTimeout, 5*time.Second))
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) handleTool(w http.ResponseWriter, r *http.Request) {
	id := uuid.NewString()
	w.Header().Set(RequestIDHeader, id)
	log := s.log.With(zap.String("request_id", id))
	start := s.now()

	defer func() {
		if rec := recover(); rec != nil {
			log.Error("panic in /tool", zap.Any("panic", rec), zap.ByteString("stack", debug.Stack()))
			http.Error(w, "internal server error", http.StatusInternalServerError)
		}
	}()

	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req gocas.ToolRequest
	if err := dec.Decode(&req); err != nil {
		log.Debug("bad request", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if dec.More() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: trailing data"})
		return
	}

	resp, cached := s.call(req)
	log.Info("tool call",
		zap.String("tool", req.Tool),
		zap.Bool("cached", cached),
		zap.Bool("failed", resp.Error != ""),
		zap.Duration("elapsed", s.now().Sub(start)),
	)
	writeJSON(w, http.StatusOK, resp)
}

// call runs req through the cache. Only successful responses are stored.
func (s *Server) call(req gocas.ToolRequest) (gocas.ToolResponse, bool) {
	key, ok := s.key(req)
	if ok {
		if resp, hit := s.cache.get(key); hit {
			return resp, true
		}
	}
	resp := s.tools.Handle(req)
	if ok && resp.Error == "" {
		s.cache.put(key, resp)
	}
	return resp, false
}

// key builds the cache key for req, or reports false when the request has
// no usable expression.
func (s *Server) key(req gocas.ToolRequest) (cacheKey, bool) {
	e, err := s.tools.ExprParam(req.Params, "expr")
	if err != nil {
		return cacheKey{}, false
	}
	rest := make(map[string]interface{}, len(req.Params))
	for k, v := range req.Params {
		if k != "expr" {
			rest[k] = v
		}
	}
	b, err := json.Marshal(rest)
	if err != nil {
		return cacheKey{}, false
	}
	return cacheKey{tool: req.Tool, fp: gocas.Fingerprint(e), rest: string(b)}, true
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, gocas.MCPToolSpec())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	hits, misses := s.cache.Stats()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"time":   s.now().UTC().Format(time.RFC3339),
		"cache": map[string]interface{}{
			"entries": s.cache.Len(),
			"hits":    hits,
			"misses":  misses,
		},
	})
}
