// Package httpapi serves the search engine over HTTP with chi.
//
// The palette front end calls GET /search as the user types. The remaining
// routes are the hooks a host CMS calls on save and delete, plus reindex,
// stats, settings, health and prometheus metrics. The acting account is read
// from the X-Smartbar-Actor header; a missing header searches as an anonymous
// visitor, which the default boundary rejects.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/jpl-au/smartbar/internal/content"
	"github.com/jpl-au/smartbar/internal/log"
	"github.com/jpl-au/smartbar/internal/logger"
	"github.com/jpl-au/smartbar/internal/metrics"
	"github.com/jpl-au/smartbar/internal/search"
	"github.com/jpl-au/smartbar/internal/service"
)

// ActorHeader names the acting account id.
const ActorHeader = "X-Smartbar-Actor"

// Error codes.
const (
	codeBadRequest   = "bad_request"
	codeForbidden    = "forbidden"
	codeNotFound     = "not_found"
	codeUnauthorized = "unauthorized"
	codeInternal     = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SearchResponse is the body of GET /search.
type SearchResponse struct {
	Query string       `json:"query"`
	Hits  []search.Hit `json:"hits"`
}

// Server handles API requests.
type Server struct {
	svc     service.Service
	log     *zap.Logger
	apiKeys []string
}

// Option configures a Server.
type Option func(*Server)

// WithAPIKeys requires one of keys as a Bearer token on every route but
// /health and /metrics.
func WithAPIKeys(keys []string) Option {
	return func(s *Server) { s.apiKeys = keys }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) { s.log = l }
}

// New creates a Server over svc.
func New(svc service.Service, opts ...Option) *Server {
	s := &Server{svc: svc, log: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(recoverer)
	r.Use(requestID(s.log))
	r.Use(accessLog)
	r.Use(bearerAuth(s.apiKeys))
	r.Use(metrics.Middleware())

	r.Get("/health", s.health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Get("/search", s.search)
	r.Get("/settings", s.settings)
	r.Get("/stats", s.stats)
	r.Post("/reindex", s.reindex)
	r.Route("/entities/{id}", func(r chi.Router) {
		r.Put("/index", s.index)
		r.Post("/save", s.save)
		r.Delete("/index", s.remove)
	})
	return r
}

// ShutdownTimeout bounds how long in-flight requests get after ctx ends.
const ShutdownTimeout = 10 * time.Second

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("starting HTTP server", zap.String("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("received shutdown signal")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.log.Error("error during shutdown", zap.Error(err))
		return err
	}
	s.log.Info("server stopped gracefully")
	return nil
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	text := q.Get("q")

	var types []content.SearchType
	if raw := q.Get("types"); raw != "" {
		types = content.ParseTypes(strings.Split(raw, ","))
	}
	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, codeBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	hits, err := s.svc.Search(r.Context(), actor, text, types, limit)
	log.Event("http:search", "search").Actor(actor).Detail("query", text).Count(len(hits)).Write(err)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if hits == nil {
		hits = []search.Hit{}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Query: text, Hits: hits})
}

func (s *Server) settings(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Settings())
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Stats(r.Context()))
}

func (s *Server) reindex(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.ReindexAll(r.Context(), nil)
	log.Event("http:reindex", "reindex").Count(res.Count).Detail("failed", res.Failed).Write(err)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	id, ok := entityID(w, r)
	if !ok {
		return
	}
	indexed, err := s.svc.IndexEntity(r.Context(), id)
	log.Event("http:index", "index").Target(strconv.FormatInt(id, 10)).Write(err)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"indexed": indexed})
}

// save accepts an optional SaveFlags body.
func (s *Server) save(w http.ResponseWriter, r *http.Request) {
	id, ok := entityID(w, r)
	if !ok {
		return
	}
	var flags service.SaveFlags
	if err := json.NewDecoder(r.Body).Decode(&flags); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
		return
	}
	indexed, err := s.svc.OnSave(r.Context(), id, flags)
	log.Event("http:save", "index").Target(strconv.FormatInt(id, 10)).
		Detail("autosave", flags.Autosave).Detail("revision", flags.Revision).Write(err)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"indexed": indexed})
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	id, ok := entityID(w, r)
	if !ok {
		return
	}
	kind := content.Kind(r.URL.Query().Get("kind"))
	if kind != "" && !kind.Valid() {
		writeError(w, http.StatusBadRequest, codeBadRequest, "unsupported kind "+string(kind))
		return
	}
	removed, err := s.svc.RemoveFromIndex(r.Context(), id, kind)
	log.Event("http:remove", "remove").Target(strconv.FormatInt(id, 10)).Write(err)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"removed": removed})
}

// fail maps service errors to statuses.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, search.ErrForbidden):
		writeError(w, http.StatusForbidden, codeForbidden, "not allowed to search")
	case errors.Is(err, content.ErrNotFound):
		writeError(w, http.StatusNotFound, codeNotFound, err.Error())
	default:
		logger.FromContext(r.Context()).Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
	}
}

func actorID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.Header.Get(ActorHeader)
	if raw == "" {
		return 0, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 {
		writeError(w, http.StatusBadRequest, codeBadRequest, ActorHeader+" must be a non-negative integer")
		return 0, false
	}
	return id, true
}

func entityID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, codeBadRequest, "entity id must be a positive integer")
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: msg})
}
