// Package http exposes the forecast and session APIs plus the admin
// endpoints (health, readiness, metrics).
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/surfcast/internal/domain"
	"github.com/couchcryptid/surfcast/internal/forecast"
	"github.com/couchcryptid/surfcast/internal/store"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// ForecastProvider serves normalized charts and cross-beach summaries.
type ForecastProvider interface {
	ChartsForBeach(ctx context.Context, beachID int64, since time.Time) ([]domain.Chart, error)
	Summary(ctx context.Context, beachIDs []int64, since time.Time) (domain.Summary, error)
	Directory(ctx context.Context) ([]domain.Beach, error)
}

// SessionStore is the persistence surface the session handlers need.
type SessionStore interface {
	Save(ctx context.Context, session *domain.Session) error
	Update(ctx context.Context, session *domain.Session) error
	Delete(ctx context.Context, id string) error
	FetchByID(ctx context.Context, id string) (*domain.Session, error)
	FetchAll(ctx context.Context) ([]domain.Session, error)
	FetchByBeach(ctx context.Context, beachID int64) ([]domain.Session, error)
}

// Server exposes the JSON API plus health, readiness, and metrics routes.
type Server struct {
	httpServer *http.Server
	forecasts  ForecastProvider
	sessions   SessionStore
	logger     *slog.Logger
}

// NewServer creates the HTTP server and registers all routes.
func NewServer(addr string, forecasts ForecastProvider, sessions SessionStore, ready ReadinessChecker, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		forecasts: forecasts,
		sessions:  sessions,
		logger:    logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /v1/beaches", s.handleBeaches)
	mux.HandleFunc("GET /v1/charts/{beachID}", s.handleCharts)
	mux.HandleFunc("GET /v1/summary", s.handleSummary)
	mux.HandleFunc("GET /v1/sessions", s.handleListSessions)
	mux.HandleFunc("POST /v1/sessions", s.handleCreateSession)
	mux.HandleFunc("GET /v1/sessions/{id}", s.handleGetSession)
	mux.HandleFunc("PUT /v1/sessions/{id}", s.handleUpdateSession)
	mux.HandleFunc("DELETE /v1/sessions/{id}", s.handleDeleteSession)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func (s *Server) handleBeaches(w http.ResponseWriter, r *http.Request) {
	beaches, err := s.forecasts.Directory(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"beaches": beaches})
}

func (s *Server) handleCharts(w http.ResponseWriter, r *http.Request) {
	beachID, err := strconv.ParseInt(r.PathValue("beachID"), 10, 64)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid beach id")
		return
	}
	since, ok := parseSince(w, r)
	if !ok {
		return
	}

	charts, err := s.forecasts.ChartsForBeach(r.Context(), beachID, since)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"charts": charts})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("beaches")
	if raw == "" {
		writeErrorMessage(w, http.StatusBadRequest, "beaches query parameter is required")
		return
	}
	var beachIDs []int64
	for _, part := range strings.Split(raw, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			writeErrorMessage(w, http.StatusBadRequest, fmt.Sprintf("invalid beach id %q", part))
			return
		}
		beachIDs = append(beachIDs, id)
	}
	since, ok := parseSince(w, r)
	if !ok {
		return
	}

	summary, err := s.forecasts.Summary(r.Context(), beachIDs, since)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var (
		sessions []domain.Session
		err      error
	)
	if beach := q.Get("beach_id"); beach != "" {
		beachID, parseErr := strconv.ParseInt(beach, 10, 64)
		if parseErr != nil {
			writeErrorMessage(w, http.StatusBadRequest, "invalid beach_id")
			return
		}
		sessions, err = s.sessions.FetchByBeach(r.Context(), beachID)
	} else {
		sessions, err = s.sessions.FetchAll(r.Context())
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	filter, ok := parseFilter(w, q.Get("filter"), q.Get("min_rating"))
	if !ok {
		return
	}
	order, ok := parseSort(w, q.Get("sort"))
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"sessions": domain.TransformSessions(sessions, filter, order),
	})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var session domain.Session
	if err := json.NewDecoder(r.Body).Decode(&session); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid session payload: "+err.Error())
		return
	}
	session.ID = ""
	if err := session.Validate(); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.sessions.Save(r.Context(), &session); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.sessions.FetchByID(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleUpdateSession(w http.ResponseWriter, r *http.Request) {
	var session domain.Session
	if err := json.NewDecoder(r.Body).Decode(&session); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid session payload: "+err.Error())
		return
	}
	session.ID = r.PathValue("id")
	if err := session.Validate(); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.sessions.Update(r.Context(), &session); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// parseSince reads the optional since query parameter. A missing parameter
// means no cutoff.
func parseSince(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	raw := r.URL.Query().Get("since")
	if raw == "" {
		return time.Time{}, true
	}
	since, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "since must be RFC3339")
		return time.Time{}, false
	}
	return since, true
}

func parseFilter(w http.ResponseWriter, kind, minRating string) (domain.Filter, bool) {
	switch kind {
	case "", "all":
		return domain.Filter{Kind: domain.FilterAll}, true
	case "pinned":
		return domain.Filter{Kind: domain.FilterPinned}, true
	case "min_rating":
		rating, err := strconv.Atoi(minRating)
		if err != nil {
			writeErrorMessage(w, http.StatusBadRequest, "min_rating must be an integer")
			return domain.Filter{}, false
		}
		return domain.Filter{Kind: domain.FilterMinRating, MinRating: rating}, true
	default:
		writeErrorMessage(w, http.StatusBadRequest, fmt.Sprintf("unknown filter %q", kind))
		return domain.Filter{}, false
	}
}

func parseSort(w http.ResponseWriter, order string) (domain.SortOrder, bool) {
	switch order {
	case "", "latest":
		return domain.SortLatest, true
	case "oldest":
		return domain.SortOldest, true
	case "high_rating":
		return domain.SortHighRating, true
	case "low_rating":
		return domain.SortLowRating, true
	default:
		writeErrorMessage(w, http.StatusBadRequest, fmt.Sprintf("unknown sort %q", order))
		return 0, false
	}
}

// writeError maps domain and store errors onto HTTP statuses. Remote fetch
// failures surface as 502 since the forecast backend is upstream of us.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var status int
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, forecast.ErrBeachNotFound):
		status = http.StatusNotFound
	case errors.Is(err, store.ErrInvalidHandle):
		status = http.StatusBadRequest
	case strings.HasPrefix(r.URL.Path, "/v1/charts"),
		strings.HasPrefix(r.URL.Path, "/v1/summary"),
		strings.HasPrefix(r.URL.Path, "/v1/beaches"):
		status = http.StatusBadGateway
	default:
		status = http.StatusInternalServerError
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "status", status, "error", err)
	}
	writeErrorMessage(w, status, err.Error())
}

func writeErrorMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response write
}
