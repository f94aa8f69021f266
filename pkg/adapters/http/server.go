package http

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/remnawizard"
	"github.com/aretw0/remnawizard/internal/logging"
	"github.com/aretw0/remnawizard/pkg/domain"
	"github.com/aretw0/remnawizard/pkg/ports"
)

// maxBodySize bounds a decoded envelope. Free text is bounded again by the wizard.
const maxBodySize = 64 << 10

// Pinger reports backend health. The Redis store implements it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server exposes the wizard over JSON.
type Server struct {
	Handler ports.Handler
	Streams *StreamManager

	gatherer prometheus.Gatherer
	pinger   Pinger
	apiToken string
	watchers func(domain.UserID) bool
	logger   *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithMetrics serves g on GET /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithHealthCheck makes GET /healthz fail when p does.
func WithHealthCheck(p Pinger) Option {
	return func(s *Server) {
		s.pinger = p
	}
}

// WithAPIToken requires "Authorization: Bearer <token>" on the /v1 routes.
// The wizard trusts the user_id of every envelope, so the API must not be
// reachable by operators' clients directly without it.
func WithAPIToken(token string) Option {
	return func(s *Server) {
		s.apiToken = token
	}
}

// WithEventAccess limits the event streams to the users allowed reports true
// for. Without it any API client may watch any user.
func WithEventAccess(allowed func(domain.UserID) bool) Option {
	return func(s *Server) {
		s.watchers = allowed
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewHandler creates the HTTP handler for h. A nil h serves only the
// operational endpoints.
func NewHandler(h ports.Handler, opts ...Option) http.Handler {
	s := &Server{
		Handler: h,
		Streams: NewStreamManager(),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/healthz", s.GetHealth)
	r.Get("/info", s.GetInfo)
	if h != nil {
		r.Route("/v1", func(r chi.Router) {
			r.Use(s.authorize)
			r.Post("/actions", s.PostAction)
			r.Get("/events/{userID}", s.SubscribeEvents)
		})
	}
	if s.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiToken != "" {
			got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || subtle.ConstantTimeCompare([]byte(got), []byte(s.apiToken)) != 1 {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// PostAction handles POST /v1/actions.
func (s *Server) PostAction(w http.ResponseWriter, r *http.Request) {
	var env domain.Envelope
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&env); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		s.logger.Warn("PostAction: invalid request body", "err", err)
		return
	}
	if env.UserID == 0 {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	reply, err := s.Handler.Handle(r.Context(), env)
	if err != nil {
		writeError(w, statusFor(err), "failed to handle action")
		s.logger.Error("PostAction failed", "err", err, "user_id", env.UserID,
			"request_id", middleware.GetReqID(r.Context()))
		return
	}

	if !reply.Denied {
		if payload, err := json.Marshal(reply); err == nil {
			s.Streams.Broadcast(env.UserID, string(payload))
		}
	}

	status := http.StatusOK
	if reply.Denied {
		status = http.StatusForbidden
	}
	writeJSON(w, status, reply)
}

func statusFor(err error) int {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// GetHealth handles GET /healthz.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	if s.pinger != nil {
		if err := s.pinger.Ping(r.Context()); err != nil {
			s.logger.Warn("health check failed", "err", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":     "remnawizard-http",
		"version": strings.TrimSpace(remnawizard.Version),
	})
}

// SubscribeEvents handles GET /v1/events/{userID} (SSE). Every reply sent
// to that user through PostAction is mirrored to the stream.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	userID := domain.UserID(id)
	if s.watchers != nil && !s.watchers(userID) {
		s.logger.Warn("SSE: subscription denied", "user_id", userID)
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe(userID)
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()
	s.logger.Info("SSE: subscribed", "user_id", userID)

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE: client disconnected", "user_id", userID)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: reply\ndata: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
