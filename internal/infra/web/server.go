package web

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"vaccine-tracker-bot/internal/domain/model"
	"vaccine-tracker-bot/internal/infra/metrics"
	"vaccine-tracker-bot/internal/region"
)

type SnapshotSource interface {
	Snapshot(ctx context.Context, regionCode string) (model.Snapshot, error)
}

type SubscriptionLister interface {
	List() []model.Subscription
}

// Server exposes health, metrics, read-only snapshots and a small admin API.
type Server struct {
	reports  SnapshotSource
	registry SubscriptionLister
	regions  *region.Resolver
	auth     *AuthManager
	apiKey   string
	log      *zerolog.Logger

	srv *http.Server
}

func NewServer(reports SnapshotSource, registry SubscriptionLister, regions *region.Resolver, apiKey string, auth *AuthManager, logger *zerolog.Logger) *Server {
	compLog := logger.With().Str("component", "AdminHTTP").Logger()
	return &Server{
		reports:  reports,
		registry: registry,
		regions:  regions,
		auth:     auth,
		apiKey:   apiKey,
		log:      &compLog,
	}
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/health", handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/snapshot", s.handleSnapshot)
		r.Post("/session", s.handleLogin)
		r.Delete("/session", s.handleLogout)

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)
			r.Get("/subscriptions", s.handleSubscriptions)
		})
	})
	return r
}

func (s *Server) Start(port int) error {
	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.log.Info().Int("port", port).Msg("admin http server listening")
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

// authMiddleware accepts a session minted by POST /api/v1/session.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey == "" || s.auth == nil {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		if _, err := s.auth.ParseFromRequest(r); err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) validKey(key string) bool {
	return s.apiKey != "" && subtle.ConstantTimeCompare([]byte(key), []byte(s.apiKey)) == 1
}

func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.IncAdminRequest(route, strconv.Itoa(status))
		s.log.Debug().
			Str("route", route).
			Int("status", status).
			Dur("took", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request served")
	})
}
