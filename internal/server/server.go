// Package server exposes the analytics operations as an HTTP JSON API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/homeflux/analytics/internal/cache"
	"github.com/homeflux/analytics/internal/database"
	"github.com/homeflux/analytics/internal/models"
	"github.com/homeflux/analytics/internal/service"
)

// AnalyticsService is the surface the HTTP layer needs from the service.
type AnalyticsService interface {
	UsageReport(ctx context.Context, ownerID int64) (service.UsageReport, error)
	DeviceHistory(ctx context.Context, deviceID int64) (service.DeviceHistory, error)
	DeviceForecast(ctx context.Context, deviceID int64) (service.DeviceForecast, error)
	RecommendScenes(ctx context.Context, ownerID int64) ([]models.SceneRecommendation, error)
}

// Config holds the HTTP layer's tunables.
type Config struct {
	RateLimit      float64 // requests per second
	RateLimitBurst int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		RateLimit:      5.0,
		RateLimitBurst: 10,
	}
}

// Server routes HTTP requests to the analytics service.
type Server struct {
	svc    AnalyticsService
	logger *logrus.Logger
	store  cache.ResponseCache
	cfg    Config
}

// New builds a Server. store may be nil to disable response caching.
func New(svc AnalyticsService, logger *logrus.Logger, store cache.ResponseCache, cfg Config) *Server {
	return &Server{svc: svc, logger: logger, store: store, cfg: cfg}
}

// Router assembles the route table with the middleware chain: request ID
// first, rate limiting early, then logging, metrics, and caching last so
// errors are never cached.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	limiter := rate.NewLimiter(rate.Limit(s.cfg.RateLimit), s.cfg.RateLimitBurst)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(
		requestIDMiddleware,
		rateLimitMiddleware(limiter),
		loggingMiddleware(s.logger),
		metricsMiddleware,
		cachingMiddleware(s.store),
	)
	api.HandleFunc("/owners/{ownerID}/usage-report", s.handleUsageReport).Methods(http.MethodGet)
	api.HandleFunc("/owners/{ownerID}/scenes", s.handleScenes).Methods(http.MethodGet)
	api.HandleFunc("/devices/{deviceID}/history", s.handleHistory).Methods(http.MethodGet)
	api.HandleFunc("/devices/{deviceID}/forecast", s.handleForecast).Methods(http.MethodGet)

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	return r
}

func (s *Server) handleUsageReport(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := pathID(w, r, "ownerID")
	if !ok {
		return
	}
	report, err := s.svc.UsageReport(r.Context(), ownerID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := pathID(w, r, "ownerID")
	if !ok {
		return
	}
	recs, err := s.svc.RecommendScenes(r.Context(), ownerID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	deviceID, ok := pathID(w, r, "deviceID")
	if !ok {
		return
	}
	history, err := s.svc.DeviceHistory(r.Context(), deviceID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	deviceID, ok := pathID(w, r, "deviceID")
	if !ok {
		return
	}
	fc, err := s.svc.DeviceForecast(r.Context(), deviceID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, fc)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, database.ErrDeviceNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	s.logger.WithError(err).WithField("path", r.URL.Path).Error("request failed")
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil {
		http.Error(w, "invalid "+name, http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
