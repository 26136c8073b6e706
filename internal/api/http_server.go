package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"bstn/internal/config"
	"bstn/internal/domain"
	"bstn/internal/export"
	"bstn/internal/metrics"
	"bstn/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const headerRequestID = "X-Request-ID"

// ProviderStore looks up provider profiles for exports.
type ProviderStore interface {
	GetProvider(ctx context.Context, id int64) (*models.Provider, error)
}

// Pinger reports store readiness.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Services bundles what the HTTP and gRPC handlers call into.
type Services struct {
	Bookings     domain.BookingService
	Availability domain.AvailabilityService
	Listings     domain.ListingService
	Providers    ProviderStore
	Exporter     *export.Exporter
	Store        Pinger
}

// HTTPServer exposes the listing and booking API.
type HTTPServer struct {
	cfg    *config.APIConfig
	svc    Services
	server *http.Server
	auth   *HTTPAuth
	logger zerolog.Logger
}

func NewHTTPServer(cfg *config.APIConfig, svc Services, logger *zerolog.Logger) *HTTPServer {
	base := zerolog.Nop()
	if logger != nil {
		base = logger.With().Str("component", "http").Logger()
	}
	if svc.Exporter == nil {
		svc.Exporter = export.NewExporter("", &base)
	}

	srv := &HTTPServer{cfg: cfg, svc: svc, logger: base}
	srv.auth = NewHTTPAuth(cfg, &srv.logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", srv.handleHealthz)
	mux.HandleFunc("GET /readyz", srv.handleReadyz)

	mux.HandleFunc("GET /listings/rooms/available/{$}", srv.handleAvailableRooms)
	mux.HandleFunc("GET /listings/search/{$}", srv.handleSearchStays)
	mux.HandleFunc("GET /listings/{stay}/{$}", srv.handleListStays)
	mux.HandleFunc("POST /listings/{stay}/{$}", srv.handleCreateStay)
	mux.HandleFunc("GET /listings/{stay}/{id}/rooms/{$}", srv.handleListRooms)
	mux.HandleFunc("POST /listings/{stay}/{id}/rooms/{$}", srv.handleCreateRoom)

	mux.HandleFunc("GET /bookings/rooms/{$}", srv.handleListBookings)
	mux.HandleFunc("POST /bookings/rooms/room-booking/{$}", srv.handleCreateBooking)
	mux.HandleFunc("GET /bookings/rooms/my/{$}", srv.handleMyBookings)
	mux.HandleFunc("GET /bookings/rooms/provider/{id}/{$}", srv.handleProviderBookings)
	mux.HandleFunc("GET /bookings/rooms/provider/{id}/export/{$}", srv.handleProviderExport)
	mux.HandleFunc("GET /bookings/rooms/{id}/{$}", srv.handleGetBooking)
	mux.HandleFunc("POST /bookings/rooms/{id}/cancel", srv.transition(domain.BookingService.Cancel))
	mux.HandleFunc("POST /bookings/rooms/{id}/confirm", srv.transition(domain.BookingService.Confirm))
	mux.HandleFunc("POST /bookings/rooms/{id}/reject", srv.transition(domain.BookingService.Reject))

	handler := requestIDMiddleware(srv.loggingMiddleware(mux, srv.auth.Wrap(mux)))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	return srv
}

// Handler returns the fully wrapped router.
func (s *HTTPServer) Handler() http.Handler { return s.server.Handler }

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return errors.New("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if s.svc.Store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.svc.Store.PingContext(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("readiness check failed")
			writeError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// writeServiceError maps a service failure onto an HTTP status.
func (s *HTTPServer) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case domain.IsBadRequest(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case domain.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error())
	case domain.IsForbidden(err):
		writeError(w, http.StatusForbidden, err.Error())
	case domain.IsConflict(err):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, domain.ErrNoProviderLinked):
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("room without provider")
		writeError(w, http.StatusInternalServerError, "room has no linked provider, contact support")
	default:
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(headerRequestID))
		if id == "" {
			id = uuid.NewString()
			r.Header.Set(headerRequestID, id)
		}
		w.Header().Set(headerRequestID, id)
		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs every request and records it under the mux pattern
// that served it.
func (s *HTTPServer) loggingMiddleware(mux *http.ServeMux, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		dur := time.Since(start)

		_, endpoint := mux.Handler(r)
		if endpoint == "" {
			endpoint = "unmatched"
		}
		metrics.ObserveHTTP(endpoint, recorder.status, dur)

		s.logger.Info().
			Str("request_id", r.Header.Get(headerRequestID)).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", dur).
			Msg("http request")
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
