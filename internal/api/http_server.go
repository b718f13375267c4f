package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"shareit/internal/config"
	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// Services bundles the operations the HTTP API exposes.
type Services struct {
	Bookings domain.BookingService
	Items    domain.ItemService
	Users    domain.UserService
	Requests domain.RequestService
}

// ReadinessCheck reports whether the server's dependencies can take traffic.
type ReadinessCheck func(ctx context.Context) error

// HTTPServer exposes the sharing API over JSON.
type HTTPServer struct {
	cfg      config.APIConfig
	services Services
	ready    ReadinessCheck
	limiter  *rateLimiter
	logger   *zerolog.Logger
	server   *http.Server
}

// NewHTTPServer builds the router. window may be nil, in which case only the
// local token bucket throttles callers.
func NewHTTPServer(cfg config.APIConfig, services Services, window domain.RateLimiter, ready ReadinessCheck, logger *zerolog.Logger) *HTTPServer {
	srv := &HTTPServer{
		cfg:      cfg,
		services: services,
		ready:    ready,
		limiter:  newRateLimiter(cfg.RateLimit, window, logger),
		logger:   logger,
	}

	router := mux.NewRouter()
	router.Use(metricsMiddleware)

	router.HandleFunc("/healthz", srv.handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/readyz", srv.handleReady).Methods(http.MethodGet)

	api := router.NewRoute().Subrouter()
	api.Use(srv.limiter.middleware)

	api.HandleFunc("/bookings", srv.handleCreateBooking).Methods(http.MethodPost)
	api.HandleFunc("/bookings", srv.handleBookerBookings).Methods(http.MethodGet)
	api.HandleFunc("/bookings/owner", srv.handleOwnerBookings).Methods(http.MethodGet)
	api.HandleFunc("/bookings/{id:[0-9]+}", srv.handleGetBooking).Methods(http.MethodGet)
	api.HandleFunc("/bookings/{id:[0-9]+}", srv.handleReviewBooking).Methods(http.MethodPatch)

	api.HandleFunc("/items", srv.handleOwnerItems).Methods(http.MethodGet)
	api.HandleFunc("/items", srv.handleCreateItem).Methods(http.MethodPost)
	api.HandleFunc("/items/search", srv.handleSearchItems).Methods(http.MethodGet)
	api.HandleFunc("/items/{id:[0-9]+}", srv.handleGetItem).Methods(http.MethodGet)
	api.HandleFunc("/items/{id:[0-9]+}", srv.handleUpdateItem).Methods(http.MethodPatch)
	api.HandleFunc("/items/{id:[0-9]+}", srv.handleDeleteItem).Methods(http.MethodDelete)
	api.HandleFunc("/items/{id:[0-9]+}/comment", srv.handleCreateComment).Methods(http.MethodPost)

	api.HandleFunc("/users", srv.handleListUsers).Methods(http.MethodGet)
	api.HandleFunc("/users", srv.handleCreateUser).Methods(http.MethodPost)
	api.HandleFunc("/users/{id:[0-9]+}", srv.handleGetUser).Methods(http.MethodGet)
	api.HandleFunc("/users/{id:[0-9]+}", srv.handleUpdateUser).Methods(http.MethodPatch)
	api.HandleFunc("/users/{id:[0-9]+}", srv.handleDeleteUser).Methods(http.MethodDelete)

	api.HandleFunc("/requests", srv.handleCreateRequest).Methods(http.MethodPost)
	api.HandleFunc("/requests", srv.handleOwnRequests).Methods(http.MethodGet)
	api.HandleFunc("/requests/all", srv.handleAllRequests).Methods(http.MethodGet)
	api.HandleFunc("/requests/{id:[0-9]+}", srv.handleGetRequest).Methods(http.MethodGet)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found", "no such route")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", "method not allowed")
	})

	var handler http.Handler = router
	handler = recoverMiddleware(logger)(handler)
	handler = loggingMiddleware(logger)(handler)
	handler = requestIDMiddleware(handler)

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: seconds(cfg.HTTP.ReadHeaderTimeout, 5),
		WriteTimeout:      seconds(cfg.HTTP.WriteTimeout, 15),
	}

	return srv
}

func seconds(v, fallback int) time.Duration {
	if v <= 0 {
		v = fallback
	}
	return time.Duration(v) * time.Second
}

// Handler returns the fully wrapped handler.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
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

func (s *HTTPServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		if err := s.ready(r.Context()); err != nil {
			s.logger.Warn().Err(err).Msg("readiness check failed")
			writeError(w, http.StatusServiceUnavailable, "not ready", err.Error())
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

var errMissingActor = fmt.Errorf("%w: header %s is required", domain.ErrValidation, models.UserIDHeader)

func actorID(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(r.Header.Get(models.UserIDHeader))
	if raw == "" {
		return 0, errMissingActor
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: header %s must be a positive integer", domain.ErrValidation, models.UserIDHeader)
	}
	return id, nil
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid id", domain.ErrValidation)
	}
	return id, nil
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %v", domain.ErrValidation, err)
	}
	return nil
}
