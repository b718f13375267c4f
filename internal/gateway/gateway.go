package gateway

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	"shareit/internal/api"
	"shareit/internal/config"

	"github.com/gorilla/mux"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const maxBodyBytes = 1 << 20

// Gateway rejects malformed requests and forwards the rest to the API server.
type Gateway struct {
	target *url.URL
	proxy  *httputil.ReverseProxy
	now    func() time.Time
	logger *zerolog.Logger
	server *http.Server
}

func New(cfg config.GatewayConfig, logger *zerolog.Logger) (*Gateway, error) {
	target, err := url.Parse(cfg.ServerURL)
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}

	g := &Gateway{
		target: target,
		now:    time.Now,
		logger: logger,
	}
	g.proxy = httputil.NewSingleHostReverseProxy(target)
	g.proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		logger.Error().Err(err).Str("path", r.URL.Path).Msg("upstream request failed")
		writeError(w, http.StatusBadGateway, "bad gateway", "server unavailable")
	}

	g.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           g.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}
	return g, nil
}

func (g *Gateway) routes() http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/bookings", g.checkState).Methods(http.MethodGet)
	router.HandleFunc("/bookings/owner", g.checkState).Methods(http.MethodGet)
	router.HandleFunc("/bookings", validated(g, func(b api.BookingRequest) error {
		return validateBooking(b, g.now())
	})).Methods(http.MethodPost)

	router.HandleFunc("/users", validated(g, validateNewUser)).Methods(http.MethodPost)
	router.HandleFunc("/users/{id}", validated(g, validateUserPatch)).Methods(http.MethodPatch)
	router.HandleFunc("/items", validated(g, validateNewItem)).Methods(http.MethodPost)
	router.HandleFunc("/items/{id}/comment", validated(g, validateComment)).Methods(http.MethodPost)
	router.HandleFunc("/requests", validated(g, validateItemRequest)).Methods(http.MethodPost)

	router.PathPrefix("/").Handler(g.proxy)

	return g.logRequests(router)
}

// Handler returns the gateway's routing handler.
func (g *Gateway) Handler() http.Handler {
	return g.server.Handler
}

func (g *Gateway) Start() error {
	g.logger.Info().Str("addr", g.server.Addr).Str("target", g.target.String()).Msg("gateway listening")
	if err := g.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (g *Gateway) Shutdown(ctx context.Context) error {
	return g.server.Shutdown(ctx)
}

func (g *Gateway) checkState(w http.ResponseWriter, r *http.Request) {
	if err := validateState(r.URL.Query().Get("state")); err != nil {
		g.reject(w, r, err)
		return
	}
	g.proxy.ServeHTTP(w, r)
}

// validated decodes the body into T, runs check and forwards the original
// bytes upstream when it passes.
func validated[T any](g *Gateway, check func(T) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				g.logger.Info().Int64("limit", tooLarge.Limit).Str("path", r.URL.Path).Msg("request body too large")
				writeError(w, http.StatusRequestEntityTooLarge, "request body too large",
					fmt.Sprintf("body exceeds %d bytes", tooLarge.Limit))
				return
			}
			g.reject(w, r, invalid("read body: %v", err))
			return
		}
		_ = r.Body.Close()

		var body T
		if err := json.Unmarshal(raw, &body); err != nil {
			g.reject(w, r, invalid("malformed JSON body: %v", err))
			return
		}
		if err := check(body); err != nil {
			g.reject(w, r, err)
			return
		}

		r.Body = io.NopCloser(bytes.NewReader(raw))
		r.ContentLength = int64(len(raw))
		g.proxy.ServeHTTP(w, r)
	}
}

func (g *Gateway) reject(w http.ResponseWriter, r *http.Request, err error) {
	g.logger.Info().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request rejected")
	writeError(w, http.StatusBadRequest, "validation failed", err.Error())
}

func (g *Gateway) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		g.logger.Debug().Str("method", r.Method).Str("path", r.URL.Path).Dur("dur", time.Since(start)).Msg("gateway request")
	})
}

func writeError(w http.ResponseWriter, statusCode int, message, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message, "description": description})
}
