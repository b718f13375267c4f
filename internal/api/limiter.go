package api

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"shareit/internal/config"
	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// rateLimiter throttles callers by actor id, falling back to the remote host
// for anonymous requests. The token bucket is local to the process; the
// optional window limiter is shared between replicas.
type rateLimiter struct {
	limiters sync.Map
	cfg      config.APIRateLimitConfig
	window   domain.RateLimiter
	logger   *zerolog.Logger
}

func newRateLimiter(cfg config.APIRateLimitConfig, window domain.RateLimiter, logger *zerolog.Logger) *rateLimiter {
	return &rateLimiter{
		cfg:    cfg,
		window: window,
		logger: logger,
	}
}

func (l *rateLimiter) getLimiter(key string) *rate.Limiter {
	if v, ok := l.limiters.Load(key); ok {
		if lim, ok := v.(*rate.Limiter); ok {
			return lim
		}
	}

	burst := l.cfg.Burst
	if burst <= 0 {
		burst = 5
	}

	lim := rate.NewLimiter(rate.Limit(l.cfg.RPS), burst)
	actual, loaded := l.limiters.LoadOrStore(key, lim)
	if loaded {
		if actualLim, ok := actual.(*rate.Limiter); ok {
			return actualLim
		}
	}
	return lim
}

// allow reports whether the request identified by key may proceed. Errors of
// the shared limiter are logged and let the request through.
func (l *rateLimiter) allow(ctx context.Context, key string) bool {
	if l.cfg.RPS > 0 && !l.getLimiter(key).Allow() {
		return false
	}

	if l.window == nil || l.cfg.WindowLimit <= 0 {
		return true
	}

	window := time.Duration(l.cfg.WindowSeconds) * time.Second
	ok, err := l.window.CheckRateLimit(ctx, key, l.cfg.WindowLimit, window)
	if err != nil {
		l.logger.Warn().Err(err).Str("key", key).Msg("window rate limit check failed")
		return true
	}
	return ok
}

func (l *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.allow(r.Context(), clientKey(r)) {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded", "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientKey(r *http.Request) string {
	if actor := strings.TrimSpace(r.Header.Get(models.UserIDHeader)); actor != "" {
		return "user:" + actor
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return "ip:" + host
	}
	return "unknown"
}
