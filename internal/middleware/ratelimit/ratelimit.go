// Package ratelimit limits mutating requests per client over a fixed
// one-minute window. Client windows live in a bounded LRU so an address
// flood cannot grow memory without limit.
package ratelimit

import (
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"daybook/internal/cache"
	"daybook/internal/log"
)

const (
	window      = time.Minute
	idleTimeout = 10 * time.Minute
)

// Config holds rate limiter configuration
type Config struct {
	RequestsPerMinute int
	MaxClients        int
	CleanupInterval   time.Duration
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		RequestsPerMinute: 60,
		MaxClients:        10000,
		CleanupInterval:   5 * time.Minute,
	}
}

type clientWindow struct {
	start    time.Time
	requests int
}

// Limiter counts requests per client IP.
type Limiter struct {
	clients           *cache.LRUCache[clientWindow]
	manager           *cache.Manager
	requestsPerMinute int
	now               func() time.Time
	logger            *log.Logger
	hits              atomic.Int64
}

// NewLimiter creates a limiter and starts the background sweep of idle
// clients. Call Stop to end it.
func NewLimiter(config Config, logger *log.Logger) *Limiter {
	def := DefaultConfig()
	if config.RequestsPerMinute <= 0 {
		config.RequestsPerMinute = def.RequestsPerMinute
	}
	if config.MaxClients <= 0 {
		config.MaxClients = def.MaxClients
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = def.CleanupInterval
	}
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentRateLimit)

	rl := &Limiter{
		clients:           cache.NewLRUCache[clientWindow](config.MaxClients, idleTimeout),
		manager:           cache.NewManager(logger),
		requestsPerMinute: config.RequestsPerMinute,
		now:               time.Now,
		logger:            logger,
	}
	rl.manager.Register(rl.clients)
	rl.manager.StartCleanup(config.CleanupInterval)
	return rl
}

// Allow records one request from clientIP and reports whether it is within
// the limit.
func (rl *Limiter) Allow(clientIP string) bool {
	now := rl.now()
	w := rl.clients.Update(clientIP, func(old clientWindow, found bool) clientWindow {
		if !found || now.Sub(old.start) >= window {
			return clientWindow{start: now, requests: 1}
		}
		old.requests++
		return old
	})
	if w.requests > rl.requestsPerMinute {
		rl.hits.Add(1)
		return false
	}
	return true
}

// ActiveClients returns the number of currently tracked clients
func (rl *Limiter) ActiveClients() int {
	return rl.clients.Size()
}

// Hits returns how many requests were rejected.
func (rl *Limiter) Hits() int64 {
	return rl.hits.Load()
}

// Stop ends the background sweep.
func (rl *Limiter) Stop() {
	rl.manager.Stop()
}

// Middleware limits POST, PUT, PATCH and DELETE requests. Reads are never
// limited.
func (rl *Limiter) Middleware(extractIP func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
			default:
				next.ServeHTTP(w, r)
				return
			}

			clientIP := extractIP(r)
			if !rl.Allow(clientIP) {
				rl.logger.WarnContext(r.Context(), "Rate limit exceeded",
					log.FieldClientIP, clientIP,
					log.FieldMethod, r.Method,
					log.FieldPath, r.URL.Path)
				w.Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))
				http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
