// Package ratelimit throttles API clients per fixed one-minute window.
//
// Counters live in process memory, so each API instance enforces its own
// limits. Running several replicas multiplies the effective budget.
package ratelimit

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/httprate"
)

// Preset is a named request budget.
type Preset struct {
	Name     string
	Requests int
	Window   time.Duration
}

// Presets
var (
	// Strict guards sensitive operations such as deletes and seeding.
	Strict = Preset{Name: "strict", Requests: 10, Window: time.Minute}
	// Standard guards ordinary mutations.
	Standard = Preset{Name: "standard", Requests: 30, Window: time.Minute}
	// Relaxed guards reads.
	Relaxed = Preset{Name: "relaxed", Requests: 100, Window: time.Minute}
)

// DefaultClient keys requests that carry no forwarding headers.
const DefaultClient = "default-client"

// ClientKey identifies the caller: the first X-Forwarded-For entry, then
// X-Real-IP, then DefaultClient.
func ClientKey(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	return DefaultClient
}

// Limiter builds throttling middleware. A disabled limiter passes every request.
type Limiter struct {
	enabled bool
	clock   func() time.Time
}

// New creates a limiter
func New(enabled bool) *Limiter {
	return &Limiter{enabled: enabled, clock: time.Now}
}

// Middleware throttles by p. Every call owns its own counters, so routes
// sharing a preset still count separately when mounted through separate calls.
func (l *Limiter) Middleware(p Preset) func(http.Handler) http.Handler {
	if !l.enabled {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(p.Requests, p.Window,
		httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
			return ClientKey(r), nil
		}),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			l.reject(w, p)
		}),
	)
}

type limitResponse struct {
	Error      string `json:"error"`
	RetryAfter int    `json:"retry_after"`
}

func (l *Limiter) reject(w http.ResponseWriter, p Preset) {
	retry := retryAfter(l.clock(), p.Window)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", strconv.Itoa(retry))
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(limitResponse{Error: "Too many requests", RetryAfter: retry})
}

// retryAfter returns the whole seconds left in the window containing now.
func retryAfter(now time.Time, window time.Duration) int {
	now = now.UTC()
	left := now.Truncate(window).Add(window).Sub(now)
	return max(1, int(math.Ceil(left.Seconds())))
}
