package handlers

import (
	"context"
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/agencysite/backend/internal/domain/providers"
)

// Request budgets per client IP
const (
	quoteSubmitLimit   = 10
	contactSubmitLimit = 5
	submitWindow       = time.Hour
)

// Throttle is a fixed-window request counter keyed by client IP. Counters
// live in the cache provider; without one, or when the cache fails, an
// in-process limiter takes over. Forwarding headers are only believed when
// the connection comes from a trusted proxy.
type Throttle struct {
	cache   providers.CacheProvider
	local   *localRateLimiter
	prefix  string
	limit   int
	window  time.Duration
	proxies []netip.Prefix
}

// NewThrottle creates a throttle allowing limit requests per window
func NewThrottle(cache providers.CacheProvider, prefix string, limit int, window time.Duration) *Throttle {
	return &Throttle{
		cache:  cache,
		local:  newLocalRateLimiter(),
		prefix: prefix,
		limit:  limit,
		window: window,
	}
}

// NewQuoteThrottle limits quote submissions, shared by the wizard and the
// one-shot endpoint
func NewQuoteThrottle(cache providers.CacheProvider) *Throttle {
	return NewThrottle(cache, "quote:rate:", quoteSubmitLimit, submitWindow)
}

// NewContactThrottle limits contact form submissions
func NewContactThrottle(cache providers.CacheProvider) *Throttle {
	return NewThrottle(cache, "contact:rate:", contactSubmitLimit, submitWindow)
}

// TrustProxies sets the networks whose X-Forwarded-For and X-Real-IP
// headers name the client
func (t *Throttle) TrustProxies(proxies []netip.Prefix) *Throttle {
	t.proxies = proxies
	return t
}

// Allow reports whether the caller behind r may proceed and, if not, how
// long it should wait
func (t *Throttle) Allow(r *http.Request) (bool, time.Duration) {
	if t == nil {
		return true, 0
	}
	key := t.prefix + clientIP(r, t.proxies)
	if t.cache == nil {
		return t.local.allow(key, t.limit, t.window)
	}
	return t.allowCached(r.Context(), key)
}

func (t *Throttle) allowCached(ctx context.Context, key string) (bool, time.Duration) {
	n, err := t.cache.Increment(ctx, key, int(t.window.Seconds()))
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("rate limit counter unavailable, using local limiter")
		return t.local.allow(key, t.limit, t.window)
	}
	if n > int64(t.limit) {
		return false, t.window
	}
	return true, 0
}

// reject answers a throttled request
func (t *Throttle) reject(w http.ResponseWriter, retryAfter time.Duration) {
	w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
	respondWithError(w, http.StatusTooManyRequests, "rate limit exceeded")
}

type localRateLimiter struct {
	mu        sync.Mutex
	states    map[string]*localRateState
	lastSweep time.Time
	now       func() time.Time
}

type localRateState struct {
	count   int
	resetAt time.Time
}

func newLocalRateLimiter() *localRateLimiter {
	return &localRateLimiter{
		states: make(map[string]*localRateState),
		now:    time.Now,
	}
}

func (l *localRateLimiter) allow(key string, limit int, window time.Duration) (bool, time.Duration) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= window {
		l.sweep(now)
	}

	state, ok := l.states[key]
	if !ok || now.After(state.resetAt) {
		state = &localRateState{count: 0, resetAt: now.Add(window)}
		l.states[key] = state
	}

	if state.count >= limit {
		retryAfter := state.resetAt.Sub(now)
		if retryAfter < 0 {
			retryAfter = window
		}
		return false, retryAfter
	}

	state.count++
	return true, 0
}

// sweep drops windows that already ended. Callers hold l.mu.
func (l *localRateLimiter) sweep(now time.Time) {
	for key, state := range l.states {
		if now.After(state.resetAt) {
			delete(l.states, key)
		}
	}
	l.lastSweep = now
}

// clientIP names the caller of r. The peer address is used unless it belongs
// to a trusted proxy, in which case X-Forwarded-For is walked from the right
// past trusted hops, then X-Real-IP is consulted.
func clientIP(r *http.Request, trusted []netip.Prefix) string {
	remote := r.RemoteAddr
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		remote = host
	}
	if !isTrusted(remote, trusted) {
		return remote
	}

	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		hops := strings.Split(forwarded, ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			if _, err := netip.ParseAddr(hop); err != nil {
				break
			}
			if i == 0 || !isTrusted(hop, trusted) {
				return hop
			}
		}
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		if _, err := netip.ParseAddr(realIP); err == nil {
			return realIP
		}
	}
	return remote
}

func isTrusted(ip string, trusted []netip.Prefix) bool {
	if len(trusted) == 0 {
		return false
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, prefix := range trusted {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}
