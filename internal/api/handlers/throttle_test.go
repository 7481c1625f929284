package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http/httptest"
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/agencysite/backend/internal/adapters/cache"
)

type failingCounter struct {
	*cache.MemoryAdapter
}

func (failingCounter) Increment(ctx context.Context, key string, expirationSeconds int) (int64, error) {
	return 0, errors.New("redis: connection refused")
}

func TestThrottle_CountsPerClientIP(t *testing.T) {
	throttle := NewThrottle(cache.NewMemoryAdapter(), "test:rate:", 2, time.Minute)

	first := httptest.NewRequest("POST", "/", nil)
	first.RemoteAddr = "10.1.1.1:5000"
	other := httptest.NewRequest("POST", "/", nil)
	other.RemoteAddr = "10.1.1.2:5000"

	for i := 0; i < 2; i++ {
		allowed, _ := throttle.Allow(first)
		assert.True(t, allowed)
	}
	allowed, retryAfter := throttle.Allow(first)
	assert.False(t, allowed)
	assert.Equal(t, time.Minute, retryAfter)

	allowed, _ = throttle.Allow(other)
	assert.True(t, allowed)
}

func TestThrottle_FallsBackToLocalLimiter(t *testing.T) {
	throttle := NewThrottle(failingCounter{cache.NewMemoryAdapter()}, "test:rate:", 1, time.Minute)
	req := httptest.NewRequest("POST", "/", nil)

	allowed, _ := throttle.Allow(req)
	assert.True(t, allowed)
	allowed, _ = throttle.Allow(req)
	assert.False(t, allowed)
}

func TestThrottle_NilAllowsEverything(t *testing.T) {
	var throttle *Throttle
	allowed, _ := throttle.Allow(httptest.NewRequest("POST", "/", nil))
	assert.True(t, allowed)
}

func TestClientIP_IgnoresForwardingHeadersFromUntrustedPeers(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	assert.Equal(t, "192.0.2.1", clientIP(req, nil))

	req.Header.Set("X-Real-IP", "198.51.100.7")
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "192.0.2.1", clientIP(req, nil))
	assert.Equal(t, "192.0.2.1", clientIP(req, []netip.Prefix{netip.MustParsePrefix("10.0.0.0/8")}))
}

func TestClientIP_WalksForwardedForBehindTrustedProxies(t *testing.T) {
	trusted := []netip.Prefix{netip.MustParsePrefix("10.0.0.0/8")}
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "10.0.0.2:443"

	req.Header.Set("X-Forwarded-For", "1.1.1.1, 203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", clientIP(req, trusted), "spoofed leftmost entry is skipped")

	req.Header.Set("X-Forwarded-For", "10.0.0.5, 10.0.0.1")
	assert.Equal(t, "10.0.0.5", clientIP(req, trusted))

	req.Header.Del("X-Forwarded-For")
	req.Header.Set("X-Real-IP", "198.51.100.7")
	assert.Equal(t, "198.51.100.7", clientIP(req, trusted))

	req.Header.Set("X-Real-IP", "not-an-ip")
	assert.Equal(t, "10.0.0.2", clientIP(req, trusted))
}

func TestThrottle_RotatingForwardedForDoesNotEscapeLimit(t *testing.T) {
	throttle := NewThrottle(cache.NewMemoryAdapter(), "test:rate:", 2, time.Minute)

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest("POST", "/", nil)
		req.RemoteAddr = "192.0.2.1:5000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i))
		allowed, _ := throttle.Allow(req)
		assert.Equal(t, i < 2, allowed, "request %d", i)
	}
}

func TestThrottle_TrustedProxyForwardsClientAddress(t *testing.T) {
	throttle := NewThrottle(cache.NewMemoryAdapter(), "test:rate:", 1, time.Minute).
		TrustProxies([]netip.Prefix{netip.MustParsePrefix("10.0.0.0/8")})

	for _, client := range []string{"203.0.113.1", "203.0.113.2"} {
		req := httptest.NewRequest("POST", "/", nil)
		req.RemoteAddr = "10.0.0.2:5000"
		req.Header.Set("X-Forwarded-For", client)
		allowed, _ := throttle.Allow(req)
		assert.True(t, allowed, client)
	}
}

func TestLocalRateLimiter_DropsExpiredWindows(t *testing.T) {
	limiter := newLocalRateLimiter()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	for i := 0; i < 100; i++ {
		allowed, _ := limiter.allow(fmt.Sprintf("test:rate:203.0.113.%d", i), 1, time.Minute)
		require.True(t, allowed)
	}
	assert.Len(t, limiter.states, 100)

	now = now.Add(2 * time.Minute)
	allowed, _ := limiter.allow("test:rate:198.51.100.1", 1, time.Minute)
	assert.True(t, allowed)
	assert.Len(t, limiter.states, 1)
}

func TestLocalRateLimiter_RetryAfterCountsDownTheWindow(t *testing.T) {
	limiter := newLocalRateLimiter()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	allowed, _ := limiter.allow("k", 1, time.Minute)
	require.True(t, allowed)

	now = now.Add(20 * time.Second)
	allowed, retryAfter := limiter.allow("k", 1, time.Minute)
	assert.False(t, allowed)
	assert.Equal(t, 40*time.Second, retryAfter)
}
