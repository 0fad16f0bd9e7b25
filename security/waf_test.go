package security

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalEngineAllowsUnderCapacity(t *testing.T) {
	engine := NewLocalEngine(5, 10*time.Second)
	req := RequestInfo{IP: "203.0.113.10"}

	for i := 0; i < 5; i++ {
		verdict, err := engine.Evaluate(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, CategoryAllow, verdict.Category)
	}
}

func TestLocalEngineRateLimitsBeyondCapacity(t *testing.T) {
	// 60 requests from one IP against capacity 50 per 10s: requests 51-60
	// are limited and carry the remaining window in RetryAfter.
	engine := NewLocalEngine(50, 10*time.Second)
	req := RequestInfo{IP: "203.0.113.20"}

	var limited int
	for i := 0; i < 60; i++ {
		verdict, err := engine.Evaluate(context.Background(), req)
		require.NoError(t, err)
		if verdict.Category == CategoryRateLimit {
			limited++
			assert.GreaterOrEqual(t, verdict.RetryAfter, 1)
			assert.LessOrEqual(t, verdict.RetryAfter, 10)
		}
	}
	assert.Equal(t, 10, limited)
}

func TestLocalEngineIsolatesClients(t *testing.T) {
	engine := NewLocalEngine(1, 10*time.Second)

	verdict, err := engine.Evaluate(context.Background(), RequestInfo{IP: "203.0.113.30"})
	require.NoError(t, err)
	assert.Equal(t, CategoryAllow, verdict.Category)

	verdict, err = engine.Evaluate(context.Background(), RequestInfo{IP: "203.0.113.31"})
	require.NoError(t, err)
	assert.Equal(t, CategoryAllow, verdict.Category)

	verdict, err = engine.Evaluate(context.Background(), RequestInfo{IP: "203.0.113.30"})
	require.NoError(t, err)
	assert.Equal(t, CategoryRateLimit, verdict.Category)
}

func TestLocalEngineWindowReset(t *testing.T) {
	engine := NewLocalEngine(1, 50*time.Millisecond)
	req := RequestInfo{IP: "203.0.113.40"}

	verdict, _ := engine.Evaluate(context.Background(), req)
	assert.Equal(t, CategoryAllow, verdict.Category)
	verdict, _ = engine.Evaluate(context.Background(), req)
	assert.Equal(t, CategoryRateLimit, verdict.Category)

	time.Sleep(60 * time.Millisecond)
	verdict, _ = engine.Evaluate(context.Background(), req)
	assert.Equal(t, CategoryAllow, verdict.Category)
}

func TestLocalEnginePrunesExpiredEntries(t *testing.T) {
	// A scan across many source IPs must not grow the map forever; expired
	// windows are swept even when those IPs never return.
	engine := NewLocalEngine(5, 50*time.Millisecond)

	for _, ip := range []string{"203.0.113.50", "203.0.113.51", "203.0.113.52"} {
		_, err := engine.Evaluate(context.Background(), RequestInfo{IP: ip})
		require.NoError(t, err)
	}

	engine.mu.Lock()
	tracked := len(engine.items)
	engine.mu.Unlock()
	assert.Equal(t, 3, tracked)

	time.Sleep(120 * time.Millisecond)

	_, err := engine.Evaluate(context.Background(), RequestInfo{IP: "203.0.113.60"})
	require.NoError(t, err)

	engine.mu.Lock()
	tracked = len(engine.items)
	engine.mu.Unlock()
	assert.Equal(t, 1, tracked, "expired windows swept, only the live entry remains")
}

func TestCategoryString(t *testing.T) {
	assert.Equal(t, "allow", CategoryAllow.String())
	assert.Equal(t, "bot", CategoryBot.String())
	assert.Equal(t, "rate_limit", CategoryRateLimit.String())
	assert.Equal(t, "shield", CategoryShield.String())
	assert.Equal(t, "denied", CategoryDenied.String())
}
