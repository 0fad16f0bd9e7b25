package security

import (
	"context"
	"sync"
	"time"
)

// Category classifies a firewall verdict. The decision engine returns this
// structured form; nothing downstream inspects stringified reasons.
type Category int

const (
	CategoryAllow Category = iota
	CategoryBot
	CategoryRateLimit
	CategoryShield
	CategoryDenied
)

// String returns the wire tag for a category
func (c Category) String() string {
	switch c {
	case CategoryAllow:
		return "allow"
	case CategoryBot:
		return "bot"
	case CategoryRateLimit:
		return "rate_limit"
	case CategoryShield:
		return "shield"
	default:
		return "denied"
	}
}

// Verdict is a decision engine's answer for one request
type Verdict struct {
	Category   Category
	Subtype    string // e.g. "XSS" for shield verdicts
	RetryAfter int    // seconds until the rate-limit window resets
}

// RequestInfo carries the request attributes a decision engine evaluates
type RequestInfo struct {
	IP        string
	Method    string
	Path      string
	UserAgent string
}

// Engine is the decision-engine boundary. A hosted firewall service plugs in
// behind this interface; LocalEngine is the in-process default.
type Engine interface {
	Evaluate(ctx context.Context, req RequestInfo) (Verdict, error)
}

// LocalEngine rate limits per client IP over a fixed window. It keeps the
// pipeline functional without a hosted decision engine.
type LocalEngine struct {
	limit  int
	window time.Duration

	mu        sync.Mutex
	items     map[string]*windowEntry
	lastSweep time.Time
}

type windowEntry struct {
	windowStart time.Time
	count       int
}

// NewLocalEngine creates a fixed-window limiter allowing limit requests per
// window per IP
func NewLocalEngine(limit int, window time.Duration) *LocalEngine {
	return &LocalEngine{
		limit:  limit,
		window: window,
		items:  make(map[string]*windowEntry),
	}
}

// Evaluate applies the rate limit for the request's IP. Requests beyond the
// per-window capacity get a RateLimit verdict carrying the seconds left in
// the current window.
func (e *LocalEngine) Evaluate(_ context.Context, req RequestInfo) (Verdict, error) {
	key := req.IP
	if key == "" {
		key = "unknown"
	}

	now := time.Now().UTC()
	e.mu.Lock()
	defer e.mu.Unlock()

	e.sweep(now)

	entry := e.items[key]
	if entry == nil || now.Sub(entry.windowStart) > e.window {
		entry = &windowEntry{windowStart: now}
		e.items[key] = entry
	}

	if entry.count >= e.limit {
		remaining := int(e.window.Seconds() - now.Sub(entry.windowStart).Seconds())
		if remaining < 1 {
			remaining = 1
		}
		return Verdict{Category: CategoryRateLimit, RetryAfter: remaining}, nil
	}

	entry.count++
	return Verdict{Category: CategoryAllow}, nil
}

// sweep drops entries whose window has expired so the map does not grow one
// entry per source IP for the process lifetime. Runs at most once per window.
// Caller holds the mutex.
func (e *LocalEngine) sweep(now time.Time) {
	if now.Sub(e.lastSweep) < e.window {
		return
	}
	e.lastSweep = now
	for key, entry := range e.items {
		if now.Sub(entry.windowStart) > e.window {
			delete(e.items, key)
		}
	}
}
