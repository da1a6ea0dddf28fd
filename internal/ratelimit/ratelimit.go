// Package ratelimit provides per-action, per-caller in-memory rate
// limiting for the service's outer surfaces. Limits are token buckets;
// state is process-local and lost on restart, which is acceptable for
// abuse protection.
package ratelimit

import (
	"log/slog"
	"math"
	"sync"

	"golang.org/x/time/rate"
)

// Action identifies a rate-limited operation class.
type Action string

const (
	ActionCapture Action = "capture"
	ActionRecall  Action = "recall"
	ActionGitHub  Action = "github"
	ActionMCP     Action = "mcp"
	ActionLLM     Action = "llm"
)

// policy is points per window, expressed as a refill rate plus burst.
type policy struct {
	limit rate.Limit
	burst int
}

// Per-action budgets: capture 20/min, recall 100/min, GitHub 60/h,
// MCP 1000/min, LLM 100/min.
var policies = map[Action]policy{
	ActionCapture: {limit: rate.Limit(20.0 / 60.0), burst: 20},
	ActionRecall:  {limit: rate.Limit(100.0 / 60.0), burst: 100},
	ActionGitHub:  {limit: rate.Limit(60.0 / 3600.0), burst: 60},
	ActionMCP:     {limit: rate.Limit(1000.0 / 60.0), burst: 1000},
	ActionLLM:     {limit: rate.Limit(100.0 / 60.0), burst: 100},
}

// Result reports one rate-limit check.
type Result struct {
	Allowed      bool
	Remaining    int
	ResetSeconds int
}

// Limiter tracks token buckets per (action, key).
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
	logger  *slog.Logger
}

// New creates a Limiter.
func New(logger *slog.Logger) *Limiter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Limiter{
		buckets: make(map[string]*rate.Limiter),
		logger:  logger,
	}
}

// Check consumes one token for (action, key) and reports the outcome.
// Unknown actions fall back to the recall budget.
func (l *Limiter) Check(action Action, key string) Result {
	p, ok := policies[action]
	if !ok {
		p = policies[ActionRecall]
	}

	l.mu.Lock()
	id := string(action) + "|" + key
	bucket, ok := l.buckets[id]
	if !ok {
		bucket = rate.NewLimiter(p.limit, p.burst)
		l.buckets[id] = bucket
	}
	l.mu.Unlock()

	reset := secondsPerToken(p.limit)
	if !bucket.Allow() {
		l.logger.Warn("rate limit exceeded", "limiterId", action, "key", key)
		return Result{Allowed: false, Remaining: 0, ResetSeconds: reset}
	}

	remaining := int(bucket.Tokens())
	if remaining < 0 {
		remaining = 0
	}
	l.logger.Debug("rate limit ok", "limiterId", action, "key", key, "remaining", remaining)
	return Result{Allowed: true, Remaining: remaining, ResetSeconds: reset}
}

// secondsPerToken is how long a drained bucket waits for one token.
func secondsPerToken(limit rate.Limit) int {
	if limit <= 0 {
		return 0
	}
	return int(math.Ceil(1.0 / float64(limit)))
}
