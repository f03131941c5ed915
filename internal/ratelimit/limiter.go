package ratelimit

import (
	"context"
	"time"

	"clientflow/internal/logger"
)

// Result is the outcome of one rate-limit check.
type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// Store tracks request timestamps per identifier over a trailing window.
// Check purges aged-out entries, tests the count against max, and records
// the request only when it is allowed.
type Store interface {
	Check(ctx context.Context, identifier string, window time.Duration, max int) (Result, error)
}

// Preset is a named window/limit pair.
type Preset struct {
	Window      time.Duration
	MaxRequests int
}

// Presets. The streaming generation endpoint uses Strict given its cost;
// CRUD reads use Standard.
var (
	Strict   = Preset{Window: time.Minute, MaxRequests: 10}
	Standard = Preset{Window: time.Minute, MaxRequests: 60}
	Relaxed  = Preset{Window: time.Minute, MaxRequests: 120}
)

// Limiter gates requests against a Store. It never returns an error:
// exceeding the limit is a normal outcome carried in Result, and a failing
// store fails open so a limiter outage cannot take down the API.
type Limiter struct {
	store Store
}

// NewLimiter creates a limiter over the given store.
func NewLimiter(store Store) *Limiter {
	return &Limiter{store: store}
}

// Check runs one check-and-record against the store.
func (l *Limiter) Check(ctx context.Context, identifier string, preset Preset) Result {
	result, err := l.store.Check(ctx, identifier, preset.Window, preset.MaxRequests)
	if err != nil {
		logger.Log.WithError(err).WithField("identifier", identifier).Warn("Rate limit store error, failing open")
		return Result{Allowed: true, Remaining: preset.MaxRequests - 1, ResetAt: time.Now().Add(preset.Window)}
	}
	return result
}
