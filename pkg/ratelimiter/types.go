package ratelimiter

import "time"

// Result describes the bucket after a request.
type Result struct {
	Limit     int       // bucket capacity
	Remaining int       // negative when the request was denied
	ResetAt   time.Time // next refill
}

// Allowed reports whether the request fit in the bucket.
func (r *Result) Allowed() bool {
	return r.Remaining >= 0
}

// RetryAfter returns how long to wait before retrying, zero when allowed.
func (r *Result) RetryAfter() time.Duration {
	if r.Allowed() {
		return 0
	}
	return max(time.Until(r.ResetAt), 0)
}

// Config defines the token bucket. Capacity zero disables limiting.
type Config struct {
	Capacity       int           `env:"AUTH_RATE_LIMIT_BURST" envDefault:"10"`
	RefillRate     int           `env:"AUTH_RATE_LIMIT_REFILL" envDefault:"1"`
	RefillInterval time.Duration `env:"AUTH_RATE_LIMIT_INTERVAL" envDefault:"6s"`
}

// Enabled reports whether a positive capacity was configured.
func (c Config) Enabled() bool { return c.Capacity > 0 }
