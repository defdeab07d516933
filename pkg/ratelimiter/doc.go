// Package ratelimiter implements a token bucket limiter with in-memory and
// Redis backed stores, plus HTTP middleware that rejects callers once their
// bucket is empty.
//
// The account API throttles the credential endpoints (signup, login and the
// OAuth handshake) per client address:
//
//	bucket, _ := ratelimiter.NewBucket(ratelimiter.NewMemoryStore(), cfg)
//	r.With(ratelimiter.Middleware(bucket)).Post("/login", login)
package ratelimiter
