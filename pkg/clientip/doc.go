// Package clientip resolves the caller's IP address for rate limiting and
// request logs.
//
// When the service runs behind a reverse proxy the forwarded headers are
// trusted in this order: CF-Connecting-IP, X-Forwarded-For (first valid
// entry), X-Real-IP. Without a proxy, disable header trust so callers cannot
// spoof their address:
//
//	r.Use(clientip.Middleware(cfg.TrustProxyHeaders))
//	...
//	ip := clientip.FromContext(r.Context())
package clientip
