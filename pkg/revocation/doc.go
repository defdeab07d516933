// Package revocation keeps the set of access tokens that were invalidated
// before their natural expiry (logout, forced sign-out).
//
// Tokens are never stored verbatim: entries are keyed by the hex encoded
// SHA-256 digest of the token string. Every entry carries the instant the
// token would have expired anyway; after that moment the entry is useless
// and both stores drop it (periodic sweep in memory, key TTL in Redis).
//
// Revoke is idempotent. Once Revoke has returned, every subsequent
// IsRevoked call for the same token reports true until the entry expires.
package revocation
