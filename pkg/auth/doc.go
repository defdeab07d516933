// Package auth holds the account model and the authentication core of the
// service: password hashing, access-token issuance with revocation, and the
// federated sign-in bridge that reconciles OAuth identities with local
// accounts.
//
// Storage is abstracted by AccountStorage and StateStore; the svc/storage
// package provides MongoDB, Redis and in-memory implementations.
//
// A typical wiring:
//
//	hasher := auth.NewPasswordHasher(
//		auth.WithBcryptCost(hasherCfg.Cost),
//		auth.WithHashTimeout(hasherCfg.Timeout),
//	)
//	tokens, err := auth.NewTokenService(tokenCfg, revocationStore)
//	bridge := auth.NewFederationBridge(
//		auth.NewGoogleAdapter(googleCfg),
//		accounts, states, tokens,
//		auth.WithExchangeTimeout(oauthCfg.ExchangeTimeout),
//		auth.WithLinkPolicy(auth.LinkPolicyStrict),
//	)
//
// Errors are sentinel values declared in errors.go; transport layers map them
// to status codes with errors.Is.
package auth
