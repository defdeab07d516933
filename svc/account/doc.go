// Package account implements the account lifecycle on top of pkg/auth:
// registration, password sign-in, logout, profile and avatar updates,
// visibility and role management, and profile listings.
//
// Every method returns auth.PublicAccount values, so password hashes never
// leave the service. Errors are the sentinels from pkg/auth or
// validator.ValidationErrors for rejected input.
package account
