// Package storage implements the persistence interfaces declared in pkg/auth.
//
// MongoStore keeps accounts in a MongoDB collection with a unique index on
// the normalized email; MemoryStore is a concurrent-safe map for tests and
// local development. MemoryStateStore and RedisStateStore hold the one-time
// OAuth state values used by auth.FederationBridge.
package storage
