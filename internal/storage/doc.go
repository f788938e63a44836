// Package storage provides the local key-value storage interface and
// in-memory implementation. Every node owns an independent store; each
// entry carries the version assigned by the leader when the write was
// accepted, which the replication layer uses for conflict resolution.
package storage
