// Package ratelimit implements fixed-window request limiting keyed by client
// address and route.
//
// Counters live behind CounterStore: MemoryStore for a single process,
// RedisStore when several instances must share a budget. The HTTP middleware
// fails open when the store is unavailable.
package ratelimit
