// Package cache provides a TTL and capacity bounded in-memory store.
//
// Each consumer (search results, profile metadata, addressable-event
// lookups) owns its own Cache instance with its own tuning; there is no
// package-level shared state. Instances are handed to the resolver by
// the process bootstrap, which owns their lifecycle.
//
// Eviction is insertion-order, not LRU: reads never refresh an entry's
// position. Expiry is lazy on read, with an optional background sweep
// for memory hygiene.
package cache
