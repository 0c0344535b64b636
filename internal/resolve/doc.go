// Package resolve turns identifiers and filters into concrete events by
// querying prioritized groups of unreliable relay endpoints.
//
// A resolution runs Decoding, GroupIterating, Validating in order: the
// input text is interpreted (hex digest, then bech32 identifier, then
// literal search text), each source group is tried strictly in priority
// order with all of its endpoints raced concurrently, and every
// candidate must pass integrity verification before it is accepted. A
// cryptographically invalid response counts as "not found" on that
// source, never as a hard failure.
//
// Relay hints carried by a decoded nevent or naddr form an ad hoc
// highest-priority group consulted before any configured group.
//
// Resolution never retries; callers that want retry compose it outside.
package resolve
