// Package relay speaks the wire protocol to relay endpoints.
//
// The transport is modeled as a duplex text-frame channel (Channel); the
// production implementation dials websockets, and tests substitute
// in-memory channels. On top of the channel sit the protocol envelopes
// (REQ out; EVENT, EOSE, CLOSED, NOTICE in) as a tagged variant type and
// a Subscription that turns the per-message dispatch into one consumable
// event stream.
//
// Connection pooling and reconnect policy are out of scope: each query
// opens one channel and closes it when done.
package relay
