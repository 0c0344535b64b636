// Package event defines the canonical event model and the integrity
// operations built on it.
//
// This package contains the event type, its canonical serialization, and
// the hash/sign/verify operations. All other internal packages import
// event; event imports nothing internal. This keeps the protocol data
// model the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - The canonical serialization is an external protocol contract: the
//     byte sequence [0,pubkey,created_at,kind,tags,content] must match
//     every other implementation exactly or verification fails.
//   - Ids and keys travel as lowercase hex strings; raw bytes appear only
//     inside hashing and signature checks.
//   - Verification failure is data, never an error value.
package event
