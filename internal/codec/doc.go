// Package codec maps typed references to and from their compact
// human-shareable text form: a bech32 envelope with a type prefix (npub,
// note, nprofile, nevent, naddr) over either bare identity bytes or a
// type-length-value record sequence.
//
// The wire layout is an external protocol contract:
//   - npub and note carry exactly 32 raw bytes, no structure.
//   - nprofile and nevent carry TLV records: type 0 is the identity bytes
//     (pubkey or event id), type 1 is a relay hint string, repeatable.
//   - naddr carries type 0 identity bytes (pubkey), type 1 the kind as
//     exactly 4 big-endian bytes, type 2 the free-form identifier string,
//     and type 3 relay hint strings.
//   - Decoders skip TLV types they do not recognize.
//   - A packed naddr TLV payload over 90 bytes is rejected outright,
//     never truncated.
package codec
