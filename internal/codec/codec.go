package codec

import (
	"bytes"
	"encoding/hex"
	"strings"

	"github.com/btcsuite/btcd/btcutil/bech32"
)

// scheme is the optional URI prefix stripped before decoding.
const scheme = "nostr:"

// Encode renders a reference in its bech32 text form.
func Encode(r Reference) (string, error) {
	switch v := r.(type) {
	case PublicKey:
		return EncodePublicKey(v.PubKey)
	case NoteID:
		return EncodeNote(v.ID)
	case ProfilePointer:
		return EncodeProfile(v)
	case EventPointer:
		return EncodeEvent(v)
	case EntityPointer:
		return EncodeEntity(v)
	default:
		return "", unknownKind(r.Prefix())
	}
}

// EncodePublicKey encodes 32 public key bytes as npub.
func EncodePublicKey(pubKeyHex string) (string, error) {
	b, err := identityBytes(pubKeyHex, "pubkey")
	if err != nil {
		return "", err
	}
	return bech32Encode("npub", b)
}

// EncodeNote encodes a 32-byte event digest as note.
func EncodeNote(idHex string) (string, error) {
	b, err := identityBytes(idHex, "event id")
	if err != nil {
		return "", err
	}
	return bech32Encode("note", b)
}

// EncodeProfile encodes a public key plus relay hints as nprofile.
func EncodeProfile(p ProfilePointer) (string, error) {
	identity, err := identityBytes(p.PubKey, "pubkey")
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	packTLV(&buf, tlvIdentity, identity)
	for _, relay := range p.Relays {
		if !packTLV(&buf, tlvRelayHint, []byte(relay)) {
			return "", malformed("relay hint %q exceeds 255 bytes", relay)
		}
	}
	return bech32Encode("nprofile", buf.Bytes())
}

// EncodeEvent encodes an event digest plus relay hints as nevent.
// The Author field is resolution metadata and is not wire-carried.
func EncodeEvent(p EventPointer) (string, error) {
	identity, err := identityBytes(p.ID, "event id")
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	packTLV(&buf, tlvIdentity, identity)
	for _, relay := range p.Relays {
		if !packTLV(&buf, tlvRelayHint, []byte(relay)) {
			return "", malformed("relay hint %q exceeds 255 bytes", relay)
		}
	}
	return bech32Encode("nevent", buf.Bytes())
}

// EncodeEntity encodes a coordinate pointer as naddr.
//
// The packed TLV payload is subject to a hard 90-byte ceiling. Encoding
// fails with PAYLOAD_TOO_LARGE rather than silently truncating; callers
// must shrink the relay hint list (the usual policy is at most one hint).
func EncodeEntity(p EntityPointer) (string, error) {
	identity, err := identityBytes(p.PubKey, "pubkey")
	if err != nil {
		return "", err
	}
	if p.Kind < 0 || p.Kind > 65535 {
		return "", malformed("kind %d outside valid range", p.Kind)
	}

	var buf bytes.Buffer
	packTLV(&buf, tlvIdentity, identity)
	packTLV(&buf, tlvKind, packKind(p.Kind))
	if !packTLV(&buf, tlvIdentifier, []byte(p.Identifier)) {
		return "", malformed("identifier exceeds 255 bytes")
	}
	for _, relay := range p.Relays {
		if !packTLV(&buf, tlvAddrRelay, []byte(relay)) {
			return "", malformed("relay hint %q exceeds 255 bytes", relay)
		}
	}

	if buf.Len() > MaxTLVSize {
		return "", payloadTooLarge(buf.Len())
	}
	return bech32Encode("naddr", buf.Bytes())
}

// Decode parses identifier text into a typed reference. An optional
// nostr: scheme prefix is stripped first.
func Decode(text string) (Reference, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, scheme)

	prefix, payload, err := bech32Decode(text)
	if err != nil {
		return nil, err
	}

	switch prefix {
	case "npub":
		if len(payload) != 32 {
			return nil, malformed("npub payload is %d bytes, want 32", len(payload))
		}
		return PublicKey{PubKey: hex.EncodeToString(payload)}, nil

	case "note":
		if len(payload) != 32 {
			return nil, malformed("note payload is %d bytes, want 32", len(payload))
		}
		return NoteID{ID: hex.EncodeToString(payload)}, nil

	case "nprofile":
		return decodeProfile(payload)

	case "nevent":
		return decodeEvent(payload)

	case "naddr":
		return decodeEntity(payload)

	case "nsec":
		return nil, &CodecError{
			Code:    ErrCodePrivateKeyRefused,
			Message: "nsec carries private key material and is not accepted here",
		}

	default:
		return nil, unknownKind(prefix)
	}
}

func decodeProfile(payload []byte) (Reference, error) {
	records, err := parseTLV(payload)
	if err != nil {
		return nil, err
	}

	var p ProfilePointer
	for _, rec := range records {
		switch rec.Type {
		case tlvIdentity:
			if len(rec.Value) != 32 {
				return nil, malformed("nprofile identity is %d bytes, want 32", len(rec.Value))
			}
			p.PubKey = hex.EncodeToString(rec.Value)
		case tlvRelayHint:
			p.Relays = append(p.Relays, string(rec.Value))
		default:
			// Unrecognized TLV types are skipped for forward compatibility.
		}
	}
	if p.PubKey == "" {
		return nil, malformed("nprofile missing identity record")
	}
	return p, nil
}

func decodeEvent(payload []byte) (Reference, error) {
	records, err := parseTLV(payload)
	if err != nil {
		return nil, err
	}

	var p EventPointer
	for _, rec := range records {
		switch rec.Type {
		case tlvIdentity:
			if len(rec.Value) != 32 {
				return nil, malformed("nevent identity is %d bytes, want 32", len(rec.Value))
			}
			p.ID = hex.EncodeToString(rec.Value)
		case tlvRelayHint:
			p.Relays = append(p.Relays, string(rec.Value))
		default:
		}
	}
	if p.ID == "" {
		return nil, malformed("nevent missing identity record")
	}
	return p, nil
}

func decodeEntity(payload []byte) (Reference, error) {
	records, err := parseTLV(payload)
	if err != nil {
		return nil, err
	}

	var (
		p        EntityPointer
		haveKind bool
	)
	for _, rec := range records {
		switch rec.Type {
		case tlvIdentity:
			if len(rec.Value) != 32 {
				return nil, malformed("naddr identity is %d bytes, want 32", len(rec.Value))
			}
			p.PubKey = hex.EncodeToString(rec.Value)
		case tlvKind:
			kind, err := parseKind(rec.Value)
			if err != nil {
				return nil, err
			}
			if kind > 65535 {
				return nil, malformed("naddr kind %d outside valid range", kind)
			}
			p.Kind = kind
			haveKind = true
		case tlvIdentifier:
			p.Identifier = string(rec.Value)
		case tlvAddrRelay:
			p.Relays = append(p.Relays, string(rec.Value))
		default:
		}
	}
	if p.PubKey == "" {
		return nil, malformed("naddr missing identity record")
	}
	if !haveKind {
		return nil, malformed("naddr missing kind record")
	}
	return p, nil
}

// identityBytes decodes a 64-hex-char identity field to its 32 bytes.
func identityBytes(h, what string) ([]byte, error) {
	b, err := hex.DecodeString(h)
	if err != nil || len(b) != 32 || strings.ToLower(h) != h {
		return nil, malformed("%s must be 64 lowercase hex characters", what)
	}
	return b, nil
}

func bech32Encode(prefix string, payload []byte) (string, error) {
	grouped, err := bech32.ConvertBits(payload, 8, 5, true)
	if err != nil {
		return "", malformed("bech32 regroup: %v", err)
	}
	s, err := bech32.Encode(prefix, grouped)
	if err != nil {
		return "", malformed("bech32 encode: %v", err)
	}
	return s, nil
}

func bech32Decode(text string) (string, []byte, error) {
	// Identifiers routinely exceed the 90-character checksum guideline
	// once relay hints are included, so the no-limit decode is required.
	prefix, grouped, err := bech32.DecodeNoLimit(text)
	if err != nil {
		return "", nil, malformed("bech32 decode: %v", err)
	}
	payload, err := bech32.ConvertBits(grouped, 5, 8, false)
	if err != nil {
		return "", nil, malformed("bech32 regroup: %v", err)
	}
	return prefix, payload, nil
}
