package codec

import (
	"bytes"
	"encoding/binary"
)

// TLV record types. Type 1 is overloaded by prefix: it carries relay hint
// strings for nprofile/nevent and the 4-byte big-endian kind for naddr.
const (
	tlvIdentity   byte = 0 // 32 identity bytes (pubkey or event id)
	tlvRelayHint  byte = 1 // relay hint string (nprofile, nevent)
	tlvKind       byte = 1 // uint32 big-endian kind (naddr)
	tlvIdentifier byte = 2 // free-form identifier string (naddr)
	tlvAddrRelay  byte = 3 // relay hint string (naddr)

	kindFieldSize = 4
)

// MaxTLVSize is the hard ceiling on a packed naddr TLV payload.
const MaxTLVSize = 90

// tlvRecord is one parsed type-length-value field.
type tlvRecord struct {
	Type  byte
	Value []byte
}

// packTLV appends one record. Values over 255 bytes cannot be represented
// by the single length byte.
func packTLV(buf *bytes.Buffer, typ byte, value []byte) bool {
	if len(value) > 255 {
		return false
	}
	buf.WriteByte(typ)
	buf.WriteByte(byte(len(value)))
	buf.Write(value)
	return true
}

// parseTLV splits a payload into records. A truncated record makes the
// whole payload malformed.
func parseTLV(payload []byte) ([]tlvRecord, error) {
	var records []tlvRecord
	for i := 0; i < len(payload); {
		if i+2 > len(payload) {
			return nil, malformed("truncated TLV header at offset %d", i)
		}
		typ, length := payload[i], int(payload[i+1])
		i += 2
		if i+length > len(payload) {
			return nil, malformed("TLV record type %d claims %d bytes past end of payload", typ, length)
		}
		records = append(records, tlvRecord{Type: typ, Value: payload[i : i+length]})
		i += length
	}
	return records, nil
}

// packKind encodes a kind as exactly 4 big-endian bytes. Decoders must
// not assume host byte order.
func packKind(kind int) []byte {
	b := make([]byte, kindFieldSize)
	binary.BigEndian.PutUint32(b, uint32(kind))
	return b
}

// parseKind decodes a 4-byte big-endian kind field.
func parseKind(value []byte) (int, error) {
	if len(value) != kindFieldSize {
		return 0, malformed("kind field is %d bytes, want exactly %d", len(value), kindFieldSize)
	}
	return int(binary.BigEndian.Uint32(value)), nil
}
