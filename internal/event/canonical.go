package event

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// IncompleteEventError reports an attempt to canonicalize an event that
// is missing a required field. This is a programmer error, never retried.
type IncompleteEventError struct {
	// Missing names the absent or malformed field.
	Missing string
}

// Error implements the error interface.
func (e *IncompleteEventError) Error() string {
	return fmt.Sprintf("incomplete event: missing or invalid %s", e.Missing)
}

// IsIncompleteEvent returns true if the error is an IncompleteEventError.
// Uses errors.As to handle wrapped errors.
func IsIncompleteEvent(err error) bool {
	var ie *IncompleteEventError
	return errors.As(err, &ie)
}

// Serialize produces the canonical byte sequence used for hashing and
// signing: the JSON array [0,pubkey,created_at,kind,tags,content] with
// no insignificant whitespace and bare integer formatting.
//
// CRITICAL: This exact array shape and ordering is an external protocol
// contract. Any deviation (float formatting, whitespace, extra escaping)
// produces a different hash and an interoperability failure.
//
// Returns IncompleteEventError if pubkey, kind, or tags are unset.
func Serialize(ev *Event) ([]byte, error) {
	switch {
	case !isHex(ev.PubKey, 64):
		return nil, &IncompleteEventError{Missing: "pubkey"}
	case ev.Kind < 0 || ev.Kind > MaxKind:
		return nil, &IncompleteEventError{Missing: "kind"}
	case ev.Tags == nil:
		return nil, &IncompleteEventError{Missing: "tags"}
	}

	var buf bytes.Buffer
	buf.Grow(128 + len(ev.Content))

	buf.WriteString("[0,")
	writeCanonicalString(&buf, ev.PubKey)
	buf.WriteByte(',')
	buf.WriteString(strconv.FormatInt(ev.CreatedAt, 10))
	buf.WriteByte(',')
	buf.WriteString(strconv.Itoa(ev.Kind))
	buf.WriteByte(',')
	writeCanonicalTags(&buf, ev.Tags)
	buf.WriteByte(',')
	writeCanonicalString(&buf, ev.Content)
	buf.WriteByte(']')

	return buf.Bytes(), nil
}

// writeCanonicalTags writes the tags as nested JSON arrays of strings.
func writeCanonicalTags(buf *bytes.Buffer, tags Tags) {
	buf.WriteByte('[')
	for i, tag := range tags {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('[')
		for j, field := range tag {
			if j > 0 {
				buf.WriteByte(',')
			}
			writeCanonicalString(buf, field)
		}
		buf.WriteByte(']')
	}
	buf.WriteByte(']')
}

// writeCanonicalString writes a JSON string without HTML escaping.
// CRITICAL: <, >, & must NOT be escaped; U+2028 and U+2029 must appear
// literally. Go's encoder escapes all of these for JavaScript embedding,
// which would break hash compatibility with other implementations.
func writeCanonicalString(buf *bytes.Buffer, s string) {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	// Encode cannot fail for a plain string.
	_ = enc.Encode(s)

	out := tmp.Bytes()
	// json.Encoder adds a trailing newline, remove it.
	if n := len(out); n > 0 && out[n-1] == '\n' {
		out = out[:n-1]
	}
	buf.Write(unescapeLineSeparators(out))
}

// unescapeLineSeparators converts   and   escape sequences back
// to literal characters, but preserves \\u2028 (escaped backslash followed
// by literal "u2028" text). An escape is real exactly when it is preceded
// by an even number of backslashes.
func unescapeLineSeparators(data []byte) []byte {
	if !bytes.Contains(data, []byte(`\u202`)) {
		return data
	}

	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); {
		if i+6 <= len(data) && data[i] == '\\' && bytes.HasPrefix(data[i:i+5], []byte(`\u202`)) &&
			(data[i+5] == '8' || data[i+5] == '9') {
			backslashes := 0
			for j := len(out) - 1; j >= 0 && out[j] == '\\'; j-- {
				backslashes++
			}
			if backslashes%2 == 0 {
				if data[i+5] == '8' {
					out = append(out, " "...)
				} else {
					out = append(out, " "...)
				}
				i += 6
				continue
			}
		}
		out = append(out, data[i])
		i++
	}
	return out
}

// isHex reports whether s is exactly n lowercase hex characters.
func isHex(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
