package resolve

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/seaholm/nostrkit/internal/codec"
	"github.com/seaholm/nostrkit/internal/event"
	"github.com/seaholm/nostrkit/internal/relay"
)

// requestKind tags the interpretation chosen for an input.
type requestKind int

const (
	reqEvent requestKind = iota + 1
	reqProfile
	reqEntity
	reqAmbiguous
	reqFilter
	reqSearch
)

// request is one decoded resolution: the wire filters to send, the relay
// hints to try first, and how the result is cached.
type request struct {
	kind     requestKind
	filters  []relay.Filter
	hints    []string
	cacheKey string

	// prefer is the public key favored in ambiguous-hex mode: a profile
	// whose pubkey equals it beats a bare event match.
	prefer string

	// term is the normalized search text for reqSearch.
	term string
}

// identifierPrefixes are the bech32 prefixes this layer recognizes. Text
// that starts with one of these (or the nostr: scheme) is committed to
// the identifier interpretation: a decode failure is then surfaced as
// invalid input instead of falling through to a literal search.
var identifierPrefixes = []string{"npub1", "nsec1", "note1", "nprofile1", "nevent1", "naddr1"}

// interpretInput maps raw text to a request. Interpretations are tried
// in order: fixed-length hex digest, identifier decode, literal search
// text; the first that applies wins.
func interpretInput(input string) (request, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return request{}, invalidInput(input, nil)
	}

	if isHex64(input) {
		// Valid as both an event id and a public key: probe both and
		// let selection prefer a profile whose key matches.
		return request{
			kind: reqAmbiguous,
			filters: []relay.Filter{
				{IDs: []string{input}, Limit: 1},
				{Kinds: []int{event.KindProfileMetadata}, Authors: []string{input}, Limit: 1},
			},
			cacheKey: input,
			prefer:   input,
		}, nil
	}

	if looksLikeIdentifier(input) {
		ref, err := codec.Decode(input)
		if err != nil {
			return request{}, invalidInput(input, err)
		}
		return fromReference(ref)
	}

	// Free text: normalize at the boundary so visually identical search
	// terms hit the same cache slot and the same relay-side index.
	return request{kind: reqSearch, term: norm.NFC.String(input)}, nil
}

// fromReference builds the resolution request for a decoded reference.
func fromReference(ref codec.Reference) (request, error) {
	switch v := ref.(type) {
	case codec.PublicKey:
		return request{
			kind:     reqProfile,
			filters:  profileFilter(v.PubKey),
			cacheKey: v.PubKey,
		}, nil

	case codec.NoteID:
		return request{
			kind:     reqEvent,
			filters:  []relay.Filter{{IDs: []string{v.ID}, Limit: 1}},
			cacheKey: v.ID,
		}, nil

	case codec.ProfilePointer:
		return request{
			kind:     reqProfile,
			filters:  profileFilter(v.PubKey),
			hints:    v.Relays,
			cacheKey: v.PubKey,
		}, nil

	case codec.EventPointer:
		f := relay.Filter{IDs: []string{v.ID}, Limit: 1}
		if v.Author != "" {
			f.Authors = []string{v.Author}
		}
		return request{
			kind:     reqEvent,
			filters:  []relay.Filter{f},
			hints:    v.Relays,
			cacheKey: v.ID,
		}, nil

	case codec.EntityPointer:
		coord := event.Coordinate{Kind: v.Kind, PubKey: v.PubKey, Identifier: v.Identifier}
		return request{
			kind: reqEntity,
			filters: []relay.Filter{{
				Kinds:   []int{v.Kind},
				Authors: []string{v.PubKey},
				Tags:    map[string][]string{"d": {v.Identifier}},
				Limit:   1,
			}},
			hints:    v.Relays,
			cacheKey: coord.String(),
		}, nil

	default:
		return request{}, invalidInput("", nil)
	}
}

func profileFilter(pubkey string) []relay.Filter {
	return []relay.Filter{{
		Kinds:   []int{event.KindProfileMetadata},
		Authors: []string{pubkey},
		Limit:   1,
	}}
}

func looksLikeIdentifier(input string) bool {
	lowered := strings.ToLower(input)
	if strings.HasPrefix(lowered, "nostr:") {
		return true
	}
	for _, prefix := range identifierPrefixes {
		if strings.HasPrefix(lowered, prefix) {
			return true
		}
	}
	return false
}

func isHex64(s string) bool {
	if len(s) != 64 {
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
