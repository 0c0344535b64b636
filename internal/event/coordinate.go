package event

import (
	"fmt"
	"strconv"
	"strings"
)

// Coordinate addresses the current version of an addressable event by
// the kind:pubkey:identifier triple.
type Coordinate struct {
	Kind       int
	PubKey     string
	Identifier string
}

// String formats the coordinate as kind:pubkey:identifier.
func (c Coordinate) String() string {
	return fmt.Sprintf("%d:%s:%s", c.Kind, c.PubKey, c.Identifier)
}

// ParseCoordinate parses a kind:pubkey:identifier triple. The identifier
// may itself contain colons, so it is everything after the second
// delimiter, not just the third field.
func ParseCoordinate(s string) (Coordinate, error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) != 3 {
		return Coordinate{}, fmt.Errorf("coordinate %q: want kind:pubkey:identifier", s)
	}

	kind, err := strconv.Atoi(parts[0])
	if err != nil || kind < 0 || kind > MaxKind {
		return Coordinate{}, fmt.Errorf("coordinate %q: invalid kind %q", s, parts[0])
	}
	if !isHex(parts[1], 64) {
		return Coordinate{}, fmt.Errorf("coordinate %q: pubkey must be 64 lowercase hex characters", s)
	}

	return Coordinate{Kind: kind, PubKey: parts[1], Identifier: parts[2]}, nil
}
