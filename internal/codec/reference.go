package codec

// Reference is a decoded, typed pointer to an event, profile, or
// coordinate. It is a closed sum: the five variants below are the only
// implementations.
type Reference interface {
	// Prefix returns the bech32 human-readable prefix for this variant.
	Prefix() string

	reference()
}

// PublicKey is a bare 32-byte public key (npub).
type PublicKey struct {
	PubKey string
}

// NoteID is a bare 32-byte event digest (note).
type NoteID struct {
	ID string
}

// ProfilePointer is a public key with optional relay hints (nprofile).
type ProfilePointer struct {
	PubKey string
	Relays []string
}

// EventPointer is an event digest with optional author and relay hints
// (nevent). The author is resolution metadata only; the wire form carries
// the digest and relay hints.
type EventPointer struct {
	ID     string
	Author string
	Relays []string
}

// EntityPointer addresses the current version of an addressable event by
// kind, author, and free-form identifier, with optional relay hints
// (naddr).
type EntityPointer struct {
	Kind       int
	PubKey     string
	Identifier string
	Relays     []string
}

func (PublicKey) Prefix() string      { return "npub" }
func (NoteID) Prefix() string         { return "note" }
func (ProfilePointer) Prefix() string { return "nprofile" }
func (EventPointer) Prefix() string   { return "nevent" }
func (EntityPointer) Prefix() string  { return "naddr" }

func (PublicKey) reference()      {}
func (NoteID) reference()         {}
func (ProfilePointer) reference() {}
func (EventPointer) reference()   {}
func (EntityPointer) reference()  {}
