package event

// Kind range boundaries. The kind number partitions events into four
// storage classes; the boundaries are protocol constants.
const (
	kindReplaceableStart = 10000
	kindReplaceableEnd   = 20000
	kindEphemeralStart   = 20000
	kindEphemeralEnd     = 30000
	kindAddressableStart = 30000
	kindAddressableEnd   = 40000

	// MaxKind is the highest valid kind number.
	MaxKind = 65535
)

// Well-known kinds referenced by the resolution layer.
const (
	KindProfileMetadata = 0
	KindTextNote        = 1
	KindFollowList      = 3
	KindRelayList       = 10002
)

// Event is a signed, timestamped, kind-classified record.
//
// An event is immutable once it carries a valid id: the id is derived
// from the canonical serialization of the other fields, so any mutation
// invalidates it. Construction paths are local signing (Sign) and
// decoding from a relay response, both of which leave the struct fully
// populated.
type Event struct {
	ID        string `json:"id"`
	PubKey    string `json:"pubkey"`
	CreatedAt int64  `json:"created_at"`
	Kind      int    `json:"kind"`
	Tags      Tags   `json:"tags"`
	Content   string `json:"content"`
	Sig       string `json:"sig"`
}

// IsReplaceable reports whether only the newest event per author+kind is
// retained for this kind.
func IsReplaceable(kind int) bool {
	return kind == KindProfileMetadata || kind == KindFollowList ||
		(kind >= kindReplaceableStart && kind < kindReplaceableEnd)
}

// IsEphemeral reports whether events of this kind are not expected to be
// stored at all.
func IsEphemeral(kind int) bool {
	return kind >= kindEphemeralStart && kind < kindEphemeralEnd
}

// IsAddressable reports whether only the newest event per
// author+kind+identifier-tag is retained for this kind.
func IsAddressable(kind int) bool {
	return kind >= kindAddressableStart && kind < kindAddressableEnd
}

// IsRegular reports whether events of this kind are stored verbatim,
// unbounded per author.
func IsRegular(kind int) bool {
	return !IsReplaceable(kind) && !IsEphemeral(kind) && !IsAddressable(kind)
}
