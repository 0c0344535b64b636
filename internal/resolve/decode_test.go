package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seaholm/nostrkit/internal/event"
)

func TestInterpretInputHexIsAmbiguous(t *testing.T) {
	req, err := interpretInput(signerPubKey)
	require.NoError(t, err)

	assert.Equal(t, reqAmbiguous, req.kind)
	assert.Equal(t, signerPubKey, req.cacheKey)
	assert.Equal(t, signerPubKey, req.prefer)
	require.Len(t, req.filters, 2)
	assert.Equal(t, []string{signerPubKey}, req.filters[0].IDs)
	assert.Equal(t, []int{event.KindProfileMetadata}, req.filters[1].Kinds)
}

func TestInterpretInputUppercaseHexIsSearch(t *testing.T) {
	// Digests are lowercase on the wire; mixed case falls through to
	// literal search rather than being silently folded.
	req, err := interpretInput("EE0C5299EE8A76693D82E5DCFC7123DD41387E0A352F09695B418B9A85DEF2DA")
	require.NoError(t, err)
	assert.Equal(t, reqSearch, req.kind)
}

func TestInterpretInputTrimsAndNormalizesSearchText(t *testing.T) {
	// U+0065 U+0301 composes to U+00E9 under NFC.
	req, err := interpretInput("  café notes  ")
	require.NoError(t, err)

	assert.Equal(t, reqSearch, req.kind)
	assert.Equal(t, "café notes", req.term)
}

func TestInterpretInputEmpty(t *testing.T) {
	_, err := interpretInput("   ")
	require.Error(t, err)
	assert.True(t, IsInvalidInput(err))
}

func TestInterpretInputKnownPrefixMustDecode(t *testing.T) {
	// Text committed to the identifier interpretation does not fall
	// through to search on a decode failure.
	for _, input := range []string{"npub1notvalid", "nostr:note1zzz", "NEVENT1BAD"} {
		_, err := interpretInput(input)
		require.Error(t, err, "input %q", input)
		assert.True(t, IsInvalidInput(err), "input %q", input)
	}
}

func TestOrderGroupsSortsByDescendingPriority(t *testing.T) {
	groups := orderGroups([]Group{
		{Name: "low", Priority: 1, Endpoints: []string{"wss://c.example"}},
		{Name: "high", Priority: 9, Endpoints: []string{"wss://a.example"}},
		{Name: "mid", Priority: 5, Endpoints: []string{"wss://b.example"}},
	})

	names := make([]string, len(groups))
	for i, g := range groups {
		names[i] = g.Name
	}
	assert.Equal(t, []string{"high", "mid", "low"}, names)
}

func TestNormalizeEndpointsDedupesAndNormalizes(t *testing.T) {
	got := normalizeEndpoints([]string{
		"relay.example",
		"wss://relay.example/",
		"https://Other.Example",
		"ftp://rejected.example",
	})
	assert.Equal(t, []string{"wss://relay.example", "wss://other.example"}, got)
}
