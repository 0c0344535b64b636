package relay

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seaholm/nostrkit/internal/event"
)

func TestFilterMarshalTagsFolded(t *testing.T) {
	f := Filter{
		Kinds: []int{30023},
		Tags:  map[string][]string{"d": {"my-article"}},
		Limit: 1,
	}

	data, err := json.Marshal(f)
	require.NoError(t, err)
	assert.JSONEq(t, `{"kinds":[30023],"#d":["my-article"],"limit":1}`, string(data))
}

func TestFilterMarshalOmitsEmpty(t *testing.T) {
	data, err := json.Marshal(Filter{})
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data))
}

func TestFilterRoundTrip(t *testing.T) {
	since, until := int64(100), int64(200)
	f := Filter{
		IDs:     []string{"aa", "bb"},
		Authors: []string{"cc"},
		Kinds:   []int{0, 1},
		Tags:    map[string][]string{"e": {"dd"}, "d": {"x"}},
		Since:   &since,
		Until:   &until,
		Limit:   5,
		Search:  "hello",
	}

	data, err := json.Marshal(f)
	require.NoError(t, err)

	var back Filter
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, f, back)
}

func matchEvent() *event.Event {
	return &event.Event{
		ID:        "aaaa",
		PubKey:    "bbbb",
		CreatedAt: 150,
		Kind:      30023,
		Tags:      event.Tags{{"d", "my-article"}, {"t", "golang"}},
		Content:   "Racing Relays for fun",
	}
}

func TestFilterMatches(t *testing.T) {
	since, until := int64(100), int64(200)

	tests := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{"empty filter matches all", Filter{}, true},
		{"id match", Filter{IDs: []string{"aaaa"}}, true},
		{"id miss", Filter{IDs: []string{"zzzz"}}, false},
		{"author match", Filter{Authors: []string{"bbbb"}}, true},
		{"author miss", Filter{Authors: []string{"zzzz"}}, false},
		{"kind match", Filter{Kinds: []int{1, 30023}}, true},
		{"kind miss", Filter{Kinds: []int{1}}, false},
		{"tag match", Filter{Tags: map[string][]string{"d": {"my-article"}}}, true},
		{"tag value miss", Filter{Tags: map[string][]string{"d": {"other"}}}, false},
		{"tag name miss", Filter{Tags: map[string][]string{"e": {"my-article"}}}, false},
		{"time window inside", Filter{Since: &since, Until: &until}, true},
		{"since excludes", Filter{Since: &until}, false},
		{"until excludes", Filter{Until: &since}, false},
		{"search case-insensitive", Filter{Search: "racing relays"}, true},
		{"search miss", Filter{Search: "absent"}, false},
		{"limit ignored", Filter{Limit: 0}, true},
		{"combined all match", Filter{IDs: []string{"aaaa"}, Kinds: []int{30023}, Search: "fun"}, true},
		{"combined one miss", Filter{IDs: []string{"aaaa"}, Kinds: []int{1}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(matchEvent()))
		})
	}
}

func TestFilterMatchesNil(t *testing.T) {
	assert.False(t, Filter{}.Matches(nil))
}
