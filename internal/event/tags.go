package event

// Tag is an ordered list of strings attached to an event. The first
// element is the tag name, used for indexed lookup.
type Tag []string

// Name returns the tag's name, or "" for an empty tag.
func (t Tag) Name() string {
	if len(t) == 0 {
		return ""
	}
	return t[0]
}

// Value returns the tag's first value (the element after the name),
// or "" if the tag has no value.
func (t Tag) Value() string {
	if len(t) < 2 {
		return ""
	}
	return t[1]
}

// Tags is an ordered sequence of tags. Order of tags with the same name
// is significant and must be preserved.
type Tags []Tag

// Find returns the first tag with the given name, or nil.
func (ts Tags) Find(name string) Tag {
	for _, t := range ts {
		if t.Name() == name {
			return t
		}
	}
	return nil
}

// FindAll returns every tag with the given name, in order.
func (ts Tags) FindAll(name string) Tags {
	var out Tags
	for _, t := range ts {
		if t.Name() == name {
			out = append(out, t)
		}
	}
	return out
}

// Identifier returns the value of the first "d" tag, which names the
// addressable identity of an addressable event. Empty if absent.
func (ts Tags) Identifier() string {
	return ts.Find("d").Value()
}

// NormalizeTags groups tags by name while preserving the first-occurrence
// order of names across groups and the original order within each group.
//
// Normalization is idempotent: a sequence already in grouped order maps
// to itself, so id computation over normalized tags is stable.
func NormalizeTags(ts Tags) Tags {
	if len(ts) < 2 {
		return ts
	}

	order := make([]string, 0, len(ts))
	groups := make(map[string]Tags, len(ts))
	for _, t := range ts {
		name := t.Name()
		if _, seen := groups[name]; !seen {
			order = append(order, name)
		}
		groups[name] = append(groups[name], t)
	}

	out := make(Tags, 0, len(ts))
	for _, name := range order {
		out = append(out, groups[name]...)
	}
	return out
}
