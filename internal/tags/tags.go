// Package tags holds tag names, daily snapshots of tag counts and the
// canonicalization mapping used to merge aliased tags.
package tags

import (
	"sort"
	"strings"
)

// Snapshot is the set of tag counts observed on one date, keyed by tag name.
type Snapshot map[string]int64

// Names returns the tag names in the snapshot in ascending order.
func (s Snapshot) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Total is the sum of all counts in the snapshot.
func (s Snapshot) Total() int64 {
	var total int64
	for _, c := range s {
		total += c
	}
	return total
}

// Namespace returns the category prefix of a tag name without the colon, e.g.
// "female" for "female:kemonomimi". Names without a namespace return "".
func Namespace(name string) string {
	i := strings.IndexByte(name, ':')
	if i < 0 {
		return ""
	}
	return name[:i]
}

// Normalize renames every tag that has an entry in m and sums counts of tags
// that end up with the same name. The input snapshot is not modified.
func Normalize(s Snapshot, m Mapping) Snapshot {
	out := make(Snapshot, len(s))
	for name, count := range s {
		out[m.Apply(name)] += count
	}
	return out
}
