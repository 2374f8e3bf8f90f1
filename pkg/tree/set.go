package tree

import (
	"slices"

	"github.com/matzehuels/systemmap/pkg/content"
)

// Set is the collection of node ids currently expanded. Sets are treated as
// values: operations return a new Set and leave the receiver untouched.
type Set map[string]struct{}

// NewSet returns a set holding ids.
func NewSet(ids ...string) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// InitialSet returns the set a fresh view starts from: only the root is
// expanded, so its direct children are visible.
func InitialSet(root *content.Node) Set {
	if root == nil {
		return NewSet()
	}
	return NewSet(root.ID)
}

// Has reports whether id is expanded. A nil set holds nothing.
func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// IDs returns the members in sorted order.
func (s Set) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Clone returns a copy of s.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// With returns a copy of s with ids added.
func (s Set) With(ids ...string) Set {
	out := s.Clone()
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}

// Toggle flips the expansion of id. Collapsing also collapses every
// descendant of id in root, so re-expanding shows only the direct
// children again. Ids not present in root are toggled as plain members.
func (s Set) Toggle(root *content.Node, id string) Set {
	out := s.Clone()
	if !out.Has(id) {
		out[id] = struct{}{}
		return out
	}
	delete(out, id)
	if n := FindNode(root, id); n != nil {
		for _, d := range DescendantIDs(n) {
			delete(out, d)
		}
	}
	return out
}

// ExpandPath returns a copy of s in which every node on the path from root
// to targetID is expanded, making the target's children visible. It
// returns s unchanged when the target is unreachable.
func (s Set) ExpandPath(root *content.Node, targetID string) Set {
	path := PathToNode(root, targetID)
	if path == nil {
		return s
	}
	return s.With(path...)
}
