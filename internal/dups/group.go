package dups

import (
	"slices"
)

// Group is a candidate duplicate set.
//
// All members have been proven equal on every byte consumed so far, share the
// same number of remaining bytes, and are kept sorted by ascending identity.
type Group struct {
	// Size is the declared size shared by every member.
	Size int64

	remaining int64
	members   []*FileRecord
}

func newGroup(size int64) *Group {
	return &Group{Size: size, remaining: size}
}

// Len returns the number of members.
func (g *Group) Len() int {
	return len(g.members)
}

// Remaining returns the number of bytes not yet compared.
func (g *Group) Remaining() int64 {
	return g.remaining
}

// Members returns the members in ascending identity order.
func (g *Group) Members() []*FileRecord {
	return g.members
}

// Paths returns the member paths in ascending identity order.
func (g *Group) Paths() []string {
	paths := make([]string, len(g.members))
	for i, rec := range g.members {
		paths[i] = rec.Path
	}

	return paths
}

// insert adds rec at its sorted position.
// If a member with the same identity already exists, it is returned and rec is not inserted.
func (g *Group) insert(rec *FileRecord) *FileRecord {
	i, found := slices.BinarySearchFunc(g.members, rec.Identity, func(m *FileRecord, id Identity) int {
		return m.Identity.Compare(id)
	})
	if found {
		return g.members[i]
	}

	g.members = slices.Insert(g.members, i, rec)

	return nil
}

// release closes every member's handle.
func (g *Group) release() {
	for _, rec := range g.members {
		rec.release()
	}
}
