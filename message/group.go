// group.go
/*
fixmsg — FIX protocol message toolkit
Copyright (C) 2025 Edgewater Markets

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU Affero General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU Affero General Public License for more details.

You should have received a copy of the GNU Affero General Public License
along with this program.  If not, see <https://www.gnu.org/licenses/>.

In accordance with section 13 of the AGPL, if you modify this program,
your modified version must prominently offer all users interacting with it
remotely through a computer network an opportunity to receive the source
code of your version.
*/
package message

// Group is a repeating group: an ordered sequence of entries, each a Message
// restricted to the group's declared member tags. It is identified by its
// counting tag (whose wire value is the entry count) and the first-member tag
// that opens each entry. A group belongs to exactly one message; it is never
// shared between two containers.
type Group struct {
	countTag int
	firstTag int
	entries  []*Message
}

// NewGroup returns an empty group for the given counting and first-member
// tags. An empty group is valid: it serialises as countTag=0.
func NewGroup(countTag, firstTag int) *Group {
	return &Group{countTag: countTag, firstTag: firstTag}
}

// CountTag returns the tag whose value declares the entry count.
func (g *Group) CountTag() int { return g.countTag }

// FirstTag returns the tag that marks the start of each entry.
func (g *Group) FirstTag() int { return g.firstTag }

// Len returns the number of entries.
func (g *Group) Len() int { return len(g.entries) }

// Append adds an entry at the end of the group.
func (g *Group) Append(entry *Message) {
	g.entries = append(g.entries, entry)
}

// Entry returns the i-th entry. It panics when i is out of range, matching
// slice indexing.
func (g *Group) Entry(i int) *Message {
	return g.entries[i]
}

// Entries returns the live entry slice, in declaration order. Callers own the
// group through its message and may reorder entries in place.
func (g *Group) Entries() []*Message {
	return g.entries
}

// Swap exchanges two entries in place.
func (g *Group) Swap(i, j int) {
	g.entries[i], g.entries[j] = g.entries[j], g.entries[i]
}

// Copy returns a deep copy of the group and all its entries.
func (g *Group) Copy() *Group {
	out := NewGroup(g.countTag, g.firstTag)
	for _, entry := range g.entries {
		out.Append(entry.Copy())
	}

	return out
}

// GroupFactory builds repeating groups for a given counting tag without the
// caller having to thread the tag pair through every construction site.
type GroupFactory struct {
	CountTag int
	FirstTag int
}

// Build returns a group containing the given entries in order.
func (f GroupFactory) Build(entries ...*Message) *Group {
	g := NewGroup(f.CountTag, f.FirstTag)
	for _, entry := range entries {
		g.Append(entry)
	}

	return g
}
