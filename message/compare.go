// compare.go
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

import (
	"fmt"
	"slices"
	"strings"
)

// Integrity fields are excluded from comparison: BodyLength and CheckSum are
// recomputed on encode, so two semantically identical messages may carry
// different (or stale) values for them.
const (
	tagBodyLength = 9
	tagCheckSum   = 10
)

// Diff describes how two messages differ. Scalar tag order never contributes
// to a diff; group entry order does.
type Diff struct {
	OnlyLeft  []int       // tags present only in the left message
	OnlyRight []int       // tags present only in the right message
	Values    []ValueDiff // tags present in both with differing value multisets
	Groups    []GroupDiff // counting tags whose groups differ
}

// ValueDiff reports a scalar tag whose value multisets differ. Left and Right
// hold each side's values sorted, so duplicates are visible.
type ValueDiff struct {
	Tag   int
	Left  []string
	Right []string
}

// GroupDiff reports a repeating group mismatch: an entry count difference,
// entry-level differences, or both.
type GroupDiff struct {
	Tag      int
	LenLeft  int
	LenRight int
	Entries  []EntryDiff // diffs of positionally paired entries
}

// EntryDiff is the recursive diff of the entries at one index.
type EntryDiff struct {
	Index int
	Diff  *Diff
}

// Empty reports whether the diff records no differences.
func (d *Diff) Empty() bool {
	return len(d.OnlyLeft) == 0 && len(d.OnlyRight) == 0 &&
		len(d.Values) == 0 && len(d.Groups) == 0
}

// String renders a compact single-line summary, for test failure output.
func (d *Diff) String() string {
	if d.Empty() {
		return "equal"
	}

	var sb strings.Builder
	if len(d.OnlyLeft) > 0 {
		fmt.Fprintf(&sb, "only left: %v; ", d.OnlyLeft)
	}
	if len(d.OnlyRight) > 0 {
		fmt.Fprintf(&sb, "only right: %v; ", d.OnlyRight)
	}
	for _, v := range d.Values {
		fmt.Fprintf(&sb, "tag %d: %v != %v; ", v.Tag, v.Left, v.Right)
	}
	for _, g := range d.Groups {
		if g.LenLeft != g.LenRight {
			fmt.Fprintf(&sb, "group %d: %d entries != %d entries; ", g.Tag, g.LenLeft, g.LenRight)
		}
		for _, e := range g.Entries {
			fmt.Fprintf(&sb, "group %d entry %d: %s; ", g.Tag, e.Index, e.Diff)
		}
	}

	return strings.TrimSuffix(sb.String(), "; ")
}

// Equal reports whether two messages are semantically equal: their scalar tag
// multisets match (order-insensitive, duplicates counted) and every repeating
// group present in either has the same entry count and positionally equal
// entries, recursively. Tags 9 and 10 are ignored.
func Equal(a, b *Message) bool {
	return Compare(a, b).Empty()
}

// Compare produces the structured diff between two messages. The result is
// never nil; check Empty.
func Compare(a, b *Message) *Diff {
	d := &Diff{}

	leftScalars, leftGroups := split(a)
	rightScalars, rightGroups := split(b)

	tags := make(map[int]bool)
	for tag := range leftScalars {
		tags[tag] = true
	}
	for tag := range leftGroups {
		tags[tag] = true
	}
	for tag := range rightScalars {
		tags[tag] = true
	}
	for tag := range rightGroups {
		tags[tag] = true
	}

	for _, tag := range sortedTags(tags) {
		lv, lOK := leftScalars[tag]
		lg, lgOK := leftGroups[tag]
		rv, rOK := rightScalars[tag]
		rg, rgOK := rightGroups[tag]

		switch {
		case !lOK && !lgOK:
			d.OnlyRight = append(d.OnlyRight, tag)
		case !rOK && !rgOK:
			d.OnlyLeft = append(d.OnlyLeft, tag)
		case lgOK && rgOK:
			if gd := compareGroups(tag, lg, rg); gd != nil {
				d.Groups = append(d.Groups, *gd)
			}
		default:
			// Scalar on both sides, or scalar on one and group on the other;
			// a group renders as its entry count for comparison purposes.
			left := renderSide(lv, lg, lgOK)
			right := renderSide(rv, rg, rgOK)
			if !slices.Equal(left, right) {
				d.Values = append(d.Values, ValueDiff{Tag: tag, Left: left, Right: right})
			}
		}
	}

	return d
}

func split(m *Message) (map[int][]string, map[int]*Group) {
	scalars := make(map[int][]string)
	groups := make(map[int]*Group)

	for _, f := range m.fields {
		if f.Tag == tagBodyLength || f.Tag == tagCheckSum {
			continue
		}
		if f.Group != nil {
			if _, dup := groups[f.Tag]; !dup {
				groups[f.Tag] = f.Group
			}
			continue
		}
		scalars[f.Tag] = append(scalars[f.Tag], f.Value)
	}

	for tag := range scalars {
		slices.Sort(scalars[tag])
	}

	return scalars, groups
}

func renderSide(values []string, g *Group, isGroup bool) []string {
	if isGroup {
		return []string{fmt.Sprintf("%d entries", g.Len())}
	}

	return values
}

func compareGroups(tag int, left, right *Group) *GroupDiff {
	gd := &GroupDiff{Tag: tag, LenLeft: left.Len(), LenRight: right.Len()}

	for i := 0; i < min(left.Len(), right.Len()); i++ {
		entryDiff := Compare(left.Entry(i), right.Entry(i))
		if !entryDiff.Empty() {
			gd.Entries = append(gd.Entries, EntryDiff{Index: i, Diff: entryDiff})
		}
	}

	if gd.LenLeft == gd.LenRight && len(gd.Entries) == 0 {
		return nil
	}

	return gd
}

func sortedTags(set map[int]bool) []int {
	out := make([]int, 0, len(set))
	for tag := range set {
		out = append(out, tag)
	}
	slices.Sort(out)

	return out
}
