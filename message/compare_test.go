// compare_test.go
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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEqualIgnoresScalarOrder(t *testing.T) {
	a := New()
	a.Set(35, "D")
	a.Set(55, "VOD.L")
	a.Set(54, "1")

	b := New()
	b.Set(54, "1")
	b.Set(35, "D")
	b.Set(55, "VOD.L")

	assert.True(t, Equal(a, b), "diff: %s", Compare(a, b))
}

func TestEqualCountsDuplicates(t *testing.T) {
	a := New()
	a.Add(136, "x")
	a.Add(136, "y")

	b := New()
	b.Add(136, "y")
	b.Add(136, "x")

	assert.True(t, Equal(a, b), "same multiset in different order must be equal")

	c := New()
	c.Add(136, "x")
	c.Add(136, "x")

	assert.False(t, Equal(a, c), "different multisets must not be equal")

	d := New()
	d.Add(136, "x")

	assert.False(t, Equal(a, d), "different duplicate counts must not be equal")
}

func TestEqualIgnoresIntegrityFields(t *testing.T) {
	a := New()
	a.Set(8, "FIX.4.2")
	a.Set(9, "42")
	a.Set(35, "D")
	a.Set(10, "123")

	b := New()
	b.Set(8, "FIX.4.2")
	b.Set(9, "999")
	b.Set(35, "D")
	b.Set(10, "000")

	assert.True(t, Equal(a, b), "tags 9 and 10 must not affect equality")

	c := New()
	c.Set(8, "FIX.4.2")
	c.Set(35, "D")

	assert.True(t, Equal(a, c), "missing 9/10 on one side must not affect equality")
}

func TestCompareReportsMissingTags(t *testing.T) {
	a := New()
	a.Set(35, "D")
	a.Set(55, "VOD.L")

	b := New()
	b.Set(35, "D")
	b.Set(40, "1")

	d := Compare(a, b)
	require.False(t, d.Empty())
	assert.Equal(t, []int{55}, d.OnlyLeft)
	assert.Equal(t, []int{40}, d.OnlyRight)
}

func TestCompareReportsValueDiff(t *testing.T) {
	a := New()
	a.Set(55, "VOD.L")

	b := New()
	b.Set(55, "BARC.L")

	d := Compare(a, b)
	require.Len(t, d.Values, 1)
	assert.Equal(t, 55, d.Values[0].Tag)
	assert.Equal(t, []string{"VOD.L"}, d.Values[0].Left)
	assert.Equal(t, []string{"BARC.L"}, d.Values[0].Right)
}

func twoEntryList(qtyA, qtyB string) *Message {
	e1, e2 := New(), New()
	e1.Set(11, "A")
	e1.Set(38, qtyA)
	e2.Set(11, "B")
	e2.Set(38, qtyB)

	m := New()
	m.Set(35, "E")
	m.SetGroup(GroupFactory{CountTag: 73, FirstTag: 11}.Build(e1, e2))

	return m
}

func TestGroupEntryOrderIsSignificant(t *testing.T) {
	a := twoEntryList("10", "20")

	b := twoEntryList("10", "20")
	g, err := b.Group(73)
	require.NoError(t, err)
	g.Swap(0, 1)

	assert.False(t, Equal(a, b), "swapped group entries must not compare equal")
}

func TestCompareLocatesGroupEntryDiff(t *testing.T) {
	a := twoEntryList("10", "20")
	b := twoEntryList("10", "25")

	d := Compare(a, b)
	require.Len(t, d.Groups, 1)

	gd := d.Groups[0]
	assert.Equal(t, 73, gd.Tag)
	assert.Equal(t, 2, gd.LenLeft)
	assert.Equal(t, 2, gd.LenRight)

	require.Len(t, gd.Entries, 1)
	assert.Equal(t, 1, gd.Entries[0].Index)

	entry := gd.Entries[0].Diff
	require.Len(t, entry.Values, 1)
	assert.Equal(t, 38, entry.Values[0].Tag)
	assert.Equal(t, []string{"20"}, entry.Values[0].Left)
	assert.Equal(t, []string{"25"}, entry.Values[0].Right)
}

func TestCompareReportsEntryCountDiff(t *testing.T) {
	a := twoEntryList("10", "20")

	extra := New()
	extra.Set(11, "C")
	extra.Set(38, "30")
	b := twoEntryList("10", "20")
	g, err := b.Group(73)
	require.NoError(t, err)
	g.Append(extra)

	d := Compare(a, b)
	require.Len(t, d.Groups, 1)
	assert.Equal(t, 2, d.Groups[0].LenLeft)
	assert.Equal(t, 3, d.Groups[0].LenRight)
	assert.Empty(t, d.Groups[0].Entries, "paired entries are identical")
}

func TestCompareGroupAgainstScalar(t *testing.T) {
	a := twoEntryList("10", "20")

	b := New()
	b.Set(35, "E")
	b.Set(73, "2")

	d := Compare(a, b)
	require.Len(t, d.Values, 1)
	assert.Equal(t, 73, d.Values[0].Tag)
	assert.Equal(t, []string{"2 entries"}, d.Values[0].Left)
	assert.Equal(t, []string{"2"}, d.Values[0].Right)
}

func TestNestedGroupDiff(t *testing.T) {
	build := func(account string) *Message {
		alloc := New()
		alloc.Set(79, account)

		entry := New()
		entry.Set(11, "A")
		entry.SetGroup(GroupFactory{CountTag: 78, FirstTag: 79}.Build(alloc))

		m := New()
		m.SetGroup(GroupFactory{CountTag: 73, FirstTag: 11}.Build(entry))
		return m
	}

	a := build("ACC1")
	b := build("ACC2")

	d := Compare(a, b)
	require.Len(t, d.Groups, 1)
	require.Len(t, d.Groups[0].Entries, 1)

	inner := d.Groups[0].Entries[0].Diff
	require.Len(t, inner.Groups, 1)
	assert.Equal(t, 78, inner.Groups[0].Tag)
	require.Len(t, inner.Groups[0].Entries, 1)

	leaf := inner.Groups[0].Entries[0].Diff
	require.Len(t, leaf.Values, 1)
	assert.Equal(t, 79, leaf.Values[0].Tag)
}

func TestDiffStringIsReadable(t *testing.T) {
	d := Compare(New(), New())
	assert.Equal(t, "equal", d.String())

	a := New()
	a.Set(55, "VOD.L")
	d = Compare(a, New())
	assert.Contains(t, d.String(), "only left: [55]")
}
