// message.go
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

// Package message holds the in-memory representation of a FIX message: an
// ordered sequence of tag/value fields with duplicate-tag support, repeating
// groups, and an order-insensitive comparator.
//
// A Message is not safe for concurrent mutation. Concurrent readers are fine
// as long as no writer is active; mutating a message while iterating over it
// is not supported.
package message

import (
	"errors"
	"fmt"
	"iter"
	"slices"
	"strconv"
)

var (
	// ErrKeyNotFound is returned by lookups of a tag that is absent.
	ErrKeyNotFound = errors.New("key not found")

	// ErrNotGroup is returned when a group lookup hits a scalar field.
	ErrNotGroup = errors.New("not a repeating group")
)

// Field is a single entry of a message. Group is non-nil when the entry is a
// repeating group, in which case Tag is the group's counting tag and Value is
// ignored. Typed optionally carries a converted value alongside the raw one.
type Field struct {
	Tag   int
	Value string
	Typed any
	Group *Group
}

// Message is an ordered sequence of fields. The slice is the single source of
// truth; the tag index is derived from it and rebuilt on structural change.
type Message struct {
	fields []Field
	index  map[int][]int // tag -> positions, storage order
}

// New returns an empty message.
func New() *Message {
	return &Message{index: make(map[int][]int)}
}

// FromPairs builds a message by appending the given tag/value pairs in order.
func FromPairs(pairs ...Field) *Message {
	m := New()
	for _, f := range pairs {
		m.append(f)
	}
	return m
}

func (m *Message) append(f Field) {
	m.fields = append(m.fields, f)
	m.index[f.Tag] = append(m.index[f.Tag], len(m.fields)-1)
}

func (m *Message) rebuildIndex() {
	m.index = make(map[int][]int, len(m.fields))
	for i, f := range m.fields {
		m.index[f.Tag] = append(m.index[f.Tag], i)
	}
}

// Len returns the number of field entries, counting a repeating group as one.
func (m *Message) Len() int {
	return len(m.fields)
}

// Has reports whether the tag is present at the top level of the message.
func (m *Message) Has(tag int) bool {
	return len(m.index[tag]) > 0
}

// Set assigns a value to a tag. If the tag is already present its first
// occurrence is replaced in place (position preserved) and any later
// duplicates are dropped; otherwise the field is appended. Setting a counting
// tag replaces the whole group entry with a scalar.
func (m *Message) Set(tag int, value string) {
	m.SetTyped(tag, value, nil)
}

// SetTyped is Set with an accompanying converted value.
func (m *Message) SetTyped(tag int, value string, typed any) {
	positions := m.index[tag]
	if len(positions) == 0 {
		m.append(Field{Tag: tag, Value: value, Typed: typed})
		return
	}

	m.fields[positions[0]] = Field{Tag: tag, Value: value, Typed: typed}

	if len(positions) > 1 {
		m.deletePositions(positions[1:])
	}
}

// Add appends a field unconditionally, allowing duplicate tags.
func (m *Message) Add(tag int, value string) {
	m.append(Field{Tag: tag, Value: value})
}

// AddField appends a fully populated field unconditionally.
func (m *Message) AddField(f Field) {
	m.append(f)
}

// SetGroup binds a repeating group at its counting tag. An existing entry for
// the counting tag is replaced in place; otherwise the group is appended.
func (m *Message) SetGroup(g *Group) {
	positions := m.index[g.countTag]
	if len(positions) == 0 {
		m.append(Field{Tag: g.countTag, Group: g})
		return
	}

	m.fields[positions[0]] = Field{Tag: g.countTag, Group: g}

	if len(positions) > 1 {
		m.deletePositions(positions[1:])
	}
}

// Get returns the value of the first occurrence of the tag. For a repeating
// group entry the group's entry count is returned, that being the wire value
// of the counting tag.
func (m *Message) Get(tag int) (string, error) {
	f, err := m.first(tag)
	if err != nil {
		return "", err
	}

	if f.Group != nil {
		return strconv.Itoa(f.Group.Len()), nil
	}

	return f.Value, nil
}

// GetAll returns the values of every top-level occurrence of the tag, in
// storage order. The result is nil when the tag is absent.
func (m *Message) GetAll(tag int) []string {
	positions := m.index[tag]
	if len(positions) == 0 {
		return nil
	}

	out := make([]string, 0, len(positions))
	for _, i := range positions {
		f := m.fields[i]
		if f.Group != nil {
			out = append(out, strconv.Itoa(f.Group.Len()))
			continue
		}
		out = append(out, f.Value)
	}

	return out
}

// Typed returns the converted value of the first occurrence of the tag, or
// nil when no converter was applied.
func (m *Message) Typed(tag int) (any, error) {
	f, err := m.first(tag)
	if err != nil {
		return nil, err
	}

	return f.Typed, nil
}

// Group returns the repeating group bound at the given counting tag.
func (m *Message) Group(tag int) (*Group, error) {
	f, err := m.first(tag)
	if err != nil {
		return nil, err
	}

	if f.Group == nil {
		return nil, fmt.Errorf("tag %d: %w", tag, ErrNotGroup)
	}

	return f.Group, nil
}

func (m *Message) first(tag int) (Field, error) {
	positions := m.index[tag]
	if len(positions) == 0 {
		return Field{}, fmt.Errorf("tag %d: %w", tag, ErrKeyNotFound)
	}

	return m.fields[positions[0]], nil
}

// Remove deletes every top-level occurrence of the tag. Removing a counting
// tag removes the entire group. It reports whether anything was removed.
func (m *Message) Remove(tag int) bool {
	positions := m.index[tag]
	if len(positions) == 0 {
		return false
	}

	m.deletePositions(positions)
	return true
}

func (m *Message) deletePositions(positions []int) {
	drop := make(map[int]bool, len(positions))
	for _, i := range positions {
		drop[i] = true
	}

	kept := m.fields[:0]
	for i, f := range m.fields {
		if !drop[i] {
			kept = append(kept, f)
		}
	}

	m.fields = kept
	m.rebuildIndex()
}

// Fields yields every field entry in storage order. The sequence is lazy and
// restartable; mutating the message between or during iterations invalidates
// it. Group pointers yielded here are owned by the message.
func (m *Message) Fields() iter.Seq[Field] {
	return func(yield func(Field) bool) {
		for _, f := range m.fields {
			if !yield(f) {
				return
			}
		}
	}
}

// Anywhere reports whether the tag appears at the top level or inside any
// repeating group entry, at any depth.
func (m *Message) Anywhere(tag int) bool {
	if m.Has(tag) {
		return true
	}

	for _, f := range m.fields {
		if f.Group == nil {
			continue
		}
		for _, entry := range f.Group.entries {
			if entry.Anywhere(tag) {
				return true
			}
		}
	}

	return false
}

// AllTags returns every distinct tag present in the message, including tags
// that only occur inside repeating groups. The result is sorted.
func (m *Message) AllTags() []int {
	seen := make(map[int]bool)
	m.collectTags(seen)

	out := make([]int, 0, len(seen))
	for tag := range seen {
		out = append(out, tag)
	}
	slices.Sort(out)

	return out
}

func (m *Message) collectTags(seen map[int]bool) {
	for _, f := range m.fields {
		seen[f.Tag] = true
		if f.Group != nil {
			for _, entry := range f.Group.entries {
				entry.collectTags(seen)
			}
		}
	}
}

// UpdateAll forces every existing occurrence of the tag, top level or inside
// any repeating group, to the given value. Tags that are absent stay absent.
func (m *Message) UpdateAll(tag int, value string) {
	for i := range m.fields {
		f := &m.fields[i]
		if f.Tag == tag && f.Group == nil {
			f.Value = value
			f.Typed = nil
		}
		if f.Group != nil {
			for _, entry := range f.Group.entries {
				entry.UpdateAll(tag, value)
			}
		}
	}
}

// Rewrite applies fn to every scalar field, at the top level and inside
// repeating-group entries at any depth. When fn's second result is true the
// field's value is replaced in place and its typed value cleared.
func (m *Message) Rewrite(fn func(tag int, value string) (string, bool)) {
	for i := range m.fields {
		f := &m.fields[i]
		if f.Group != nil {
			for _, entry := range f.Group.entries {
				entry.Rewrite(fn)
			}
			continue
		}
		if v, ok := fn(f.Tag, f.Value); ok {
			f.Value = v
			f.Typed = nil
		}
	}
}

// Copy returns a deep copy: repeating groups and their entries are cloned.
func (m *Message) Copy() *Message {
	out := New()
	for _, f := range m.fields {
		if f.Group != nil {
			f.Group = f.Group.Copy()
		}
		out.append(f)
	}

	return out
}

// Encoder is the serialisation capability a message delegates to. The codec
// package provides the implementation.
type Encoder interface {
	Encode(m *Message) ([]byte, error)
}

// ToBuffer serialises the message through the given encoder.
func (m *Message) ToBuffer(enc Encoder) ([]byte, error) {
	return enc.Encode(m)
}

// Equal reports semantic equality under the package comparator: scalar tag
// order is irrelevant, group entry order matters, and the integrity fields
// 9 (BodyLength) and 10 (CheckSum) are ignored.
func (m *Message) Equal(other *Message) bool {
	return Equal(m, other)
}

// String renders the message with "|" separators, for debugging only.
func (m *Message) String() string {
	out := ""
	for _, f := range m.fields {
		if f.Group != nil {
			out += fmt.Sprintf("%d=%d|", f.Tag, f.Group.Len())
			for _, entry := range f.Group.entries {
				out += entry.String()
			}
			continue
		}
		out += fmt.Sprintf("%d=%s|", f.Tag, f.Value)
	}

	return out
}
