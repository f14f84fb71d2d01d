// spec.go
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

// Package spec loads QuickFIX-format dictionary XML into a read-only,
// queryable specification: tag names and types, enum descriptions, and the
// per-message-type repeating-group structure the codec needs. A loaded Spec
// is immutable and safe to share across concurrently decoding goroutines.
package spec

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strconv"

	"golang.org/x/net/html/charset"

	"bitbucket.org/edgewater/fixmsg/codec"
	"bitbucket.org/edgewater/fixmsg/values"
)

type fieldDef struct {
	name  string
	tag   int
	typ   string
	enums map[string]string
}

// group implements codec.GroupSpec. The member set includes every field the
// composition contributes (components resolved) plus nested counting tags.
type group struct {
	countTag int
	firstTag int
	members  map[int]bool
	nested   map[int]*group
}

func (g *group) CountTag() int { return g.countTag }

func (g *group) FirstTag() int { return g.firstTag }

func (g *group) Member(tag int) bool { return g.members[tag] }

func (g *group) Nested(tag int) (codec.GroupSpec, bool) {
	sub, ok := g.nested[tag]
	if !ok {
		return nil, false
	}

	return sub, true
}

type messageDef struct {
	name    string
	msgType string
	groups  map[int]*group // top-level groups, including component-contributed
}

var _ codec.Specification = (*Spec)(nil)

// Spec is the loaded dictionary.
type Spec struct {
	version  string
	byTag    map[int]fieldDef
	byName   map[string]int
	messages map[string]*messageDef
}

// LoadFile loads a QuickFIX dictionary from the given path.
func LoadFile(path string) (*Spec, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	s, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return s, nil
}

// Load parses a QuickFIX dictionary from the reader. Non-UTF-8 dictionaries
// (several official ones declare ISO-8859-1) are handled via the charset
// reader.
func Load(r io.Reader) (*Spec, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel

	var dict dictionary
	if err := dec.Decode(&dict); err != nil {
		return nil, fmt.Errorf("parse dictionary: %w", err)
	}

	return build(&dict)
}

func build(dict *dictionary) (*Spec, error) {
	s := &Spec{
		version:  "FIX" + dict.Major + "." + dict.Minor,
		byTag:    make(map[int]fieldDef, len(dict.Fields)),
		byName:   make(map[string]int, len(dict.Fields)),
		messages: make(map[string]*messageDef, len(dict.Messages)),
	}

	for _, f := range dict.Fields {
		def := fieldDef{name: f.Name, tag: f.Number, typ: f.Type}
		if len(f.Values) > 0 {
			def.enums = make(map[string]string, len(f.Values))
			for _, v := range f.Values {
				def.enums[v.Enum] = v.Description
			}
		}
		s.byTag[f.Number] = def
		s.byName[f.Name] = f.Number
	}

	comps := make(map[string]componentElem, len(dict.Components))
	for _, c := range dict.Components {
		comps[c.Name] = c
	}

	b := &builder{spec: s, comps: comps}

	for _, m := range dict.Messages {
		def := &messageDef{name: m.Name, msgType: m.MsgType, groups: make(map[int]*group)}

		for _, g := range m.Groups {
			built, err := b.buildGroup(g)
			if err != nil {
				return nil, fmt.Errorf("message %s: %w", m.Name, err)
			}
			def.groups[built.countTag] = built
		}

		for _, cref := range m.Components {
			for _, built := range b.componentGroups(cref.Name) {
				def.groups[built.countTag] = built
			}
		}

		s.messages[m.MsgType] = def
	}

	return s, nil
}

type builder struct {
	spec  *Spec
	comps map[string]componentElem
}

// buildGroup resolves one group element: counting tag from the group name,
// first-member tag from the first resolvable field of the composition,
// members from fields plus component leaves plus nested counting tags.
func (b *builder) buildGroup(elem groupElem) (*group, error) {
	countTag, ok := b.spec.byName[elem.Name]
	if !ok {
		return nil, fmt.Errorf("group %q: counting field not defined", elem.Name)
	}

	g := &group{
		countTag: countTag,
		members:  make(map[int]bool),
		nested:   make(map[int]*group),
	}

	for _, ref := range elem.Fields {
		tag, ok := b.spec.byName[ref.Name]
		if !ok {
			continue // unknown field refs are skipped, matching lenient dictionary handling
		}
		if g.firstTag == 0 {
			g.firstTag = tag
		}
		g.members[tag] = true
	}

	for _, cref := range elem.Components {
		leaves, subGroups := b.componentMembers(cref.Name)
		for _, tag := range leaves {
			if g.firstTag == 0 {
				g.firstTag = tag
			}
			g.members[tag] = true
		}
		for _, sub := range subGroups {
			g.nested[sub.countTag] = sub
			g.members[sub.countTag] = true
		}
	}

	for _, sub := range elem.Groups {
		built, err := b.buildGroup(sub)
		if err != nil {
			return nil, err
		}
		g.nested[built.countTag] = built
		g.members[built.countTag] = true
		if g.firstTag == 0 {
			g.firstTag = built.countTag
		}
	}

	if g.firstTag == 0 {
		return nil, fmt.Errorf("group %q: no resolvable member fields", elem.Name)
	}

	return g, nil
}

// componentMembers returns the leaf field tags a component contributes (in
// declaration order, components resolved recursively) and its groups.
func (b *builder) componentMembers(name string) ([]int, []*group) {
	comp, ok := b.comps[name]
	if !ok {
		return nil, nil
	}

	var leaves []int
	var groups []*group

	for _, ref := range comp.Fields {
		if tag, ok := b.spec.byName[ref.Name]; ok {
			leaves = append(leaves, tag)
		}
	}

	for _, cref := range comp.Components {
		subLeaves, subGroups := b.componentMembers(cref.Name)
		leaves = append(leaves, subLeaves...)
		groups = append(groups, subGroups...)
	}

	for _, g := range comp.Groups {
		if built, err := b.buildGroup(g); err == nil {
			groups = append(groups, built)
		}
	}

	return leaves, groups
}

func (b *builder) componentGroups(name string) []*group {
	_, groups := b.componentMembers(name)
	return groups
}

// Version returns the dictionary version, e.g. "FIX4.2".
func (s *Spec) Version() string {
	return s.version
}

// FieldName returns the tag's name, or the tag number itself when unknown.
func (s *Spec) FieldName(tag int) string {
	if def, ok := s.byTag[tag]; ok {
		return def.name
	}

	return strconv.Itoa(tag)
}

// FieldType returns the tag's QuickFIX type name, or "" when unknown.
func (s *Spec) FieldType(tag int) string {
	return s.byTag[tag].typ
}

// TagByName resolves a field name to its tag.
func (s *Spec) TagByName(name string) (int, bool) {
	tag, ok := s.byName[name]
	return tag, ok
}

// EnumDescription returns the description of an enumerated value, or "".
func (s *Spec) EnumDescription(tag int, value string) string {
	if def, ok := s.byTag[tag]; ok {
		return def.enums[value]
	}

	return ""
}

// MessageName returns the message name for a MsgType value, or "".
func (s *Spec) MessageName(msgType string) string {
	if def, ok := s.messages[msgType]; ok {
		return def.name
	}

	return ""
}

// Group implements codec.Specification: it reports whether tag opens a
// repeating group in messages of the given type.
func (s *Spec) Group(msgType string, tag int) (codec.GroupSpec, bool) {
	def, ok := s.messages[msgType]
	if !ok {
		return nil, false
	}

	g, ok := def.groups[tag]
	if !ok {
		return nil, false
	}

	return g, true
}

// Converters builds a values.Map covering every field whose dictionary type
// has a conventional converter, ready to hand to codec.WithConverters.
func (s *Spec) Converters() values.Map {
	out := make(values.Map)
	for tag, def := range s.byTag {
		if conv, ok := values.ByType(def.typ); ok {
			out[tag] = conv
		}
	}

	return out
}
