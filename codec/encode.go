// encode.go
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
package codec

import (
	"bytes"
	"fmt"
	"strconv"

	"bitbucket.org/edgewater/fixmsg/message"
)

// Encode serialises a message in container order, expanding each repeating
// group into its counting tag followed by the entries' fields, recursively.
// By default the frame is canonicalised — BeginString first, a recomputed
// BodyLength second, a recomputed CheckSum last; WithRawTrailer emits the
// fields exactly as stored instead. Errors return no partial buffer.
func (c *Codec) Encode(m *message.Message) ([]byte, error) {
	if c.rawTrailer {
		var out bytes.Buffer
		for f := range m.Fields() {
			if err := c.writeField(&out, f); err != nil {
				return nil, err
			}
		}
		return out.Bytes(), nil
	}

	return c.encodeFramed(m)
}

// encodeFramed writes 8, then 9 computed over the body, then the body (every
// field except 8, 9 and 10, in container order), then 10 computed over
// everything written so far.
func (c *Codec) encodeFramed(m *message.Message) ([]byte, error) {
	var body bytes.Buffer
	var begin *message.Field

	for f := range m.Fields() {
		switch f.Tag {
		case tagBeginString:
			if begin == nil {
				f := f
				begin = &f
			}
			continue
		case tagBodyLength, tagCheckSum:
			continue
		}
		if err := c.writeField(&body, f); err != nil {
			return nil, err
		}
	}

	var out bytes.Buffer
	if begin != nil {
		if err := c.writeField(&out, *begin); err != nil {
			return nil, err
		}
	}

	out.WriteString("9=")
	out.WriteString(strconv.Itoa(body.Len()))
	out.WriteByte(c.separator)
	out.Write(body.Bytes())

	sum := 0
	for _, b := range out.Bytes() {
		sum += int(b)
	}
	fmt.Fprintf(&out, "10=%03d", sum%256)
	out.WriteByte(c.separator)

	return out.Bytes(), nil
}

func (c *Codec) writeField(out *bytes.Buffer, f message.Field) error {
	if f.Group != nil {
		return c.writeGroup(out, f.Group)
	}

	value := f.Value
	if f.Typed != nil {
		if conv, ok := c.converters[f.Tag]; ok {
			encoded, err := conv.Encode(f.Typed)
			if err != nil {
				return fmt.Errorf("encode tag %d: %w", f.Tag, err)
			}
			value = encoded
		}
	}

	out.WriteString(strconv.Itoa(f.Tag))
	out.WriteByte('=')
	out.WriteString(value)
	out.WriteByte(c.separator)

	return nil
}

func (c *Codec) writeGroup(out *bytes.Buffer, g *message.Group) error {
	out.WriteString(strconv.Itoa(g.CountTag()))
	out.WriteByte('=')
	out.WriteString(strconv.Itoa(g.Len()))
	out.WriteByte(c.separator)

	for _, entry := range g.Entries() {
		for f := range entry.Fields() {
			if err := c.writeField(out, f); err != nil {
				return err
			}
		}
	}

	return nil
}
