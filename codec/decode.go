// decode.go
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

// token is one tag=value pair with its byte range in the buffer. end points
// just past the trailing separator (or to the buffer end for the last token),
// so tok.end .. next.start never skips bytes.
type token struct {
	tag   int
	value string
	start int
	end   int
}

// Decode parses a delimiter-separated tag=value buffer into a message. When
// a specification is bound, counting tags it recognises for the message's
// MsgType hand control to the repeating-group parser; otherwise every tag is
// a scalar and duplicates are kept in order. On error the returned message is
// nil — decoding never yields a partial container.
func (c *Codec) Decode(buf []byte) (*message.Message, error) {
	if c.spec == nil && c.requireSpec {
		return nil, fmt.Errorf("%w: codec has no bound specification", ErrSpecificationMissing)
	}

	toks, err := tokenize(buf, c.separator)
	if err != nil {
		return nil, err
	}

	if c.integrity {
		if err := validateIntegrity(buf, toks); err != nil {
			return nil, err
		}
	}

	msgType := ""
	for _, t := range toks {
		if t.tag == tagMsgType {
			msgType = t.value
			break
		}
	}

	p := &parser{codec: c, toks: toks}
	m := message.New()

	for p.pos < len(p.toks) {
		tok := p.toks[p.pos]

		if c.spec != nil {
			if gs, ok := c.spec.Group(msgType, tok.tag); ok {
				p.pos++
				grp, err := p.parseGroup(gs, tok)
				if err != nil {
					return nil, err
				}
				m.AddField(message.Field{Tag: tok.tag, Group: grp})
				continue
			}
		}

		p.pos++
		f, err := c.field(tok)
		if err != nil {
			return nil, err
		}
		m.AddField(f)
	}

	return m, nil
}

// tokenize splits the buffer on the separator. Every non-empty segment must
// be tag=value with a positive integer tag; a trailing separator is accepted,
// an empty segment anywhere else is not.
func tokenize(buf []byte, sep byte) ([]token, error) {
	if len(buf) == 0 {
		return nil, fmt.Errorf("%w: empty buffer", ErrMalformedBuffer)
	}

	var toks []token
	start := 0

	for i := 0; i <= len(buf); i++ {
		if i < len(buf) && buf[i] != sep {
			continue
		}

		if i == start {
			if i == len(buf) {
				break // trailing separator
			}
			return nil, fmt.Errorf("%w: empty field at offset %d", ErrMalformedBuffer, i)
		}

		seg := buf[start:i]
		eq := bytes.IndexByte(seg, '=')
		if eq <= 0 {
			return nil, fmt.Errorf("%w: %q is not tag=value", ErrMalformedBuffer, seg)
		}

		tag, err := strconv.Atoi(string(seg[:eq]))
		if err != nil || tag <= 0 {
			return nil, fmt.Errorf("%w: invalid tag %q", ErrMalformedBuffer, seg[:eq])
		}

		end := i
		if i < len(buf) {
			end = i + 1 // include the separator
		}
		toks = append(toks, token{tag: tag, value: string(seg[eq+1:]), start: start, end: end})
		start = i + 1
	}

	return toks, nil
}

// field builds a scalar field, applying the tag's converter when one is
// registered. A value the converter rejects is a malformed buffer.
func (c *Codec) field(tok token) (message.Field, error) {
	f := message.Field{Tag: tok.tag, Value: tok.value}

	if conv, ok := c.converters[tok.tag]; ok {
		typed, err := conv.Decode(tok.value)
		if err != nil {
			return f, fmt.Errorf("%w: tag %d: %v", ErrMalformedBuffer, tok.tag, err)
		}
		f.Typed = typed
	}

	return f, nil
}

// parser carries the decode cursor. Group parsing is an explicit recursive
// descent over the token slice: each level consumes the contiguous run of
// tokens belonging to its group and leaves the cursor on the first token that
// does not.
type parser struct {
	codec *Codec
	toks  []token
	pos   int
}

func (p *parser) strict() bool {
	return !p.codec.lenientGroups
}

// parseGroup consumes the entries of one repeating group. Entries are
// delimited by the group's first-member tag; tags in the member set join the
// current entry; a nested counting tag recurses; anything else ends the
// group. In strict mode the declared count must match exactly.
func (p *parser) parseGroup(gs GroupSpec, countTok token) (*message.Group, error) {
	declared, err := strconv.Atoi(countTok.value)
	if err != nil || declared < 0 {
		return nil, fmt.Errorf("%w: group %d count %q is not a number",
			ErrMalformedBuffer, countTok.tag, countTok.value)
	}

	grp := message.NewGroup(gs.CountTag(), gs.FirstTag())

	if declared == 0 {
		// A declared count of zero is a valid empty group. Strictness still
		// rejects entries that follow anyway.
		if p.strict() && p.pos < len(p.toks) && p.toks[p.pos].tag == gs.FirstTag() {
			return nil, fmt.Errorf("%w: group %d declared 0 entries but entries follow",
				ErrGroupCountMismatch, gs.CountTag())
		}
		return grp, nil
	}

	var entry *message.Message

	for p.pos < len(p.toks) {
		tok := p.toks[p.pos]

		if tok.tag == gs.FirstTag() {
			if entry != nil {
				grp.Append(entry)
			}
			entry = message.New()
			f, err := p.codec.field(tok)
			if err != nil {
				return nil, err
			}
			entry.AddField(f)
			p.pos++
			continue
		}

		if nested, ok := gs.Nested(tok.tag); ok {
			if entry == nil {
				return nil, fmt.Errorf("%w: tag %d opens a nested group before first-member tag %d of group %d",
					ErrUnknownGroupMember, tok.tag, gs.FirstTag(), gs.CountTag())
			}
			p.pos++
			sub, err := p.parseGroup(nested, tok)
			if err != nil {
				return nil, err
			}
			entry.SetGroup(sub)
			continue
		}

		if gs.Member(tok.tag) {
			if entry == nil {
				return nil, fmt.Errorf("%w: tag %d inside group %d before first-member tag %d",
					ErrUnknownGroupMember, tok.tag, gs.CountTag(), gs.FirstTag())
			}
			f, err := p.codec.field(tok)
			if err != nil {
				return nil, err
			}
			entry.AddField(f)
			p.pos++
			continue
		}

		// Not ours: the group ends here and the token stays for the caller.
		break
	}

	if entry != nil {
		grp.Append(entry)
	}

	if p.strict() && grp.Len() != declared {
		return nil, fmt.Errorf("%w: group %d declared %d entries, found %d",
			ErrGroupCountMismatch, gs.CountTag(), declared, grp.Len())
	}

	return grp, nil
}
