// codec.go
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

// Package codec transforms raw delimiter-separated tag=value buffers into
// message containers and back. Decoding and encoding are pure, CPU-bound and
// message-type agnostic: repeating-group structure comes from an injected
// Specification, value typing from injected converters, and both are optional.
package codec

import (
	"bitbucket.org/edgewater/fixmsg/message"
	"bitbucket.org/edgewater/fixmsg/values"
)

// SOH is the standard FIX field separator.
const SOH byte = 0x01

// Well-known framing tags.
const (
	tagBeginString = 8
	tagBodyLength  = 9
	tagCheckSum    = 10
	tagMsgType     = 35
)

// GroupSpec describes one repeating group: its counting tag, the tag that
// opens each entry, the declared member set, and any nested groups.
type GroupSpec interface {
	CountTag() int
	FirstTag() int
	Member(tag int) bool
	Nested(tag int) (GroupSpec, bool)
}

// Specification is the read-only query capability the codec needs to delimit
// repeating groups. Implementations must be safe for concurrent readers; the
// spec package provides one built from QuickFIX dictionary XML, and tests can
// supply doubles.
type Specification interface {
	// Group reports whether tag opens a repeating group in messages of the
	// given type, and returns the group's spec when it does.
	Group(msgType string, tag int) (GroupSpec, bool)
}

var _ message.Encoder = (*Codec)(nil)

// Codec is a stateless decode/encode pair. The zero value is not usable;
// construct with New. A Codec is safe for concurrent use.
type Codec struct {
	separator     byte
	spec          Specification
	converters    values.Map
	lenientGroups bool
	integrity     bool
	rawTrailer    bool
	requireSpec   bool
}

// Option configures a Codec.
type Option func(*Codec)

// WithSeparator sets the byte separating tag=value pairs. Default is SOH;
// captured logs commonly use '|' or ';'.
func WithSeparator(sep byte) Option {
	return func(c *Codec) { c.separator = sep }
}

// WithSpecification binds the specification that enables repeating-group
// parsing. Without one, every tag is treated as a scalar and raw duplicates
// are preserved.
func WithSpecification(s Specification) Option {
	return func(c *Codec) { c.spec = s }
}

// WithConverters maps tags to value converters applied on decode (populating
// Field.Typed) and on encode (serialising Field.Typed when set).
func WithConverters(m values.Map) Option {
	return func(c *Codec) { c.converters = m }
}

// WithLenientGroups disables strict entry-count enforcement: group parsing
// stops at the first non-member tag and the declared count is not checked.
// Strict enforcement is the default.
func WithLenientGroups() Option {
	return func(c *Codec) { c.lenientGroups = true }
}

// WithIntegrityChecks makes Decode verify tags 9 and 10 against the buffer
// content, failing with ErrBodyLengthMismatch or ErrChecksumMismatch. Off by
// default so that deliberately broken test messages still decode.
func WithIntegrityChecks() Option {
	return func(c *Codec) { c.integrity = true }
}

// WithRawTrailer stops Encode from recomputing tags 9 and 10: fields are
// emitted exactly as stored, which allows constructing intentionally
// malformed messages. By default the trailer is recomputed.
func WithRawTrailer() Option {
	return func(c *Codec) { c.rawTrailer = true }
}

// WithRequiredSpecification makes Decode fail with ErrSpecificationMissing
// when no specification is bound, instead of the default scalar fallback.
func WithRequiredSpecification() Option {
	return func(c *Codec) { c.requireSpec = true }
}

// New returns a codec with the given options applied. Defaults: SOH
// separator, no specification, no converters, strict group counts, no
// decode-time integrity checks, trailer recomputed on encode.
func New(opts ...Option) *Codec {
	c := &Codec{separator: SOH}
	for _, opt := range opts {
		opt(c)
	}

	return c
}
