// values.go
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

// Package values provides pluggable, two-way conversion between raw FIX field
// values and typed Go values. The codec stays value-type agnostic: it applies
// whatever converters the caller maps to tags and leaves everything else as
// raw strings.
package values

// Converter turns a raw wire value into a typed value and back. Decode and
// Encode must round-trip for any value the converter accepts.
type Converter interface {
	Decode(raw string) (any, error)
	Encode(v any) (string, error)
}

// Map binds tags to converters. A nil map disables typing entirely.
type Map map[int]Converter

// Merge returns a new Map containing the receiver's bindings overlaid with
// the argument's. The inputs are not modified.
func (m Map) Merge(other Map) Map {
	out := make(Map, len(m)+len(other))
	for tag, c := range m {
		out[tag] = c
	}
	for tag, c := range other {
		out[tag] = c
	}

	return out
}

// Defaults returns the conversions applied by convention in FIX test
// tooling: decimal for the price/quantity tags AvgPx (6), CumQty (14),
// LastPx (31), LastShares (32) and LeavesQty (151), timestamp for
// SendingTime (52) and date for ExpireDate (432).
func Defaults() Map {
	return Map{
		6:   Decimal{},
		14:  Decimal{},
		31:  Decimal{},
		32:  Decimal{},
		151: Decimal{},
		52:  UTCTimestamp{},
		432: UTCDateOnly{},
	}
}
