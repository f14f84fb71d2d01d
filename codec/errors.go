// errors.go
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

import "errors"

// Decode and encode errors are wrapped sentinels; match them with errors.Is.
// None of them leaves a partially decoded message or a partial buffer behind.
var (
	// ErrMalformedBuffer marks a token that cannot be parsed as tag=value,
	// or a value that a registered converter rejects.
	ErrMalformedBuffer = errors.New("malformed buffer")

	// ErrGroupCountMismatch marks a repeating group whose declared entry
	// count differs from the entries actually present (strict mode only).
	ErrGroupCountMismatch = errors.New("group count mismatch")

	// ErrUnknownGroupMember marks a tag inside a group's range that cannot
	// be placed in an entry.
	ErrUnknownGroupMember = errors.New("unknown group member")

	// ErrChecksumMismatch marks a tag-10 value that does not match the
	// buffer content (integrity checks only).
	ErrChecksumMismatch = errors.New("checksum mismatch")

	// ErrBodyLengthMismatch marks a tag-9 value that does not match the
	// buffer content (integrity checks only).
	ErrBodyLengthMismatch = errors.New("body length mismatch")

	// ErrSpecificationMissing is returned by Decode when the codec was
	// built with WithRequiredSpecification but no specification is bound.
	ErrSpecificationMissing = errors.New("specification missing")
)
