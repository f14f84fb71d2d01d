// checksum.go
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
	"fmt"
	"strconv"
)

// Checksum computes the FIX checksum of an encoded buffer: the sum of every
// byte preceding the tag-10 field, modulo 256, rendered as three digits. It
// fails when the buffer has no tag-10 field.
func Checksum(buf []byte, separator byte) (string, error) {
	toks, err := tokenize(buf, separator)
	if err != nil {
		return "", err
	}

	tok10, ok := lastWithTag(toks, tagCheckSum)
	if !ok {
		return "", fmt.Errorf("%w: no checksum field in buffer", ErrChecksumMismatch)
	}

	return fmt.Sprintf("%03d", byteSum(buf[:tok10.start])%256), nil
}

// BodyLength computes the FIX body length of an encoded buffer: the byte
// count from immediately after the tag-9 field to immediately before the
// tag-10 field.
func BodyLength(buf []byte, separator byte) (int, error) {
	toks, err := tokenize(buf, separator)
	if err != nil {
		return 0, err
	}

	tok9, ok := lastWithTag(toks, tagBodyLength)
	if !ok {
		return 0, fmt.Errorf("%w: no body length field in buffer", ErrBodyLengthMismatch)
	}
	tok10, ok := lastWithTag(toks, tagCheckSum)
	if !ok {
		return 0, fmt.Errorf("%w: no checksum field in buffer", ErrBodyLengthMismatch)
	}

	return tok10.start - tok9.end, nil
}

// validateIntegrity verifies the stored tags 9 and 10 against the buffer.
// Mismatches are reported, never corrected.
func validateIntegrity(buf []byte, toks []token) error {
	tok10, ok := lastWithTag(toks, tagCheckSum)
	if !ok {
		return fmt.Errorf("%w: no checksum field in buffer", ErrChecksumMismatch)
	}

	want := fmt.Sprintf("%03d", byteSum(buf[:tok10.start])%256)
	if tok10.value != want {
		return fmt.Errorf("%w: got %s, computed %s", ErrChecksumMismatch, tok10.value, want)
	}

	tok9, ok := lastWithTag(toks, tagBodyLength)
	if !ok {
		return fmt.Errorf("%w: no body length field in buffer", ErrBodyLengthMismatch)
	}

	declared, err := strconv.Atoi(tok9.value)
	if err != nil {
		return fmt.Errorf("%w: body length %q is not a number", ErrBodyLengthMismatch, tok9.value)
	}
	if actual := tok10.start - tok9.end; declared != actual {
		return fmt.Errorf("%w: declared %d, measured %d", ErrBodyLengthMismatch, declared, actual)
	}

	return nil
}

func lastWithTag(toks []token, tag int) (token, bool) {
	for i := len(toks) - 1; i >= 0; i-- {
		if toks[i].tag == tag {
			return toks[i], true
		}
	}

	return token{}, false
}

func byteSum(buf []byte) int {
	sum := 0
	for _, b := range buf {
		sum += int(b)
	}

	return sum
}
