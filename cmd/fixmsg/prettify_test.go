// prettify_test.go
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
package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"bitbucket.org/edgewater/fixmsg/codec"
	"bitbucket.org/edgewater/fixmsg/fix"
)

func init() {
	DisableColours()
	getTermSize = func(int) (int, int, error) { return 0, 0, errors.New("not a terminal") }
}

func newTestPrettifier(opts ...codec.Option) *prettifier {
	opts = append([]codec.Option{codec.WithSeparator('|')}, opts...)
	return &prettifier{
		codec:      codec.New(opts...),
		separator:  '|',
		obfuscator: fix.CreateObfuscator(nil, false),
	}
}

func TestPrettifyWithoutDictionary(t *testing.T) {
	p := newTestPrettifier()

	m, err := p.codec.Decode([]byte("8=FIX.4.2|35=A|"))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	got := p.Prettify(m)

	for _, want := range []string{"   8 (8): FIX.4.2", "  35 (35): A"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestHandleLogLinePassesPlainTextThrough(t *testing.T) {
	p := newTestPrettifier()
	var out bytes.Buffer

	p.handleLogLine("2025-06-17 14:30:00 session established", &out, "====\n")

	if !strings.Contains(out.String(), "session established") {
		t.Errorf("plain line lost: %q", out.String())
	}
	if strings.Contains(out.String(), "====") {
		t.Errorf("no separator expected for plain lines: %q", out.String())
	}
}

func TestHandleLogLineExtractsEmbeddedMessage(t *testing.T) {
	p := newTestPrettifier()
	var out bytes.Buffer

	p.handleLogLine("14:30:00 OUT 8=FIX.4.2|9=5|35=A|10=123| eof", &out, "====\n")

	got := out.String()
	if !strings.Contains(got, "14:30:00 OUT") {
		t.Errorf("log prefix lost: %q", got)
	}
	if !strings.Contains(got, "  35 (35): A") {
		t.Errorf("decoded field missing: %q", got)
	}
}

func TestHandleLogLineReportsDecodeErrors(t *testing.T) {
	// The regex finds the frame, but the codec rejects the empty field inside.
	p := newTestPrettifier()
	var out bytes.Buffer

	p.handleLogLine("8=FIX.4.2||35=A|10=123|", &out, "====\n")

	if !strings.Contains(out.String(), "malformed") {
		t.Errorf("decode error not surfaced: %q", out.String())
	}
}

func TestFindFixMessageIndices(t *testing.T) {
	p := newTestPrettifier()

	line := "a 8=FIX.4.2|35=A|10=111| b 8=FIX.4.2|35=5|10=222| c"
	matches := p.findFixMessageIndices(line)

	if len(matches) != 2 {
		t.Fatalf("found %d messages, want 2", len(matches))
	}

	msgs, _ := extractFixMessagesAndFormat(line, matches)
	if msgs[0] != "8=FIX.4.2|35=A|10=111|" || msgs[1] != "8=FIX.4.2|35=5|10=222|" {
		t.Errorf("extracted %q", msgs)
	}
}

func TestCheckIntegrityFlagsStaleTrailer(t *testing.T) {
	p := newTestPrettifier()
	p.validate = true

	raw := []byte("8=FIX.4.2|9=99|35=A|10=000|")
	m, err := p.codec.Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	problems := p.checkIntegrity(raw, m)
	if len(problems) != 2 {
		t.Fatalf("problems = %v, want checksum and body length", problems)
	}
}

func TestCheckIntegrityAcceptsConsistentTrailer(t *testing.T) {
	p := newTestPrettifier()
	p.validate = true

	m, err := p.codec.Decode([]byte("8=FIX.4.2|9=0|35=A|10=000|"))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	// Re-encode to get a consistent frame, then verify it is clean.
	raw, err := p.codec.Encode(m)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	m2, err := p.codec.Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if problems := p.checkIntegrity(raw, m2); len(problems) != 0 {
		t.Errorf("unexpected problems: %v", problems)
	}
}

func TestPrettifyFilesReportsMissingFile(t *testing.T) {
	p := newTestPrettifier()
	var out, errOut bytes.Buffer

	if code := p.PrettifyFiles([]string{"/no/such/file.log"}, &out, &errOut); code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if !strings.Contains(errOut.String(), "Cannot open file") {
		t.Errorf("missing error report: %q", errOut.String())
	}
}

func TestStreamLog(t *testing.T) {
	p := newTestPrettifier()
	var out bytes.Buffer

	in := strings.NewReader("plain line\n8=FIX.4.2|9=5|35=A|10=123|\n")
	if err := p.streamLog(in, &out, &out); err != nil {
		t.Fatalf("streamLog: %v", err)
	}

	got := out.String()
	if !strings.Contains(got, "plain line") {
		t.Errorf("plain line lost: %q", got)
	}
	if !strings.Contains(got, "  35 (35): A") {
		t.Errorf("decoded message missing: %q", got)
	}
}
