// prettify.go
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
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/term"

	"bitbucket.org/edgewater/fixmsg/codec"
	"bitbucket.org/edgewater/fixmsg/fix"
	"bitbucket.org/edgewater/fixmsg/message"
	"bitbucket.org/edgewater/fixmsg/spec"
)

var (
	ColourReset = "\033[0m"
	ColourLine  = "\033[38;5;244m"
	ColourTag   = "\033[38;5;81m"
	ColourName  = "\033[38;5;151m"
	ColourValue = "\033[38;5;228m"
	ColourEnum  = "\033[38;5;214m"
	ColourFile  = "\033[95m"
	ColourError = "\033[31m"
	ColourMsg   = "\033[97m"
	ColourTitle = "\033[31m"
)

func DisableColours() {
	ColourReset = ""
	ColourLine = ""
	ColourTag = ""
	ColourName = ""
	ColourValue = ""
	ColourEnum = ""
	ColourFile = ""
	ColourError = ""
	ColourMsg = ""
	ColourTitle = ""
}

var getTermSize = term.GetSize // allow override in tests

// prettifier renders decoded messages with names and enum descriptions from
// an optional dictionary.
type prettifier struct {
	codec      *codec.Codec
	dict       *spec.Spec // may be nil; tag numbers are shown instead
	separator  byte
	validate   bool
	obfuscator *fix.Obfuscator
}

// Prettify renders one decoded message, one field per line, with group
// entries indented under their counting tag.
func (p *prettifier) Prettify(m *message.Message) string {
	var sb strings.Builder
	p.writeFields(&sb, m, 1)
	return sb.String()
}

func (p *prettifier) writeFields(sb *strings.Builder, m *message.Message, depth int) {
	pad := strings.Repeat("    ", depth)

	for f := range m.Fields() {
		if f.Group != nil {
			fmt.Fprintf(sb, "%s%s%4d%s (%s%s%s): %s%d%s\n",
				pad,
				ColourTag, f.Tag, ColourReset,
				ColourName, p.name(f.Tag), ColourReset,
				ColourValue, f.Group.Len(), ColourReset,
			)
			for _, entry := range f.Group.Entries() {
				p.writeFields(sb, entry, depth+1)
			}
			continue
		}

		fmt.Fprintf(sb, "%s%s%4d%s (%s%s%s): %s%s%s",
			pad,
			ColourTag, f.Tag, ColourReset,
			ColourName, p.name(f.Tag), ColourReset,
			ColourValue, f.Value, ColourReset,
		)

		if desc := p.enum(f.Tag, f.Value); desc != "" {
			fmt.Fprintf(sb, " (%s%s%s)", ColourEnum, desc, ColourReset)
		}

		sb.WriteString("\n")
	}
}

func (p *prettifier) name(tag int) string {
	if p.dict == nil {
		return strconv.Itoa(tag)
	}
	return p.dict.FieldName(tag)
}

func (p *prettifier) enum(tag int, value string) string {
	if p.dict == nil {
		return ""
	}
	return p.dict.EnumDescription(tag, value)
}

// checkIntegrity reports stale body-length and checksum fields of a raw
// message buffer against its actual content.
func (p *prettifier) checkIntegrity(raw []byte, m *message.Message) []string {
	var problems []string

	if want, err := codec.Checksum(raw, p.separator); err == nil {
		if got, err := m.Get(10); err != nil || got != want {
			problems = append(problems, fmt.Sprintf("checksum mismatch: got %s, expected %s", got, want))
		}
	}

	if want, err := codec.BodyLength(raw, p.separator); err == nil {
		if got, err := m.Get(9); err != nil || got != strconv.Itoa(want) {
			problems = append(problems, fmt.Sprintf("body length mismatch: got %s, expected %d", got, want))
		}
	}

	return problems
}

// PrettifyFiles streams every supplied path (or stdin for "-" / no paths)
// through the prettifier. It returns a process exit code.
func (p *prettifier) PrettifyFiles(paths []string, out, errOut io.Writer) int {
	hadError := false

	if len(paths) == 0 {
		paths = []string{"-"}
	}

	for _, path := range paths {
		var (
			r io.Reader
			c io.Closer // nil when reading stdin
		)

		if path == "-" {
			fmt.Fprint(out, "Processing: (stdin)\n\n")
			r = os.Stdin
		} else {
			fmt.Fprint(out, "Processing: ", ColourFile, path, ColourReset, "\n\n")

			f, err := os.Open(path)
			if err != nil {
				fmt.Fprintln(errOut, ColourError+"Cannot open file:"+err.Error()+ColourReset)
				hadError = true
				continue
			}
			r, c = f, f
		}

		if err := p.streamLog(r, out, errOut); err != nil {
			fmt.Fprintln(errOut, ColourError+"Error reading input:"+err.Error()+ColourReset)
			hadError = true
		}

		if c != nil {
			c.Close()
		}
	}

	if hadError {
		return 1
	}

	return 0
}

func (p *prettifier) streamLog(in io.Reader, out, errOut io.Writer) error {
	scanner := bufio.NewScanner(in)
	termWidth := getTerminalWidth()
	separator := ColourTitle + strings.Repeat("=", termWidth) + ColourReset + "\n"

	for scanner.Scan() {
		line := p.obfuscator.Enabled(scanner.Text(), errOut)
		p.handleLogLine(line, out, separator)
	}

	return scanner.Err()
}

func (p *prettifier) handleLogLine(line string, out io.Writer, separator string) {
	matches := p.findFixMessageIndices(line)

	if len(matches) == 0 {
		fmt.Fprint(out, ColourLine, line, ColourReset, "\n")
		return
	}

	fixMessages, colouredLine := extractFixMessagesAndFormat(line, matches)
	fmt.Fprint(out, colouredLine)
	fmt.Fprint(out, separator)

	for _, raw := range fixMessages {
		p.processFixMessage(raw, out, separator)
	}
}

func (p *prettifier) processFixMessage(raw string, out io.Writer, separator string) {
	m, err := p.codec.Decode([]byte(raw))
	if err != nil {
		fmt.Fprintf(out, "%s== %s%s\n", ColourError, err, ColourReset)
		fmt.Fprint(out, separator)
		return
	}

	fmt.Fprint(out, p.Prettify(m))

	if p.validate {
		if problems := p.checkIntegrity([]byte(raw), m); len(problems) > 0 {
			fmt.Fprint(out, separator)
			for _, problem := range problems {
				fmt.Fprintf(out, "%s== %s%s\n", ColourError, problem, ColourReset)
			}
		}
	}

	fmt.Fprint(out, separator)
}

func getTerminalWidth() int {
	if w, _, err := getTermSize(int(os.Stdout.Fd())); err == nil {
		return w
	}
	return 80
}

// findFixMessageIndices locates complete FIX messages embedded in a log line.
func (p *prettifier) findFixMessageIndices(line string) [][]int {
	sep := regexp.QuoteMeta(string(p.separator))
	re := regexp.MustCompile(`8=FIX.*?10=\d{3}` + sep)
	return re.FindAllStringIndex(line, -1)
}

func extractFixMessagesAndFormat(line string, matches [][]int) ([]string, string) {
	var (
		output      strings.Builder
		lastIndex   int
		fixMessages []string
	)

	for _, match := range matches {
		start, end := match[0], match[1]
		before := line[lastIndex:start]
		fixPart := line[start:end]

		output.WriteString(ColourLine + before + ColourMsg + fixPart)
		fixMessages = append(fixMessages, fixPart)
		lastIndex = end
	}

	// Append remaining part of the line after last FIX message
	output.WriteString(ColourLine + line[lastIndex:] + ColourReset + "\n")

	return fixMessages, output.String()
}
