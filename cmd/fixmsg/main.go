// main.go
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"bitbucket.org/edgewater/fixmsg/codec"
	"bitbucket.org/edgewater/fixmsg/fix"
	"bitbucket.org/edgewater/fixmsg/spec"
)

// Version, Branch, GitUrl, Sha are injected at build time via -ldflags
var (
	Version = "0.0.0"
	Branch  = "main"
	GitUrl  = "git@bitbucket.org:edgewater/fixmsg.git"
	Sha     = "0000000"
)

// Tags aliased by -obfuscate: account and counterparty identifiers are the
// usual offenders in shared logs.
var sensitiveTags = map[int]string{
	1:   "Account",
	448: "PartyID",
	581: "AccountType",
}

type colourFlag struct {
	isSet bool
	value bool
}

func (c *colourFlag) String() string {
	if c.value {
		return "true"
	}
	return "false"
}

func (c *colourFlag) Set(s string) error {
	c.isSet = true
	switch strings.ToLower(s) {
	case "", "true", "yes":
		c.value = true
	case "false", "no":
		c.value = false
	default:
		return fmt.Errorf("invalid value for -colour: %q", s)
	}
	return nil
}

func (c *colourFlag) IsBoolFlag() bool {
	return true
}

// CLIOptions holds all parsed flag values.
type CLIOptions struct {
	XMLPath   string
	Separator string
	Validate  bool
	Obfuscate bool
	Colour    colourFlag
	Files     []string
}

func parseFlagsArgs(args []string) (CLIOptions, error) {
	var colour colourFlag

	fs := flag.NewFlagSet("fixmsg", flag.ContinueOnError)
	xmlPath := fs.String("xml", "", "Path to a QuickFIX dictionary XML file (enables repeating-group parsing)")
	separator := fs.String("separator", "soh", "Field separator: soh, | or ;")
	validate := fs.Bool("validate", false, "Report stale body-length/checksum fields")
	obfuscate := fs.Bool("obfuscate", false, "Replace sensitive tag values with stable aliases")
	fs.Var(&colour, "colour", "Force coloured output (yes|no). Default: auto-detect based on stdout")

	fs.Usage = func() {
		PrintUsage()
		fmt.Println("\nFlags:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return CLIOptions{}, err
	}

	return CLIOptions{
		XMLPath:   *xmlPath,
		Separator: *separator,
		Validate:  *validate,
		Obfuscate: *obfuscate,
		Colour:    colour,
		Files:     fs.Args(),
	}, nil
}

// PrintUsage prints the program usage.
func PrintUsage() {
	fmt.Printf("fixmsg %s (branch:%s, commit:%s)\n\n", Version, Branch, Sha)
	fmt.Printf("  git clone %s\n\n", GitUrl)
	fmt.Println("Usage: fixmsg [-xml FIX42.xml] [-separator=soh|'|'|';'] [-validate] [-obfuscate] [-colour=yes|no] [file1.log file2.log ...]")
	fmt.Println("       Reads stdin when no files are given (or for the file argument \"-\").")
}

func parseSeparator(s string) (byte, error) {
	switch s {
	case "", "soh":
		return codec.SOH, nil
	default:
		if len(s) != 1 {
			return 0, fmt.Errorf("invalid separator %q: must be soh or a single character", s)
		}
		return s[0], nil
	}
}

// Process is the entry point: parses flags, loads the dictionary, and streams
// the inputs. It returns a process exit code.
func Process(args []string, out, errOut io.Writer) int {
	opts, err := parseFlagsArgs(args)
	if err != nil {
		return 1
	}

	sep, err := parseSeparator(opts.Separator)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}

	var dict *spec.Spec
	codecOpts := []codec.Option{codec.WithSeparator(sep)}
	if opts.XMLPath != "" {
		dict, err = spec.LoadFile(opts.XMLPath)
		if err != nil {
			fmt.Fprintln(errOut, err)
			return 1
		}
		codecOpts = append(codecOpts,
			codec.WithSpecification(dict),
			// Captured logs are inspected as-is: a wrong count should show
			// up in the output, not abort the stream.
			codec.WithLenientGroups(),
		)
	}

	if !opts.Colour.isSet {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			DisableColours()
		}
	} else if !opts.Colour.value {
		DisableColours()
	}

	p := &prettifier{
		codec:      codec.New(codecOpts...),
		dict:       dict,
		separator:  sep,
		validate:   opts.Validate,
		obfuscator: fix.CreateObfuscator(sensitiveTags, opts.Obfuscate),
	}

	return p.PrettifyFiles(opts.Files, out, errOut)
}

func main() {
	os.Exit(Process(os.Args[1:], os.Stdout, os.Stderr))
}
