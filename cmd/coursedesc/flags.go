package main

import (
	"fmt"
	"io"
	"os"

	flag "github.com/spf13/pflag"
)

// Exit codes.
const (
	exitSuccess = 0
	exitError   = 1
	exitUsage   = 2
)

// cliFlags holds all flags of the CLI.
type cliFlags struct {
	config  string
	quiet   bool
	verbose bool

	degrees string
	workDir string

	workers  int
	timeout  string
	htmlOnly bool

	ref    string
	target string
}

// parseFlags parses the command line and returns the flags and positional
// arguments (the command name and its operands).
func parseFlags(args []string) (*cliFlags, []string, error) {
	fs := flag.NewFlagSet("coursedesc", flag.ContinueOnError)
	f := &cliFlags{}

	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug output")

	fs.StringVar(&f.degrees, "degrees", "", "path to the degrees JSON list")
	fs.StringVar(&f.workDir, "work-dir", "", "scratch directory for artifacts and stage output")

	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel browser workers (0 = auto)")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "PDF generation timeout (e.g., 30s, 2m)")
	fs.BoolVar(&f.htmlOnly, "html-only", false, "skip PDF generation")

	fs.StringVar(&f.ref, "ref", "", "ref this run is dispatched for")
	fs.StringVarP(&f.target, "target", "o", "", "deployment target directory")

	fs.Usage = func() { printUsage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// printUsage writes the command overview.
func printUsage(w io.Writer) {
	fmt.Fprint(w, `usage: coursedesc [flags] <command>

Commands:
  run       scrape, convert, and publish in one pipeline run
  scrape    collect course descriptions and write AsciiDoc documents
  convert   render the scraped documents to HTML and PDF
  publish   deploy the assembled site to the target directory
  version   print the version

Flags:
  -c, --config string     config file name or path
  -q, --quiet             only show errors
  -v, --verbose           show debug output
      --degrees string    path to the degrees JSON list
      --work-dir string   scratch directory for artifacts and stage output
  -w, --workers int       parallel browser workers (0 = auto)
  -t, --timeout string    PDF generation timeout (e.g., 30s, 2m)
      --html-only         skip PDF generation
      --ref string        ref this run is dispatched for
  -o, --target string     deployment target directory
`)
}
