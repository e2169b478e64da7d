// Package cli provides the plain-text progress and error lines of dirdiff, and run reports.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/hyperjump/dirdiff/internal/models"
	"github.com/mattn/go-isatty"
)

// Usage is the one-line synopsis printed by --help.
const Usage = "Usage: dirdiff [flags] <referenceDir> <sourceDir> <outputDir>"

// Printer writes progress lines to out and error lines to errOut. Error lines
// are red when errOut is a terminal.
type Printer struct {
	out    io.Writer
	errOut io.Writer
	red    *color.Color
}

// NewPrinter returns a Printer writing to out and errOut.
func NewPrinter(out, errOut io.Writer) *Printer {
	red := color.New(color.FgRed)
	if IsTerminal(errOut) {
		red.EnableColor()
	} else {
		red.DisableColor()
	}
	return &Printer{out: out, errOut: errOut, red: red}
}

// IsTerminal reports whether w is a terminal file.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Copying reports that src is about to be copied.
func (p *Printer) Copying(src, dst string) {
	fmt.Fprintf(p.out, "copying file: %s\n", src)
}

// Failed reports a copy that did not happen.
func (p *Printer) Failed(src string, err error) {
	p.Errorf("copy failed for: %s: %v", src, err)
}

// Planned reports a dry-run entry. preview is printed indented below it when non-empty.
func (p *Printer) Planned(res *models.CopyResult, preview string) {
	if res.Status == models.StatusFailed {
		p.Errorf("would fail to copy: %s: %s", res.Source, res.Error)
		return
	}
	fmt.Fprintf(p.out, "would copy file: %s -> %s\n", res.Source, res.Destination)
	if preview != "" {
		fmt.Fprintf(p.out, "    %s\n", preview)
	}
}

// ListingFailed reports a directory that could not be enumerated.
func (p *Printer) ListingFailed(dir string, err error) {
	p.Errorf("%v", err)
}

// HashFailed reports a file that could not be fingerprinted and was skipped.
func (p *Printer) HashFailed(path string, err error) {
	p.Errorf("hash failed for: %s: %v", path, err)
}

// Errorf writes one error line.
func (p *Printer) Errorf(format string, args ...any) {
	p.red.Fprintf(p.errOut, format, args...)
	fmt.Fprintln(p.errOut)
}

// PrintUsage writes the usage line and flag defaults to w.
func PrintUsage(w io.Writer, defaults func()) {
	fmt.Fprintln(w, Usage)
	fmt.Fprintf(w, `
Copies document files (.docx .doc .xls .xlsx .ppt .pptx .pdf) found under sourceDir
whose content does not appear anywhere under referenceDir into outputDir.
Files are compared by content digest; names and locations are ignored.

`)
	if defaults != nil {
		defaults()
	}
	fmt.Fprintf(w, `
Every flag can also be set with a DIRDIFF_* environment variable
(for example DIRDIFF_WORKERS=4); flags win over the environment.

Examples:
  dirdiff /archive ~/Downloads ~/to-archive
  dirdiff --dry-run --preview /archive ~/Downloads ~/to-archive
  dirdiff --workers 8 --algorithm blake3 --report run.yaml /archive /inbox /out
`)
}
