package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/hyperjump/dirdiff/internal/models"
)

func TestPrinter_lines(t *testing.T) {
	var out, errOut bytes.Buffer
	p := NewPrinter(&out, &errOut)

	p.Copying("/src/a.pdf", "/out/a.pdf")
	p.Failed("/src/b.pdf", errors.New("destination already exists: /out/b.pdf"))
	p.ListingFailed("/src/locked", errors.New("open /src/locked: permission denied"))
	p.HashFailed("/src/c.doc", errors.New("read error"))

	if got := out.String(); got != "copying file: /src/a.pdf\n" {
		t.Errorf("stdout = %q", got)
	}
	wantErr := []string{
		"copy failed for: /src/b.pdf: destination already exists: /out/b.pdf",
		"open /src/locked: permission denied",
		"hash failed for: /src/c.doc: read error",
	}
	gotErr := strings.Split(strings.TrimSuffix(errOut.String(), "\n"), "\n")
	if len(gotErr) != len(wantErr) {
		t.Fatalf("stderr lines = %q", gotErr)
	}
	for i := range wantErr {
		if gotErr[i] != wantErr[i] {
			t.Errorf("stderr[%d] = %q, want %q", i, gotErr[i], wantErr[i])
		}
	}
}

func TestPrinter_noColorWhenNotTerminal(t *testing.T) {
	var out, errOut bytes.Buffer
	NewPrinter(&out, &errOut).Errorf("boom")
	if strings.Contains(errOut.String(), "\x1b[") {
		t.Errorf("escape codes written to a non-terminal: %q", errOut.String())
	}
}

func TestPrinter_Planned(t *testing.T) {
	var out, errOut bytes.Buffer
	p := NewPrinter(&out, &errOut)
	p.Planned(&models.CopyResult{Source: "/s/a.pdf", Destination: "/o/a.pdf", Status: models.StatusPlanned}, "Quarterly report")
	p.Planned(&models.CopyResult{Source: "/s/b.pdf", Destination: "/o/b.pdf", Status: models.StatusPlanned}, "")
	p.Planned(&models.CopyResult{Source: "/s/x/a.pdf", Destination: "/o/a.pdf", Status: models.StatusFailed, Error: "destination already exists"}, "")

	want := "would copy file: /s/a.pdf -> /o/a.pdf\n    Quarterly report\nwould copy file: /s/b.pdf -> /o/b.pdf\n"
	if out.String() != want {
		t.Errorf("stdout = %q, want %q", out.String(), want)
	}
	if !strings.Contains(errOut.String(), "would fail to copy: /s/x/a.pdf") {
		t.Errorf("stderr = %q", errOut.String())
	}
}

func TestIsTerminal_buffer(t *testing.T) {
	if IsTerminal(&bytes.Buffer{}) {
		t.Error("a buffer is not a terminal")
	}
}

func TestPrintUsage(t *testing.T) {
	var buf bytes.Buffer
	called := false
	PrintUsage(&buf, func() { called = true })
	if !strings.HasPrefix(buf.String(), Usage) {
		t.Errorf("usage should start with the synopsis: %q", buf.String())
	}
	if !called {
		t.Error("flag defaults callback not invoked")
	}
	for _, ext := range []string{".docx", ".doc", ".xls", ".xlsx", ".ppt", ".pptx", ".pdf"} {
		if !strings.Contains(buf.String(), ext) {
			t.Errorf("usage should list %s", ext)
		}
	}
}
