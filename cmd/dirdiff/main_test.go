package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRun_help(t *testing.T) {
	for _, arg := range []string{"--help", "-h", "-help"} {
		t.Run(arg, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			if code := run([]string{arg}, &stdout, &stderr); code != exitOK {
				t.Fatalf("exit code = %d, want %d", code, exitOK)
			}
			if !strings.HasPrefix(stdout.String(), "Usage: dirdiff") {
				t.Errorf("stdout = %q", stdout.String())
			}
			if !strings.Contains(stdout.String(), "-workers") {
				t.Error("usage should list flag defaults")
			}
			if stderr.Len() != 0 {
				t.Errorf("stderr = %q, want empty", stderr.String())
			}
		})
	}
}

func TestRun_helpWithBadEnvironment(t *testing.T) {
	t.Setenv("DIRDIFF_WORKERS", "many")
	for _, args := range [][]string{{"--help"}, {"--version"}} {
		t.Run(args[0], func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			if code := run(args, &stdout, &stderr); code != exitOK {
				t.Fatalf("exit code = %d, want %d (stderr %q)", code, exitOK, stderr.String())
			}
			if stdout.Len() == 0 {
				t.Error("stdout is empty")
			}
			if stderr.Len() != 0 {
				t.Errorf("stderr = %q, want empty", stderr.String())
			}
		})
	}
}

func TestRun_badEnvironmentFailsRun(t *testing.T) {
	t.Setenv("DIRDIFF_WORKERS", "many")
	dir := t.TempDir()
	var stdout, stderr bytes.Buffer
	if code := run([]string{dir, dir, filepath.Join(dir, "out")}, &stdout, &stderr); code != exitFatal {
		t.Fatalf("exit code = %d, want %d", code, exitFatal)
	}
	if !strings.Contains(stderr.String(), "DIRDIFF_WORKERS") {
		t.Errorf("stderr = %q, want the offending variable named", stderr.String())
	}
	if _, err := os.Stat(filepath.Join(dir, "out")); !os.IsNotExist(err) {
		t.Error("output directory must not be created")
	}
}

// Flags are parsed up to the first positional argument, as with the flag package
// everywhere: a leading --help wins over positionals, a trailing one is a positional.
func TestRun_helpPosition(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "missing")

	var stdout, stderr bytes.Buffer
	if code := run([]string{"--help", missing, missing}, &stdout, &stderr); code != exitOK {
		t.Fatalf("leading --help: exit code = %d, want %d", code, exitOK)
	}
	if !strings.HasPrefix(stdout.String(), "Usage: dirdiff") {
		t.Errorf("leading --help: stdout = %q", stdout.String())
	}

	stdout.Reset()
	stderr.Reset()
	if code := run([]string{missing, missing, "--help"}, &stdout, &stderr); code != exitFatal {
		t.Fatalf("trailing --help: exit code = %d, want %d", code, exitFatal)
	}
	if got := strings.TrimSpace(stderr.String()); got != "invalid reference directory: "+missing {
		t.Errorf("trailing --help: stderr = %q", got)
	}
	if stdout.Len() != 0 {
		t.Errorf("trailing --help: stdout = %q", stdout.String())
	}
}

func TestRun_version(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"--version"}, &stdout, &stderr); code != exitOK {
		t.Fatalf("exit code = %d", code)
	}
	if got := stdout.String(); got != "dirdiff version dev\n" {
		t.Errorf("stdout = %q", got)
	}
}

func TestRun_usageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no arguments", nil, "invalid number of arguments"},
		{"two arguments", []string{"a", "b"}, "invalid number of arguments"},
		{"four arguments", []string{"a", "b", "c", "d"}, "invalid number of arguments"},
		{"unknown flag", []string{"--bogus", "a", "b", "c"}, "flag provided but not defined"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			if code := run(tt.args, &stdout, &stderr); code != exitUsage {
				t.Fatalf("exit code = %d, want %d", code, exitUsage)
			}
			if !strings.Contains(stderr.String(), tt.want) {
				t.Errorf("stderr = %q, want it to contain %q", stderr.String(), tt.want)
			}
			if stdout.Len() != 0 {
				t.Errorf("stdout = %q, want empty", stdout.String())
			}
		})
	}
}

func TestRun_invalidDirectories(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "existing")
	if err := os.Mkdir(existing, 0755); err != nil {
		t.Fatal(err)
	}
	missing := filepath.Join(dir, "missing")
	out := filepath.Join(dir, "out")

	tests := []struct {
		name      string
		ref, src  string
		wantError string
	}{
		{"missing reference", missing, existing, "invalid reference directory: " + missing},
		{"missing source", existing, missing, "invalid source directory: " + missing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			if code := run([]string{tt.ref, tt.src, out}, &stdout, &stderr); code != exitFatal {
				t.Fatalf("exit code = %d, want %d", code, exitFatal)
			}
			if got := strings.TrimSpace(stderr.String()); got != tt.wantError {
				t.Errorf("stderr = %q, want %q", got, tt.wantError)
			}
		})
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("output directory must not be created")
	}
}

func TestRun_copiesUniqueFiles(t *testing.T) {
	dir := t.TempDir()
	ref := filepath.Join(dir, "ref")
	src := filepath.Join(dir, "src")
	out := filepath.Join(dir, "out")
	files := map[string]string{
		filepath.Join(ref, "known.pdf"):   "known",
		filepath.Join(src, "known-2.pdf"): "known",
		filepath.Join(src, "fresh.xlsx"):  "fresh",
		filepath.Join(src, "skip.txt"):    "text",
	}
	for path, content := range files {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}
	}

	var stdout, stderr bytes.Buffer
	if code := run([]string{"--workers", "2", ref, src, out}, &stdout, &stderr); code != exitOK {
		t.Fatalf("exit code = %d, stderr = %q", code, stderr.String())
	}
	want := "copying file: " + filepath.Join(src, "fresh.xlsx") + "\n"
	if stdout.String() != want {
		t.Errorf("stdout = %q, want %q", stdout.String(), want)
	}
	b, err := os.ReadFile(filepath.Join(out, "fresh.xlsx"))
	if err != nil || string(b) != "fresh" {
		t.Errorf("fresh.xlsx = %q, %v", b, err)
	}
	entries, _ := os.ReadDir(out)
	if len(entries) != 1 {
		t.Errorf("output has %d entries, want 1", len(entries))
	}
}

func TestRun_ledger(t *testing.T) {
	dir := t.TempDir()
	ref := filepath.Join(dir, "ref")
	src := filepath.Join(dir, "src")
	for _, d := range []string{ref, src} {
		if err := os.Mkdir(d, 0755); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(src, "a.pdf"), []byte("a"), 0600); err != nil {
		t.Fatal(err)
	}
	ledger := filepath.Join(dir, "ledger.db")

	var stdout, stderr bytes.Buffer
	args := []string{"--ledger", ledger, ref, src, filepath.Join(dir, "out")}
	if code := run(args, &stdout, &stderr); code != exitOK {
		t.Fatalf("exit code = %d, stderr = %q", code, stderr.String())
	}
	if _, err := os.Stat(ledger); err != nil {
		t.Errorf("ledger not created: %v", err)
	}
}
