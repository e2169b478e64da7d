package scanner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/hyperjump/dirdiff/internal/enumerate"
	"github.com/hyperjump/dirdiff/internal/fingerprint"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
}

func newScanner(t *testing.T, opts ...ScannerOption) *Scanner {
	t.Helper()
	h, err := fingerprint.NewHasher(fingerprint.Default)
	if err != nil {
		t.Fatal(err)
	}
	return NewScanner(enumerate.NewEnumerator(enumerate.DocumentExtensions), h, opts...)
}

func TestScanner_Scan(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.pdf"), "X")
	writeFile(t, filepath.Join(root, "sub", "b.pdf"), "X")
	writeFile(t, filepath.Join(root, "c.docx"), "Y")
	writeFile(t, filepath.Join(root, "ignored.txt"), "Z")

	set, stats, err := newScanner(t).Scan(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}
	if set.Len() != 2 {
		t.Errorf("distinct = %d, want 2", set.Len())
	}
	if stats.Matched != 3 || stats.Duplicates != 1 || stats.Failed != 0 {
		t.Errorf("stats = %+v", stats)
	}
	// a.pdf is enumerated before sub/b.pdf, so it represents content "X".
	for _, f := range set.Files() {
		if filepath.Base(f.Path) == "b.pdf" {
			t.Errorf("duplicate representative should be a.pdf, got %s", f.Path)
		}
	}
}

func TestScanner_hashFailureIsReportedAndSkipped(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "good.pdf"), "good")
	writeFile(t, filepath.Join(root, "bad.pdf"), "bad")

	var reported []string
	s := newScanner(t, WithErrorFunc(func(path string, err error) {
		reported = append(reported, filepath.Base(path))
	}))
	hash := s.hashFile
	s.hashFile = func(path string) (fingerprint.Digest, error) {
		if filepath.Base(path) == "bad.pdf" {
			return nil, errors.New("read error")
		}
		return hash(path)
	}

	set, stats, err := s.Scan(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}
	if set.Len() != 1 || stats.Failed != 1 {
		t.Errorf("distinct=%d stats=%+v", set.Len(), stats)
	}
	if len(reported) != 1 || reported[0] != "bad.pdf" {
		t.Errorf("reported = %v", reported)
	}
}

func TestScanner_concurrentMatchesSequential(t *testing.T) {
	root := t.TempDir()
	for i := 0; i < 40; i++ {
		dir := filepath.Join(root, fmt.Sprintf("d%d", i%5))
		// every fourth file repeats an earlier content
		writeFile(t, filepath.Join(dir, fmt.Sprintf("f%02d.pdf", i)), fmt.Sprintf("content-%d", i/4*4+i%2))
	}

	seqSet, seqStats, err := newScanner(t).Scan(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}
	parSet, parStats, err := newScanner(t, WithWorkers(8)).Scan(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}
	if seqStats != parStats {
		t.Errorf("stats differ: sequential %+v, concurrent %+v", seqStats, parStats)
	}
	seq, par := seqSet.Files(), parSet.Files()
	if len(seq) != len(par) {
		t.Fatalf("len differ: %d vs %d", len(seq), len(par))
	}
	for i := range seq {
		if seq[i].Path != par[i].Path || seq[i].Key() != par[i].Key() {
			t.Errorf("entry %d differs: %+v vs %+v", i, seq[i], par[i])
		}
	}
}

func TestScanner_cancelled(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.pdf"), "a")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := newScanner(t).Scan(ctx, root); !errors.Is(err, context.Canceled) {
		t.Errorf("sequential err = %v, want context.Canceled", err)
	}
	if _, _, err := newScanner(t, WithWorkers(4)).Scan(ctx, root); !errors.Is(err, context.Canceled) {
		t.Errorf("concurrent err = %v, want context.Canceled", err)
	}
}

func TestScanner_emptyTree(t *testing.T) {
	set, stats, err := newScanner(t).Scan(context.Background(), t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if set.Len() != 0 || stats.Matched != 0 {
		t.Errorf("distinct=%d stats=%+v", set.Len(), stats)
	}
}
