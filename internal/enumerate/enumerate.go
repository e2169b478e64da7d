// Package enumerate walks directory trees breadth-first and yields files by extension.
package enumerate

import (
	"io/fs"
	"iter"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// DocumentExtensions is the fixed allow-list of office and PDF documents.
var DocumentExtensions = []string{".docx", ".doc", ".xls", ".xlsx", ".ppt", ".pptx", ".pdf"}

// ErrorFunc receives listing failures. dir is the directory that could not be read.
type ErrorFunc func(dir string, err error)

// Enumerator lists files under a root whose extension is in an allow-list.
type Enumerator struct {
	extensions map[string]struct{}
	onError    ErrorFunc
	logger     *zap.Logger // optional; when set, logs debug events
	readDir    func(string) ([]fs.DirEntry, error)
}

// EnumeratorOption configures an Enumerator.
type EnumeratorOption func(*Enumerator)

// WithLogger sets a logger for debug output (directories visited, files matched).
func WithLogger(l *zap.Logger) EnumeratorOption {
	return func(e *Enumerator) { e.logger = l }
}

// WithErrorFunc sets the callback for directories that cannot be listed.
func WithErrorFunc(fn ErrorFunc) EnumeratorOption {
	return func(e *Enumerator) { e.onError = fn }
}

// NewEnumerator returns an Enumerator matching extensions exactly (case-sensitive,
// leading dot included).
func NewEnumerator(extensions []string, opts ...EnumeratorOption) *Enumerator {
	e := &Enumerator{
		extensions: make(map[string]struct{}, len(extensions)),
		readDir:    os.ReadDir,
	}
	for _, ext := range extensions {
		e.extensions[ext] = struct{}{}
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Match reports whether path has an allowed extension.
func (e *Enumerator) Match(path string) bool {
	_, ok := e.extensions[filepath.Ext(path)]
	return ok
}

// Files returns a single-use sequence of matching file paths under root.
// Directories are visited in FIFO order; within a directory, files come in listing order.
// A directory that cannot be listed is reported and skipped; the walk continues.
// Symlinked directories are not followed.
func (e *Enumerator) Files(root string) iter.Seq[string] {
	return func(yield func(string) bool) {
		queue := []string{root}
		for len(queue) > 0 {
			dir := queue[0]
			queue = queue[1:]

			entries, err := e.readDir(dir)
			if err != nil {
				e.report(dir, err)
			}
			if e.logger != nil {
				e.logger.Debug("enumerate directory", zap.String("dir", dir), zap.Int("entries", len(entries)))
			}

			var files []string
			for _, d := range entries {
				path := filepath.Join(dir, d.Name())
				switch {
				case d.IsDir():
					queue = append(queue, path)
				case e.Match(path) && e.isFile(path, d):
					files = append(files, path)
				}
			}
			for _, path := range files {
				if !yield(path) {
					return
				}
			}
		}
	}
}

// isFile accepts regular files and symlinks that resolve to regular files.
func (e *Enumerator) isFile(path string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	if err != nil {
		e.report(path, err)
		return false
	}
	return info.Mode().IsRegular()
}

func (e *Enumerator) report(dir string, err error) {
	if e.logger != nil {
		e.logger.Debug("enumerate failed", zap.String("dir", dir), zap.Error(err))
	}
	if e.onError != nil {
		e.onError(dir, err)
	}
}

// Collect drains seq into a slice.
func Collect(seq iter.Seq[string]) []string {
	var out []string
	for p := range seq {
		out = append(out, p)
	}
	return out
}
