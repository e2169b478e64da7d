// Package copier copies the files of a difference set into an output directory
// without ever overwriting or partially writing a destination.
package copier

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/hyperjump/dirdiff/internal/models"
	"go.uber.org/zap"
)

// ErrDestinationExists is returned when the destination name is already taken.
var ErrDestinationExists = errors.New("destination already exists")

const tempPattern = ".dirdiff-*.part"

// Observer is told about each copy as it happens.
type Observer interface {
	Copying(src, dst string)
	Failed(src string, err error)
}

// Copier copies fingerprinted files into a flat output directory.
type Copier struct {
	observer Observer
	logger   *zap.Logger // optional; when set, logs debug events
	link     func(oldname, newname string) error
}

// CopierOption configures a Copier.
type CopierOption func(*Copier)

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) CopierOption {
	return func(c *Copier) { c.logger = l }
}

// WithObserver sets the observer notified before each copy and after each failure.
func WithObserver(o Observer) CopierOption {
	return func(c *Copier) { c.observer = o }
}

// NewCopier returns a Copier.
func NewCopier(opts ...CopierOption) *Copier {
	c := &Copier{link: os.Link}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Destination returns where src lands in outputDir: outputDir/basename(src).
func Destination(outputDir, src string) string {
	return filepath.Join(outputDir, filepath.Base(src))
}

// EnsureDir creates dir and its parents. It is not an error if dir exists.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	return nil
}

// CopyAll creates outputDir and copies each file into it. A failed copy is
// reported to the observer and recorded; it never stops the batch. The returned
// error is non-nil only when outputDir cannot be created or ctx is cancelled.
func (c *Copier) CopyAll(ctx context.Context, files []models.FingerprintedFile, outputDir string) ([]*models.CopyResult, error) {
	if err := EnsureDir(outputDir); err != nil {
		return nil, err
	}
	results := make([]*models.CopyResult, 0, len(files))
	var total int64
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		dst := Destination(outputDir, f.Path)
		res := &models.CopyResult{Source: f.Path, Destination: dst, Digest: f.Key()}
		if c.observer != nil {
			c.observer.Copying(f.Path, dst)
		}
		n, err := c.CopyFile(f.Path, dst)
		if err != nil {
			res.Status = models.StatusFailed
			res.Error = err.Error()
			if c.logger != nil {
				c.logger.Debug("copier copy failed", zap.String("src", f.Path), zap.String("dst", dst), zap.Error(err))
			}
			if c.observer != nil {
				c.observer.Failed(f.Path, err)
			}
		} else {
			res.Status = models.StatusCopied
			res.Bytes = n
			total += n
			if c.logger != nil {
				c.logger.Debug("copier copied file", zap.String("src", f.Path), zap.String("dst", dst), zap.String("size", humanize.Bytes(uint64(n))))
			}
		}
		results = append(results, res)
	}
	if c.logger != nil {
		c.logger.Debug("copier finished", zap.Int("entries", len(results)), zap.String("written", humanize.Bytes(uint64(total))))
	}
	return results, nil
}

// Plan returns what CopyAll would do without touching the filesystem. Entries
// whose destination exists, or whose basename was already planned, are marked failed.
func (c *Copier) Plan(files []models.FingerprintedFile, outputDir string) []*models.CopyResult {
	results := make([]*models.CopyResult, 0, len(files))
	taken := make(map[string]bool)
	for _, f := range files {
		dst := Destination(outputDir, f.Path)
		res := &models.CopyResult{Source: f.Path, Destination: dst, Digest: f.Key(), Status: models.StatusPlanned}
		if info, err := os.Stat(f.Path); err == nil {
			res.Bytes = info.Size()
		}
		if _, err := os.Lstat(dst); err == nil || taken[dst] {
			res.Status = models.StatusFailed
			res.Error = fmt.Errorf("%w: %s", ErrDestinationExists, dst).Error()
		}
		taken[dst] = true
		results = append(results, res)
	}
	return results
}

// CopyFile copies src to dst and returns the number of bytes written. It fails
// with ErrDestinationExists if dst exists. On any failure dst is left absent or
// untouched. Permissions and modification time of src are carried over.
func (c *Copier) CopyFile(src, dst string) (int64, error) {
	if _, err := os.Lstat(dst); err == nil {
		return 0, fmt.Errorf("%w: %s", ErrDestinationExists, dst)
	}
	in, err := os.Open(src)
	if err != nil {
		return 0, fmt.Errorf("open source: %w", err)
	}
	defer in.Close()
	info, err := in.Stat()
	if err != nil {
		return 0, fmt.Errorf("stat source: %w", err)
	}
	if !info.Mode().IsRegular() {
		return 0, fmt.Errorf("not a regular file: %s", src)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), tempPattern)
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	n, err := writeAndClose(tmp, in)
	if err != nil {
		return 0, err
	}
	if err := os.Chmod(tmpPath, info.Mode().Perm()); err != nil {
		return 0, fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Chtimes(tmpPath, info.ModTime(), info.ModTime()); err != nil {
		return 0, fmt.Errorf("set times: %w", err)
	}

	// A hard link publishes the finished file under its final name and fails if
	// the name is taken.
	linkErr := c.link(tmpPath, dst)
	if linkErr == nil {
		return n, nil
	}
	if errors.Is(linkErr, fs.ErrExist) {
		return 0, fmt.Errorf("%w: %s", ErrDestinationExists, dst)
	}
	if c.logger != nil {
		c.logger.Debug("copier link unsupported, copying exclusively", zap.String("dst", dst), zap.Error(linkErr))
	}
	if _, err := in.Seek(0, io.SeekStart); err != nil {
		return 0, fmt.Errorf("rewind source: %w", err)
	}
	return copyExclusive(in, dst, info)
}

// copyExclusive creates dst with O_EXCL and removes it again if anything fails.
func copyExclusive(in *os.File, dst string, info fs.FileInfo) (int64, error) {
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return 0, fmt.Errorf("%w: %s", ErrDestinationExists, dst)
		}
		return 0, fmt.Errorf("create destination: %w", err)
	}
	n, err := writeAndClose(out, in)
	if err != nil {
		_ = os.Remove(dst)
		return 0, err
	}
	if err := os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		_ = os.Remove(dst)
		return 0, fmt.Errorf("set times: %w", err)
	}
	return n, nil
}

func writeAndClose(out *os.File, in io.Reader) (int64, error) {
	n, err := io.Copy(out, in)
	if err != nil {
		_ = out.Close()
		return 0, fmt.Errorf("copy content: %w", err)
	}
	if err := out.Sync(); err != nil {
		_ = out.Close()
		return 0, fmt.Errorf("sync: %w", err)
	}
	if err := out.Close(); err != nil {
		return 0, fmt.Errorf("close: %w", err)
	}
	return n, nil
}
