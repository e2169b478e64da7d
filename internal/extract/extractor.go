// Package extract pulls a short plain-text preview out of office and PDF documents.
package extract

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// ErrUnsupportedFormat is returned for extensions without a text extractor
// (legacy binary .doc, .xls and .ppt among them).
var ErrUnsupportedFormat = errors.New("unsupported document format")

// DefaultPreviewLength is the preview size used when a non-positive limit is given.
const DefaultPreviewLength = 160

// Extractor extracts text from document files.
type Extractor struct{}

// NewExtractor returns a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Supported reports whether ext (with leading dot) has an extractor.
func (e *Extractor) Supported(ext string) bool {
	switch ext {
	case ".pdf", ".docx", ".xlsx", ".pptx":
		return true
	}
	return false
}

// Preview returns up to maxLen characters of the document's text with runs of
// whitespace collapsed to single spaces. Extension matching is case-sensitive,
// like the enumerator's allow-list.
func (e *Extractor) Preview(path string, maxLen int) (string, error) {
	if maxLen <= 0 {
		maxLen = DefaultPreviewLength
	}
	ext := filepath.Ext(path)
	if !e.Supported(ext) {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	text, err := e.ExtractBytes(content, ext, maxLen)
	if err != nil {
		return "", err
	}
	return Truncate(collapseSpace(text), maxLen), nil
}

// ExtractBytes extracts text from content based on ext. Extraction may stop
// early once roughly limit characters are available; limit <= 0 means no limit.
func (e *Extractor) ExtractBytes(content []byte, ext string, limit int) (string, error) {
	switch ext {
	case ".pdf":
		return extractPDF(content, limit)
	case ".docx":
		return extractDOCX(content, limit)
	case ".xlsx":
		return extractExcel(content, limit)
	case ".pptx":
		return extractPPTX(content, limit)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// Truncate truncates s to maxLen runes and appends "..." if truncated.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}

func collapseSpace(s string) string {
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}

// enough reports whether a builder has collected limit characters.
func enough(b *strings.Builder, limit int) bool {
	return limit > 0 && b.Len() >= limit
}
