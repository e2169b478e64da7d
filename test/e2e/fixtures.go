// Package e2e provides end-to-end tests; this file builds minimal files for the document types.
package e2e

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// DocumentExtensions lists every extension dirdiff considers.
// Only the OOXML types are real documents; the rest are opaque bytes, which is
// all fingerprinting needs.
var DocumentExtensions = []string{
	".docx", ".doc", ".xls", ".xlsx", ".ppt", ".pptx", ".pdf",
}

// PreviewableExtensions lists the types whose minimal file carries extractable text.
var PreviewableExtensions = []string{".docx", ".xlsx", ".pptx"}

// MinimalFile returns the bytes of a minimal file of the given extension containing text.
// Unknown and legacy binary types get the raw text.
func MinimalFile(ext, text string) ([]byte, error) {
	switch ext {
	case ".docx":
		return minimalDocx(text)
	case ".pptx":
		return minimalPptx(text)
	case ".xlsx":
		return minimalXlsx(text)
	default:
		return []byte(text), nil
	}
}

// WriteFile creates path (and its parents) holding a minimal file with text.
func WriteFile(path, text string) error {
	content, err := MinimalFile(filepath.Ext(path), text)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, content, 0600)
}

func zipOf(name, body string) ([]byte, error) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	fw, err := w.Create(name)
	if err != nil {
		return nil, err
	}
	if _, err := fw.Write([]byte(body)); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func minimalDocx(text string) ([]byte, error) {
	return zipOf("word/document.xml", `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body><w:p><w:r><w:t>`+text+`</w:t></w:r></w:p></w:body></w:document>`)
}

func minimalPptx(text string) ([]byte, error) {
	return zipOf("ppt/slides/slide1.xml", `<p:sld xmlns:p="a" xmlns:a="b"><p:cSld><p:spTree><p:sp><p:txBody><a:p><a:r><a:t>`+text+`</a:t></a:r></a:p></p:txBody></p:sp></p:spTree></p:cSld></p:sld>`)
}

func minimalXlsx(text string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetCellValue("Sheet1", "A1", text); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
