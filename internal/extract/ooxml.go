package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

const (
	docxDocumentPath = "word/document.xml"
	contentTypesPath = "[Content_Types].xml"
	docxMainType     = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"
	pptxSlidePrefix  = "ppt/slides/slide"
)

var (
	// <w:t> runs in WordprocessingML, with or without attributes.
	wordText = regexp.MustCompile(`<w:t[^>]*>([^<]*)</w:t>`)
	// <a:t> runs in DrawingML (slides).
	drawingText = regexp.MustCompile(`<a:t[^>]*>([^<]*)</a:t>`)
	// Override entries declaring the main document part; attribute order varies.
	mainPartName   = regexp.MustCompile(`<Override[^>]+PartName="([^"]+)"[^>]+ContentType="` + regexp.QuoteMeta(docxMainType) + `"`)
	mainPartNameRe = regexp.MustCompile(`<Override[^>]+ContentType="` + regexp.QuoteMeta(docxMainType) + `"[^>]+PartName="([^"]+)"`)
	slideNumber    = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)
)

func openZip(content []byte, kind string) (*zip.Reader, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("extract %s: not a zip: %w", kind, err)
	}
	return zr, nil
}

func readPart(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()
	b, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func findPart(zr *zip.Reader, name string) *zip.File {
	for _, f := range zr.File {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// appendRuns writes the inner text of every re match in xml to b, space separated.
func appendRuns(b *strings.Builder, xml string, re *regexp.Regexp, limit int) {
	for _, m := range re.FindAllStringSubmatch(xml, -1) {
		text := strings.TrimSpace(m[1])
		if text == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(text)
		if enough(b, limit) {
			return
		}
	}
}

// docxMainPart resolves the main document part from [Content_Types].xml,
// falling back to word/document.xml.
func docxMainPart(zr *zip.Reader) string {
	ct := findPart(zr, contentTypesPath)
	if ct == nil {
		return docxDocumentPath
	}
	xml, err := readPart(ct)
	if err != nil {
		return docxDocumentPath
	}
	for _, re := range []*regexp.Regexp{mainPartName, mainPartNameRe} {
		if m := re.FindStringSubmatch(xml); len(m) > 1 {
			return strings.TrimPrefix(m[1], "/")
		}
	}
	return docxDocumentPath
}

func extractDOCX(content []byte, limit int) (string, error) {
	zr, err := openZip(content, "DOCX")
	if err != nil {
		return "", err
	}
	name := docxMainPart(zr)
	part := findPart(zr, name)
	if part == nil {
		return "", fmt.Errorf("extract DOCX: %s not found", name)
	}
	xml, err := readPart(part)
	if err != nil {
		return "", fmt.Errorf("extract DOCX: read %s: %w", name, err)
	}
	var b strings.Builder
	appendRuns(&b, xml, wordText, limit)
	return b.String(), nil
}

func extractPPTX(content []byte, limit int) (string, error) {
	zr, err := openZip(content, "PPTX")
	if err != nil {
		return "", err
	}
	type slide struct {
		n int
		f *zip.File
	}
	var slides []slide
	for _, f := range zr.File {
		if !strings.HasPrefix(f.Name, pptxSlidePrefix) {
			continue
		}
		m := slideNumber.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}
		n, _ := strconv.Atoi(m[1])
		slides = append(slides, slide{n: n, f: f})
	}
	// Zip order is arbitrary; present slides in deck order.
	sort.Slice(slides, func(i, j int) bool { return slides[i].n < slides[j].n })

	var b strings.Builder
	for _, s := range slides {
		xml, err := readPart(s.f)
		if err != nil {
			return "", fmt.Errorf("extract PPTX: read %s: %w", s.f.Name, err)
		}
		appendRuns(&b, xml, drawingText, limit)
		if enough(&b, limit) {
			break
		}
	}
	return b.String(), nil
}
