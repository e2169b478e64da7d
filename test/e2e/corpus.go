package e2e

import (
	"fmt"
	"os"
	"path/filepath"
)

// Placement says where copies of one document's content land.
type Placement struct {
	Reference []string // paths relative to the reference root
	Source    []string // paths relative to the source root
}

// CorpusDocument is one distinct content with every place it appears.
type CorpusDocument struct {
	Ext     string
	Text    string
	Placed  Placement
	content []byte
}

// Corpus is a reference tree and a source tree with overlapping content.
type Corpus struct {
	Documents []*CorpusDocument
	// Noise are source files outside the allow-list; they must never be copied.
	Noise []string
}

// BuildCorpus returns n distinct documents spread over both trees. Every third
// document also exists in the reference tree under another name and directory,
// and every fifth appears twice in the source tree.
func BuildCorpus(n int) (*Corpus, error) {
	c := &Corpus{}
	for i := 0; i < n; i++ {
		ext := DocumentExtensions[i%len(DocumentExtensions)]
		doc := &CorpusDocument{
			Ext:  ext,
			Text: fmt.Sprintf("document %03d quarterly figures", i),
		}
		content, err := MinimalFile(ext, doc.Text)
		if err != nil {
			return nil, err
		}
		doc.content = content
		doc.Placed.Source = []string{filepath.Join(fmt.Sprintf("batch-%d", i%4), fmt.Sprintf("doc-%03d%s", i, ext))}
		if i%5 == 0 {
			doc.Placed.Source = append(doc.Placed.Source, filepath.Join("copies", "deep", fmt.Sprintf("copy-of-%03d%s", i, ext)))
		}
		if i%3 == 0 {
			doc.Placed.Reference = []string{filepath.Join("archive", fmt.Sprintf("%d", i%2), fmt.Sprintf("renamed-%03d%s", i, ext))}
		}
		c.Documents = append(c.Documents, doc)
	}
	c.Noise = []string{"notes.txt", filepath.Join("batch-0", "readme.md"), filepath.Join("batch-1", "upper.PDF")}
	return c, nil
}

// Write materializes the corpus under referenceDir and sourceDir.
func (c *Corpus) Write(referenceDir, sourceDir string) error {
	write := func(path string, content []byte) error {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return err
		}
		return os.WriteFile(path, content, 0600)
	}
	for _, doc := range c.Documents {
		for _, rel := range doc.Placed.Reference {
			if err := write(filepath.Join(referenceDir, rel), doc.content); err != nil {
				return err
			}
		}
		for _, rel := range doc.Placed.Source {
			if err := write(filepath.Join(sourceDir, rel), doc.content); err != nil {
				return err
			}
		}
	}
	for i, rel := range c.Noise {
		if err := write(filepath.Join(sourceDir, rel), []byte(fmt.Sprintf("noise %d", i))); err != nil {
			return err
		}
	}
	return nil
}

// Unique returns the documents whose content is absent from the reference tree.
func (c *Corpus) Unique() []*CorpusDocument {
	var out []*CorpusDocument
	for _, doc := range c.Documents {
		if len(doc.Placed.Reference) == 0 {
			out = append(out, doc)
		}
	}
	return out
}

// SourceFileCount is the number of allow-listed files in the source tree.
func (c *Corpus) SourceFileCount() int {
	n := 0
	for _, doc := range c.Documents {
		n += len(doc.Placed.Source)
	}
	return n
}
