package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hyperjump/dirdiff/internal/models"
	"gopkg.in/yaml.v3"
)

// ReportFormat is the encoding of a run report.
type ReportFormat string

const (
	// ReportYAML is the default report encoding.
	ReportYAML ReportFormat = "yaml"
	// ReportJSON is used when the report path ends in .json.
	ReportJSON ReportFormat = "json"
)

// Report is everything known about a finished run.
type Report struct {
	Run     *models.Run          `json:"run" yaml:"run"`
	Results []*models.CopyResult `json:"results" yaml:"results"`
}

// ReportFormatFromPath picks the encoding from the file extension.
func ReportFormatFromPath(path string) ReportFormat {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return ReportJSON
	}
	return ReportYAML
}

// WriteReport writes report to w in the given format.
func WriteReport(w io.Writer, report *Report, format ReportFormat) error {
	switch format {
	case ReportJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	default:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return err
		}
		return enc.Close()
	}
}

// WriteReportFile writes report to path, creating parent directories.
func WriteReportFile(path string, report *Report) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	if err := WriteReport(f, report, ReportFormatFromPath(path)); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// ReadReport decodes a YAML or JSON report from r.
func ReadReport(r io.Reader, format ReportFormat) (*Report, error) {
	var report Report
	var err error
	switch format {
	case ReportJSON:
		err = json.NewDecoder(r).Decode(&report)
	default:
		err = yaml.NewDecoder(r).Decode(&report)
	}
	if err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	return &report, nil
}
