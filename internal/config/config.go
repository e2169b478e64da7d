// Package config holds run settings gathered from defaults, the environment, and flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/hyperjump/dirdiff/internal/fingerprint"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "DIRDIFF"

var (
	// ErrInvalidReference means the reference directory is missing or not a directory.
	ErrInvalidReference = errors.New("invalid reference directory")
	// ErrInvalidSource means the source directory is missing or not a directory.
	ErrInvalidSource = errors.New("invalid source directory")
)

// Config holds all settings for one run. The three directories come from
// positional arguments only.
type Config struct {
	ReferenceDir string `ignored:"true" yaml:"reference_dir"`
	SourceDir    string `ignored:"true" yaml:"source_dir"`
	OutputDir    string `ignored:"true" yaml:"output_dir"`

	Algorithm     string `envconfig:"ALGORITHM" yaml:"algorithm"`
	Workers       int    `envconfig:"WORKERS" yaml:"workers"`
	DryRun        bool   `envconfig:"DRY_RUN" yaml:"dry_run"`
	Preview       bool   `envconfig:"PREVIEW" yaml:"preview"`
	PreviewLength int    `envconfig:"PREVIEW_LENGTH" yaml:"preview_length"`
	ReportPath    string `envconfig:"REPORT" yaml:"report_path,omitempty"`
	LedgerPath    string `envconfig:"LEDGER" yaml:"ledger_path,omitempty"`
	Debug         bool   `envconfig:"DEBUG" yaml:"debug"`
}

// Load reads DIRDIFF_* environment variables and applies defaults.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	ApplyDefaults(&cfg)
	return &cfg, nil
}

// RegisterFlags binds cfg's optional settings to fs. Current values become the
// flag defaults, so flags override the environment.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.Algorithm, "algorithm", c.Algorithm, "digest algorithm: "+strings.Join(fingerprint.Algorithms(), ", "))
	fs.IntVar(&c.Workers, "workers", c.Workers, "number of files hashed concurrently")
	fs.BoolVar(&c.DryRun, "dry-run", c.DryRun, "list the files that would be copied without copying")
	fs.BoolVar(&c.Preview, "preview", c.Preview, "with --dry-run, print a short text preview of each document")
	fs.IntVar(&c.PreviewLength, "preview-length", c.PreviewLength, "maximum preview length in characters")
	fs.StringVar(&c.ReportPath, "report", c.ReportPath, "write a YAML report of the run to this path")
	fs.StringVar(&c.LedgerPath, "ledger", c.LedgerPath, "record the run in this SQLite database")
	fs.BoolVar(&c.Debug, "debug", c.Debug, "enable debug logging on stderr")
}

// SetDirs assigns the positional directories.
func (c *Config) SetDirs(reference, source, output string) {
	c.ReferenceDir = reference
	c.SourceDir = source
	c.OutputDir = output
}

// Validate checks the settings and that both input trees exist. A missing
// reference or source directory wraps ErrInvalidReference or ErrInvalidSource.
func (c *Config) Validate() error {
	if !isDir(c.ReferenceDir) {
		return fmt.Errorf("%w: %s", ErrInvalidReference, c.ReferenceDir)
	}
	if !isDir(c.SourceDir) {
		return fmt.Errorf("%w: %s", ErrInvalidSource, c.SourceDir)
	}
	if c.OutputDir == "" {
		return errors.New("output directory must not be empty")
	}
	if _, err := fingerprint.ParseAlgorithm(c.Algorithm); err != nil {
		return err
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.PreviewLength < 1 {
		return fmt.Errorf("preview length must be at least 1, got %d", c.PreviewLength)
	}
	return nil
}

func isDir(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
