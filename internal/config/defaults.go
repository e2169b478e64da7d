package config

import "github.com/hyperjump/dirdiff/internal/fingerprint"

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Algorithm == "" {
		cfg.Algorithm = string(fingerprint.Default)
	}
	if cfg.Workers == 0 {
		cfg.Workers = 1
	}
	if cfg.PreviewLength == 0 {
		cfg.PreviewLength = 160
	}
}
