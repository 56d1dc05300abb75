package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// WorkspacePath is a single .hcl file or a directory of .hcl files.
	WorkspacePath string

	// OutputDir overrides the workspace's declared output directory when
	// non-empty.
	OutputDir string

	LogFormat string
	LogLevel  string

	// Offline skips fetch-based entries and materializes only the
	// probe-derived repositories.
	Offline bool
}

// NewConfig validates a Config and returns it.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.WorkspacePath == "" {
		return nil, errors.New("WorkspacePath is a required configuration field and cannot be empty")
	}
	return &cfg, nil
}
