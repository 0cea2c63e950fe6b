// Package config holds the checker configuration and its YAML loader.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config controls which relations and transitions the checker considers.
type Config struct {
	// UnchangedHelper is the unqualified name of the frame-condition helper.
	// A call to it is a commitment, never an ordinary call.
	UnchangedHelper string `yaml:"unchanged_helper"`

	// ExemptFields lists "Sig.field" ids of derived relations that are
	// computed rather than asserted and need no frame condition.
	ExemptFields []string `yaml:"exempt_fields"`

	// Skip lists transition name substrings whose effects the checker does
	// not model. Matching transitions are always skipped.
	Skip []string `yaml:"skip"`

	// Workers bounds the number of transitions checked concurrently.
	// Zero means one per CPU.
	Workers int `yaml:"workers"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		UnchangedHelper: "unchanged",
		ExemptFields: []string{
			"Volatile.children",
			"Volatile.parent",
			"Volatile.owns",
		},
		Skip: []string{
			"crash",
			"clear_inflight_state",
			"complete_creat_and_link",
			"complete_mkdir",
			"complete_unlink_keep_inode",
			"complete_rename",
			"start_recovery",
			"Default",
		},
	}
}

// Load reads a YAML config file. Keys absent from the file keep their
// defaults; unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject typos like "exempt_field:"
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if strings.TrimSpace(c.UnchangedHelper) == "" {
		return fmt.Errorf("unchanged_helper is required")
	}
	if strings.Contains(c.UnchangedHelper, "/") {
		return fmt.Errorf("unchanged_helper must be unqualified, got %q", c.UnchangedHelper)
	}
	for i, id := range c.ExemptFields {
		sig, field, ok := strings.Cut(id, ".")
		if !ok || sig == "" || field == "" {
			return fmt.Errorf("exempt_fields[%d]: expected \"Sig.field\", got %q", i, id)
		}
	}
	for i, s := range c.Skip {
		if s == "" {
			return fmt.Errorf("skip[%d]: empty pattern would skip every transition", i)
		}
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", c.Workers)
	}
	return nil
}

// WorkerCount resolves Workers to a concrete positive number.
func (c Config) WorkerCount() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.NumCPU()
}

// SkipMatch returns the skip pattern matching name, if any.
func (c Config) SkipMatch(name string) (string, bool) {
	for _, s := range c.Skip {
		if strings.Contains(name, s) {
			return s, true
		}
	}
	return "", false
}

// IsExempt reports whether the field id is exempt from frame conditions.
func (c Config) IsExempt(fieldID string) bool {
	for _, id := range c.ExemptFields {
		if id == fieldID {
			return true
		}
	}
	return false
}
