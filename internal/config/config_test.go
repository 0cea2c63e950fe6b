package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "framecheck.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "unchanged", cfg.UnchangedHelper)
	assert.True(t, cfg.IsExempt("Volatile.children"))
	assert.False(t, cfg.IsExempt("Inode.size"))

	pattern, ok := cfg.SkipMatch("crash_during_write")
	assert.True(t, ok)
	assert.Equal(t, "crash", pattern)

	_, ok = cfg.SkipMatch("write")
	assert.False(t, ok)
}

func TestLoad_OverridesOnlyGivenKeys(t *testing.T) {
	path := writeConfig(t, `
exempt_fields:
  - Dir.cache
workers: 3
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "unchanged", cfg.UnchangedHelper)
	assert.Equal(t, []string{"Dir.cache"}, cfg.ExemptFields)
	assert.Equal(t, Default().Skip, cfg.Skip)
	assert.Equal(t, 3, cfg.WorkerCount())
}

func TestLoad_EmptyFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"unknown key", "exempt_field: [A.b]\n", "failed to parse YAML"},
		{"bad field id", "exempt_fields: [nodot]\n", "exempt_fields[0]"},
		{"qualified helper", "unchanged_helper: defs/unchanged\n", "must be unqualified"},
		{"empty skip", "skip: ['']\n", "skip[0]"},
		{"negative workers", "workers: -1\n", "non-negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestWorkerCount_DefaultsToCPUs(t *testing.T) {
	assert.Positive(t, Default().WorkerCount())
}
