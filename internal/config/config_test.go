package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fetch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.MaxTries)
	assert.Equal(t, time.Duration(0), cfg.Timeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Log.Pretty)
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfigFile(t, `
maxtries: 5
timeout: 30s
log:
  level: debug
  pretty: true
`)

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.MaxTries)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.Pretty)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.Error(t, err)
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	path := writeConfigFile(t, "maxtries: 5\n")

	t.Setenv("FETCH_MAXTRIES", "7")
	t.Setenv("FETCH_LOG_LEVEL", "warn")

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.MaxTries)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadOverridesWin(t *testing.T) {
	t.Setenv("FETCH_MAXTRIES", "7")

	cfg, err := Load("", map[string]any{
		"maxtries": 4,
		"timeout":  "2m",
	})
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.MaxTries)
	assert.Equal(t, 2*time.Minute, cfg.Timeout)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	_, err := Load("", map[string]any{"maxtries": 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maxtries must be at least 2")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr []string
	}{
		{
			name: "valid",
			cfg:  Config{MaxTries: 2},
		},
		{
			name:    "too few tries",
			cfg:     Config{MaxTries: 1},
			wantErr: []string{"maxtries must be at least 2"},
		},
		{
			name:    "negative timeout",
			cfg:     Config{MaxTries: 3, Timeout: -time.Second},
			wantErr: []string{"timeout must not be negative"},
		},
		{
			name:    "everything wrong",
			cfg:     Config{MaxTries: 0, Timeout: -time.Second},
			wantErr: []string{"maxtries must be at least 2", "timeout must not be negative"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(&tt.cfg)
			if len(tt.wantErr) == 0 {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			for _, want := range tt.wantErr {
				assert.Contains(t, err.Error(), want)
			}
		})
	}
}
