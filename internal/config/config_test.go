package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/armin976/noema-scan/internal/gguf"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, uint64(gguf.DefaultMaxSkipBytes), cfg.Scan.MaxSkipBytes)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.NoError(t, cfg.Validate())
}

func TestScanConfigLimits(t *testing.T) {
	assert.Equal(t, gguf.DefaultLimits(), ScanConfig{}.Limits())
	assert.Equal(t, gguf.Limits{MaxSkipBytes: 1024}, ScanConfig{MaxSkipBytes: 1024}.Limits())
}

func TestLoadSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "noema-scan.yaml")

	cfg := DefaultConfig()
	cfg.Scan.MaxSkipBytes = 1 << 20
	cfg.Log.Level = "debug"
	cfg.Log.Format = "json"
	require.NoError(t, Save(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadLayersOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: warn\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
	// Untouched sections keep their defaults.
	assert.Equal(t, uint64(gguf.DefaultMaxSkipBytes), cfg.Scan.MaxSkipBytes)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoadErrors(t *testing.T) {
	t.Run("MissingFile", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})

	t.Run("BadYAML", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("{not yaml"), 0644))
		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("InvalidLevel", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "level.yaml")
		require.NoError(t, os.WriteFile(path, []byte("log:\n  level: loud\n"), 0644))
		_, err := Load(path)
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Log.Format = "xml"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Log.Output = "syslog"
	assert.Error(t, cfg.Validate())
}
