package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anrid/tb-burden/pkg/stats"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"TB_DATA_PATH", "TB_DATA_SHAPE", "TB_LISTEN_ADDR", "TB_LOG_LEVEL"} {
		t.Setenv(k, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, stats.ShapeRenamed, cfg.DataShape())
	assert.Equal(t, "India", cfg.Data.DefaultCountry)
	assert.Equal(t, 3, cfg.Data.DefaultCountryCount)
}

func TestConfig_SaveLoad(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "tbstats.yaml")

	cfg := DefaultConfig()
	cfg.Data.Path = "/srv/tb.xlsx"
	cfg.Data.Shape = "normalized"
	cfg.Server.Addr = "127.0.0.1:9000"
	require.NoError(t, cfg.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	if diff := cmp.Diff(cfg, got); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_PartialFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "c.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  addr: \":7000\"\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, DefaultConfig().Data, cfg.Data)
}

func TestLoad_BadYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "c.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [\n"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("TB_DATA_PATH", "/tmp/x.csv")
	t.Setenv("TB_DATA_SHAPE", "normalized")
	t.Setenv("TB_LISTEN_ADDR", ":1234")
	t.Setenv("TB_LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x.csv", cfg.Data.Path)
	assert.Equal(t, stats.ShapeNormalized, cfg.DataShape())
	assert.Equal(t, ":1234", cfg.Server.Addr)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestValidate(t *testing.T) {
	for name, mutate := range map[string]func(*Config){
		"no path":     func(c *Config) { c.Data.Path = "" },
		"bad shape":   func(c *Config) { c.Data.Shape = "pivot" },
		"bad level":   func(c *Config) { c.Logging.Level = "loud" },
		"bad size":    func(c *Config) { c.Chart.Width = 0 },
		"neg default": func(c *Config) { c.Data.DefaultCountryCount = -1 },
	} {
		cfg := DefaultConfig()
		mutate(cfg)
		assert.Error(t, cfg.Validate(), name)
	}
}
