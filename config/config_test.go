package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load([]string{"form.xdp"})
	require.NoError(t, err)

	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, DefaultMeasurer, cfg.Measurer)
	assert.Equal(t, 2, cfg.MaxLayoutAttempts)
	assert.Equal(t, 3, cfg.MaxEmptyPages)
	assert.Equal(t, OutputHTML, cfg.Output)
	assert.Equal(t, 612.0, cfg.DefaultPageWidth)
	assert.Equal(t, 792.0, cfg.DefaultPageHeight)
	assert.Equal(t, []string{"form.xdp"}, cfg.Inputs)
	assert.Len(t, cfg.LayoutOptions(), 3)
}

func TestLoad_Flags(t *testing.T) {
	cfg, err := Load([]string{"-o", "svg", "--max-empty-pages=5", "--measurer=fixed", "--log-level=DEBUG", "a.pdf", "b.xdp"})
	require.NoError(t, err)

	assert.Equal(t, OutputSVG, cfg.Output)
	assert.Equal(t, 5, cfg.MaxEmptyPages)
	assert.Equal(t, "fixed", cfg.Measurer)
	assert.True(t, cfg.IsDebug())
	assert.Equal(t, []string{"a.pdf", "b.xdp"}, cfg.Inputs)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("XFARENDER_OUTPUT", "json")
	t.Setenv("XFARENDER_MAX_LAYOUT_ATTEMPTS", "4")

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, OutputJSON, cfg.Output)
	assert.Equal(t, 4, cfg.MaxLayoutAttempts)

	// flags win over the environment
	cfg, err = Load([]string{"--output=html"})
	require.NoError(t, err)
	assert.Equal(t, OutputHTML, cfg.Output)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "xfarender.yaml")
	require.NoError(t, os.WriteFile(path, []byte("measurer: shaping\nout-dir: /tmp/out\n"), 0o600))

	cfg, err := Load([]string{"--config", path})
	require.NoError(t, err)
	assert.Equal(t, "shaping", cfg.Measurer)
	assert.Equal(t, "/tmp/out", cfg.OutDir)
	assert.Equal(t, path, cfg.ConfigFile)

	_, err = Load([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml")})
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"log level", func(c *Config) { c.LogLevel = "loud" }},
		{"measurer", func(c *Config) { c.Measurer = "ruler" }},
		{"output", func(c *Config) { c.Output = "pdf" }},
		{"attempts", func(c *Config) { c.MaxLayoutAttempts = 0 }},
		{"empty pages", func(c *Config) { c.MaxEmptyPages = 0 }},
		{"page size", func(c *Config) { c.DefaultPageWidth = -1 }},
		{"out dir", func(c *Config) { c.OutDir = "" }},
	}
	require.NoError(t, Default().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoad_InvalidFlag(t *testing.T) {
	_, err := Load([]string{"--output=pdf"})
	assert.Error(t, err)

	_, err = Load([]string{"--no-such-flag"})
	assert.Error(t, err)
}
