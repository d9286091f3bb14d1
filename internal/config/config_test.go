package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(orig) }) //nolint:errcheck
}

func TestLoadDefaults(t *testing.T) {
	// Empty working directory so no config.yaml is picked up.
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://www.algoexpert.io", cfg.BaseURL)
	assert.Equal(t, "https://www.algoexpert.io/questions", cfg.StartURL)
	assert.Equal(t, "./problems", cfg.OutputRoot)
	assert.Equal(t, "./scraped.txt", cfg.StateFile)
	assert.Equal(t, "./scraper.db", cfg.LedgerPath)

	assert.Len(t, cfg.Categories, 15)
	assert.Contains(t, cfg.Categories, "arrays")
	assert.Contains(t, cfg.Categories, "dynamic-programming")
	assert.Len(t, cfg.Languages, 6)

	assert.Equal(t, `[data-category="%s"] a`, cfg.Selectors.CategoryLinks)
	assert.Equal(t, "href", cfg.Selectors.LinkAttribute)
	assert.Equal(t, "Run Code", cfg.Selectors.RunCodeText)

	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, 45, cfg.Browser.TimeoutSecs)

	assert.Equal(t, 12, cfg.Pacing.NavPerMinute)
	assert.Equal(t, 800, cfg.Pacing.MinDelayMs)
	assert.Equal(t, 2600, cfg.Pacing.MaxDelayMs)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	yaml := `
base_url: https://staging.example.com
start_url: https://staging.example.com/questions
categories:
  - arrays
languages:
  - python
pacing:
  nav_per_minute: 0
  min_delay_ms: 100
  max_delay_ms: 200
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))
	chdir(t, dir)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://staging.example.com", cfg.BaseURL)
	assert.Equal(t, []string{"arrays"}, cfg.Categories)
	assert.Equal(t, []string{"python"}, cfg.Languages)
	assert.Equal(t, 0, cfg.Pacing.NavPerMinute)
	assert.Equal(t, 100, cfg.Pacing.MinDelayMs)
	assert.Equal(t, "debug", cfg.Log.Level)

	// File values merge over defaults, not replace them wholesale.
	assert.Equal(t, "href", cfg.Selectors.LinkAttribute)
	assert.Equal(t, "./scraped.txt", cfg.StateFile)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "empty categories",
			yaml: "categories: []\n",
		},
		{
			name: "category selector without placeholder",
			yaml: "selectors:\n  category_links: \".category a\"\n",
		},
		{
			name: "max delay below min delay",
			yaml: "pacing:\n  min_delay_ms: 500\n  max_delay_ms: 100\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(tt.yaml), 0o644))
			chdir(t, dir)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadMalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(":\n  - not yaml"), 0o644))
	chdir(t, dir)

	_, err := Load()
	assert.Error(t, err)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))

	err := InitLogger(LogConfig{Level: "not-a-level", Format: "json"})
	assert.Error(t, err)
}
