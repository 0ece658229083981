package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ".", cfg.Project.Root)
	assert.Equal(t, 120, cfg.Engine.TypeCheckerBudget)
	assert.InDelta(t, 0.35, cfg.Engine.MinConfidence, 1e-9)
	assert.Equal(t, 3, cfg.Engine.MinNameLength)
}

func TestLoadConfig_ReadsYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "codegraph.yaml")
	data := `
project:
  root: ./web
  ignore:
    - generated
paths:
  base_url: src
  aliases:
    "@app/*":
      - "src/app/*"
engine:
  type_checker_budget: 50
  min_confidence: 0.2
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "./web", cfg.Project.Root)
	assert.Equal(t, []string{"generated"}, cfg.Project.Ignore)
	assert.Equal(t, "src", cfg.Paths.BaseURL)
	assert.Equal(t, []string{"src/app/*"}, cfg.Paths.Aliases["@app/*"])
	assert.Equal(t, 50, cfg.Engine.TypeCheckerBudget)
	assert.InDelta(t, 0.2, cfg.Engine.MinConfidence, 1e-9)
	// Unset values fall back to defaults.
	assert.Equal(t, 3, cfg.Engine.MinNameLength)
	assert.Equal(t, 2*1024*1024, cfg.Engine.MaxFileSize)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("CODEGRAPH_ROOT", "/srv/app")
	t.Setenv("CODEGRAPH_TC_BUDGET", "7")
	t.Setenv("CODEGRAPH_MIN_CONFIDENCE", "0.5")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "/srv/app", cfg.Project.Root)
	assert.Equal(t, 7, cfg.Engine.TypeCheckerBudget)
	assert.InDelta(t, 0.5, cfg.Engine.MinConfidence, 1e-9)
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "codegraph.yaml")
	require.NoError(t, os.WriteFile(path, []byte("project: ["), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}
