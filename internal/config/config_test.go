package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	settings, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Nil(t, settings)

	// No explicit file: missing config is fine, defaults apply.
	settings, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "origin", settings.Git.Origin)
	assert.Equal(t, "master", settings.Git.ProductionBranch)
	assert.Equal(t, "develop", settings.Git.DevelopmentBranch)
	assert.Equal(t, "release/", settings.Git.ReleaseBranchPrefix)
	assert.Equal(t, "mvn", settings.Maven.Command)
	assert.Equal(t, "console", settings.LogFormat)
	assert.NotEmpty(t, settings.Messages.TagRelease)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gitflow.yaml")
	content := `
git:
  production_branch: main
  version_tag_prefix: v
  committer_name: Release Bot
  committer_email: bot@example.com
maven:
  command: ./mvnw
  extra_args:
    - -Pci
messages:
  tag_release: "release {{.version}}"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	settings, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "main", settings.Git.ProductionBranch)
	assert.Equal(t, "v", settings.Git.VersionTagPrefix)
	assert.Equal(t, "Release Bot", settings.Git.CommitterName)
	assert.Equal(t, "./mvnw", settings.Maven.Command)
	assert.Equal(t, []string{"-Pci"}, settings.Maven.ExtraArgs)
	assert.Equal(t, "release {{.version}}", settings.Messages.TagRelease)

	// Values not in the file keep their defaults.
	assert.Equal(t, "develop", settings.Git.DevelopmentBranch)
	assert.Equal(t, "hotfix/", settings.Git.HotfixBranchPrefix)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("GITFLOW_GIT_ORIGIN", "upstream")
	t.Setenv("GITFLOW_DEBUG", "true")

	settings, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "upstream", settings.Git.Origin)
	assert.True(t, settings.Debug)
}

func TestFlowConfig(t *testing.T) {
	settings, err := Load("")
	require.NoError(t, err)

	settings.Git.ProductionBranch = "main"
	settings.Git.VersionTagPrefix = "v"

	cfg := settings.FlowConfig()
	assert.Equal(t, "main", cfg.ProductionBranch)
	assert.Equal(t, "v", cfg.VersionTagPrefix)
	assert.Equal(t, settings.Messages.TagRelease, cfg.Messages.TagRelease)
}
