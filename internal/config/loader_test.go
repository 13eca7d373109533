package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"specrun/internal/runner"
)

// Helper function to create a temporary config file
func writeConfigFile(t *testing.T, dir string, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0755))
	path := filepath.Join(dir, configFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// mockPaths points both optional layers into tempDir for the duration of t.
func mockPaths(t *testing.T, tempDir string) {
	t.Helper()
	originalGetUserConfigPath := getUserConfigPath
	originalGetProjectConfigPath := getProjectConfigPath
	t.Cleanup(func() {
		getUserConfigPath = originalGetUserConfigPath
		getProjectConfigPath = originalGetProjectConfigPath
	})

	getUserConfigPath = func() (string, error) {
		return filepath.Join(tempDir, "home", userConfigDir, configFileName), nil
	}
	getProjectConfigPath = func() (string, error) {
		return filepath.Join(tempDir, "work", projectConfigDir, configFileName), nil
	}
}

func TestLoadConfig_DefaultOnly(t *testing.T) {
	mockPaths(t, t.TempDir())

	loadedConfig, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, GetDefaultConfig(), loadedConfig)

	rc, err := loadedConfig.RunnerConfig()
	require.NoError(t, err)
	assert.Equal(t, runner.Sequential, rc.Mode)
	assert.False(t, rc.FailFast)
}

func TestLoadConfig_UserOverride(t *testing.T) {
	tempDir := t.TempDir()
	mockPaths(t, tempDir)

	writeConfigFile(t, filepath.Join(tempDir, "home", userConfigDir), `
globalSettings:
  logLevel: debug
run:
  mode: parallel
  workers: 4
  testTimeout: 30s
output:
  verbose: true
`)

	loadedConfig, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "debug", loadedConfig.GlobalSettings.LogLevel)
	assert.Equal(t, "parallel", loadedConfig.Run.Mode)
	assert.Equal(t, 4, loadedConfig.Run.Workers)
	assert.Equal(t, 30*time.Second, loadedConfig.Run.TestTimeout)
	assert.True(t, Bool(loadedConfig.Output.Verbose))
	assert.Equal(t, FormatText, loadedConfig.Output.Format, "unset fields keep defaults")
}

func TestLoadConfig_ProjectOverridesUser(t *testing.T) {
	tempDir := t.TempDir()
	mockPaths(t, tempDir)

	writeConfigFile(t, filepath.Join(tempDir, "home", userConfigDir), `
run:
  mode: parallel
  failFast: true
filter:
  includeTags: [unit, fast]
`)
	writeConfigFile(t, filepath.Join(tempDir, "work", projectConfigDir), `
run:
  failFast: false
filter:
  includeTags: [integration]
`)

	loadedConfig, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "parallel", loadedConfig.Run.Mode)
	assert.False(t, Bool(loadedConfig.Run.FailFast), "an explicit false overrides the user layer")
	assert.Equal(t, []string{"integration"}, loadedConfig.Filter.IncludeTags)
}

func TestLoadConfig_ExplicitFile(t *testing.T) {
	tempDir := t.TempDir()
	mockPaths(t, tempDir)

	writeConfigFile(t, filepath.Join(tempDir, "work", projectConfigDir), `
output:
  format: json
`)
	explicit := writeConfigFile(t, filepath.Join(tempDir, "explicit"), `
output:
  format: text
  reportDir: /tmp/reports
`)

	loadedConfig, err := LoadConfig(explicit)
	require.NoError(t, err)
	assert.Equal(t, FormatText, loadedConfig.Output.Format)
	assert.Equal(t, "/tmp/reports", loadedConfig.Output.ReportDir)

	_, err = LoadConfig(filepath.Join(tempDir, "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	tempDir := t.TempDir()
	mockPaths(t, tempDir)

	writeConfigFile(t, filepath.Join(tempDir, "work", projectConfigDir), "run: [not, a, map")

	_, err := LoadConfig("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "project config")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*SpecrunConfig)
		wantErr string
	}{
		{name: "defaults", mutate: func(*SpecrunConfig) {}},
		{name: "bad mode", mutate: func(c *SpecrunConfig) { c.Run.Mode = "random" }, wantErr: "unknown execution mode"},
		{name: "bad format", mutate: func(c *SpecrunConfig) { c.Output.Format = "xml" }, wantErr: "unknown output format"},
		{name: "bad log level", mutate: func(c *SpecrunConfig) { c.GlobalSettings.LogLevel = "loud" }, wantErr: "unknown log level"},
		{name: "negative workers", mutate: func(c *SpecrunConfig) { c.Run.Workers = -2 }, wantErr: "workers must not be negative"},
		{name: "bad pattern", mutate: func(c *SpecrunConfig) { c.Filter.Names = []string{"[x"} }, wantErr: "invalid name pattern"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := GetDefaultConfig()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGetUserConfigDir(t *testing.T) {
	original := osUserHomeDir
	defer func() { osUserHomeDir = original }()
	osUserHomeDir = func() (string, error) { return "/home/tester", nil }

	dir, err := GetUserConfigDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/home/tester", ".config", "specrun"), dir)
}
