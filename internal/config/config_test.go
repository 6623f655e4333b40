package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoad_YAML(t *testing.T) {
	t.Setenv(EnvFile, "")
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, FileName), `version: 1
timeout: 10m
max_output: 4096
log:
  level: debug
tools:
  signtool:
    quote: false
    timeout: 30s
`)

	res, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, FileName), res.Path)

	cfg := res.Config
	assert.Equal(t, 1, cfg.Version)
	assert.Equal(t, 10*time.Minute, cfg.Timeout())
	assert.Equal(t, 4096, cfg.MaxOutputBytes())
	assert.Equal(t, "debug", cfg.LogLevel(DefaultLogLevel))
	assert.False(t, cfg.Quote("signtool", true))
	assert.True(t, cfg.Quote("wix", true))
	assert.Equal(t, 30*time.Second, cfg.ToolTimeout("signtool"))
	assert.Equal(t, 10*time.Minute, cfg.ToolTimeout("mage"))
}

func TestLoad_TOML(t *testing.T) {
	t.Setenv(EnvFile, "")
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, TOMLFileName), `version = 2
timeout = "90s"

[log]
format = "json"

[tools.mage]
quote = true
`)

	res, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Config.Version)
	assert.Equal(t, 90*time.Second, res.Config.Timeout())
	assert.Equal(t, "json", res.Config.Log.Format)
	assert.True(t, res.Config.Quote("mage", false))
}

func TestLoad_FromSubdirectory(t *testing.T) {
	t.Setenv(EnvFile, "")
	root := t.TempDir()
	writeFile(t, filepath.Join(root, FileName), "version: 3\n")

	sub := filepath.Join(root, "installer", "wix")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	res, err := Load(sub)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, FileName), res.Path)
	assert.Equal(t, 3, res.Config.Version)
}

func TestLoad_YAMLPreferredOverTOML(t *testing.T) {
	t.Setenv(EnvFile, "")
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, FileName), "version: 1\n")
	writeFile(t, filepath.Join(dir, TOMLFileName), "version = 2\n")

	res, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Config.Version)
}

func TestLoad_NoFile(t *testing.T) {
	t.Setenv(EnvFile, "")
	res, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, res.Path)

	cfg := res.Config
	assert.Zero(t, cfg.Timeout())
	assert.Equal(t, DefaultMaxOutput, cfg.MaxOutputBytes())
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel(DefaultLogLevel))
	assert.True(t, cfg.Quote("wix", true))
}

func TestLoad_EnvOverride(t *testing.T) {
	explicit := filepath.Join(t.TempDir(), "ci.yaml")
	writeFile(t, explicit, "timeout: 1h\n")
	t.Setenv(EnvFile, explicit)

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, FileName), "timeout: 1s\n")

	res, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, explicit, res.Path)
	assert.Equal(t, time.Hour, res.Config.Timeout())
}

func TestLoad_EnvOverrideMissing(t *testing.T) {
	t.Setenv(EnvFile, filepath.Join(t.TempDir(), "absent.yaml"))
	_, err := Load(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "absent.yaml")
}

func TestLoad_InvalidYAML(t *testing.T) {
	t.Setenv(EnvFile, "")
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, FileName), "timeout: [unclosed\n")

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing")
}

func TestLoad_InvalidTimeout(t *testing.T) {
	t.Setenv(EnvFile, "")
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, FileName), "tools:\n  wix:\n    timeout: soon\n")

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tools.wix.timeout")
}

func TestValidate(t *testing.T) {
	assert.NoError(t, (&Config{}).Validate())
	assert.Error(t, (&Config{RawTimeout: "-5s"}).Validate())
	assert.Error(t, (&Config{Log: LogConfig{Format: "xml"}}).Validate())
	assert.NoError(t, (&Config{RawTimeout: "2m", Log: LogConfig{Format: "json"}}).Validate())
}
