package cli

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/redoffice/internal/adapters/driven/config/file"
	"github.com/custodia-labs/redoffice/internal/adapters/driven/oauth"
	"github.com/custodia-labs/redoffice/internal/core/domain"
)

type configShowOutput struct {
	Path     string        `json:"path"`
	Settings []configEntry `json:"settings"`
}

func TestConfigSet_TimeoutSeconds(t *testing.T) {
	dir := t.TempDir()

	out, code := runCLI(t, "--config", dir, "config", "set", "auth.timeout", "90")
	require.Equal(t, 0, code, out)
	assert.Equal(t, configEntry{Key: "auth.timeout", Value: "1m30s"}, decode[configEntry](t, out))

	out, code = runCLI(t, "--config", dir, "config", "get", "auth.timeout")
	require.Equal(t, 0, code, out)
	assert.Equal(t, "1m30s", decode[configEntry](t, out).Value)

	store, err := file.NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, store.GetDuration(file.KeyAuthTimeout, oauth.DefaultAuthTimeout))
}

func TestConfigSet_OpenBrowserFalse(t *testing.T) {
	dir := t.TempDir()

	out, code := runCLI(t, "--config", dir, "config", "set", "auth.open_browser", "false")
	require.Equal(t, 0, code, out)
	assert.Equal(t, false, decode[configEntry](t, out).Value)

	store, err := file.NewConfigStore(dir)
	require.NoError(t, err)
	val, set := store.Get(file.KeyAuthOpenBrowser)
	assert.True(t, set)
	assert.Equal(t, false, val)
}

func TestConfigShow(t *testing.T) {
	dir := t.TempDir()
	_, code := runCLI(t, "--config", dir, "config", "set", "log.verbose", "true")
	require.Equal(t, 0, code)

	out, code := runCLI(t, "--config", dir, "config")
	require.Equal(t, 0, code, out)

	result := decode[configShowOutput](t, out)
	assert.Equal(t, filepath.Join(dir, "config.toml"), result.Path)
	require.Len(t, result.Settings, len(configKeys))
	for _, entry := range result.Settings {
		if entry.Key == file.KeyLogVerbose {
			assert.Equal(t, true, entry.Value)
		} else {
			assert.Nil(t, entry.Value, entry.Key)
		}
	}
}

func TestConfig_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"get unknown key", []string{"get", "auth.scopes"}},
		{"set unknown key", []string{"set", "auth.scopes", "x"}},
		{"set invalid bool", []string{"set", "log.verbose", "sometimes"}},
		{"set malformed timeout", []string{"set", "auth.timeout", "soon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()

			out, code := runCLI(t, append([]string{"--config", dir, "config"}, tt.args...)...)

			assert.Equal(t, 1, code)
			assert.Equal(t, "InvalidInput", decode[domain.ErrorReport](t, out).Status)
			assert.NoFileExists(t, filepath.Join(dir, "config.toml"))
		})
	}
}

func TestParseConfigValue(t *testing.T) {
	tests := []struct {
		key  string
		raw  string
		want any
	}{
		{file.KeySecretsDir, "/srv/secrets", "/srv/secrets"},
		{file.KeyLogFile, "/tmp/redoffice.log", "/tmp/redoffice.log"},
		{file.KeyAuthOpenBrowser, "true", true},
		{file.KeyLogVerbose, "0", false},
		{file.KeyAuthTimeout, "0", "0s"},
		{file.KeyAuthTimeout, "300", "5m0s"},
		{file.KeyAuthTimeout, "2m", "2m0s"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.raw, func(t *testing.T) {
			got, err := parseConfigValue(tt.key, tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseConfigValue_Rejects(t *testing.T) {
	for _, raw := range []string{"-5m", "-1", "soon", ""} {
		_, err := parseConfigValue(file.KeyAuthTimeout, raw)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, raw)
	}
	_, err := parseConfigValue(file.KeyAuthOpenBrowser, "yes")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLoadConfig_UsesConfigFlag(t *testing.T) {
	dir := t.TempDir()
	old := configDir
	configDir = dir
	t.Cleanup(func() { configDir = old })

	config, err := loadConfig()

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.toml"), config.Path())
}
