package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapLookup returns a LookupFunc backed by env.
func mapLookup(env map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

// writeTestConfig writes a YAML config to a temp dir and returns the path.
func writeTestConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(content), cfgTestFilePerms))
	return configPath
}

func TestLoad_Production(t *testing.T) {
	root := t.TempDir()
	cfg, err := Load(LoadOptions{Lookup: mapLookup(map[string]string{
		EnvMode:       "production",
		EnvProtocol:   "app",
		EnvHost:       "app://local",
		EnvBundleRoot: root,
	})})
	require.NoError(t, err)

	assert.Equal(t, Production, cfg.Mode)
	assert.Equal(t, "app", cfg.Protocol)
	assert.Equal(t, "app://local", cfg.Host)
	assert.Equal(t, root, cfg.BundleRoot)
	assert.Equal(t, DefaultAddress, cfg.Server.Address)
	assert.Equal(t, TransportHTTP, cfg.Server.Transport)
	assert.False(t, cfg.Debug)
}

func TestLoad_MissingMode(t *testing.T) {
	_, err := Load(LoadOptions{Lookup: mapLookup(map[string]string{})})

	var cfgErr *Error
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, EnvMode, cfgErr.Key)
	assert.ErrorIs(t, err, ErrMissingEnv)
}

func TestLoad_InvalidMode(t *testing.T) {
	_, err := Load(LoadOptions{Lookup: mapLookup(map[string]string{EnvMode: "staging"})})
	assert.ErrorIs(t, err, ErrInvalidMode)
}

func TestLoad_ProductionRequiresProtocolAndHost(t *testing.T) {
	_, err := Load(LoadOptions{Lookup: mapLookup(map[string]string{
		EnvMode:       "production",
		EnvBundleRoot: t.TempDir(),
	})})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingProtocol)
	assert.ErrorIs(t, err, ErrMissingHost)
	assert.Contains(t, err.Error(), "config: APP_HOST")
}

func TestLoad_HostMustUseProtocol(t *testing.T) {
	_, err := Load(LoadOptions{Lookup: mapLookup(map[string]string{
		EnvMode:       "production",
		EnvProtocol:   "app",
		EnvHost:       "https://local",
		EnvBundleRoot: t.TempDir(),
	})})
	assert.ErrorIs(t, err, ErrHostSchemeMismatch)
}

func TestLoad_ProductionRelativeBundleRoot(t *testing.T) {
	_, err := Load(LoadOptions{Lookup: mapLookup(map[string]string{
		EnvMode:       "production",
		EnvProtocol:   "app",
		EnvHost:       "app://local",
		EnvBundleRoot: "build/prod",
	})})
	assert.ErrorIs(t, err, ErrInvalidBundleRoot)
}

func TestLoad_DevelopmentRequiresDevServer(t *testing.T) {
	_, err := Load(LoadOptions{Lookup: mapLookup(map[string]string{EnvMode: "development"})})
	assert.ErrorIs(t, err, ErrMissingDevServer)

	cfg, err := Load(LoadOptions{
		Lookup:    mapLookup(map[string]string{EnvMode: "development"}),
		DevServer: "http://localhost:3000/",
	})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3000", cfg.DevServer, "trailing slash is trimmed")
	assert.NotEmpty(t, cfg.BundleRoot, "bundle root defaults to the executable directory")
}

func TestLoad_TestModeNeedsNothing(t *testing.T) {
	cfg, err := Load(LoadOptions{Lookup: mapLookup(map[string]string{EnvMode: "test"})})
	require.NoError(t, err)
	assert.Equal(t, Test, cfg.Mode)
}

func TestLoad_Transport(t *testing.T) {
	_, err := Load(LoadOptions{
		Lookup:    mapLookup(map[string]string{EnvMode: "test"}),
		Transport: "sse",
	})
	assert.ErrorIs(t, err, ErrInvalidTransport)

	_, err = Load(LoadOptions{
		Lookup:    mapLookup(map[string]string{EnvMode: "test"}),
		Transport: TransportStdio,
	})
	assert.ErrorIs(t, err, ErrTransportRequiresProduction)
}

func TestLoad_Debug(t *testing.T) {
	cfg, err := Load(LoadOptions{Lookup: mapLookup(map[string]string{EnvMode: "test", EnvDebug: "true"})})
	require.NoError(t, err)
	assert.True(t, cfg.Debug)

	_, err = Load(LoadOptions{Lookup: mapLookup(map[string]string{EnvMode: "test", EnvDebug: "maybe"})})
	var cfgErr *Error
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, EnvDebug, cfgErr.Key)

	cfg, err = Load(LoadOptions{Lookup: mapLookup(map[string]string{EnvMode: "test"}), Debug: true})
	require.NoError(t, err)
	assert.True(t, cfg.Debug)
}

func TestLoad_DotenvFillsGaps(t *testing.T) {
	dir := t.TempDir()
	root := t.TempDir()
	writeDotenv(t, dir, ".env", "APP_PROTOCOL=app\nAPP_HOST=app://from-dotenv\nAPP_BUNDLE_ROOT="+root+"\n")

	cfg, err := Load(LoadOptions{
		EnvDir: dir,
		Lookup: mapLookup(map[string]string{
			EnvMode: "production",
			EnvHost: "app://from-process",
		}),
	})
	require.NoError(t, err)
	assert.Equal(t, "app", cfg.Protocol)
	assert.Equal(t, "app://from-process", cfg.Host, "process environment wins over .env")
	assert.Equal(t, root, cfg.BundleRoot)
}

func TestLoad_FileEnvAndFlags(t *testing.T) {
	root := t.TempDir()
	path := writeTestConfig(t, `
protocol: app
host: app://file
bundle_root: `+root+`
server:
  address: 127.0.0.1:9000
`)

	cfg, err := Load(LoadOptions{
		ConfigPath: path,
		Lookup: mapLookup(map[string]string{
			EnvMode: "production",
			EnvHost: "app://env",
		}),
		Address: "127.0.0.1:9100",
	})
	require.NoError(t, err)
	assert.Equal(t, "app", cfg.Protocol, "file value kept")
	assert.Equal(t, "app://env", cfg.Host, "env overrides file")
	assert.Equal(t, "127.0.0.1:9100", cfg.Server.Address, "flag overrides file")
	assert.Equal(t, Production, cfg.Mode, "mode always comes from the environment")
}

func TestLoadFile_MissingFile(t *testing.T) {
	_, err := LoadFile("/nonexistent/path/config.yaml", nil)
	assert.Error(t, err)
}

func TestLoadFile_InvalidYAML(t *testing.T) {
	_, err := LoadFile(writeTestConfig(t, "invalid: yaml: content:"), nil)
	assert.Error(t, err)
}

func TestLoadFile_EnvVarExpansion(t *testing.T) {
	path := writeTestConfig(t, "host: ${TEST_APP_SCHEME}://local\n")
	cfg, err := LoadFile(path, mapLookup(map[string]string{"TEST_APP_SCHEME": "app"}))
	require.NoError(t, err)
	assert.Equal(t, "app://local", cfg.Host)
}

func TestExpandEnvVars(t *testing.T) {
	lookup := mapLookup(map[string]string{"MY_VAR": "value123", "ANOTHER_VAR": "another"})

	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{"single var", "prefix-${MY_VAR}-suffix", "prefix-value123-suffix"},
		{"multiple vars", "${MY_VAR} and ${ANOTHER_VAR}", "value123 and another"},
		{"no vars", "no variables here", "no variables here"},
		{"empty var", "${UNDEFINED_VAR}", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, expandEnvVars(tt.input, lookup))
		})
	}
}

func TestError(t *testing.T) {
	err := &Error{Key: EnvHost, Err: ErrMissingHost}
	assert.Equal(t, "config: APP_HOST: app host is required in production", err.Error())
	assert.ErrorIs(t, err, ErrMissingHost)
}
