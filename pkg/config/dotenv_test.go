package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cfgTestFilePerms = 0o600

func writeDotenv(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), cfgTestFilePerms))
}

func TestDotenvFiles(t *testing.T) {
	assert.Equal(t,
		[]string{".env.production.local", ".env.local", ".env.production", ".env"},
		DotenvFiles(Production))
	assert.Equal(t,
		[]string{".env.development.local", ".env.local", ".env.development", ".env"},
		DotenvFiles(Development))
	assert.Equal(t,
		[]string{".env.test", ".env"},
		DotenvFiles(Test))
}

func TestReadDotenv_Precedence(t *testing.T) {
	dir := t.TempDir()
	writeDotenv(t, dir, ".env", "APP_PROTOCOL=base\nAPP_HOST=app://base\nONLY_BASE=1\n")
	writeDotenv(t, dir, ".env.production", "APP_PROTOCOL=prod\nAPP_HOST=app://prod\n")
	writeDotenv(t, dir, ".env.production.local", "APP_HOST=app://mine\n")

	vars, err := ReadDotenv(dir, Production)
	require.NoError(t, err)

	assert.Equal(t, "prod", vars["APP_PROTOCOL"])
	assert.Equal(t, "app://mine", vars["APP_HOST"])
	assert.Equal(t, "1", vars["ONLY_BASE"])
}

func TestReadDotenv_TestModeSkipsLocal(t *testing.T) {
	dir := t.TempDir()
	writeDotenv(t, dir, ".env", "APP_HOST=app://base\n")
	writeDotenv(t, dir, ".env.local", "APP_HOST=app://local-override\n")
	writeDotenv(t, dir, ".env.test.local", "APP_HOST=app://test-local\n")

	vars, err := ReadDotenv(dir, Test)
	require.NoError(t, err)
	assert.Equal(t, "app://base", vars["APP_HOST"])
}

func TestReadDotenv_Expansion(t *testing.T) {
	dir := t.TempDir()
	writeDotenv(t, dir, ".env", "APP_PROTOCOL=app\nAPP_HOST=${APP_PROTOCOL}://local\n")

	vars, err := ReadDotenv(dir, Development)
	require.NoError(t, err)
	assert.Equal(t, "app://local", vars["APP_HOST"])
}

func TestReadDotenv_NoFiles(t *testing.T) {
	vars, err := ReadDotenv(t.TempDir(), Production)
	require.NoError(t, err)
	assert.Empty(t, vars)
}
