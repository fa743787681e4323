package paths

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveConfigDirPrecedence(t *testing.T) {
	t.Setenv(EnvConfigDir, "/env/config")

	// Flag beats env.
	dir, err := ResolveConfigDir("/flag/config")
	require.NoError(t, err)
	assert.Equal(t, "/flag/config", dir)

	// Env beats default.
	dir, err = ResolveConfigDir("")
	require.NoError(t, err)
	assert.Equal(t, "/env/config", dir)
}

func TestResolveConfigDirDefault(t *testing.T) {
	t.Setenv(EnvConfigDir, "")
	t.Setenv("XDG_CONFIG_HOME", "/xdg")

	dir, err := ResolveConfigDir("")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(dir))
	assert.Equal(t, "fieldops", filepath.Base(dir))
}

func TestResolveDataDirPrecedence(t *testing.T) {
	t.Setenv(EnvDataDir, "/env/data")

	// Flag beats everything.
	dir, err := ResolveDataDir("/flag/data", "/config/data")
	require.NoError(t, err)
	assert.Equal(t, "/flag/data", dir)

	// Config value beats env.
	dir, err = ResolveDataDir("", "/config/data")
	require.NoError(t, err)
	assert.Equal(t, "/config/data", dir)

	// Env beats the CWD default.
	dir, err = ResolveDataDir("", "")
	require.NoError(t, err)
	assert.Equal(t, "/env/data", dir)
}

func TestResolveDataDirDefault(t *testing.T) {
	t.Setenv(EnvDataDir, "")

	dir, err := ResolveDataDir("", "")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(dir))
	assert.Equal(t, DefaultDataDirName, filepath.Base(dir))
}

func TestResolveRelativePathsBecomeAbsolute(t *testing.T) {
	dir, err := ResolveDataDir("relative/data", "")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(dir))
}
