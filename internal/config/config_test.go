package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	for _, k := range []string{"EXAMFORGE_HTTP_ADDR", "EXAMFORGE_DB_DRIVER", "EXAMFORGE_DB", "EXAMFORGE_JWT_SECRET", "EXAMFORGE_STRICT_COUNT"} {
		t.Setenv(k, "")
	}

	c, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":8080", c.HTTPAddr)
	assert.Equal(t, "sqlite", c.DBDriver)
	assert.NotEmpty(t, c.DBDSN)
	assert.False(t, c.StrictCount)
	assert.NoError(t, c.Validate())
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("EXAMFORGE_HTTP_ADDR", "127.0.0.1:9000")
	t.Setenv("EXAMFORGE_DB_DRIVER", "postgres")
	t.Setenv("EXAMFORGE_DB", "postgres://u:p@localhost/examforge")
	t.Setenv("EXAMFORGE_STRICT_COUNT", "true")
	t.Setenv("EXAMFORGE_STRUCTURED_OUTPUT", "1")
	t.Setenv("EXAMFORGE_LOG_LEVEL", "debug")

	c, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", c.HTTPAddr)
	assert.Equal(t, "postgres", c.DBDriver)
	require.NoError(t, c.Validate())

	g := c.Generator()
	assert.True(t, g.StrictCount)
	assert.True(t, g.StructuredOutput)
	assert.NotEmpty(t, g.Validators)
}

func TestValidate(t *testing.T) {
	c := Config{DBDriver: "postgres", LogLevel: "info"}
	assert.ErrorContains(t, c.Validate(), "EXAMFORGE_DB")

	c = Config{DBDriver: "mysql", DBDSN: "x", LogLevel: "info"}
	assert.ErrorContains(t, c.Validate(), "mysql")

	c = Config{DBDriver: "sqlite", DBDSN: "x", LogLevel: "loud"}
	assert.ErrorContains(t, c.Validate(), "loud")
}

func TestParseLevel(t *testing.T) {
	l, err := ParseLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, l)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("EXAMFORGE_TEST_DOTENV=from-file\nEXAMFORGE_TEST_KEEP=from-file\n"), 0o600))

	t.Setenv("EXAMFORGE_TEST_KEEP", "from-env")
	os.Unsetenv("EXAMFORGE_TEST_DOTENV")
	t.Cleanup(func() { os.Unsetenv("EXAMFORGE_TEST_DOTENV") })

	require.NoError(t, LoadDotEnv(path, filepath.Join(dir, "missing.env")))
	assert.Equal(t, "from-file", os.Getenv("EXAMFORGE_TEST_DOTENV"))
	assert.Equal(t, "from-env", os.Getenv("EXAMFORGE_TEST_KEEP"))
}
