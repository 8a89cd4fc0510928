package config

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	c, err := FromEnv(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", c.Addr)
	assert.Equal(t, StoreSQLite, c.Store)
	assert.Equal(t, "http://goatedcodoer:8080/api", c.UpstreamURL)
	assert.Equal(t, 15*time.Second, c.ReadTimeout)
	assert.Equal(t, 20*time.Second, c.WriteTimeout)
	assert.Equal(t, 5*time.Minute, c.CacheTTL)
	assert.Equal(t, int64(20<<20), c.MaxUpload)
	assert.NoError(t, c.Validate())
}

func TestEnvAndDotEnv(t *testing.T) {
	t.Setenv("VERTEX_ADDR", ":9000")
	t.Setenv("VERTEX_READ_TIMEOUT", "3s")

	env := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(env, []byte("VERTEX_S3_PREFIX=photos/\nVERTEX_ADDR=:1\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("VERTEX_S3_PREFIX") })

	c, err := FromEnv(env)
	require.NoError(t, err)
	assert.Equal(t, ":9000", c.Addr, "the environment wins over .env")
	assert.Equal(t, "photos/", c.S3Prefix)
	assert.Equal(t, 3*time.Second, c.ReadTimeout)
}

func TestFlagsOverride(t *testing.T) {
	t.Setenv("VERTEX_STORE", "upstream")
	c, err := FromEnv(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	fs := c.FlagSet("vertex", io.Discard)
	require.NoError(t, fs.Parse([]string{"-s", "memory", "-addr", ":7000", "-write-timeout", "1m", "rest"}))

	assert.Equal(t, StoreMemory, c.Store)
	assert.Equal(t, ":7000", c.Addr)
	assert.Equal(t, time.Minute, c.WriteTimeout)
	assert.Equal(t, []string{"rest"}, fs.Args())
	assert.False(t, c.Debug)

	require.NoError(t, fs.Parse([]string{"-debug"}))
	assert.True(t, c.Debug)
}

func TestDebugFromEnv(t *testing.T) {
	t.Setenv("VERTEX_DEBUG", "true")
	c, err := FromEnv(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.True(t, c.Debug)
}

func TestValidate(t *testing.T) {
	base, err := FromEnv(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(c *Config)
		ok     bool
	}{
		{"postgres without url", func(c *Config) { c.Store = StorePostgres }, false},
		{"postgres with url", func(c *Config) { c.Store, c.PostgresURL = StorePostgres, "postgres://x" }, true},
		{"unknown store", func(c *Config) { c.Store = "mysql" }, false},
		{"s3 without bucket", func(c *Config) { c.Blob = BlobS3 }, false},
		{"s3 with bucket", func(c *Config) { c.Blob, c.S3Bucket = BlobS3, "assets" }, true},
		{"zero timeout", func(c *Config) { c.ReadTimeout = 0 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := *base
			tt.mutate(&c)
			if tt.ok {
				assert.NoError(t, c.Validate())
			} else {
				assert.Error(t, c.Validate())
			}
		})
	}
}

func TestOrigins(t *testing.T) {
	c := &Config{CORSOrigins: " http://localhost:3001, ,http://127.0.0.1:63343 "}
	assert.Equal(t, []string{"http://localhost:3001", "http://127.0.0.1:63343"}, c.Origins())
	assert.Empty(t, (&Config{}).Origins())
}
