package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("STORAGE_BACKEND", "")
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "file", cfg.DBType)
	assert.Equal(t, ":8088", cfg.HTTPAddr)
	assert.Equal(t, 15*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	yaml := "STORAGE_BACKEND: sqlite\nSQLITE_PATH: from-file.db\nHTTP_ADDR: \":9000\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))
	t.Setenv("SQLITE_PATH", "from-env.db")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.DBType)
	assert.Equal(t, "from-env.db", cfg.SQLitePath)
	assert.Equal(t, ":9000", cfg.HTTPAddr)
}

func TestValidate(t *testing.T) {
	base := Config{Env: "development", DBType: "file", DataFile: "x.json"}

	cases := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid file", func(c *Config) {}, false},
		{"postgres without dsn", func(c *Config) { c.DBType = "postgres" }, true},
		{"postgres with dsn", func(c *Config) { c.DBType = "postgres"; c.DBDSN = "postgres://x" }, false},
		{"sqlite without path", func(c *Config) { c.DBType = "sqlite" }, true},
		{"unknown backend", func(c *Config) { c.DBType = "mongo" }, true},
		{"unknown env", func(c *Config) { c.Env = "qa" }, true},
		{"production without auth", func(c *Config) { c.Env = "production" }, true},
		{"production with jwt secret", func(c *Config) { c.Env = "production"; c.SupabaseJWTSecret = "s" }, false},
		{"production with supabase url and key", func(c *Config) {
			c.Env = "production"
			c.SupabaseURL = "https://x.supabase.co"
			c.SupabaseAnonKey = "k"
		}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := base
			tc.mutate(&c)
			err := c.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
