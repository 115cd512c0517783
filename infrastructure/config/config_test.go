package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stoat/Mewton-family-tree/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, ":5175", cfg.Address())
	assert.Equal(t, "/data", cfg.Storage.DataDir)
	assert.Equal(t, "tree.json", cfg.Storage.FileName)
	assert.Equal(t, "./tree.json", cfg.Storage.SeedPath)
	assert.False(t, cfg.AuthEnabled())
	assert.Equal(t, int64(2<<20), cfg.Server.MaxBodyBytes)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATA_DIR", "/tmp/tree")
	t.Setenv("AUTH_SECRET", "s3cret")
	t.Setenv("AUTH_SCHEME", "jwt")
	t.Setenv("TOKEN_TTL", "1h")
	t.Setenv("CORS_ORIGINS", "http://a.test,http://b.test")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Address())
	assert.Equal(t, "/tmp/tree", cfg.Storage.DataDir)
	assert.True(t, cfg.AuthEnabled())
	assert.Equal(t, "jwt", cfg.Auth.Scheme)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
}

func TestServerAddressOverridesPort(t *testing.T) {
	t.Setenv("SERVER_ADDRESS", "127.0.0.1:7000")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:7000", cfg.Address())
}

func TestLoadYAMLThenEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: 8000
log_level: debug
storage:
  data_dir: /srv/tree
  file_name: family.json
`), 0o644))
	t.Setenv("TREE_FILE", "override.json")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/srv/tree", cfg.Storage.DataDir)
	assert.Equal(t, "override.json", cfg.Storage.FileName)
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr bool
	}{
		{"defaults are valid", func(c *config.Config) {}, false},
		{"unknown backend", func(c *config.Config) { c.Storage.Backend = "s3" }, true},
		{"dynamodb needs a table", func(c *config.Config) { c.Storage.Backend = "dynamodb" }, true},
		{"dynamodb with table", func(c *config.Config) {
			c.Storage.Backend = "dynamodb"
			c.Storage.DynamoDBTable = "family-tree"
		}, false},
		{"bad port", func(c *config.Config) { c.Port = 0 }, true},
		{"unknown scheme", func(c *config.Config) { c.Auth.Scheme = "basic" }, true},
		{"production requires secret", func(c *config.Config) { c.Environment = "production" }, true},
		{"production with secret", func(c *config.Config) {
			c.Environment = "production"
			c.Auth.Secret = "x"
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadClientConfig(t *testing.T) {
	t.Setenv("TREE_API_URL", "http://tree.local:5175")
	t.Setenv("DEBOUNCE_WINDOW", "1s")

	cfg, err := config.LoadClientConfig()
	require.NoError(t, err)

	assert.Equal(t, "http://tree.local:5175", cfg.APIURL)
	assert.Equal(t, time.Second, cfg.DebounceWindow)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
}
