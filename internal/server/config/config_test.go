package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophmarket/internal/common"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaults() *Config {
	c := &Config{}
	c.LoadDefaults()
	return c
}

func TestLoadDefaults(t *testing.T) {
	c := defaults()

	assert.Equal(t, ":8080", c.EndpointAddrHTTP)
	assert.Equal(t, ":50051", c.EndpointAddrGRPC)
	assert.Equal(t, "postgres", c.Storage)
	assert.Equal(t, "", c.SecretKey)
	assert.Equal(t, "", c.RedisAddr)
	assert.Equal(t, time.Hour, c.AccessTokenTTL)
	assert.Equal(t, 7*24*time.Hour, c.RefreshTokenTTL)
	assert.Equal(t, time.Hour, c.ResetTokenTTL)
	assert.Equal(t, time.Hour, c.SweepInterval)
	assert.Equal(t, "info", c.LogLevel)
}

func TestValidate(t *testing.T) {
	c := defaults()
	err := c.Validate()
	require.ErrorIs(t, err, common.ErrMissingSigningSecret)

	c.SecretKey = "k"
	require.NoError(t, c.Validate())

	c.Storage = "memory"
	c.DatabaseDSN = ""
	require.NoError(t, c.Validate())

	c.Storage = "postgres"
	require.Error(t, c.Validate())

	c.Storage = "sqlite"
	require.Error(t, c.Validate())

	c = defaults()
	c.SecretKey = "k"
	c.AccessTokenTTL = 0
	c.SweepInterval = -time.Second
	err = c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access token ttl")
	assert.Contains(t, err.Error(), "sweep interval")
}

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func TestParseJson(t *testing.T) {
	path := writeTempJSON(t, map[string]any{
		"endpoint_addr_http": "0.0.0.0:9999",
		"storage":            "memory",
		"secret_key":         "json-secret",
		"access_token_ttl":   "15m",
		"refresh_token_ttl":  float64(48 * time.Hour),
		"bcrypt_cost":        12,
		"s3_bucket":          "bucket",
	})

	t.Run("overlays set fields only", func(t *testing.T) {
		cfg := defaults()
		parseJson(cfg, []string{"-config", path})

		want := defaults()
		want.EndpointAddrHTTP = "0.0.0.0:9999"
		want.Storage = "memory"
		want.SecretKey = "json-secret"
		want.AccessTokenTTL = 15 * time.Minute
		want.RefreshTokenTTL = 48 * time.Hour
		want.BcryptCost = 12
		want.S3Bucket = "bucket"
		assert.Empty(t, cmp.Diff(want, cfg))
	})

	t.Run("no flag, no changes", func(t *testing.T) {
		cfg := defaults()
		parseJson(cfg, nil)
		assert.Empty(t, cmp.Diff(defaults(), cfg))
	})

	t.Run("missing file panics", func(t *testing.T) {
		require.Panics(t, func() { parseJson(defaults(), []string{"-c", filepath.Join(t.TempDir(), "nope.json")}) })
	})

	t.Run("bad json panics", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte("{"), 0o600))
		require.Panics(t, func() { parseJson(defaults(), []string{"-c", bad}) })
	})
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		expected    func(c *Config)
		expectPanic bool
	}{
		{
			name: "all flags",
			args: []string{
				"-a", "127.0.0.1:8081", "-G", ":6000", "-m", "memory", "-d", "db", "-R", "localhost:6379",
				"-s", "secret", "-t", "30", "-r", "120", "-u", "user", "-p", "password",
				"-b", "bucket", "-g", "us-west-1", "-e", "http://endpoint", "-l", "debug",
			},
			expected: func(c *Config) {
				c.EndpointAddrHTTP = "127.0.0.1:8081"
				c.EndpointAddrGRPC = ":6000"
				c.Storage = "memory"
				c.DatabaseDSN = "db"
				c.RedisAddr = "localhost:6379"
				c.SecretKey = "secret"
				c.AccessTokenTTL = 30 * time.Minute
				c.RefreshTokenTTL = 2 * time.Hour
				c.S3RootUser = "user"
				c.S3RootPassword = "password"
				c.S3Bucket = "bucket"
				c.S3Region = "us-west-1"
				c.S3BaseEndpoint = "http://endpoint"
				c.LogLevel = "debug"
			},
		},
		{
			name:     "foreign flags are ignored",
			args:     []string{"-test.v", "-x", "1", "-s", "k"},
			expected: func(c *Config) { c.SecretKey = "k" },
		},
		{
			name:        "non-numeric ttl",
			args:        []string{"-t", "soon"},
			expectPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaults()
			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(cfg, tt.args) })
				return
			}
			require.NotPanics(t, func() { parseFlags(cfg, tt.args) })

			want := defaults()
			tt.expected(want)
			assert.Empty(t, cmp.Diff(want, cfg))
		})
	}
}

func TestParseEnv(t *testing.T) {
	t.Setenv("GOPHMARKET_SECRET_KEY", "from-env")
	t.Setenv("GOPHMARKET_ACCESS_TOKEN_TTL", "20m")
	t.Setenv("GOPHMARKET_BCRYPT_COST", "11")

	envFile := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte(
		"GOPHMARKET_SECRET_KEY=from-file\nGOPHMARKET_REDIS_ADDR=redis:6379\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("GOPHMARKET_REDIS_ADDR") })

	cfg := defaults()
	parseEnv(cfg, []string{"-env", envFile})

	assert.Equal(t, "from-env", cfg.SecretKey, "process env wins over the file")
	assert.Equal(t, "redis:6379", cfg.RedisAddr)
	assert.Equal(t, 20*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 11, cfg.BcryptCost)
}

func TestParseEnv_BadValuePanics(t *testing.T) {
	t.Setenv("GOPHMARKET_SWEEP_INTERVAL", "often")
	require.Panics(t, func() { parseEnv(defaults(), nil) })
}

func TestLoad_Precedence(t *testing.T) {
	t.Setenv("GOPHMARKET_SECRET_KEY", "env")
	t.Setenv("GOPHMARKET_LOG_LEVEL", "warn")
	path := writeTempJSON(t, map[string]any{"secret_key": "json", "storage": "memory"})

	cfg := Load([]string{"-c", path, "-s", "flag"})

	assert.Equal(t, "flag", cfg.SecretKey)
	assert.Equal(t, "memory", cfg.Storage)
	assert.Equal(t, "warn", cfg.LogLevel)
	require.NoError(t, cfg.Validate())
}
