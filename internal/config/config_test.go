package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, SourceMemory, cfg.Catalog.Source)
	assert.Equal(t, 3*time.Second, cfg.Catalog.Timeout)
	assert.Equal(t, 5*time.Minute, cfg.Preload.TTL)
	assert.Equal(t, 500*time.Millisecond, cfg.Preload.Delay)
	assert.Equal(t, time.Hour, cfg.S3.PresignTTL)
	assert.Equal(t, int64(32<<20), cfg.Preload.WarmMaxBytes)
	assert.Empty(t, cfg.Assets.BaseURL)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CATALOG_SOURCE", "postgres")
	t.Setenv("PRELOAD_TTL", "90s")
	t.Setenv("ASSET_API_BASE_URL", "https://assets.example.com/api")
	t.Setenv("CORS_ORIGINS", "http://localhost:3000,https://library.example.com")
	t.Setenv("ENABLE_HSTS", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, SourcePostgres, cfg.Catalog.Source)
	assert.Equal(t, 90*time.Second, cfg.Preload.TTL)
	assert.Equal(t, []string{"http://localhost:3000", "https://library.example.com"}, cfg.HTTP.CORSOrigins)
	assert.True(t, cfg.HTTP.EnableHSTS)
}

func TestLoad_Invalid(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CATALOG_SOURCE", "sqlite")

	_, err := Load()
	assert.ErrorContains(t, err, "CATALOG_SOURCE")
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Catalog: CatalogConfig{Source: SourceMemory, Timeout: time.Second},
			Assets:  AssetAPIConfig{RPS: 1},
			Preload: PreloadConfig{TTL: time.Minute},
			HTTP:    HTTPConfig{RateLimitRPS: 1, RateLimitBurst: 1},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"valid", func(*Config) {}, ""},
		{"bad asset url", func(c *Config) { c.Assets.BaseURL = "ftp://x" }, "ASSET_API_BASE_URL"},
		{"zero ttl", func(c *Config) { c.Preload.TTL = 0 }, "PRELOAD_TTL"},
		{"negative delay", func(c *Config) { c.Preload.Delay = -time.Second }, "PRELOAD_DELAY"},
		{"s3 without keys", func(c *Config) { c.S3.Endpoint = "http://minio:9000" }, "S3_ACCESS_KEY"},
		{"postgres without dsn", func(c *Config) { c.Catalog.Source = SourcePostgres }, "DB_DSN"},
		{"no rate limit", func(c *Config) { c.HTTP.RateLimitBurst = 0 }, "RATE_LIMIT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.want)
		})
	}
}
