package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	cfg := fromViper(v)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, BackendBadger, cfg.Store.Backend)
	assert.Equal(t, "records", cfg.Store.KeyPrefix)
	assert.Equal(t, 12, cfg.Students.PageSize)
	assert.Equal(t, int64(5*1024*1024), cfg.Students.MaxImageSizeBytes)
	assert.Equal(t, time.Hour, cfg.Exports.SignedURLTTL)
	assert.Equal(t, 24*time.Hour, cfg.Exports.ResultTTL)
	assert.Equal(t, time.Hour, cfg.Exports.PurgeInterval)
	assert.Nil(t, cfg.CORS.AllowedOrigins)
}

func TestOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("STORE_BACKEND", "Redis")
	v.Set("ALLOWED_ORIGINS", "http://a.test, ,http://b.test")
	v.Set("EXPORTS_SIGNED_URL_TTL", "not-a-duration")
	v.Set("PAGE_SIZE", 0)
	cfg := fromViper(v)

	assert.Equal(t, BackendRedis, cfg.Store.Backend)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, time.Hour, cfg.Exports.SignedURLTTL)
	assert.Equal(t, 12, cfg.Students.PageSize)
}
