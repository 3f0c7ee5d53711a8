package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Zero(t, cfg.Store.Redis.TTL, "entries never expire by default")

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_YAML(t *testing.T) {
	path := write(t, "graphnav.yaml", `
log_level: debug
store:
  backend: redis
  redis:
    addr: cache:6380
    db: 2
    ttl: 90m
http:
  addr: ":9000"
catalog: [Empty, Circle]
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, BackendRedis, cfg.Store.Backend)
	assert.Equal(t, "cache:6380", cfg.Store.Redis.Addr)
	assert.Equal(t, 2, cfg.Store.Redis.DB)
	assert.Equal(t, 90*time.Minute, cfg.Store.Redis.TTL)
	assert.Equal(t, "graphnav:", cfg.Store.Redis.Prefix, "unset keys keep their default")
	assert.Equal(t, ":9000", cfg.HTTP.Addr)
	assert.True(t, cfg.HTTP.Metrics)
	assert.Equal(t, []string{"Empty", "Circle"}, cfg.Catalog)
}

func TestLoad_JSON(t *testing.T) {
	path := write(t, "graphnav.json", `{"http": {"metrics": false}, "store": {"redis": {"ttl": "2h"}}}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.False(t, cfg.HTTP.Metrics)
	assert.Equal(t, 2*time.Hour, cfg.Store.Redis.TTL)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"syntax", "store: [", "failed to parse"},
		{"unknown key", "colour: blue", "invalid config"},
		{"backend", "store: {backend: etcd}", `unknown store backend "etcd"`},
		{"redis addr", "store: {backend: redis, redis: {addr: ''}}", "store.redis.addr"},
		{"ttl", "store: {redis: {ttl: -1s}}", "must not be negative"},
		{"duration", "store: {redis: {ttl: soon}}", "invalid config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(write(t, "graphnav.yaml", tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
