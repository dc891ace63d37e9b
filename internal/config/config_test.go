package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "rawhttp.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"RAWHTTP_PROXY", "RAWHTTP_JOURNAL", "RAWHTTP_LOG_LEVEL", "RAWHTTP_TIMEOUT", "RAWHTTP_MAX_TUNNEL_HEAD_BYTES"} {
		t.Setenv(k, "")
	}
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	p := writeFile(t, `
proxy: "alice:secret@proxy.example:3128"
timeout: 5s
headers:
  - key: User-Agent
    value: rawhttp/1
  - key: Accept
    value: "*/*"
journal:
  path: /tmp/exchanges.db
log:
  level: debug
  format: std
  development: true
`)
	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "alice:secret@proxy.example:3128", cfg.Proxy)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, []Header{{Key: "User-Agent", Value: "rawhttp/1"}, {Key: "Accept", Value: "*/*"}}, cfg.Headers)
	assert.Equal(t, "/tmp/exchanges.db", cfg.Journal.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "std", cfg.Log.Format)
	assert.True(t, cfg.Log.Development)
	assert.Equal(t, 64<<10, cfg.MaxTunnelHeadBytes)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "zap", cfg.Log.Format)
	assert.Zero(t, cfg.Timeout)
}

func TestLoad_Malformed(t *testing.T) {
	_, err := Load(writeFile(t, "proxy: [unterminated"))
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("RAWHTTP_PROXY", "127.0.0.1:8080")
	t.Setenv("RAWHTTP_JOURNAL", "env.db")
	t.Setenv("RAWHTTP_LOG_LEVEL", "warn")
	t.Setenv("RAWHTTP_TIMEOUT", "250ms")
	t.Setenv("RAWHTTP_MAX_TUNNEL_HEAD_BYTES", "1024")

	cfg, err := Load(writeFile(t, "proxy: file.example:3128\n"))
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8080", cfg.Proxy)
	assert.Equal(t, "env.db", cfg.Journal.Path)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, 250*time.Millisecond, cfg.Timeout)
	assert.Equal(t, 1024, cfg.MaxTunnelHeadBytes)
}

func TestLoad_BadEnvDuration(t *testing.T) {
	clearEnv(t)
	t.Setenv("RAWHTTP_TIMEOUT", "soon")
	_, err := Load("")
	assert.Error(t, err)
}
