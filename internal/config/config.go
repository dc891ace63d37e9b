package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the CLI configuration. The client core itself reads none of it.
type Config struct {
	// Proxy is a descriptor, "[user:password@]host:port". Empty means direct.
	Proxy string `yaml:"proxy"`
	// Timeout bounds a whole dispatch through the context deadline; zero
	// means wait for the peer indefinitely.
	Timeout            time.Duration `yaml:"timeout"`
	MaxTunnelHeadBytes int           `yaml:"max_tunnel_head_bytes"`
	Headers            []Header      `yaml:"headers"` // sent before command-line headers
	Journal            JournalConfig `yaml:"journal"`
	Log                LogConfig     `yaml:"log"`
}

// Header is one default request header. A list keeps wire order stable.
type Header struct {
	Key   string `yaml:"key"`
	Value string `yaml:"value"`
}

type JournalConfig struct {
	Path string `yaml:"path"` // empty disables the journal
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Format      string `yaml:"format"` // "zap" or "std"
	Development bool   `yaml:"development"`
}

// Load reads path, applies environment overrides and fills defaults. A
// missing file is not an error; a malformed one is.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// Default returns the configuration used when nothing is configured.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("RAWHTTP_PROXY"); v != "" {
		c.Proxy = v
	}
	if v := os.Getenv("RAWHTTP_JOURNAL"); v != "" {
		c.Journal.Path = v
	}
	if v := os.Getenv("RAWHTTP_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("RAWHTTP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("RAWHTTP_TIMEOUT: %w", err)
		}
		c.Timeout = d
	}
	if v := os.Getenv("RAWHTTP_MAX_TUNNEL_HEAD_BYTES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("RAWHTTP_MAX_TUNNEL_HEAD_BYTES: %w", err)
		}
		c.MaxTunnelHeadBytes = n
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "zap"
	}
	if c.MaxTunnelHeadBytes == 0 {
		c.MaxTunnelHeadBytes = 64 << 10
	}
}
