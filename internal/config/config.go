package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"

	defaultPort     = 8080
	defaultEnv      = "development"
	defaultDSN      = "root:password@tcp(127.0.0.1:3306)/reshimgathi?charset=utf8mb4&parseTime=True&loc=Local"
	defaultRedisURL = "redis://localhost:6379/0"

	defaultAccessTTL       = 24 * time.Hour
	defaultRefreshTTL      = 7 * 24 * time.Hour
	defaultSessionTTL      = 15 * 24 * time.Hour
	defaultRotateThreshold = 2 * 24 * time.Hour
	defaultPurgeGrace      = 24 * time.Hour
)

// AppConfig holds runtime startup configuration loaded from YAML.
type AppConfig struct {
	Port           int      `yaml:"port"`
	DSN            string   `yaml:"dsn"`
	RedisURL       string   `yaml:"redis_url"`
	Env            string   `yaml:"env"` // "development" | "production"
	AllowedOrigins []string `yaml:"allowed_origins"`

	Auth AuthConfig `yaml:"auth"`
	Push PushConfig `yaml:"push"`
}

// AuthConfig configures token secrets and the session lifecycle. Durations
// are Go duration strings ("24h", "360h").
type AuthConfig struct {
	AccessSecret  string `yaml:"access_secret"`
	RefreshSecret string `yaml:"refresh_secret"`

	AccessTTL       time.Duration `yaml:"-"`
	RefreshTTL      time.Duration `yaml:"-"`
	SessionTTL      time.Duration `yaml:"-"`
	RotateThreshold time.Duration `yaml:"-"`
	PurgeGrace      time.Duration `yaml:"-"`

	RawAccessTTL       string `yaml:"access_ttl"`
	RawRefreshTTL      string `yaml:"refresh_ttl"`
	RawSessionTTL      string `yaml:"session_ttl"`
	RawRotateThreshold string `yaml:"rotate_threshold"`
	RawPurgeGrace      string `yaml:"purge_grace"`
}

// PushConfig configures the push-notification transport.
type PushConfig struct {
	ServerKey string `yaml:"server_key"`
	Endpoint  string `yaml:"endpoint"`
}

// Load reads the YAML config from path. A missing file yields defaults so
// development needs no config at all.
func Load(path string) (*AppConfig, error) {
	cfg := &AppConfig{}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case os.IsNotExist(err) && path == DefaultConfigPath:
		// defaults only
	default:
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *AppConfig) normalize() error {
	if c.Port <= 0 {
		c.Port = defaultPort
	}
	if c.Env == "" {
		c.Env = defaultEnv
	}
	if c.DSN == "" {
		c.DSN = defaultDSN
	}
	if c.RedisURL == "" {
		c.RedisURL = defaultRedisURL
	}

	durations := []struct {
		raw string
		dst *time.Duration
		def time.Duration
	}{
		{c.Auth.RawAccessTTL, &c.Auth.AccessTTL, defaultAccessTTL},
		{c.Auth.RawRefreshTTL, &c.Auth.RefreshTTL, defaultRefreshTTL},
		{c.Auth.RawSessionTTL, &c.Auth.SessionTTL, defaultSessionTTL},
		{c.Auth.RawRotateThreshold, &c.Auth.RotateThreshold, defaultRotateThreshold},
		{c.Auth.RawPurgeGrace, &c.Auth.PurgeGrace, defaultPurgeGrace},
	}
	for _, d := range durations {
		if d.raw == "" {
			*d.dst = d.def
			continue
		}
		parsed, err := time.ParseDuration(d.raw)
		if err != nil || parsed <= 0 {
			return fmt.Errorf("invalid duration %q in auth config", d.raw)
		}
		*d.dst = parsed
	}

	if c.Auth.AccessSecret == "" || c.Auth.RefreshSecret == "" {
		if !c.IsDev() {
			return fmt.Errorf("auth.access_secret and auth.refresh_secret are required in production")
		}
		if c.Auth.AccessSecret == "" {
			c.Auth.AccessSecret = "dev-access-secret"
		}
		if c.Auth.RefreshSecret == "" {
			c.Auth.RefreshSecret = "dev-refresh-secret"
		}
	}
	return nil
}

// IsDev reports whether the app runs in development mode.
func (c *AppConfig) IsDev() bool { return c.Env != "production" }
