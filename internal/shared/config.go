package shared

import (
	_ "embed"
	"fmt"
	"net/netip"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Sync policy names accepted in [SyncConfig.Policy].
const (
	PolicyCacheForever = "cache-forever"
	PolicyTTL          = "ttl"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Database DatabaseConfig `toml:"database"`
	Catalog  CatalogConfig  `toml:"catalog"`
	Sync     SyncConfig     `toml:"sync"`
	Browse   BrowseConfig   `toml:"browse"`
	Server   ServerConfig   `toml:"server"`
	Logging  LoggingConfig  `toml:"logging"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// CatalogConfig describes the remote catalog endpoint and its response cache.
type CatalogConfig struct {
	BaseURL   string   `toml:"base_url"`
	Path      string   `toml:"path"`
	Token     string   `toml:"token"`
	UserAgent string   `toml:"user_agent"`
	Timeout   Duration `toml:"timeout"`
	CachePath string   `toml:"cache_path"`
}

// URL joins the base URL and the catalog path.
func (c CatalogConfig) URL() string {
	return strings.TrimRight(c.BaseURL, "/") + "/" + strings.TrimLeft(c.Path, "/")
}

// SyncConfig selects when a non-empty store is refreshed from the remote catalog.
type SyncConfig struct {
	Policy string   `toml:"policy"`
	TTL    Duration `toml:"ttl"`
}

// BrowseConfig contains listing settings shared by the CLI, TUI and API.
type BrowseConfig struct {
	PageSize int `toml:"page_size"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host           string   `toml:"host"`
	Port           int      `toml:"port"`
	RateLimit      float64  `toml:"rate_limit"`
	Burst          int      `toml:"burst"`
	AllowedOrigins []string `toml:"allowed_origins"`
	TrustedProxies []string `toml:"trusted_proxies"`
}

// Addr returns host:port for [net/http.Server].
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoggingConfig contains logger settings.
type LoggingConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// Duration is a [time.Duration] decoded from strings such as "10s" or "24h".
type Duration struct {
	time.Duration
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("%w: duration %q", ErrInvalidConfig, string(text))
	}
	d.Duration = v
	return nil
}

// MarshalText implements [encoding.TextMarshaler].
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// LoadConfig reads a TOML configuration file from the specified path and overlays it on [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// LoadConfigOrDefault loads path when it exists and falls back to the embedded defaults otherwise.
func LoadConfigOrDefault(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	return LoadConfig(path)
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// Validate rejects settings the sync engine and listings cannot honor.
func (c *Config) Validate() error {
	switch c.Sync.Policy {
	case PolicyCacheForever:
	case PolicyTTL:
		if c.Sync.TTL.Duration <= 0 {
			return fmt.Errorf("%w: sync.ttl must be positive with the ttl policy", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown sync policy %q", ErrInvalidConfig, c.Sync.Policy)
	}

	if c.Browse.PageSize <= 0 {
		return fmt.Errorf("%w: browse.page_size must be positive", ErrInvalidConfig)
	}
	if c.Catalog.BaseURL == "" {
		return fmt.Errorf("%w: catalog.base_url is required", ErrInvalidConfig)
	}
	if _, err := ParseLogLevel(c.Logging.Level); err != nil {
		return err
	}
	if _, err := ParseTrustedProxies(c.Server.TrustedProxies); err != nil {
		return err
	}
	return nil
}

// ParseTrustedProxies reads proxy addresses given as CIDR prefixes or single IPs.
func ParseTrustedProxies(entries []string) ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(entries))
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if p, err := netip.ParsePrefix(e); err == nil {
			prefixes = append(prefixes, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(e)
		if err != nil {
			return nil, fmt.Errorf("%w: server.trusted_proxies: %q is not an IP or CIDR", ErrInvalidConfig, e)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
