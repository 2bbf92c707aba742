package moonpsrv

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	MaxSecretSize = 64
	MinSecretSize = 32
)

// CacheConfig selects the internal/moonpcache backing store.
type CacheConfig struct {
	// Type is "sqlite" or "inmem". Empty defaults to "inmem" once
	// FillDefaults runs.
	Type string `toml:"type"`

	// Path is the sqlite database file. Only used when Type is "sqlite".
	Path string `toml:"path"`
}

// Config is moonpsrv's full startup configuration, loaded from a TOML file
// the same way the teacher's server.Config is assembled from flags and
// environment variables in cmd/tqserver.
type Config struct {
	// Listen is the BIND_ADDRESS:PORT or :PORT to listen on.
	Listen string `toml:"listen"`

	// TokenSecret signs issued bearer tokens. Repeated to MinSecretSize if
	// shorter; rejected if longer than MaxSecretSize.
	TokenSecret string `toml:"token_secret"`

	Cache CacheConfig `toml:"cache"`

	// UnauthDelayMillis pads unauthorized/unauthenticated responses to slow
	// naive credential-stuffing clients. Negative disables the delay.
	UnauthDelayMillis int `toml:"unauth_delay_millis"`
}

// LoadConfigFile reads and parses a TOML config file at path.
func LoadConfigFile(path string) (Config, error) {
	var cfg Config
	_, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, fmt.Errorf("config file %q does not exist", path)
		}
		return cfg, fmt.Errorf("parse config file %q: %w", path, err)
	}
	return cfg, nil
}

// UnauthDelay returns cfg.UnauthDelayMillis as a time.Duration, or zero if
// disabled.
func (cfg Config) UnauthDelay() time.Duration {
	if cfg.UnauthDelayMillis < 1 {
		return 0
	}
	return time.Millisecond * time.Duration(cfg.UnauthDelayMillis)
}

// FillDefaults returns a copy of cfg with unset fields set to their
// defaults.
func (cfg Config) FillDefaults() Config {
	filled := cfg
	if filled.Listen == "" {
		filled.Listen = "localhost:8080"
	}
	if filled.TokenSecret == "" {
		filled.TokenSecret = "DEFAULT_TOKEN_SECRET-DO_NOT_USE_IN_PROD!"
	}
	if filled.Cache.Type == "" {
		filled.Cache.Type = "inmem"
	}
	if filled.UnauthDelayMillis == 0 {
		filled.UnauthDelayMillis = 1000
	}
	return filled
}

// Validate returns an error if cfg has invalid or missing required values.
// Call it on the result of FillDefaults, not on a raw loaded Config.
func (cfg Config) Validate() error {
	if len(cfg.TokenSecret) < MinSecretSize {
		return fmt.Errorf("token_secret: must be at least %d bytes, but is %d", MinSecretSize, len(cfg.TokenSecret))
	}
	if len(cfg.TokenSecret) > MaxSecretSize {
		return fmt.Errorf("token_secret: must be no more than %d bytes, but is %d", MaxSecretSize, len(cfg.TokenSecret))
	}
	switch cfg.Cache.Type {
	case "inmem":
	case "sqlite":
		if cfg.Cache.Path == "" {
			return fmt.Errorf("cache: path must be set when cache.type is \"sqlite\"")
		}
	default:
		return fmt.Errorf("cache: type must be \"inmem\" or \"sqlite\", got %q", cfg.Cache.Type)
	}
	return nil
}
