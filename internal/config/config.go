// Package config loads application configuration from an optional config file
// and the environment.
//
// Precedence (highest first): environment variables, config.yml, defaults.
// Every key must have a default registered with SetDefault, otherwise
// viper's AutomaticEnv does not know the key exists and Unmarshal skips it.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultJWTSecret is only acceptable outside production.
const DefaultJWTSecret = "dev-secret-change-me-in-production"

// Config holds application configuration values.
type Config struct {
	Port     int    `mapstructure:"PORT"`
	Env      string `mapstructure:"APP_ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	DBPath      string `mapstructure:"DB_PATH"`
	UploadDir   string `mapstructure:"UPLOAD_DIR"`
	MaxUploadMB int64  `mapstructure:"MAX_UPLOAD_MB"`

	JWTSecret  string        `mapstructure:"JWT_SECRET"`
	TokenTTL   time.Duration `mapstructure:"TOKEN_TTL"`
	BcryptCost int           `mapstructure:"BCRYPT_COST"`

	AuthRatePerMinute int `mapstructure:"AUTH_RATE_PER_MINUTE"`
	AuthRateBurst     int `mapstructure:"AUTH_RATE_BURST"`

	// TrustProxy makes the server take the client address from
	// X-Forwarded-For / X-Real-IP. Only enable it behind a proxy that
	// overwrites those headers: otherwise any client can pick its own
	// address and escape the per-IP auth rate limit.
	TrustProxy bool `mapstructure:"TRUST_PROXY"`

	AllowedOrigins []string `mapstructure:"ALLOWED_ORIGINS"`

	GitHubClientID     string `mapstructure:"GITHUB_CLIENT_ID"`
	GitHubClientSecret string `mapstructure:"GITHUB_CLIENT_SECRET"`
	GitHubCallbackURL  string `mapstructure:"GITHUB_CALLBACK_URL"`
}

// Load reads config.yml from dir (when present) and the environment.
// A missing config file is not an error.
func Load(dir string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(dir)
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	cfg.AllowedOrigins = splitOrigins(cfg.AllowedOrigins)
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", 3001)
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "debug")
	v.SetDefault("DB_PATH", "data/wechat_editor.db")
	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("MAX_UPLOAD_MB", 5)
	v.SetDefault("JWT_SECRET", DefaultJWTSecret)
	v.SetDefault("TOKEN_TTL", "0s")
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("AUTH_RATE_PER_MINUTE", 20)
	v.SetDefault("AUTH_RATE_BURST", 5)
	v.SetDefault("TRUST_PROXY", false)
	v.SetDefault("ALLOWED_ORIGINS", "*")
	v.SetDefault("GITHUB_CLIENT_ID", "")
	v.SetDefault("GITHUB_CLIENT_SECRET", "")
	v.SetDefault("GITHUB_CALLBACK_URL", "")
}

// splitOrigins accepts both a YAML list and a comma separated env value.
func splitOrigins(in []string) []string {
	var out []string
	for _, item := range in {
		for _, o := range strings.Split(item, ",") {
			if o = strings.TrimSpace(o); o != "" {
				out = append(out, o)
			}
		}
	}
	return out
}

// IsProduction reports whether APP_ENV is "production".
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// GitHubEnabled reports whether GitHub sign-in is configured.
func (c *Config) GitHubEnabled() bool {
	return c.GitHubClientID != "" && c.GitHubClientSecret != ""
}

// MaxUploadBytes returns the upload size limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}
	if c.DBPath == "" {
		return errors.New("DB_PATH must not be empty")
	}
	if c.UploadDir == "" {
		return errors.New("UPLOAD_DIR must not be empty")
	}
	if c.MaxUploadMB <= 0 {
		return errors.New("MAX_UPLOAD_MB must be positive")
	}
	if len(c.JWTSecret) < 16 {
		return errors.New("JWT_SECRET must be at least 16 characters")
	}
	if c.TokenTTL < 0 {
		return errors.New("TOKEN_TTL must not be negative")
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", c.BcryptCost)
	}
	if c.AuthRatePerMinute <= 0 || c.AuthRateBurst <= 0 {
		return errors.New("AUTH_RATE_PER_MINUTE and AUTH_RATE_BURST must be positive")
	}
	if c.IsProduction() {
		if c.JWTSecret == DefaultJWTSecret || len(c.JWTSecret) < 32 {
			return errors.New("production requires a JWT_SECRET of at least 32 characters")
		}
	}
	return nil
}
