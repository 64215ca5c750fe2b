package main

import (
	"errors"
	"io/fs"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string `mapstructure:"PORT"`
	Environment string `mapstructure:"ENVIRONMENT"`
	Version     string `mapstructure:"VERSION"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`

	APIURL string `mapstructure:"API_URL"`

	SessionCookie string        `mapstructure:"SESSION_COOKIE"`
	SessionTTL    time.Duration `mapstructure:"SESSION_TTL"`

	PageLimit int `mapstructure:"PAGE_LIMIT"`

	RateLimitRPS   float64 `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int     `mapstructure:"RATE_LIMIT_BURST"`

	TLSCertFile string `mapstructure:"TLS_CERT_FILE"`
	TLSKeyFile  string `mapstructure:"TLS_KEY_FILE"`
}

func (c *Config) isDevelopment() bool {
	return c.Environment == "development"
}

var defaults = map[string]any{
	"PORT":             ":4000",
	"ENVIRONMENT":      "development",
	"VERSION":          "1.0.0",
	"LOG_LEVEL":        "info",
	"API_URL":          "http://localhost:8000/api",
	"SESSION_COOKIE":   "session_user_id",
	"SESSION_TTL":      "5m",
	"PAGE_LIMIT":       10,
	"RATE_LIMIT_RPS":   5,
	"RATE_LIMIT_BURST": 10,
	"TLS_CERT_FILE":    "",
	"TLS_KEY_FILE":     "",
}

func newViper() *viper.Viper {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()
	return v
}

// loadConfig reads the .env file at path, if there is one. Environment
// variables win over the file, and defaults fill whatever is left.
func loadConfig(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if config.PageLimit <= 0 {
		config.PageLimit = defaults["PAGE_LIMIT"].(int)
	}

	return &config, nil
}
