// Package config resolves storefront settings from defaults, an optional
// storefront.yaml, STOREFRONT_* environment variables and command-line
// flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

// Keys understood by Load.
const (
	KeyDataDir    = "data_dir"
	KeyDBName     = "db_name"
	KeyShareGrace = "share_grace"
	KeyBcryptCost = "bcrypt_cost"
	KeyUserID     = "user_id"
)

// EnvPrefix prefixes every environment variable, e.g. STOREFRONT_DB_NAME.
const EnvPrefix = "STOREFRONT"

// FileName is the config file searched for, without extension.
const FileName = "storefront"

// Config holds resolved settings.
type Config struct {
	DataDir    string        `mapstructure:"data_dir"`
	DBName     string        `mapstructure:"db_name"`
	ShareGrace time.Duration `mapstructure:"share_grace"`
	BcryptCost int           `mapstructure:"bcrypt_cost"`
	UserID     int64         `mapstructure:"user_id"`
}

// New returns a viper instance carrying the defaults and environment
// binding. Callers bind flags to it before calling Load.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyDataDir, ".")
	v.SetDefault(KeyDBName, "supermarket_app_db")
	v.SetDefault(KeyShareGrace, 5*time.Second)
	v.SetDefault(KeyBcryptCost, bcrypt.DefaultCost)
	v.SetDefault(KeyUserID, 1)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	return v
}

// Load reads storefront.yaml from dir, if present, and decodes the merged
// settings. An empty dir searches the working directory.
func Load(v *viper.Viper, dir string) (*Config, error) {
	if dir == "" {
		dir = "."
	}
	v.SetConfigName(FileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		slog.Debug("config file loaded", "path", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the store and repositories cannot use.
func (c *Config) Validate() error {
	switch {
	case c.DBName == "":
		return fmt.Errorf("config: %s must not be empty", KeyDBName)
	case c.ShareGrace < 0:
		return fmt.Errorf("config: %s must not be negative", KeyShareGrace)
	case c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost:
		return fmt.Errorf("config: %s must be between %d and %d", KeyBcryptCost, bcrypt.MinCost, bcrypt.MaxCost)
	case c.UserID <= 0:
		return fmt.Errorf("config: %s must be positive", KeyUserID)
	}
	return nil
}
