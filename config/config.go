/*
config.go - Server configuration

PURPOSE:
  Loads server configuration from a config file (viper), environment
  variables, and an optional .env file (godotenv). Command-line flags
  in cmd/server take precedence over everything here.

PRECEDENCE (lowest to highest):
  1. Built-in defaults
  2. config.toml (working directory or ./config)
  3. Environment variables (HR_ prefix, e.g. HR_PORT)
  4. Command-line flags (applied by the caller)

SEE ALSO:
  - cmd/server/main.go: Flag handling and startup
*/
package config

import (
	"errors"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config holds the server configuration.
type Config struct {
	Port     int    `mapstructure:"port"`
	DBPath   string `mapstructure:"db_path"`
	LogLevel string `mapstructure:"log_level"`
}

// Load reads configuration from config.toml, the environment, and an
// optional .env file. A missing config file is not an error; defaults
// apply.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath("config")
	v.AddConfigPath(".")

	v.SetDefault("port", 8080)
	v.SetDefault("db_path", "hr-engine.db")
	v.SetDefault("log_level", "info")

	v.SetEnvPrefix("HR")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"port":    cfg.Port,
		"db_path": cfg.DBPath,
	}).Debug("config parsed")

	return cfg, nil
}
