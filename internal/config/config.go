// Package config loads the dashboard settings from the environment.
//
// Every variable is read with the BIKESHARE_ prefix first and then under its
// bare name, so PORT and DATABASE_URL set by a platform are picked up as well.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

// Prefix is the environment variable prefix
const Prefix = "BIKESHARE"

// Config represents the complete application configuration
type Config struct {
	DatasetPath   string `envconfig:"DATASET_PATH" default:"day.csv" validate:"required"`
	DatabaseURL   string `envconfig:"DATABASE_URL"`
	DatabaseTable string `envconfig:"DATABASE_TABLE" default:"day" validate:"required"`

	Port         int           `envconfig:"PORT" default:"8080" validate:"min=1,max=65535"`
	ReadTimeout  time.Duration `envconfig:"READ_TIMEOUT" default:"10s" validate:"gt=0"`
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"10s" validate:"gt=0"`

	LogoURL      string        `envconfig:"LOGO_URL" default:"https://github.com/dicodingacademy/assets/raw/main/logo.png" validate:"required,url"`
	AssetTimeout time.Duration `envconfig:"ASSET_TIMEOUT" default:"10s" validate:"gt=0"`

	TrendYears []int `envconfig:"TREND_YEARS" default:"2011,2012" validate:"min=1,dive,min=1900,max=9999"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=trace debug info warn warning error fatal panic"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text" validate:"oneof=text json"`
}

// Load reads the configuration from the environment and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to load from env: %w", err)
	}

	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges and enumerations
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config: validation failed: %w", err)
	}
	return nil
}

// UsePostgres reports whether rows should come from PostgreSQL instead of the CSV file
func (c *Config) UsePostgres() bool {
	return c.DatabaseURL != ""
}

// Addr is the listen address for the HTTP server
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// NewLogger builds the process logger from the logging settings
func NewLogger(c *Config) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	if c.LogFormat == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	return log
}
