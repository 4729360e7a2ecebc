// Package config loads and validates the yaml configuration file for
// the command line tools.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/mlindner/waterhub/pkg/hub"
	"github.com/mlindner/waterhub/pkg/timeseries"
)

// validate is a singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// HubConfig carries the hub account and environment selection
type HubConfig struct {
	User      string `yaml:"user" validate:"required"`
	Password  string `yaml:"password" validate:"required"`
	APIKey    string `yaml:"api_key" validate:"required"`
	APISecret string `yaml:"api_secret"`
	Region    string `yaml:"region" validate:"required,oneof=Staging Global India"`
}

// AnalysisConfig tunes the analysis runs
type AnalysisConfig struct {
	DaysBack int `yaml:"days_back" validate:"omitempty,min=1,max=365"`
}

// Config is the root of the yaml configuration file
type Config struct {
	Hub      HubConfig      `yaml:"hub"`
	LogLevel string         `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
	Analysis AnalysisConfig `yaml:"analysis"`
}

// Load reads, parses and validates the configuration file at path and
// fills in defaults for optional settings.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates raw yaml configuration bytes
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()

	if err := validate.Struct(&cfg); err != nil {
		return nil, formatValidationError(err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Analysis.DaysBack == 0 {
		c.Analysis.DaysBack = timeseries.DefaultDaysBack
	}
}

// Credential converts the hub section into a credential value
func (c *Config) Credential() hub.Credential {
	return hub.Credential{
		User:      c.Hub.User,
		Password:  c.Hub.Password,
		APIKey:    c.Hub.APIKey,
		APISecret: c.Hub.APISecret,
		Region:    hub.Region(c.Hub.Region),
	}
}

// formatValidationError converts validator errors into readable messages
func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			switch fe.Tag() {
			case "required":
				msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
			case "oneof":
				msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param()))
			case "min", "max":
				msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
			default:
				msgs = append(msgs, fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag()))
			}
		}
		return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
	}
	return err
}
