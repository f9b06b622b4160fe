package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds application configuration values.
type Config struct {
	DatabasePath   string        `mapstructure:"database_path" yaml:"database_path" validate:"required"`
	LogLevel       string        `mapstructure:"log_level" yaml:"log_level" validate:"oneof=debug info warn warning error"`
	LogFile        string        `mapstructure:"log_file" yaml:"log_file"`
	DefaultChannel ChannelConfig `mapstructure:"default_channel" yaml:"default_channel"`
	Fanout         FanoutConfig  `mapstructure:"fanout" yaml:"fanout"`
}

// ChannelConfig describes the channel guaranteed to exist at startup.
type ChannelConfig struct {
	Name        string `mapstructure:"name" yaml:"name" validate:"required"`
	Description string `mapstructure:"description" yaml:"description"`
}

// FanoutConfig tunes message delivery to live observers.
type FanoutConfig struct {
	MaxConcurrent   int           `mapstructure:"max_concurrent" yaml:"max_concurrent" validate:"min=1,max=1024"`
	DeliveryTimeout time.Duration `mapstructure:"delivery_timeout" yaml:"delivery_timeout" validate:"gt=0"`
}

// MarshalYAML writes the timeout as a duration string.
func (f FanoutConfig) MarshalYAML() (any, error) {
	return map[string]any{
		"max_concurrent":   f.MaxConcurrent,
		"delivery_timeout": f.DeliveryTimeout.String(),
	}, nil
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		DatabasePath: "wirefeed.db",
		LogLevel:     "info",
		LogFile:      "wirefeed.log",
		DefaultChannel: ChannelConfig{
			Name:        "DiscountNews",
			Description: "Latest discount news and offers",
		},
		Fanout: FanoutConfig{
			MaxConcurrent:   16,
			DeliveryTimeout: 2 * time.Second,
		},
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.DatabasePath != "" {
		c.DatabasePath = other.DatabasePath
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.LogFile != "" {
		c.LogFile = other.LogFile
	}
	if other.DefaultChannel.Name != "" {
		c.DefaultChannel.Name = other.DefaultChannel.Name
	}
	if other.DefaultChannel.Description != "" {
		c.DefaultChannel.Description = other.DefaultChannel.Description
	}
	if other.Fanout.MaxConcurrent != 0 {
		c.Fanout.MaxConcurrent = other.Fanout.MaxConcurrent
	}
	if other.Fanout.DeliveryTimeout != 0 {
		c.Fanout.DeliveryTimeout = other.Fanout.DeliveryTimeout
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
