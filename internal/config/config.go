// Package config defines the YAML-backed configuration for the
// TriggerWare client, adapted from the teacher's cmd/aleutian/config
// package: a validated struct, a singleton Load, and first-run default
// file creation at a fixed path under the user's home directory.
package config

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// LoggingConfig controls the client's structured logger.
type LoggingConfig struct {
	// Level is one of "debug", "info", "warn", "error".
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
}

// Config is the TriggerWare client's configuration: connection target,
// default resource limits, and logging.
type Config struct {
	// Address is the TW server's hostname or IP.
	Address string `yaml:"address" validate:"required"`

	// Port is the TW server's TCP port.
	Port int `yaml:"port" validate:"required,gt=0,lt=65536"`

	// ConnectTimeout bounds the initial TCP dial.
	ConnectTimeout time.Duration `yaml:"connect_timeout"`

	// DefaultFetchSize is the row count ResultSet requests per batch
	// fetch when a query doesn't specify a row limit.
	DefaultFetchSize int `yaml:"default_fetch_size" validate:"gt=0"`

	// DefaultTimeout is the server-side timelimit ResultSet requests
	// per batch fetch when a query doesn't specify one.
	DefaultTimeout time.Duration `yaml:"default_timeout"`

	// Namespace is the default query namespace (AP5 table catalog scope).
	Namespace string `yaml:"namespace"`

	// Logging configures the client's logger.
	Logging LoggingConfig `yaml:"logging"`
}

var validate = validator.New()

// DefaultConfig returns sensible defaults for a first-run configuration
// file: loopback connection, 100-row batches, a 30s default timeout.
func DefaultConfig() Config {
	return Config{
		Address:          "localhost",
		Port:             8282,
		ConnectTimeout:   10 * time.Second,
		DefaultFetchSize: 100,
		DefaultTimeout:   30 * time.Second,
		Namespace:        "",
		Logging:          LoggingConfig{Level: "info"},
	}
}

// Validate runs struct-tag validation over cfg, per the teacher's use
// of go-playground/validator for config structs.
func (c *Config) Validate() error {
	return validate.Struct(c)
}
