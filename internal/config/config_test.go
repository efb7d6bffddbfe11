package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())
}

func TestConfig_ValidateRejectsBadPort(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Port = 0
	assert.Error(t, cfg.Validate())

	cfg.Port = 70000
	assert.Error(t, cfg.Validate())
}

func TestConfig_ValidateRejectsBadLoggingLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Logging.Level = "not-a-level"
	assert.Error(t, cfg.Validate())
}

func TestConfig_ValidateRequiresAddress(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Address = ""
	assert.Error(t, cfg.Validate())
}
