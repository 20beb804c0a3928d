package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvDuration(t *testing.T) {
	t.Run("Go duration", func(t *testing.T) {
		t.Setenv("TEST_COOLDOWN", "90s")
		assert.Equal(t, 90*time.Second, getEnvDuration("TEST_COOLDOWN", time.Minute))
	})

	t.Run("Plain seconds", func(t *testing.T) {
		t.Setenv("TEST_COOLDOWN", "45")
		assert.Equal(t, 45*time.Second, getEnvDuration("TEST_COOLDOWN", time.Minute))
	})

	t.Run("Invalid falls back", func(t *testing.T) {
		t.Setenv("TEST_COOLDOWN", "soon")
		assert.Equal(t, time.Minute, getEnvDuration("TEST_COOLDOWN", time.Minute))
	})

	t.Run("Unset", func(t *testing.T) {
		assert.Equal(t, DefaultResendCooldown, getEnvDuration("TEST_COOLDOWN_UNSET", DefaultResendCooldown))
	})
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("TEST_FLAG", "yes")
	assert.True(t, getEnvBool("TEST_FLAG", false))

	t.Setenv("TEST_FLAG", "off")
	assert.False(t, getEnvBool("TEST_FLAG", true))

	t.Setenv("TEST_FLAG", "maybe")
	assert.True(t, getEnvBool("TEST_FLAG", true))
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg := Load()
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, "console", cfg.LogFormat)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, DefaultVerificationTTL, cfg.VerificationTTL)
	assert.True(t, cfg.EmailTestMode)
}
