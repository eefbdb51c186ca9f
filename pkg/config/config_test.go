package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SWEEP_INTERVAL", "")
	cfg := Load()
	assert.Equal(t, time.Hour, cfg.SweepInterval)
	assert.Equal(t, "japap", cfg.MongoDB)
	assert.Empty(t, cfg.BlockedWords)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SWEEP_INTERVAL", "15m")
	t.Setenv("BLOCKED_WORDS", " foo, ,bar ")
	t.Setenv("FRONTEND_URL", "https://example.test/")
	cfg := Load()
	assert.Equal(t, 15*time.Minute, cfg.SweepInterval)
	assert.Equal(t, []string{"foo", "bar"}, cfg.BlockedWords)
	assert.Equal(t, "https://example.test", cfg.FrontendURL)
}

func TestLoadSMTPPort(t *testing.T) {
	t.Setenv("SMTP_PORT", "2525")
	assert.Equal(t, 2525, Load().SMTP.Port)

	t.Setenv("SMTP_PORT", "smtp")
	assert.Equal(t, 587, Load().SMTP.Port)
}
