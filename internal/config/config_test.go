package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("SMTP_HOST", "")
	t.Setenv("UPLOAD_BACKEND", "")
	t.Setenv("JWT_EXPIRY_HOURS", "")

	cfg := Load()
	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, "local", cfg.UploadBackend)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, 80, cfg.UploadQuality)
	assert.False(t, cfg.MailEnabled())
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_USER", "bot@example.com")
	t.Setenv("MAIL_FROM", "")
	t.Setenv("UPLOAD_BACKEND", "SFTP")
	t.Setenv("DEV_MODE", "yes")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("JWT_EXPIRY_HOURS", "not-a-number")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8,fd00::/8")

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.True(t, cfg.MailEnabled())
	assert.Equal(t, "bot@example.com", cfg.MailFrom)
	assert.Equal(t, "sftp", cfg.UploadBackend)
	assert.True(t, cfg.DevMode)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, []string{"10.0.0.0/8", "fd00::/8"}, cfg.TrustedProxies)
}
