package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()
	assert.Equal(t, "5000", cfg.AppPort)
	assert.Equal(t, StoreMemory, cfg.PendingStore)
	assert.Equal(t, 10*time.Minute, cfg.VerificationTTL)
	assert.Equal(t, 1025, cfg.SMTPPort)
	assert.Equal(t, "pending_registrations", cfg.DynamoTables.PendingRegistrations)
	assert.Empty(t, cfg.OperatorPhone)
	assert.False(t, cfg.TrustProxy)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_PORT", "8080")
	t.Setenv("PENDING_STORE", "Redis")
	t.Setenv("VERIFICATION_TTL", "90s")
	t.Setenv("SMTP_PORT", "587")
	t.Setenv("ALLOWED_ORIGINS", "https://a.sg,https://b.sg")
	t.Setenv("TRUST_PROXY", "true")

	cfg := Load()
	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, StoreRedis, cfg.PendingStore)
	assert.Equal(t, 90*time.Second, cfg.VerificationTTL)
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.Equal(t, []string{"https://a.sg", "https://b.sg"}, cfg.AllowedOrigins)
	assert.True(t, cfg.TrustProxy)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("SMTP_PORT", "not-a-number")
	t.Setenv("SWEEP_INTERVAL", "-5m")
	t.Setenv("MAIL_SEND_TIMEOUT", "soon")

	cfg := Load()
	assert.Equal(t, 1025, cfg.SMTPPort)
	assert.Equal(t, time.Minute, cfg.SweepInterval)
	assert.Equal(t, 15*time.Second, cfg.MailSendTimeout)
}
