package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "dev-secret")
	t.Setenv("APP_ENV", "")
	t.Setenv("EMAIL_PROVIDER", "")

	cfg := Load()

	assert.Equal(t, "development", cfg.AppEnv)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 15*time.Minute, cfg.JWTExpiry)
	assert.Equal(t, time.Hour, cfg.TokenEmailVerifyExpiry)
	assert.Equal(t, time.Hour, cfg.TokenPasswordResetExpiry)
	assert.Equal(t, "log", cfg.EmailProvider)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "dev-secret")
	t.Setenv("JWT_EXPIRY", "2h")
	t.Setenv("TOKEN_PASSWORD_RESET_EXPIRY", "30m")
	t.Setenv("BCRYPT_COST", "12")
	t.Setenv("SMTP_PORT", "not-a-number")

	cfg := Load()

	assert.Equal(t, 2*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, 30*time.Minute, cfg.TokenPasswordResetExpiry)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, 587, cfg.SMTPPort)
}

func TestEnvDuration_InvalidFallsBack(t *testing.T) {
	t.Setenv("SOME_DURATION", "soon")
	assert.Equal(t, time.Minute, envDuration("SOME_DURATION", time.Minute))
}

func TestValidate(t *testing.T) {
	valid := &Config{AppEnv: "production", JWTSecret: "0123456789abcdef0123456789abcdef", EmailProvider: "smtp", SMTPHost: "smtp.example.com"}
	require.NoError(t, valid.Validate())

	cases := map[string]*Config{
		"short secret in production": {AppEnv: "production", JWTSecret: "short", EmailProvider: "smtp", SMTPHost: "h"},
		"log provider in production": {AppEnv: "production", JWTSecret: "0123456789abcdef0123456789abcdef", EmailProvider: "log"},
		"resend without key":         {AppEnv: "development", JWTSecret: "s", EmailProvider: "resend"},
		"smtp without host":          {AppEnv: "development", JWTSecret: "s", EmailProvider: "smtp"},
		"unknown provider":           {AppEnv: "development", JWTSecret: "s", EmailProvider: "pigeon"},
	}
	for name, cfg := range cases {
		assert.Error(t, cfg.Validate(), name)
	}
}
