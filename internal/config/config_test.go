package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SIGNING_KEY", "0123456789abcdef0123456789abcdef")
}

func TestLoad_Defaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.Addr)
	require.Equal(t, 30*time.Minute, cfg.SessionTTL)
	require.Equal(t, 100, cfg.RateLimit)
	require.Equal(t, time.Minute, cfg.RateWindow)
	require.Equal(t, 10, cfg.KeyIssueLimit)
	require.Equal(t, time.Hour, cfg.KeyIssueWindow)
	require.Equal(t, 30, cfg.TokenLimit)
	require.Equal(t, time.Minute, cfg.TokenWindow)
	require.True(t, cfg.IsDevelopment())
	require.Equal(t, []string{"*"}, cfg.CORSOrigins())
}

func TestLoad_MissingSigningKey(t *testing.T) {
	t.Setenv("SIGNING_KEY", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_ShortSigningKey(t *testing.T) {
	t.Setenv("SIGNING_KEY", "too-short")

	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "SIGNING_KEY")
}

func TestLoad_InvalidNumbers(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("RATE_LIMIT", "0")

	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "RATE_LIMIT")
}

func TestLoad_InvalidPreAuthLimits(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("TOKEN_LIMIT", "0")

	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "TOKEN_LIMIT")
}

func TestCORSOrigins_List(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins())
}
