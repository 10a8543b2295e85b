package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/zelle-bridge/internal/config"
	"github.com/noah-isme/zelle-bridge/internal/teller"
)

func TestLoadRequiresDatabaseURL(t *testing.T) {
	_, err := config.LoadForTests(map[string]string{"DATABASE_URL": ""})
	require.EqualError(t, err, "DATABASE_URL is required")
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.LoadForTests(map[string]string{
		"DATABASE_URL":        "postgres://localhost/zelle",
		"TELLER_API_BASE_URL": "",
		"TELLER_API_KEY":      "",
		"PORT":                "",
		"RECIPIENT_CACHE_TTL": "",
	})
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.HTTPAddr())
	require.Equal(t, 5*time.Minute, cfg.RecipientCacheTTL)

	tc := cfg.Teller()
	require.Equal(t, teller.DefaultBaseURL, tc.BaseURL)
	require.Empty(t, tc.APIKey)
}

func TestLoadTellerOverrides(t *testing.T) {
	cfg, err := config.LoadForTests(map[string]string{
		"DATABASE_URL":         "postgres://localhost/zelle",
		"TELLER_API_KEY":       "key",
		"TELLER_API_SECRET":    "secret",
		"TELLER_ACCOUNT_ID":    "acc_123",
		"TELLER_API_BASE_URL":  "https://sandbox.teller.test/",
		"TELLER_HTTP_TIMEOUT":  "3s",
		"CORS_ALLOWED_ORIGINS": "https://shop-a.test, ,https://shop-b.test",
	})
	require.NoError(t, err)
	require.Equal(t, teller.Config{
		APIKey:    "key",
		APISecret: "secret",
		AccountID: "acc_123",
		BaseURL:   "https://sandbox.teller.test/",
	}, cfg.Teller())
	require.Equal(t, 3*time.Second, cfg.TellerHTTPTimeout)
	require.Equal(t, []string{"https://shop-a.test", "https://shop-b.test"}, cfg.CORSAllowedOrigins)
}
