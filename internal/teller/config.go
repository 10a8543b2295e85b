package teller

import (
	"fmt"
	"net/url"
	"strings"
)

// DefaultBaseURL is the provider origin used when no override is configured.
const DefaultBaseURL = "https://api.teller.io"

// Config carries the provider credentials. It is injected into the Bridge and
// read on every call; the Bridge never consults the process environment.
type Config struct {
	APIKey    string
	APISecret string
	AccountID string
	BaseURL   string
}

func (c Config) check() *Failure {
	if strings.TrimSpace(c.APIKey) == "" || strings.TrimSpace(c.APISecret) == "" {
		return configurationError("Missing Teller API credentials. Ensure TELLER_API_KEY and TELLER_API_SECRET are set.")
	}
	if strings.TrimSpace(c.AccountID) == "" {
		return configurationError("Missing Teller account configuration. Set TELLER_ACCOUNT_ID with the funding account identifier.")
	}
	return nil
}

// paymentsURL resolves {origin}/accounts/{accountId}/payments. Any path on the
// origin is kept and exactly one separator joins each segment.
func (c Config) paymentsURL() (string, *Failure) {
	origin := strings.TrimSpace(c.BaseURL)
	if origin == "" {
		origin = DefaultBaseURL
	}
	base, err := url.Parse(origin)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return "", configurationError(fmt.Sprintf("Invalid Teller base URL %q. Set TELLER_API_BASE_URL to an absolute URL.", origin))
	}
	base.RawQuery = ""
	base.Fragment = ""
	return base.JoinPath("accounts", url.PathEscape(strings.TrimSpace(c.AccountID)), "payments").String(), nil
}
