package teller_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/zelle-bridge/internal/recipient"
	"github.com/noah-isme/zelle-bridge/internal/teller"
)

type captured struct {
	Method  string
	Path    string
	Header  http.Header
	Payload map[string]any
}

type fakeTeller struct {
	mu       sync.Mutex
	requests []captured
	status   int
	body     string
}

func (f *fakeTeller) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	var payload map[string]any
	_ = json.Unmarshal(raw, &payload)
	f.mu.Lock()
	f.requests = append(f.requests, captured{Method: r.Method, Path: r.URL.Path, Header: r.Header.Clone(), Payload: payload})
	f.mu.Unlock()
	status := f.status
	if status == 0 {
		status = http.StatusCreated
	}
	w.WriteHeader(status)
	_, _ = io.WriteString(w, f.body)
}

func (f *fakeTeller) calls() []captured {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]captured(nil), f.requests...)
}

func newBridge(t *testing.T, provider *fakeTeller) (*teller.Bridge, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(provider)
	t.Cleanup(srv.Close)

	store := recipient.NewMemoryStore()
	_, err := store.Put(context.Background(), "shop1", "Acme Payee", "payee@acme.test")
	require.NoError(t, err)

	b := teller.New(store, teller.Config{
		APIKey:    "key",
		APISecret: "secret",
		AccountID: "acc_123",
		BaseURL:   srv.URL,
	}, srv.Client())
	return b, srv
}

func TestInitiateSuccessBuildsProviderRequest(t *testing.T) {
	provider := &fakeTeller{body: `{"id":"pay_1","status":"pending"}`}
	b, _ := newBridge(t, provider)

	payment, err := b.Initiate(context.Background(), teller.Intent{MerchantID: "shop1", Amount: 12.5})
	require.NoError(t, err)
	require.Equal(t, "pay_1", payment.ID)
	require.Equal(t, "pending", payment.Status)
	require.JSONEq(t, `{"id":"pay_1","status":"pending"}`, string(payment.Body.JSON))

	calls := provider.calls()
	require.Len(t, calls, 1)
	call := calls[0]
	require.Equal(t, http.MethodPost, call.Method)
	require.Equal(t, "/accounts/acc_123/payments", call.Path)
	require.Equal(t, "application/json", call.Header.Get("Content-Type"))
	require.NotEmpty(t, call.Header.Get("Idempotency-Key"))
	require.Equal(t, payment.IdempotencyKey, call.Header.Get("Idempotency-Key"))

	user, pass, ok := (&http.Request{Header: call.Header}).BasicAuth()
	require.True(t, ok)
	require.Equal(t, "key", user)
	require.Equal(t, "secret", pass)

	require.Equal(t, "zelle", call.Payload["method"])
	require.Equal(t, map[string]any{"currency": "USD", "value": "12.50"}, call.Payload["amount"])
	require.Equal(t, map[string]any{"name": "Acme Payee", "email": "payee@acme.test"}, call.Payload["recipient"])
	require.Equal(t, map[string]any{}, call.Payload["customer"])
	require.NotContains(t, call.Payload, "note")
}

func TestInitiateIncludesOptionalFields(t *testing.T) {
	provider := &fakeTeller{body: `{}`}
	b, _ := newBridge(t, provider)

	_, err := b.Initiate(context.Background(), teller.Intent{
		MerchantID:    "shop1",
		Amount:        5,
		Currency:      "CAD",
		CustomerName:  "Jo",
		CustomerEmail: "jo@example.test",
		Note:          "order 42",
	})
	require.NoError(t, err)

	call := provider.calls()[0]
	require.Equal(t, map[string]any{"currency": "CAD", "value": "5.00"}, call.Payload["amount"])
	require.Equal(t, map[string]any{"name": "Jo", "email": "jo@example.test"}, call.Payload["customer"])
	require.Equal(t, "order 42", call.Payload["note"])
}

func TestInitiateRoundsAmountToCents(t *testing.T) {
	provider := &fakeTeller{body: `{}`}
	b, _ := newBridge(t, provider)

	_, err := b.Initiate(context.Background(), teller.Intent{MerchantID: "shop1", Amount: 19.999})
	require.NoError(t, err)
	require.Equal(t, "20.00", provider.calls()[0].Payload["amount"].(map[string]any)["value"])
}

func TestInitiateRejectsInvalidAmountWithoutNetwork(t *testing.T) {
	for name, amount := range map[string]float64{
		"zero":     0,
		"negative": -3,
		"nan":      math.NaN(),
		"inf":      math.Inf(1),
	} {
		t.Run(name, func(t *testing.T) {
			provider := &fakeTeller{}
			b, _ := newBridge(t, provider)

			_, err := b.Initiate(context.Background(), teller.Intent{MerchantID: "shop1", Amount: amount})
			failure := teller.AsFailure(err)
			require.Equal(t, teller.KindInvalidIntent, failure.Kind)
			require.Empty(t, provider.calls())
		})
	}
}

func TestInitiateMissingRecipientIsConfigurationError(t *testing.T) {
	provider := &fakeTeller{}
	b, _ := newBridge(t, provider)

	_, err := b.Initiate(context.Background(), teller.Intent{MerchantID: "unknown-shop", Amount: 10})
	failure := teller.AsFailure(err)
	require.Equal(t, teller.KindConfiguration, failure.Kind)
	require.Contains(t, failure.Message, "unknown-shop")
	require.Empty(t, provider.calls())
}

func TestInitiateMissingCredentialsIsConfigurationError(t *testing.T) {
	cases := map[string]func(*teller.Config){
		"api key":    func(c *teller.Config) { c.APIKey = "" },
		"api secret": func(c *teller.Config) { c.APISecret = "" },
		"account id": func(c *teller.Config) { c.AccountID = "  " },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			provider := &fakeTeller{}
			b, _ := newBridge(t, provider)
			mutate(&b.Config)

			_, err := b.Initiate(context.Background(), teller.Intent{MerchantID: "shop1", Amount: 10})
			failure := teller.AsFailure(err)
			require.Equal(t, teller.KindConfiguration, failure.Kind)
			require.NotContains(t, failure.Message, "secret")
			require.Empty(t, provider.calls())
		})
	}
}

func TestInitiateUsesFreshIdempotencyKeys(t *testing.T) {
	provider := &fakeTeller{body: `{}`}
	b, _ := newBridge(t, provider)

	intent := teller.Intent{MerchantID: "shop1", Amount: 7}
	_, err := b.Initiate(context.Background(), intent)
	require.NoError(t, err)
	_, err = b.Initiate(context.Background(), intent)
	require.NoError(t, err)

	calls := provider.calls()
	require.Len(t, calls, 2)
	require.NotEqual(t, calls[0].Header.Get("Idempotency-Key"), calls[1].Header.Get("Idempotency-Key"))
}

func TestInitiateUpstreamRejectionKeepsJSONBody(t *testing.T) {
	provider := &fakeTeller{status: http.StatusPaymentRequired, body: `{"code":"insufficient_funds"}`}
	b, _ := newBridge(t, provider)

	_, err := b.Initiate(context.Background(), teller.Intent{MerchantID: "shop1", Amount: 10})
	failure := teller.AsFailure(err)
	require.Equal(t, teller.KindUpstreamRejection, failure.Kind)
	require.Equal(t, http.StatusPaymentRequired, failure.HTTPStatus)
	require.Equal(t, "Teller API returned status 402", failure.Message)
	require.NotNil(t, failure.ProviderBody)
	require.True(t, failure.ProviderBody.IsJSON())
	require.Equal(t, "insufficient_funds", failure.ProviderBody.Field("code"))
}

func TestInitiateUpstreamRejectionKeepsTextBody(t *testing.T) {
	provider := &fakeTeller{status: http.StatusInternalServerError, body: "upstream exploded"}
	b, _ := newBridge(t, provider)

	_, err := b.Initiate(context.Background(), teller.Intent{MerchantID: "shop1", Amount: 10})
	failure := teller.AsFailure(err)
	require.Equal(t, teller.KindUpstreamRejection, failure.Kind)
	require.Equal(t, http.StatusInternalServerError, failure.HTTPStatus)
	require.False(t, failure.ProviderBody.IsJSON())
	require.Equal(t, "upstream exploded", failure.ProviderBody.Text)

	encoded, err := json.Marshal(failure.ProviderBody)
	require.NoError(t, err)
	require.Equal(t, `"upstream exploded"`, string(encoded))
}

func TestInitiateEmptySuccessBodyIsEmptyObject(t *testing.T) {
	provider := &fakeTeller{}
	b, _ := newBridge(t, provider)

	payment, err := b.Initiate(context.Background(), teller.Intent{MerchantID: "shop1", Amount: 1})
	require.NoError(t, err)
	require.JSONEq(t, `{}`, string(payment.Body.JSON))
}

func TestInitiateTrailingSlashBaseURL(t *testing.T) {
	provider := &fakeTeller{body: `{}`}
	b, srv := newBridge(t, provider)
	b.Config.BaseURL = srv.URL + "/"

	_, err := b.Initiate(context.Background(), teller.Intent{MerchantID: "shop1", Amount: 1})
	require.NoError(t, err)
	require.Equal(t, "/accounts/acc_123/payments", provider.calls()[0].Path)
}

func TestInitiateKeepsBaseURLPath(t *testing.T) {
	provider := &fakeTeller{body: `{}`}
	b, srv := newBridge(t, provider)
	b.Config.BaseURL = srv.URL + "/v1/"

	_, err := b.Initiate(context.Background(), teller.Intent{MerchantID: "shop1", Amount: 1})
	require.NoError(t, err)
	require.Equal(t, "/v1/accounts/acc_123/payments", provider.calls()[0].Path)
}

func TestInitiateInvalidBaseURLIsConfigurationError(t *testing.T) {
	provider := &fakeTeller{}
	b, _ := newBridge(t, provider)
	b.Config.BaseURL = "not a url"

	_, err := b.Initiate(context.Background(), teller.Intent{MerchantID: "shop1", Amount: 1})
	require.Equal(t, teller.KindConfiguration, teller.AsFailure(err).Kind)
	require.Empty(t, provider.calls())
}

type failingDoer struct{ err error }

func (d failingDoer) Do(*http.Request) (*http.Response, error) { return nil, d.err }

func TestInitiateTransportFailure(t *testing.T) {
	provider := &fakeTeller{}
	b, _ := newBridge(t, provider)
	boom := errors.New("connection refused")
	b.HTTP = failingDoer{err: boom}

	_, err := b.Initiate(context.Background(), teller.Intent{MerchantID: "shop1", Amount: 1})
	failure := teller.AsFailure(err)
	require.Equal(t, teller.KindTransport, failure.Kind)
	require.ErrorIs(t, err, boom)
}

type brokenStore struct{}

func (brokenStore) Get(context.Context, string) (recipient.Recipient, error) {
	return recipient.Recipient{}, errors.New("db down")
}

func TestInitiateStorageFailureIsTransport(t *testing.T) {
	provider := &fakeTeller{}
	b, _ := newBridge(t, provider)
	b.Recipients = brokenStore{}

	_, err := b.Initiate(context.Background(), teller.Intent{MerchantID: "shop1", Amount: 1})
	require.Equal(t, teller.KindTransport, teller.AsFailure(err).Kind)
	require.Empty(t, provider.calls())
}

func TestIdempotencyKeyOverride(t *testing.T) {
	provider := &fakeTeller{body: `{}`}
	b, _ := newBridge(t, provider)
	b.NewIdempotencyKey = func() string { return "fixed-key" }

	_, err := b.Initiate(context.Background(), teller.Intent{MerchantID: "shop1", Amount: 1})
	require.NoError(t, err)
	require.Equal(t, "fixed-key", provider.calls()[0].Header.Get("Idempotency-Key"))
}
