// Package teller initiates Zelle payments through the Teller REST API.
package teller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/noah-isme/zelle-bridge/internal/obs"
	"github.com/noah-isme/zelle-bridge/internal/recipient"
)

// PaymentMethod is the fixed method tag sent to the provider.
const PaymentMethod = "zelle"

// maxResponseBytes caps how much of a provider response is buffered.
const maxResponseBytes = 1 << 20

// Doer performs the outbound HTTP call. *http.Client and resilience.HTTPClient
// both satisfy it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Payment is a successful initiation. Body is the provider document verbatim;
// ID and Status are read out of it for logging and convenience only.
type Payment struct {
	ID             string
	Status         string
	Body           Body
	IdempotencyKey string
}

// Bridge turns a payment intent into one authenticated, idempotent provider call.
type Bridge struct {
	Recipients recipient.Reader
	Config     Config
	HTTP       Doer
	// NewIdempotencyKey defaults to uuid.NewString. Every call draws a fresh key.
	NewIdempotencyKey func() string
	Logger            *zerolog.Logger
}

// New returns a Bridge using the provided directory, provider config and transport.
func New(recipients recipient.Reader, cfg Config, client Doer) *Bridge {
	return &Bridge{Recipients: recipients, Config: cfg, HTTP: client}
}

type paymentRequest struct {
	Method    string `json:"method"`
	Amount    money  `json:"amount"`
	Recipient party  `json:"recipient"`
	Customer  party  `json:"customer"`
	Note      string `json:"note,omitempty"`
}

type money struct {
	Currency string `json:"currency"`
	Value    string `json:"value"`
}

type party struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// Initiate validates the intent, resolves the merchant's recipient and provider
// credentials, and performs the provider call. Every non-nil error is a *Failure.
// Validation and configuration failures never reach the network. No retries
// are attempted here.
func (b *Bridge) Initiate(ctx context.Context, in Intent) (*Payment, error) {
	start := time.Now()
	ctx, span := otel.Tracer("teller.Bridge").Start(ctx, "Bridge.Initiate")
	defer span.End()

	payment, failure := b.initiate(ctx, in)

	result := "success"
	if failure != nil {
		result = failure.Kind.String()
		span.SetStatus(codes.Error, failure.Message)
		if failure.Err != nil {
			span.RecordError(failure.Err)
		}
	}
	span.SetAttributes(
		attribute.String("zelle.shop", in.MerchantID),
		attribute.String("teller.result", result),
	)
	if obs.PaymentInitiationTotal != nil {
		obs.PaymentInitiationTotal.WithLabelValues(result).Inc()
	}
	if obs.PaymentInitiationDuration != nil {
		obs.PaymentInitiationDuration.WithLabelValues(result).Observe(obs.DurationMillis(time.Since(start)))
	}
	b.log(ctx, in, payment, failure, time.Since(start))

	if failure != nil {
		return nil, failure
	}
	return payment, nil
}

func (b *Bridge) initiate(ctx context.Context, in Intent) (*Payment, *Failure) {
	in, failure := in.normalise()
	if failure != nil {
		return nil, failure
	}
	if b.Recipients == nil {
		return nil, configurationError("Recipient directory not configured")
	}
	rec, err := b.Recipients.Get(ctx, in.MerchantID)
	if errors.Is(err, recipient.ErrNotFound) {
		return nil, configurationError(fmt.Sprintf("Missing Zelle recipient configuration for shop %s", in.MerchantID))
	}
	if err != nil {
		return nil, transportError("lookup recipient", err)
	}

	cfg := b.Config
	if failure := cfg.check(); failure != nil {
		return nil, failure
	}
	target, failure := cfg.paymentsURL()
	if failure != nil {
		return nil, failure
	}
	if b.HTTP == nil {
		return nil, configurationError("Teller HTTP client not configured")
	}

	payload, err := json.Marshal(paymentRequest{
		Method:    PaymentMethod,
		Amount:    money{Currency: in.Currency, Value: FormatAmount(in.Amount)},
		Recipient: party{Name: rec.Name, Email: rec.Email},
		Customer:  party{Name: in.CustomerName, Email: in.CustomerEmail},
		Note:      in.Note,
	})
	if err != nil {
		return nil, transportError("encode payment request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(payload))
	if err != nil {
		return nil, transportError("build payment request", err)
	}
	key := b.idempotencyKey()
	req.SetBasicAuth(cfg.APIKey, cfg.APISecret)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Idempotency-Key", key)

	resp, err := b.HTTP.Do(req)
	if err != nil {
		return nil, transportError("request to Teller failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, transportError("read Teller response", err)
	}
	body := parseBody(raw)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Failure{
			Kind:         KindUpstreamRejection,
			Message:      fmt.Sprintf("Teller API returned status %d", resp.StatusCode),
			HTTPStatus:   resp.StatusCode,
			ProviderBody: &body,
		}
	}
	return &Payment{
		ID:             body.Field("id"),
		Status:         body.Field("status"),
		Body:           body,
		IdempotencyKey: key,
	}, nil
}

func (b *Bridge) idempotencyKey() string {
	if b.NewIdempotencyKey != nil {
		if key := b.NewIdempotencyKey(); key != "" {
			return key
		}
	}
	return uuid.NewString()
}

func (b *Bridge) log(ctx context.Context, in Intent, payment *Payment, failure *Failure, took time.Duration) {
	logger := zerolog.Ctx(ctx)
	if logger.GetLevel() == zerolog.Disabled && b.Logger != nil {
		logger = b.Logger
	}
	var evt *zerolog.Event
	if failure == nil {
		evt = logger.Info().
			Str("result", "success").
			Str("payment_id", payment.ID).
			Str("payment_status", payment.Status).
			Str("idempotency_key", payment.IdempotencyKey)
	} else {
		evt = logger.Warn().Str("result", failure.Kind.String()).Str("reason", failure.Message)
		if failure.HTTPStatus != 0 {
			evt = evt.Int("teller_status", failure.HTTPStatus)
		}
		if failure.Err != nil {
			evt = evt.Err(failure.Err)
		}
	}
	evt.Str("shop", in.MerchantID).Int64("duration_ms", took.Milliseconds()).Msg("teller_payment")
}
