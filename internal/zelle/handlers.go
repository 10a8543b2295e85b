// Package zelle serves the storefront-facing /api/zelle endpoint.
package zelle

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/zelle-bridge/internal/common"
	"github.com/noah-isme/zelle-bridge/internal/recipient"
	"github.com/noah-isme/zelle-bridge/internal/teller"
)

// Initiator is satisfied by *teller.Bridge.
type Initiator interface {
	Initiate(ctx context.Context, in teller.Intent) (*teller.Payment, error)
}

// Handler exposes recipient lookup (GET) and payment initiation (POST).
type Handler struct {
	Recipients recipient.Reader
	Bridge     Initiator
}

type recipientView struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type recipientResp struct {
	Recipient recipientView `json:"recipient"`
}

type paymentResp struct {
	OK      bool        `json:"ok"`
	Payment teller.Body `json:"payment"`
}

// Recipient returns the display details of the merchant's Zelle recipient.
// Only name and email leave the service.
func (h *Handler) Recipient(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Recipients == nil {
		common.JSONError(w, http.StatusInternalServerError, "ZELLE_NOT_CONFIGURED", "zelle handler unavailable", nil)
		return
	}
	query := r.URL.Query()
	shop := strings.TrimSpace(query.Get("shop"))
	if shop == "" {
		shop = strings.TrimSpace(query.Get("merchant"))
	}
	if shop == "" {
		common.JSONError(w, http.StatusBadRequest, "MISSING_SHOP", "Missing shop parameter", nil)
		return
	}

	rec, err := h.Recipients.Get(r.Context(), shop)
	if errors.Is(err, recipient.ErrNotFound) {
		common.JSONError(w, http.StatusNotFound, "RECIPIENT_NOT_CONFIGURED", "Zelle recipient not configured for this shop", nil)
		return
	}
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("shop", shop).Msg("recipient_lookup_failed")
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "Unable to load Zelle recipient", nil)
		return
	}
	common.JSON(w, http.StatusOK, recipientResp{Recipient: recipientView{Name: rec.Name, Email: rec.Email}})
}

// Initiate parses an untyped JSON body into an intent and hands it to the Bridge.
func (h *Handler) Initiate(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Bridge == nil {
		common.JSONError(w, http.StatusInternalServerError, "ZELLE_NOT_CONFIGURED", "zelle handler unavailable", nil)
		return
	}
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body", nil)
		return
	}
	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body", nil)
		return
	}
	fields, ok := payload.(map[string]any)
	if !ok {
		common.JSONError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body", nil)
		return
	}

	intent, appErr := parseIntent(fields)
	if appErr != nil {
		common.WriteAppError(w, appErr)
		return
	}

	payment, err := h.Bridge.Initiate(r.Context(), intent)
	if err != nil {
		writeFailure(w, teller.AsFailure(err))
		return
	}
	common.JSON(w, http.StatusCreated, paymentResp{OK: true, Payment: payment.Body})
}

// parseIntent is deliberately lenient with optional fields: anything that is
// not a string is dropped rather than rejected.
func parseIntent(fields map[string]any) (teller.Intent, *common.AppError) {
	shop := stringField(fields, "shop")
	if strings.TrimSpace(shop) == "" {
		shop = stringField(fields, "merchantId")
	}
	if strings.TrimSpace(shop) == "" {
		return teller.Intent{}, common.NewAppError("MISSING_SHOP", "Missing shop identifier", http.StatusBadRequest, nil)
	}

	amount, ok := amountField(fields["amount"])
	if !ok || !teller.ValidateAmount(amount) {
		return teller.Intent{}, common.NewAppError("INVALID_AMOUNT", "Amount must be a positive number", http.StatusBadRequest, nil)
	}

	currency := stringField(fields, "currency")
	if currency == "" {
		currency = teller.DefaultCurrency
	}
	return teller.Intent{
		MerchantID:    shop,
		Amount:        amount,
		Currency:      currency,
		CustomerName:  stringField(fields, "customerName"),
		CustomerEmail: stringField(fields, "customerEmail"),
		Note:          stringField(fields, "note"),
	}, nil
}

func stringField(fields map[string]any, name string) string {
	s, _ := fields[name].(string)
	return s
}

// amountField accepts a JSON number or a plain decimal string. Hex, infinity
// and NaN spellings are rejected.
func amountField(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(val))
		if err != nil {
			return 0, false
		}
		f, _ := d.Float64()
		return f, true
	default:
		return 0, false
	}
}

func writeFailure(w http.ResponseWriter, f *teller.Failure) {
	common.WriteAppError(w, failureError(f))
}

func failureError(f *teller.Failure) *common.AppError {
	switch f.Kind {
	case teller.KindInvalidIntent:
		return common.NewAppError("INVALID_INTENT", f.Message, http.StatusBadRequest, f)
	case teller.KindConfiguration:
		// Messages name setting keys only, never their values.
		return common.NewAppError("CONFIGURATION_ERROR", f.Message, http.StatusInternalServerError, f)
	case teller.KindUpstreamRejection:
		status := f.HTTPStatus
		if status < 400 || status > 599 {
			status = http.StatusBadGateway
		}
		details := map[string]any{"tellerStatus": f.HTTPStatus}
		if f.ProviderBody != nil {
			details["tellerResponse"] = f.ProviderBody
		}
		return common.NewAppError("UPSTREAM_REJECTED", f.Message, status, f).WithDetails(details)
	default:
		return common.NewAppError("INTERNAL", "Unexpected error initiating Zelle payment", http.StatusInternalServerError, f)
	}
}
