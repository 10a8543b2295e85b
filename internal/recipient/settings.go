package recipient

import (
	"context"
	"errors"
	"strings"

	validator "github.com/go-playground/validator/v10"
)

// SettingsInput is the merchant-settings form payload.
type SettingsInput struct {
	MerchantID string `validate:"required"`
	Name       string `validate:"required"`
	Email      string `validate:"required,email"`
}

// FieldErrors maps a form field to a human readable message.
type FieldErrors map[string]string

// ValidationError is returned by Settings.Save when the input is rejected.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, field := range []string{"merchantId", "recipientName", "recipientEmail"} {
		if msg, ok := e.Fields[field]; ok {
			parts = append(parts, field+": "+msg)
		}
	}
	return "invalid recipient settings: " + strings.Join(parts, "; ")
}

// Settings is the validated write path into the directory used by the
// merchant-settings surface.
type Settings struct {
	Store    Store
	Validate *validator.Validate
}

// NewSettings wires a Settings service with a fresh validator.
func NewSettings(store Store) *Settings {
	return &Settings{Store: store, Validate: validator.New(validator.WithRequiredStructEnabled())}
}

// Save trims and validates the input, then replaces the merchant's recipient.
func (s *Settings) Save(ctx context.Context, in SettingsInput) (Recipient, error) {
	if s == nil || s.Store == nil {
		return Recipient{}, errors.New("recipient: settings store not configured")
	}
	in.MerchantID = strings.TrimSpace(in.MerchantID)
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)

	v := s.Validate
	if v == nil {
		v = validator.New(validator.WithRequiredStructEnabled())
	}
	if err := v.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return Recipient{}, err
		}
		fields := FieldErrors{}
		for _, fe := range verrs {
			switch fe.Field() {
			case "MerchantID":
				fields["merchantId"] = "shop is required"
			case "Name":
				fields["recipientName"] = "enter the Zelle recipient name"
			case "Email":
				if fe.Tag() == "email" {
					fields["recipientEmail"] = "invalid email"
				} else {
					fields["recipientEmail"] = "enter the email that receives Zelle transfers"
				}
			}
		}
		return Recipient{}, &ValidationError{Fields: fields}
	}
	return s.Store.Put(ctx, in.MerchantID, in.Name, in.Email)
}
