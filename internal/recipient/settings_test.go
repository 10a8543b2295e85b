package recipient_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/zelle-bridge/internal/recipient"
)

func TestSettingsSaveValidates(t *testing.T) {
	settings := recipient.NewSettings(recipient.NewMemoryStore())

	_, err := settings.Save(context.Background(), recipient.SettingsInput{MerchantID: "shop1", Name: "  ", Email: "not-an-email"})
	var verr *recipient.ValidationError
	require.True(t, errors.As(err, &verr))
	require.Equal(t, recipient.FieldErrors{
		"recipientName":  "enter the Zelle recipient name",
		"recipientEmail": "invalid email",
	}, verr.Fields)

	_, err = settings.Save(context.Background(), recipient.SettingsInput{MerchantID: "shop1", Name: "Jane"})
	require.True(t, errors.As(err, &verr))
	require.Equal(t, "enter the email that receives Zelle transfers", verr.Fields["recipientEmail"])
}

func TestSettingsSaveTrimsAndPersists(t *testing.T) {
	store := recipient.NewMemoryStore()
	settings := recipient.NewSettings(store)

	_, err := settings.Save(context.Background(), recipient.SettingsInput{MerchantID: "shop1", Name: " Jane Doe ", Email: " jane@example.com "})
	require.NoError(t, err)

	got, err := store.Get(context.Background(), "shop1")
	require.NoError(t, err)
	require.Equal(t, "Jane Doe", got.Name)
	require.Equal(t, "jane@example.com", got.Email)
}
