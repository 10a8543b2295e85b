// Package recipient stores, per merchant, the account that receives Zelle transfers.
package recipient

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrNotFound reports that no recipient is configured for the merchant.
var ErrNotFound = errors.New("recipient: not configured")

// Recipient is the receiving account configured for one shop. At most one
// exists per MerchantID and writes replace Name and Email wholesale.
type Recipient struct {
	MerchantID string    `json:"merchantId"`
	Name       string    `json:"recipientName"`
	Email      string    `json:"recipientEmail"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Reader resolves a merchant's recipient. Implementations return ErrNotFound
// when nothing is configured.
type Reader interface {
	Get(ctx context.Context, merchantID string) (Recipient, error)
}

// Store is the full directory contract. Put creates or replaces atomically per
// merchant; concurrent writers race with last-write-wins.
type Store interface {
	Reader
	Put(ctx context.Context, merchantID, name, email string) (Recipient, error)
}

func normaliseMerchant(merchantID string) string {
	return strings.TrimSpace(merchantID)
}
