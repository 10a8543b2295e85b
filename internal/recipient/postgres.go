package recipient

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// DBTX is the subset of pgxpool.Pool used by PostgresStore.
type DBTX interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const selectRecipient = `SELECT shop, recipient_name, recipient_email, updated_at
FROM zelle_recipients
WHERE shop = $1`

// The single statement keeps the write atomic per shop without an explicit transaction.
const upsertRecipient = `INSERT INTO zelle_recipients (shop, recipient_name, recipient_email)
VALUES ($1, $2, $3)
ON CONFLICT (shop) DO UPDATE
SET recipient_name = EXCLUDED.recipient_name,
    recipient_email = EXCLUDED.recipient_email,
    updated_at = now()
RETURNING shop, recipient_name, recipient_email, updated_at`

// PostgresStore persists recipients in the zelle_recipients table.
type PostgresStore struct {
	DB DBTX
}

// Get implements Reader.
func (s PostgresStore) Get(ctx context.Context, merchantID string) (Recipient, error) {
	if s.DB == nil {
		return Recipient{}, errors.New("recipient: database not configured")
	}
	rec, err := scanRecipient(s.DB.QueryRow(ctx, selectRecipient, normaliseMerchant(merchantID)))
	if errors.Is(err, pgx.ErrNoRows) {
		return Recipient{}, ErrNotFound
	}
	if err != nil {
		return Recipient{}, fmt.Errorf("select recipient: %w", err)
	}
	return rec, nil
}

// Put implements Store.
func (s PostgresStore) Put(ctx context.Context, merchantID, name, email string) (Recipient, error) {
	if s.DB == nil {
		return Recipient{}, errors.New("recipient: database not configured")
	}
	rec, err := scanRecipient(s.DB.QueryRow(ctx, upsertRecipient, normaliseMerchant(merchantID), name, email))
	if err != nil {
		return Recipient{}, fmt.Errorf("upsert recipient: %w", err)
	}
	return rec, nil
}

func scanRecipient(row pgx.Row) (Recipient, error) {
	var rec Recipient
	if err := row.Scan(&rec.MerchantID, &rec.Name, &rec.Email, &rec.UpdatedAt); err != nil {
		return Recipient{}, err
	}
	rec.UpdatedAt = rec.UpdatedAt.UTC()
	return rec, nil
}
