package teller

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultCurrency applies when an intent carries no currency.
const DefaultCurrency = "USD"

// Intent describes one payment to initiate. Optional fields left empty are
// omitted from the provider request.
type Intent struct {
	MerchantID    string
	Amount        float64
	Currency      string
	CustomerName  string
	CustomerEmail string
	Note          string
}

// ValidateAmount is the shared amount rule: finite and strictly positive.
func ValidateAmount(amount float64) bool {
	return !math.IsNaN(amount) && !math.IsInf(amount, 0) && amount > 0
}

// FormatAmount renders the amount with exactly two decimals, rounding half away from zero.
func FormatAmount(amount float64) string {
	return decimal.NewFromFloat(amount).StringFixed(2)
}

func (in Intent) normalise() (Intent, *Failure) {
	if !ValidateAmount(in.Amount) {
		return in, invalidIntent("Amount must be a positive number")
	}
	in.MerchantID = strings.TrimSpace(in.MerchantID)
	if in.MerchantID == "" {
		return in, invalidIntent("Missing shop identifier")
	}
	in.Currency = strings.TrimSpace(in.Currency)
	if in.Currency == "" {
		in.Currency = DefaultCurrency
	}
	return in, nil
}
