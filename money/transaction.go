// Package money holds the domain records recovered from the store and the
// validation rules candidate records must pass before they are surfaced.
package money

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// MaxAmount bounds plausible transaction and balance values; anything
// larger is treated as a decoding artifact.
const MaxAmount = 10_000_000

var reDate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Transaction is a single financial transaction. Amount is positive for
// expenses and negative for income/credits. Optional fields are empty (or
// nil for Pending) when the decoder could not recover them.
type Transaction struct {
	TransactionID   string   `json:"transaction_id" msgpack:"transaction_id"`
	Amount          float64  `json:"amount" msgpack:"amount"`
	Date            string   `json:"date" msgpack:"date"`
	Name            string   `json:"name,omitempty" msgpack:"name,omitempty"`
	OriginalName    string   `json:"original_name,omitempty" msgpack:"original_name,omitempty"`
	OriginalDate    string   `json:"original_date,omitempty" msgpack:"original_date,omitempty"`
	AccountID       string   `json:"account_id,omitempty" msgpack:"account_id,omitempty"`
	CategoryID      string   `json:"category_id,omitempty" msgpack:"category_id,omitempty"`
	ISOCurrencyCode string   `json:"iso_currency_code,omitempty" msgpack:"iso_currency_code,omitempty"`
	Pending         *bool    `json:"pending,omitempty" msgpack:"pending,omitempty"`
	City            string   `json:"city,omitempty" msgpack:"city,omitempty"`
	Region          string   `json:"region,omitempty" msgpack:"region,omitempty"`
}

// DisplayName is the best human-readable name for the transaction.
func (t Transaction) DisplayName() string {
	if t.Name != "" {
		return t.Name
	}
	if t.OriginalName != "" {
		return t.OriginalName
	}
	return "Unknown"
}

// Validate checks the record against the schema contract shared by both
// decoder paths.
func (t Transaction) Validate() error {
	if t.TransactionID == "" {
		return fmt.Errorf("transaction: missing transaction_id")
	}
	if !reDate.MatchString(t.Date) {
		return fmt.Errorf("transaction %s: bad date %q", t.TransactionID, t.Date)
	}
	if t.Amount > MaxAmount || t.Amount < -MaxAmount {
		return fmt.Errorf("transaction %s: amount %v out of range", t.TransactionID, t.Amount)
	}
	return nil
}

// DedupKey identifies duplicates across store segments: two records with the
// same display name, amount and date are the same transaction.
func (t Transaction) DedupKey() uint64 {
	var d xxhash.Digest
	d.WriteString(t.DisplayName())
	d.WriteString("\x00")
	d.WriteString(fmt.Sprintf("%.2f", t.Amount))
	d.WriteString("\x00")
	d.WriteString(t.Date)
	return d.Sum64()
}

// DedupTransactions keeps the first occurrence of each duplicate group,
// preserving order otherwise.
func DedupTransactions(txns []Transaction) []Transaction {
	seen := make(map[uint64]bool, len(txns))
	out := txns[:0:0]
	for _, t := range txns {
		k := t.DedupKey()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, t)
	}
	return out
}

// SortTransactionsByDateDesc orders newest first. Dates are ISO strings, so
// byte order is date order.
func SortTransactionsByDateDesc(txns []Transaction) {
	slices.SortStableFunc(txns, func(a, b Transaction) int {
		return strings.Compare(b.Date, a.Date)
	})
}
