package money

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Account is a financial account with its current balance.
type Account struct {
	AccountID       string  `json:"account_id" msgpack:"account_id"`
	CurrentBalance  float64 `json:"current_balance" msgpack:"current_balance"`
	Name            string  `json:"name,omitempty" msgpack:"name,omitempty"`
	OfficialName    string  `json:"official_name,omitempty" msgpack:"official_name,omitempty"`
	Mask            string  `json:"mask,omitempty" msgpack:"mask,omitempty"` // last 4 digits
	AccountType     string  `json:"account_type,omitempty" msgpack:"account_type,omitempty"`
	Subtype         string  `json:"subtype,omitempty" msgpack:"subtype,omitempty"`
	InstitutionName string  `json:"institution_name,omitempty" msgpack:"institution_name,omitempty"`
	ISOCurrencyCode string  `json:"iso_currency_code,omitempty" msgpack:"iso_currency_code,omitempty"`
}

// DisplayName is the best human-readable name for the account.
func (a Account) DisplayName() string {
	if a.Name != "" {
		return a.Name
	}
	if a.OfficialName != "" {
		return a.OfficialName
	}
	return "Unknown"
}

// Validate checks the record against the schema contract.
func (a Account) Validate() error {
	if a.AccountID == "" {
		return fmt.Errorf("account: missing account_id")
	}
	if a.Name == "" && a.OfficialName == "" {
		return fmt.Errorf("account %s: missing name", a.AccountID)
	}
	if a.CurrentBalance > MaxAmount || a.CurrentBalance < -MaxAmount {
		return fmt.Errorf("account %s: balance %v out of range", a.AccountID, a.CurrentBalance)
	}
	return nil
}

// DedupKey identifies the same account seen in multiple store segments by
// display name and mask.
func (a Account) DedupKey() uint64 {
	var d xxhash.Digest
	d.WriteString(a.DisplayName())
	d.WriteString("\x00")
	d.WriteString(a.Mask)
	return d.Sum64()
}

// DedupAccounts keeps the first occurrence of each duplicate group.
func DedupAccounts(accounts []Account) []Account {
	seen := make(map[uint64]bool, len(accounts))
	out := accounts[:0:0]
	for _, a := range accounts {
		k := a.DedupKey()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, a)
	}
	return out
}
