package money

import (
	"github.com/spf13/cast"
)

// TransactionFromFields coerces a decoded document field map into a
// Transaction. Field values arrive as dynamic data (the decoder cannot know
// the schema), so each is cast leniently; fields that fail to coerce are
// simply left empty and caught by Validate where required.
func TransactionFromFields(fields map[string]any) Transaction {
	t := Transaction{
		TransactionID:   str(fields, "transaction_id"),
		Amount:          num(fields, "amount"),
		Name:            str(fields, "name"),
		OriginalName:    str(fields, "original_name"),
		AccountID:       str(fields, "account_id"),
		CategoryID:      str(fields, "category_id"),
		ISOCurrencyCode: str(fields, "iso_currency_code"),
		City:            str(fields, "city"),
		Region:          str(fields, "region"),
		OriginalDate:    str(fields, "original_date"),
	}
	t.Date = str(fields, "date")
	if t.Date == "" {
		t.Date = t.OriginalDate
	}
	if v, ok := fields["pending"]; ok {
		b := cast.ToBool(v)
		t.Pending = &b
	}
	return t
}

// AccountFromFields coerces a decoded document field map into an Account.
func AccountFromFields(fields map[string]any) Account {
	return Account{
		AccountID:       str(fields, "account_id"),
		CurrentBalance:  num(fields, "current_balance"),
		Name:            str(fields, "name"),
		OfficialName:    str(fields, "official_name"),
		Mask:            str(fields, "mask"),
		AccountType:     str(fields, "type"),
		Subtype:         str(fields, "subtype"),
		InstitutionName: str(fields, "institution_name"),
		ISOCurrencyCode: str(fields, "iso_currency_code"),
	}
}

func str(fields map[string]any, key string) string {
	v, ok := fields[key]
	if !ok || v == nil {
		return ""
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return ""
	}
	return s
}

func num(fields map[string]any, key string) float64 {
	v, ok := fields[key]
	if !ok || v == nil {
		return 0
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0
	}
	return f
}
