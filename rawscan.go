package copilotdb

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/ignaciohermosillacornejo/copilot-money-mcp-sub003/money"
)

// Heuristic fallback decoder. It scans raw store segment files for known
// byte patterns with no framing awareness at all, recovering transaction and
// account records directly. The marker bytes below are load-bearing
// compatibility contracts; do not "improve" them. The window sizes and
// validity checks are equally deliberate: the scanner is approximate by
// design and the two decoder paths must agree on interpretation so dedup
// works downstream.
var (
	// field-name tags exactly as the writer encodes short field names
	patAmount = []byte("\x0a\x06amount")
	patName   = []byte("\x0a\x04name")
	patCity   = []byte("\x0a\x04city")
	patRegion = []byte("\x0a\x06region")
	patType   = []byte("\x0a\x04type")
	patMask   = []byte("\x0a\x04mask")

	// value markers
	patString = []byte{0x8A, 0x01} // then one length byte, then the payload
	tagDouble = byte(0x19)        // then 8 bytes little-endian
	tagBool   = byte(0x08)        // then one 0/1 byte
)

const (
	txnWindow     = 1500 // bytes of record context around an amount anchor
	accountWindow = 1000
	doubleSearch  = 20 // how far past an anchor a double value may sit
	stringSearch  = 50 // how far past a field name its string value may sit
	boolSearch    = 20
	maxStringLen  = 100
)

// ScanTransactions recovers transaction records from the raw segment files
// of the store at dbPath, without opening the store. Candidates missing a
// display name, id or date are dropped; survivors are validated, deduped by
// (display name, amount, date) and sorted newest first.
func ScanTransactions(dbPath string) ([]money.Transaction, error) {
	files, err := segmentFiles(dbPath)
	if err != nil {
		return nil, err
	}

	var txns []money.Transaction
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		// only segments that actually hold transaction documents
		if !bytes.Contains(data, []byte("amount")) || !bytes.Contains(data, []byte("original_name")) {
			continue
		}
		txns = append(txns, scanTransactionData(data)...)
	}

	txns = money.DedupTransactions(txns)
	money.SortTransactionsByDateDesc(txns)
	return txns, nil
}

func scanTransactionData(data []byte) []money.Transaction {
	var txns []money.Transaction
	pos := 0
	for {
		idx := indexFrom(data, patAmount, pos)
		if idx < 0 {
			break
		}
		pos = idx + 1

		amount, ok := extractDouble(data, idx+len(patAmount))
		if !ok || amount == 0 {
			continue
		}

		record := window(data, idx, txnWindow)

		name, _ := extractString(record, patName)
		originalName, _ := extractString(record, []byte("original_name"))
		date, _ := extractString(record, []byte("original_date"))
		categoryID, _ := extractString(record, []byte("category_id"))
		accountID, _ := extractString(record, []byte("account_id"))
		transactionID, _ := extractString(record, []byte("transaction_id"))
		currency, _ := extractString(record, []byte("iso_currency_code"))
		city, _ := extractString(record, patCity)
		region, _ := extractString(record, patRegion)

		displayName := name
		if displayName == "" {
			displayName = originalName
		}
		if displayName == "" || transactionID == "" || date == "" {
			continue
		}

		t := money.Transaction{
			TransactionID:   transactionID,
			Amount:          amount,
			Date:            date,
			Name:            name,
			OriginalName:    originalName,
			AccountID:       accountID,
			CategoryID:      categoryID,
			ISOCurrencyCode: currency,
			City:            city,
			Region:          region,
		}
		if pending, ok := extractBool(record, []byte("pending")); ok {
			t.Pending = &pending
		}
		if t.Validate() != nil {
			continue
		}
		txns = append(txns, t)
	}
	return txns
}

// ScanAccounts recovers account records from the raw segment files.
// Candidates need an account id and a name; they are deduped by (display
// name, mask).
func ScanAccounts(dbPath string) ([]money.Account, error) {
	files, err := segmentFiles(dbPath)
	if err != nil {
		return nil, err
	}

	var accounts []money.Account
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if !bytes.Contains(data, []byte("/accounts/")) {
			continue
		}
		accounts = append(accounts, scanAccountData(data)...)
	}
	return money.DedupAccounts(accounts), nil
}

func scanAccountData(data []byte) []money.Account {
	var accounts []money.Account
	pos := 0
	for {
		idx := indexFrom(data, []byte("current_balance"), pos)
		if idx < 0 {
			break
		}
		pos = idx + 1

		record := window(data, idx, accountWindow)
		balanceAt := bytes.Index(record, []byte("current_balance"))
		balance, ok := extractDouble(record, balanceAt+len("current_balance"))
		if !ok {
			continue
		}

		name, _ := extractString(record, patName)
		officialName, _ := extractString(record, []byte("official_name"))
		accountType, _ := extractString(record, patType)
		subtype, _ := extractString(record, []byte("subtype"))
		mask, _ := extractString(record, patMask)
		institution, _ := extractString(record, []byte("institution_name"))
		accountID, _ := extractString(record, []byte("account_id"))

		if accountID == "" || (name == "" && officialName == "") {
			continue
		}

		a := money.Account{
			AccountID:       accountID,
			CurrentBalance:  balance,
			Name:            name,
			OfficialName:    officialName,
			AccountType:     accountType,
			Subtype:         subtype,
			Mask:            mask,
			InstitutionName: institution,
		}
		if a.Validate() != nil {
			continue
		}
		accounts = append(accounts, a)
	}
	return accounts
}

func segmentFiles(dbPath string) ([]string, error) {
	if err := checkStorePath(dbPath); err != nil {
		return nil, err
	}
	return filepath.Glob(filepath.Join(dbPath, "*.ldb"))
}

// window cuts ±n bytes of record context around an anchor position.
func window(data []byte, idx, n int) []byte {
	start := max(0, idx-n)
	end := min(len(data), idx+n)
	return data[start:end]
}

func indexFrom(data, pat []byte, from int) int {
	if from >= len(data) {
		return -1
	}
	i := bytes.Index(data[from:], pat)
	if i < 0 {
		return -1
	}
	return from + i
}

// extractDouble scans up to doubleSearch bytes past pos for the double tag
// followed by an 8-byte little-endian float, accepting only sane magnitudes
// and rounding to cents.
func extractDouble(data []byte, pos int) (float64, bool) {
	if pos < 0 {
		return 0, false
	}
	end := min(len(data), pos+doubleSearch)
	for i := pos; i+9 <= end; i++ {
		if data[i] != tagDouble {
			continue
		}
		v := math.Float64frombits(binary.LittleEndian.Uint64(data[i+1 : i+9]))
		if v > -money.MaxAmount && v < money.MaxAmount {
			return math.Round(v*100) / 100, true
		}
	}
	return 0, false
}

// extractString finds fieldPat and pulls the length-prefixed string value
// that follows its marker, rejecting unprintable or oversized payloads.
func extractString(data, fieldPat []byte) (string, bool) {
	idx := bytes.Index(data, fieldPat)
	if idx < 0 {
		return "", false
	}
	start := idx + len(fieldPat)
	end := min(len(data), start+stringSearch)
	for i := start; i+3 < end; i++ {
		if data[i] != patString[0] || data[i+1] != patString[1] {
			continue
		}
		n := int(data[i+2])
		if n <= 0 || n >= maxStringLen || i+3+n > len(data) {
			continue
		}
		s := string(data[i+3 : i+3+n])
		if utf8.ValidString(s) && isPrintable(s) {
			return s, true
		}
	}
	return "", false
}

// extractBool finds fieldPat and pulls the 0/1 byte after the boolean tag.
func extractBool(data, fieldPat []byte) (bool, bool) {
	idx := bytes.Index(data, fieldPat)
	if idx < 0 {
		return false, false
	}
	start := idx + len(fieldPat)
	end := min(len(data), start+boolSearch)
	for i := start; i+1 < end; i++ {
		if data[i] == tagBool {
			return data[i+1] != 0, true
		}
	}
	return false, false
}

func isPrintable(s string) bool {
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			return false
		}
	}
	return true
}
