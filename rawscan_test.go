package copilotdb

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// rawField appends a protobuf-shaped field-name tag followed by a string
// value marker, the byte patterns the scanner anchors on.
func rawField(buf []byte, name, value string) []byte {
	buf = append(buf, 0x0A, byte(len(name)))
	buf = append(buf, name...)
	buf = append(buf, patString...)
	buf = append(buf, byte(len(value)))
	buf = append(buf, value...)
	return buf
}

func rawDouble(buf []byte, name string, v float64) []byte {
	buf = append(buf, 0x0A, byte(len(name)))
	buf = append(buf, name...)
	buf = append(buf, tagDouble)
	buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(v))
	return buf
}

func rawBool(buf []byte, name string, v bool) []byte {
	buf = append(buf, 0x0A, byte(len(name)))
	buf = append(buf, name...)
	buf = append(buf, tagBool)
	if v {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}
	return buf
}

func rawTransaction(id, name, date string, amount float64) []byte {
	var buf []byte
	buf = rawDouble(buf, "amount", amount)
	buf = rawField(buf, "name", name)
	buf = rawField(buf, "original_name", name+" INC")
	buf = rawField(buf, "original_date", date)
	buf = rawField(buf, "transaction_id", id)
	buf = rawField(buf, "account_id", "acct_1")
	buf = rawField(buf, "category_id", "food")
	buf = rawField(buf, "iso_currency_code", "USD")
	buf = rawBool(buf, "pending", false)
	return buf
}

func writeSegment(t *testing.T, dir, name string, data []byte) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestScanTransactions(t *testing.T) {
	dir := t.TempDir()
	var data []byte
	data = append(data, "junk junk junk"...)
	data = append(data, rawTransaction("txn_1", "Blue Bottle", "2026-08-01", 19.99)...)
	data = append(data, make([]byte, 4096)...) // keep the record windows from overlapping
	data = append(data, rawTransaction("txn_2", "Safeway", "2026-08-15", 84.12)...)
	writeSegment(t, dir, "000042.ldb", data)
	writeSegment(t, dir, "000043.ldb", []byte("no markers at all"))

	txns, err := ScanTransactions(dir)
	if err != nil {
		t.Fatalf("ScanTransactions err = %v", err)
	}
	if len(txns) != 2 {
		t.Fatalf("len(txns) = %d, wanted 2: %+v", len(txns), txns)
	}
	// sorted date descending
	if txns[0].TransactionID != "txn_2" || txns[1].TransactionID != "txn_1" {
		t.Fatalf("order = %s, %s; wanted txn_2, txn_1", txns[0].TransactionID, txns[1].TransactionID)
	}
	got := txns[1]
	if got.Amount != 19.99 || got.Name != "Blue Bottle" || got.Date != "2026-08-01" {
		t.Fatalf("txn_1 = %+v", got)
	}
	if got.Pending == nil || *got.Pending {
		t.Fatalf("txn_1.Pending = %v, wanted false", got.Pending)
	}
}

func TestScanTransactions_AmountExtraction(t *testing.T) {
	t.Run("value within window", func(t *testing.T) {
		var data []byte
		data = append(data, patAmount...)
		data = append(data, 0x11, 0x22) // slack before the value tag
		data = append(data, tagDouble)
		data = binary.LittleEndian.AppendUint64(data, math.Float64bits(19.99))

		v, ok := extractDouble(data, len(patAmount))
		if !ok || v != 19.99 {
			t.Fatalf("extractDouble = (%v, %v), wanted (19.99, true)", v, ok)
		}
	})

	t.Run("zero amount produces no record", func(t *testing.T) {
		dir := t.TempDir()
		data := rawTransaction("txn_z", "Zero Co", "2026-08-01", 0.0)
		data = append(data, "original_name"...) // keep the file gate satisfied
		writeSegment(t, dir, "000001.ldb", data)

		txns, err := ScanTransactions(dir)
		if err != nil {
			t.Fatalf("err = %v", err)
		}
		if len(txns) != 0 {
			t.Fatalf("txns = %+v, wanted none", txns)
		}
	})

	t.Run("no double tag within reach", func(t *testing.T) {
		data := append([]byte{}, patAmount...)
		data = append(data, make([]byte, 40)...)
		if _, ok := extractDouble(data, len(patAmount)); ok {
			t.Fatalf("ok = true, wanted false")
		}
	})

	t.Run("implausible magnitude rejected", func(t *testing.T) {
		var data []byte
		data = append(data, tagDouble)
		data = binary.LittleEndian.AppendUint64(data, math.Float64bits(123456789012.0))
		if _, ok := extractDouble(data, 0); ok {
			t.Fatalf("ok = true for an implausible amount")
		}
	})

	t.Run("rounded to cents", func(t *testing.T) {
		var data []byte
		data = append(data, tagDouble)
		data = binary.LittleEndian.AppendUint64(data, math.Float64bits(10.12999999))
		v, ok := extractDouble(data, 0)
		if !ok || v != 10.13 {
			t.Fatalf("extractDouble = (%v, %v), wanted (10.13, true)", v, ok)
		}
	})
}

func TestScanTransactions_RequiredFields(t *testing.T) {
	dir := t.TempDir()
	// amount present but no transaction_id: candidate dropped
	var data []byte
	data = rawDouble(data, "amount", 12.50)
	data = rawField(data, "name", "No ID Store")
	data = rawField(data, "original_name", "NO ID STORE")
	data = rawField(data, "original_date", "2026-08-01")
	writeSegment(t, dir, "000001.ldb", data)

	txns, err := ScanTransactions(dir)
	if err != nil {
		t.Fatalf("err = %v", err)
	}
	if len(txns) != 0 {
		t.Fatalf("txns = %+v, wanted none", txns)
	}
}

func TestScanTransactions_Dedup(t *testing.T) {
	dir := t.TempDir()
	rec := rawTransaction("txn_1", "Blue Bottle", "2026-08-01", 19.99)
	var data []byte
	data = append(data, rec...)
	data = append(data, make([]byte, txnWindow*2)...) // far enough apart for two anchors
	data = append(data, rec...)
	writeSegment(t, dir, "000001.ldb", data)

	txns, err := ScanTransactions(dir)
	if err != nil {
		t.Fatalf("err = %v", err)
	}
	if len(txns) != 1 {
		t.Fatalf("len(txns) = %d, wanted 1 after dedup", len(txns))
	}
}

func TestScanAccounts(t *testing.T) {
	dir := t.TempDir()
	var data []byte
	data = append(data, "/accounts/ somewhere in the file"...)
	data = rawDouble(data, "current_balance", 1234.56)
	data = rawField(data, "name", "Checking")
	data = rawField(data, "official_name", "Premier Checking")
	data = rawField(data, "type", "depository")
	data = rawField(data, "subtype", "checking")
	data = rawField(data, "mask", "4821")
	data = rawField(data, "institution_name", "Big Bank")
	data = rawField(data, "account_id", "acct_1")
	writeSegment(t, dir, "000010.ldb", data)

	accounts, err := ScanAccounts(dir)
	if err != nil {
		t.Fatalf("ScanAccounts err = %v", err)
	}
	if len(accounts) != 1 {
		t.Fatalf("len(accounts) = %d, wanted 1", len(accounts))
	}
	a := accounts[0]
	if a.AccountID != "acct_1" || a.CurrentBalance != 1234.56 || a.Mask != "4821" {
		t.Fatalf("account = %+v", a)
	}
	if a.DisplayName() != "Checking" {
		t.Fatalf("DisplayName = %q", a.DisplayName())
	}
}

func TestScanAccounts_RequiresIDAndName(t *testing.T) {
	dir := t.TempDir()
	var data []byte
	data = append(data, "/accounts/"...)
	data = rawDouble(data, "current_balance", 10)
	data = rawField(data, "mask", "0000")
	writeSegment(t, dir, "000010.ldb", data)

	accounts, err := ScanAccounts(dir)
	if err != nil {
		t.Fatalf("err = %v", err)
	}
	if len(accounts) != 0 {
		t.Fatalf("accounts = %+v, wanted none", accounts)
	}
}

func TestScan_BadPath(t *testing.T) {
	if _, err := ScanTransactions(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatalf("ScanTransactions err = nil for missing path")
	}
	if _, err := ScanAccounts(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatalf("ScanAccounts err = nil for missing path")
	}
}
