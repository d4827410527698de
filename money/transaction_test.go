package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransaction_DisplayName(t *testing.T) {
	assert.Equal(t, "Blue Bottle", Transaction{Name: "Blue Bottle", OriginalName: "BLUE BOTTLE COFFEE"}.DisplayName())
	assert.Equal(t, "BLUE BOTTLE COFFEE", Transaction{OriginalName: "BLUE BOTTLE COFFEE"}.DisplayName())
	assert.Equal(t, "Unknown", Transaction{}.DisplayName())
}

func TestTransaction_Validate(t *testing.T) {
	valid := Transaction{TransactionID: "t1", Amount: 19.99, Date: "2026-08-01"}
	require.NoError(t, valid.Validate())

	cases := map[string]Transaction{
		"missing id":     {Amount: 1, Date: "2026-08-01"},
		"bad date":       {TransactionID: "t1", Amount: 1, Date: "Aug 1, 2026"},
		"empty date":     {TransactionID: "t1", Amount: 1},
		"amount too big": {TransactionID: "t1", Amount: 20_000_000, Date: "2026-08-01"},
		"amount too low": {TransactionID: "t1", Amount: -20_000_000, Date: "2026-08-01"},
	}
	for name, txn := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, txn.Validate())
		})
	}
}

func TestDedupTransactions(t *testing.T) {
	a := Transaction{TransactionID: "t1", Name: "Coffee", Amount: 4.50, Date: "2026-08-01"}
	b := a
	b.TransactionID = "t1-duplicate" // same name/amount/date: still a duplicate
	c := Transaction{TransactionID: "t2", Name: "Coffee", Amount: 4.50, Date: "2026-08-02"}

	got := DedupTransactions([]Transaction{a, b, c})
	require.Len(t, got, 2)
	assert.Equal(t, "t1", got[0].TransactionID) // first occurrence kept
	assert.Equal(t, "t2", got[1].TransactionID)
}

func TestSortTransactionsByDateDesc(t *testing.T) {
	txns := []Transaction{
		{TransactionID: "a", Date: "2026-07-15"},
		{TransactionID: "b", Date: "2026-08-20"},
		{TransactionID: "c", Date: "2026-08-01"},
	}
	SortTransactionsByDateDesc(txns)
	assert.Equal(t, []string{"b", "c", "a"},
		[]string{txns[0].TransactionID, txns[1].TransactionID, txns[2].TransactionID})
}

func TestAccount_ValidateAndDedup(t *testing.T) {
	valid := Account{AccountID: "a1", Name: "Checking", CurrentBalance: 100}
	require.NoError(t, valid.Validate())

	assert.Error(t, Account{Name: "Checking"}.Validate())
	assert.Error(t, Account{AccountID: "a1"}.Validate())
	assert.Error(t, Account{AccountID: "a1", Name: "x", CurrentBalance: 99_999_999}.Validate())

	dup := valid
	dup.AccountID = "a1-other-segment"
	other := Account{AccountID: "a2", Name: "Savings", Mask: "1234", CurrentBalance: 5}
	got := DedupAccounts([]Account{valid, dup, other})
	require.Len(t, got, 2)
	assert.Equal(t, "a1", got[0].AccountID)
}
