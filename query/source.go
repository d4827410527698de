package query

import (
	copilotdb "github.com/ignaciohermosillacornejo/copilot-money-mcp-sub003"
	"github.com/ignaciohermosillacornejo/copilot-money-mcp-sub003/money"
)

// Source yields the decoded contents of a store. The two implementations
// (document parsing and raw scanning) are interchangeable; everything
// downstream only sees validated, deduplicated, date-sorted models.
type Source interface {
	Transactions(dbPath string) ([]money.Transaction, error)
	Accounts(dbPath string) ([]money.Account, error)
}

// DocumentSource decodes documents through the structured parser and an
// Accessor's shared temp-copy cache. This is the principled path; use
// ScanSource when the structured keys cannot be trusted.
type DocumentSource struct {
	Accessor *copilotdb.Accessor
}

func NewDocumentSource(a *copilotdb.Accessor) *DocumentSource {
	return &DocumentSource{Accessor: a}
}

func (s *DocumentSource) Transactions(dbPath string) ([]money.Transaction, error) {
	docs, err := s.Accessor.CollectDocuments(dbPath, copilotdb.IterOptions{Collection: "transactions"})
	if err != nil {
		return nil, err
	}
	var txns []money.Transaction
	for _, d := range docs {
		txn := money.TransactionFromFields(d.FieldsInterface())
		if txn.Validate() != nil {
			continue // fail-soft: drop candidates that don't hold up
		}
		txns = append(txns, txn)
	}
	txns = money.DedupTransactions(txns)
	money.SortTransactionsByDateDesc(txns)
	return txns, nil
}

func (s *DocumentSource) Accounts(dbPath string) ([]money.Account, error) {
	docs, err := s.Accessor.CollectDocuments(dbPath, copilotdb.IterOptions{Collection: "accounts"})
	if err != nil {
		return nil, err
	}
	var accounts []money.Account
	for _, d := range docs {
		acc := money.AccountFromFields(d.FieldsInterface())
		if acc.Validate() != nil {
			continue
		}
		accounts = append(accounts, acc)
	}
	return money.DedupAccounts(accounts), nil
}

// ScanSource decodes by scanning raw segment files for byte patterns.
// Results are already validated, deduplicated and sorted by the scanner.
type ScanSource struct{}

func (ScanSource) Transactions(dbPath string) ([]money.Transaction, error) {
	return copilotdb.ScanTransactions(dbPath)
}

func (ScanSource) Accounts(dbPath string) ([]money.Account, error) {
	return copilotdb.ScanAccounts(dbPath)
}
