// Package query answers report-style questions about a decoded store:
// filtered transaction lists, free-text search, account balances and
// per-category spending. Decoded results are memoized per store path for a
// short TTL so a burst of queries does not re-copy and re-decode the store.
package query

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/ignaciohermosillacornejo/copilot-money-mcp-sub003/money"
)

// ErrAccountNotFound reports an AccountBalance miss.
var ErrAccountNotFound = errors.New("account not found")

const (
	// DefaultCacheTTL bounds how stale a memoized decode may get. Each
	// read past the TTL takes a fresh snapshot of the store.
	DefaultCacheTTL  = time.Minute
	defaultCacheSize = 8
)

// Filter narrows a transaction listing. Zero values mean "no constraint".
type Filter struct {
	Start     string // date >= Start (YYYY-MM-DD)
	End       string // date <= End
	Category  string // case-insensitive substring of the category id
	Merchant  string // case-insensitive substring of the display name
	AccountID string // exact match
	MinAmount *float64
	MaxAmount *float64
	Limit     int // 0 means unlimited
}

// Options configures a Database. The zero value is usable.
type Options struct {
	CacheTTL  time.Duration
	CacheSize int
	Logger    *slog.Logger
}

// Database wraps a Source with filtering, search and aggregation.
type Database struct {
	source Source
	logger *slog.Logger

	txns     *expirable.LRU[string, []money.Transaction]
	accounts *expirable.LRU[string, []money.Account]
}

func NewDatabase(source Source, o Options) *Database {
	ttl := o.CacheTTL
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	size := o.CacheSize
	if size <= 0 {
		size = defaultCacheSize
	}
	logger := o.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Database{
		source:   source,
		logger:   logger,
		txns:     expirable.NewLRU[string, []money.Transaction](size, nil, ttl),
		accounts: expirable.NewLRU[string, []money.Account](size, nil, ttl),
	}
}

func (db *Database) loadTransactions(dbPath string) ([]money.Transaction, error) {
	if cached, ok := db.txns.Get(dbPath); ok {
		return cached, nil
	}
	start := time.Now()
	txns, err := db.source.Transactions(dbPath)
	if err != nil {
		return nil, err
	}
	db.logger.Debug("decoded transactions", "path", dbPath, "count", len(txns), "elapsed", time.Since(start))
	db.txns.Add(dbPath, txns)
	return txns, nil
}

func (db *Database) loadAccounts(dbPath string) ([]money.Account, error) {
	if cached, ok := db.accounts.Get(dbPath); ok {
		return cached, nil
	}
	accounts, err := db.source.Accounts(dbPath)
	if err != nil {
		return nil, err
	}
	db.accounts.Add(dbPath, accounts)
	return accounts, nil
}

// Transactions lists transactions matching f, newest first.
func (db *Database) Transactions(dbPath string, f Filter) ([]money.Transaction, error) {
	all, err := db.loadTransactions(dbPath)
	if err != nil {
		return nil, err
	}

	result := make([]money.Transaction, 0, len(all))
	for _, txn := range all {
		if !matchesFilter(txn, f) {
			continue
		}
		result = append(result, txn)
		if f.Limit > 0 && len(result) >= f.Limit {
			break
		}
	}
	return result, nil
}

func matchesFilter(txn money.Transaction, f Filter) bool {
	if f.Start != "" && txn.Date < f.Start {
		return false
	}
	if f.End != "" && txn.Date > f.End {
		return false
	}
	if f.Category != "" {
		if txn.CategoryID == "" || !containsFold(txn.CategoryID, f.Category) {
			return false
		}
	}
	if f.Merchant != "" && !containsFold(txn.DisplayName(), f.Merchant) {
		return false
	}
	if f.AccountID != "" && txn.AccountID != f.AccountID {
		return false
	}
	if f.MinAmount != nil && txn.Amount < *f.MinAmount {
		return false
	}
	if f.MaxAmount != nil && txn.Amount > *f.MaxAmount {
		return false
	}
	return true
}

// Search lists transactions whose display name contains query,
// case-insensitively, newest first.
func (db *Database) Search(dbPath, query string, limit int) ([]money.Transaction, error) {
	return db.Transactions(dbPath, Filter{Merchant: query, Limit: limit})
}

// Accounts lists accounts, optionally narrowed to those whose type contains
// accountType case-insensitively (checking, savings, credit, investment).
func (db *Database) Accounts(dbPath, accountType string) ([]money.Account, error) {
	all, err := db.loadAccounts(dbPath)
	if err != nil {
		return nil, err
	}
	if accountType == "" {
		return all, nil
	}
	result := make([]money.Account, 0, len(all))
	for _, acc := range all {
		if acc.AccountType != "" && containsFold(acc.AccountType, accountType) {
			result = append(result, acc)
		}
	}
	return result, nil
}

// AccountBalance looks up a single account by id.
func (db *Database) AccountBalance(dbPath, accountID string) (money.Account, error) {
	accounts, err := db.loadAccounts(dbPath)
	if err != nil {
		return money.Account{}, err
	}
	for _, acc := range accounts {
		if acc.AccountID == accountID {
			return acc, nil
		}
	}
	return money.Account{}, fmt.Errorf("%w: %s", ErrAccountNotFound, accountID)
}

// Categories lists the distinct categories seen across all transactions, in
// first-seen order. The store keeps no category collection of its own, so
// the id doubles as the name.
func (db *Database) Categories(dbPath string) ([]money.Category, error) {
	txns, err := db.loadTransactions(dbPath)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var categories []money.Category
	for _, txn := range txns {
		if txn.CategoryID == "" || seen[txn.CategoryID] {
			continue
		}
		seen[txn.CategoryID] = true
		categories = append(categories, money.Category{CategoryID: txn.CategoryID, Name: txn.CategoryID})
	}
	return categories, nil
}

// CategorySpending is one row of a spending report.
type CategorySpending struct {
	Category         string  `json:"category"`
	TotalSpending    float64 `json:"total_spending"`
	TransactionCount int     `json:"transaction_count"`
}

// SpendingReport aggregates expenses per category over a date range.
type SpendingReport struct {
	Start         string             `json:"start_date"`
	End           string             `json:"end_date"`
	TotalSpending float64            `json:"total_spending"`
	CategoryCount int                `json:"category_count"`
	Categories    []CategorySpending `json:"categories"`
}

// SpendingByCategory sums positive amounts (expenses) per category across
// transactions matching f, sorted by total descending. The filter's Limit is
// ignored; an aggregation wants every matching row.
func (db *Database) SpendingByCategory(dbPath string, f Filter) (SpendingReport, error) {
	f.Limit = 0
	txns, err := db.Transactions(dbPath, f)
	if err != nil {
		return SpendingReport{}, err
	}

	totals := make(map[string]float64)
	counts := make(map[string]int)
	for _, txn := range txns {
		if txn.Amount <= 0 {
			continue // refunds and income don't count as spending
		}
		cat := txn.CategoryID
		if cat == "" {
			cat = "Uncategorized"
		}
		totals[cat] += txn.Amount
		counts[cat]++
	}

	report := SpendingReport{Start: f.Start, End: f.End}
	for cat, total := range totals {
		rounded := roundCents(total)
		report.Categories = append(report.Categories, CategorySpending{
			Category:         cat,
			TotalSpending:    rounded,
			TransactionCount: counts[cat],
		})
		report.TotalSpending += rounded
	}
	report.TotalSpending = roundCents(report.TotalSpending)
	report.CategoryCount = len(report.Categories)
	sort.Slice(report.Categories, func(i, j int) bool {
		a, b := report.Categories[i], report.Categories[j]
		if a.TotalSpending != b.TotalSpending {
			return a.TotalSpending > b.TotalSpending
		}
		return a.Category < b.Category
	})
	return report, nil
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
