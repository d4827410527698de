// Package server exposes the query layer over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ignaciohermosillacornejo/copilot-money-mcp-sub003/money"
	"github.com/ignaciohermosillacornejo/copilot-money-mcp-sub003/query"
)

const (
	defaultListLimit   = 100
	defaultSearchLimit = 50
)

// Server answers report queries against a single configured store path.
type Server struct {
	db     *query.Database
	dbPath string
	logger *slog.Logger
}

func New(db *query.Database, dbPath string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{db: db, dbPath: dbPath, logger: logger}
}

// Handler builds the HTTP routing tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/transactions", s.handleTransactions)
		r.Get("/transactions/search", s.handleSearch)
		r.Get("/accounts", s.handleAccounts)
		r.Get("/accounts/{id}/balance", s.handleAccountBalance)
		r.Get("/categories", s.handleCategories)
		r.Get("/spending", s.handleSpending)
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	available := false
	if st, err := os.Stat(s.dbPath); err == nil && st.IsDir() {
		segments, _ := filepath.Glob(filepath.Join(s.dbPath, "*.ldb"))
		available = len(segments) > 0
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"db_path":   s.dbPath,
		"available": available,
	})
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	f, err := filterFromQuery(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if f.Limit <= 0 {
		f.Limit = defaultListLimit
	}
	txns, err := s.db.Transactions(s.dbPath, f)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"count":        len(txns),
		"transactions": nonNilTxns(txns),
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		s.writeError(w, http.StatusBadRequest, errors.New("missing q parameter"))
		return
	}
	limit, err := intParam(r, "limit", defaultSearchLimit)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	txns, err := s.db.Search(s.dbPath, q, limit)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"count":        len(txns),
		"transactions": nonNilTxns(txns),
	})
}

func (s *Server) handleAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.db.Accounts(s.dbPath, r.URL.Query().Get("type"))
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	total := 0.0
	for _, acc := range accounts {
		total += acc.CurrentBalance
	}
	if accounts == nil {
		accounts = []money.Account{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"count":         len(accounts),
		"total_balance": total,
		"accounts":      accounts,
	})
}

func (s *Server) handleAccountBalance(w http.ResponseWriter, r *http.Request) {
	acc, err := s.db.AccountBalance(s.dbPath, chi.URLParam(r, "id"))
	if errors.Is(err, query.ErrAccountNotFound) {
		s.writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"account_id":       acc.AccountID,
		"name":             acc.DisplayName(),
		"account_type":     acc.AccountType,
		"current_balance":  acc.CurrentBalance,
		"mask":             acc.Mask,
		"institution_name": acc.InstitutionName,
	})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.db.Categories(s.dbPath)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if categories == nil {
		categories = []money.Category{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"count":      len(categories),
		"categories": categories,
	})
}

func (s *Server) handleSpending(w http.ResponseWriter, r *http.Request) {
	f, err := filterFromQuery(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	report, err := s.db.SpendingByCategory(s.dbPath, f)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if report.Categories == nil {
		report.Categories = []query.CategorySpending{}
	}
	s.writeJSON(w, http.StatusOK, report)
}

// filterFromQuery reads the shared listing parameters. A period shorthand
// expands into the start/end dates, overriding explicit ones.
func filterFromQuery(r *http.Request) (query.Filter, error) {
	q := r.URL.Query()
	f := query.Filter{
		Start:     q.Get("start_date"),
		End:       q.Get("end_date"),
		Category:  q.Get("category"),
		Merchant:  q.Get("merchant"),
		AccountID: q.Get("account_id"),
	}
	if period := q.Get("period"); period != "" {
		start, end, err := query.ParsePeriod(period)
		if err != nil {
			return query.Filter{}, err
		}
		f.Start, f.End = start, end
	}
	var err error
	if f.MinAmount, err = floatParam(r, "min_amount"); err != nil {
		return query.Filter{}, err
	}
	if f.MaxAmount, err = floatParam(r, "max_amount"); err != nil {
		return query.Filter{}, err
	}
	if f.Limit, err = intParam(r, "limit", 0); err != nil {
		return query.Filter{}, err
	}
	return f, nil
}

func floatParam(r *http.Request, name string) (*float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, errors.New("invalid " + name + " parameter")
	}
	return &v, nil
}

func intParam(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, errors.New("invalid " + name + " parameter")
	}
	return v, nil
}

func nonNilTxns(txns []money.Transaction) []money.Transaction {
	if txns == nil {
		return []money.Transaction{}
	}
	return txns
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("writing response", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, map[string]any{"error": err.Error()})
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("request failed", "path", r.URL.Path, "err", err)
	s.writeError(w, http.StatusInternalServerError, err)
}
