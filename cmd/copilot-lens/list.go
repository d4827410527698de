package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/ignaciohermosillacornejo/copilot-money-mcp-sub003/query"
)

var (
	flagPeriod    string
	flagStart     string
	flagEnd       string
	flagCategory  string
	flagMerchant  string
	flagAccountID string
	flagMin       float64
	flagMax       float64
	flagLimit     int
	flagType      string
)

var transactionsCMD = &cobra.Command{
	Use:   "transactions",
	Short: "List transactions",
	Long:  `List decoded transactions, newest first, with optional filters.`,
	Args:  cobra.NoArgs,
	RunE:  transactionsFunc,
}

var accountsCMD = &cobra.Command{
	Use:   "accounts",
	Short: "List accounts with balances",
	Args:  cobra.NoArgs,
	RunE:  accountsFunc,
}

var categoriesCMD = &cobra.Command{
	Use:   "categories",
	Short: "List the categories seen across transactions",
	Args:  cobra.NoArgs,
	RunE:  categoriesFunc,
}

func init() {
	f := transactionsCMD.Flags()
	f.StringVar(&flagPeriod, "period", "", "Period shorthand (this_month, last_30_days, ytd, ...)")
	f.StringVar(&flagStart, "start", "", "Date >= this (YYYY-MM-DD)")
	f.StringVar(&flagEnd, "end", "", "Date <= this (YYYY-MM-DD)")
	f.StringVar(&flagCategory, "category", "", "Category substring (case-insensitive)")
	f.StringVar(&flagMerchant, "merchant", "", "Merchant name substring (case-insensitive)")
	f.StringVar(&flagAccountID, "account", "", "Account id (exact)")
	f.Float64Var(&flagMin, "min", 0, "Amount >= this")
	f.Float64Var(&flagMax, "max", 0, "Amount <= this")
	f.IntVar(&flagLimit, "limit", 100, "Maximum results, 0 for all")

	accountsCMD.Flags().StringVar(&flagType, "type", "", "Account type substring (checking, savings, credit, ...)")
}

func listFilter(cmd *cobra.Command) (query.Filter, error) {
	f := query.Filter{
		Start:     flagStart,
		End:       flagEnd,
		Category:  flagCategory,
		Merchant:  flagMerchant,
		AccountID: flagAccountID,
		Limit:     flagLimit,
	}
	if flagPeriod != "" {
		start, end, err := query.ParsePeriod(flagPeriod)
		if err != nil {
			return query.Filter{}, err
		}
		f.Start, f.End = start, end
	}
	if cmd.Flags().Changed("min") {
		v := flagMin
		f.MinAmount = &v
	}
	if cmd.Flags().Changed("max") {
		v := flagMax
		f.MaxAmount = &v
	}
	return f, nil
}

func transactionsFunc(cmd *cobra.Command, _ []string) error {
	f, err := listFilter(cmd)
	if err != nil {
		return err
	}
	e, err := newEnv()
	if err != nil {
		return err
	}
	defer e.close()

	txns, err := e.db.Transactions(e.cfg.DBPath, f)
	if err != nil {
		return err
	}
	return printJSON(cmd, map[string]any{"count": len(txns), "transactions": txns})
}

func accountsFunc(cmd *cobra.Command, _ []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}
	defer e.close()

	accounts, err := e.db.Accounts(e.cfg.DBPath, flagType)
	if err != nil {
		return err
	}
	total := 0.0
	for _, acc := range accounts {
		total += acc.CurrentBalance
	}
	return printJSON(cmd, map[string]any{
		"count":         len(accounts),
		"total_balance": total,
		"accounts":      accounts,
	})
}

func categoriesFunc(cmd *cobra.Command, _ []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}
	defer e.close()

	categories, err := e.db.Categories(e.cfg.DBPath)
	if err != nil {
		return err
	}
	for _, c := range categories {
		cmd.Println(c.CategoryID)
	}
	return nil
}

func printJSON(cmd *cobra.Command, payload any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}
