// copilot-lens browses the contents of a Copilot Money on-disk store.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	copilotdb "github.com/ignaciohermosillacornejo/copilot-money-mcp-sub003"
	"github.com/ignaciohermosillacornejo/copilot-money-mcp-sub003/internal/config"
	"github.com/ignaciohermosillacornejo/copilot-money-mcp-sub003/query"
)

var command = &cobra.Command{
	Use:           "copilot-lens",
	Short:         "Copilot Money Store Lens",
	Long:          `copilot-lens decodes and queries the local document store of the Copilot Money app.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	flagDBPath   string
	flagDecoder  string
	flagLogLevel string
)

func init() {
	command.SetOut(os.Stdout)
	pf := command.PersistentFlags()
	pf.StringVar(&flagDBPath, "db", "", "Store directory (default: the Copilot Money app location)")
	pf.StringVar(&flagDecoder, "decoder", "", "Decode path: document or rawscan")
	pf.StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	command.AddCommand(
		serveCMD,
		transactionsCMD,
		accountsCMD,
		categoriesCMD,
		dumpCMD,
	)
}

// env bundles the components a command needs, resolved from configuration
// with flag overrides applied.
type env struct {
	cfg      config.Config
	logger   *slog.Logger
	accessor *copilotdb.Accessor
	db       *query.Database
}

func newEnv() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if flagDBPath != "" {
		cfg.DBPath = flagDBPath
	}
	if flagDecoder != "" {
		cfg.Decoder = flagDecoder
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}
	switch cfg.Decoder {
	case config.DecoderDocument, config.DecoderRawScan:
	default:
		return nil, fmt.Errorf("unknown decoder %q", cfg.Decoder)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	accessor := copilotdb.NewAccessor(copilotdb.AccessorOptions{
		TempRoot: cfg.TempRoot,
		CopyTTL:  cfg.CopyTTL,
		Logger:   logger,
	})

	var source query.Source
	if cfg.Decoder == config.DecoderRawScan {
		source = query.ScanSource{}
	} else {
		source = query.NewDocumentSource(accessor)
	}
	return &env{
		cfg:      cfg,
		logger:   logger,
		accessor: accessor,
		db:       query.NewDatabase(source, query.Options{CacheTTL: cfg.CacheTTL, Logger: logger}),
	}, nil
}

func (e *env) close() {
	e.accessor.Close()
}

func main() {
	if err := command.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
