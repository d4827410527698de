// Package bootstrap assembles the application graph: configuration, logger,
// store accessor, decode source, query database and HTTP server.
package bootstrap

import (
	"log/slog"
	"net/http"
	"os"

	"go.uber.org/dig"

	copilotdb "github.com/ignaciohermosillacornejo/copilot-money-mcp-sub003"
	"github.com/ignaciohermosillacornejo/copilot-money-mcp-sub003/internal/config"
	"github.com/ignaciohermosillacornejo/copilot-money-mcp-sub003/internal/server"
	"github.com/ignaciohermosillacornejo/copilot-money-mcp-sub003/query"
)

// BuildContainer provides every application component. Callers Invoke with
// whatever subset they need.
func BuildContainer() (*dig.Container, error) {
	container := dig.New()
	constructors := []any{
		config.Load,
		newLogger,
		newAccessor,
		newSource,
		newDatabase,
		newServer,
	}
	for _, c := range constructors {
		if err := container.Provide(c); err != nil {
			return nil, err
		}
	}
	return container, nil
}

// Serve runs the HTTP server until the listener fails.
func Serve() error {
	container, err := BuildContainer()
	if err != nil {
		return err
	}
	return container.Invoke(func(cfg config.Config, s *server.Server, logger *slog.Logger) error {
		logger.Info("listening", "addr", cfg.ListenAddr, "db_path", cfg.DBPath, "decoder", cfg.Decoder)
		return http.ListenAndServe(cfg.ListenAddr, s.Handler())
	})
}

func newLogger(cfg config.Config) (*slog.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})), nil
}

func newAccessor(cfg config.Config, logger *slog.Logger) *copilotdb.Accessor {
	return copilotdb.NewAccessor(copilotdb.AccessorOptions{
		TempRoot: cfg.TempRoot,
		CopyTTL:  cfg.CopyTTL,
		Logger:   logger,
	})
}

func newSource(cfg config.Config, accessor *copilotdb.Accessor) query.Source {
	if cfg.Decoder == config.DecoderRawScan {
		return query.ScanSource{}
	}
	return query.NewDocumentSource(accessor)
}

func newDatabase(cfg config.Config, source query.Source, logger *slog.Logger) *query.Database {
	return query.NewDatabase(source, query.Options{
		CacheTTL: cfg.CacheTTL,
		Logger:   logger,
	})
}

func newServer(cfg config.Config, db *query.Database, logger *slog.Logger) *server.Server {
	return server.New(db, cfg.DBPath, logger)
}
