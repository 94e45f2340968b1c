package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"model-serving-adapters/internal/adapters/secondary/postgres"
	"model-serving-adapters/internal/config"
	ports "model-serving-adapters/internal/core/ports/output"
	"model-serving-adapters/internal/logging"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		log.WithError(err).Error("command failed")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cobra.EnableCommandSorting = false

	rootCmd := &cobra.Command{
		Use:           "model-serving-adapters",
		Short:         "Serve, forward to and fit text and clustering models",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.AddCommand(
		newServeCmd(),
		newForwardCmd(),
		newFitCmd(),
		newRunsCmd(),
	)
	return rootCmd
}

// setup loads configuration for a command and initializes logging.
func setup(flags *pflag.FlagSet) (*config.Config, io.Closer, error) {
	cfg, err := config.Load(flags)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, logging.Init(cfg.Logger), nil
}

// openRunStore connects the training run ledger. A nil repository with a nil
// error means the ledger is disabled.
func openRunStore(ctx context.Context, cfg config.DatabaseConfig) (ports.TrainingRunRepository, func(), error) {
	if !cfg.Enabled {
		return nil, func() {}, nil
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, nil, fmt.Errorf("parse db config: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.MaxOpenConns)
	poolCfg.MinConns = int32(cfg.MaxIdleConns)
	poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("create db pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping db: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, err
	}
	log.Info("database connection established")

	return postgres.NewTrainingRunRepository(pool), pool.Close, nil
}
