package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/uptrace/bun"

	"carfixer/backend/internal/config"
	"carfixer/backend/internal/store/postgres"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	DatabaseURL string
	Timeout     time.Duration

	openDB func(databaseURL string) (*bun.DB, error)
}

// NewRootCommand creates the root command for the operator CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{
		openDB: func(databaseURL string) (*bun.DB, error) {
			return postgres.Open(databaseURL, postgres.PoolConfig{MaxOpenConns: 2})
		},
	}

	cmd := &cobra.Command{
		Use:   "carfixer-admin",
		Short: "Operator tasks for the CarFixer booking service",
		Long:  "Apply database migrations, manage admin accounts and seed the mechanic roster.",
	}

	cmd.PersistentFlags().StringVar(&opts.DatabaseURL, "database-url", "", "postgres URL (defaults to CARFIXER_DATABASE_URL)")
	cmd.PersistentFlags().DurationVar(&opts.Timeout, "timeout", 30*time.Second, "overall timeout for database work")

	cmd.AddCommand(NewHashPasswordCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewCreateAdminCommand(opts))
	cmd.AddCommand(NewSeedMechanicsCommand(opts))

	return cmd
}

// withDB opens the database named by the flag or the service configuration
// and hands it to fn under the command timeout.
func (o *RootOptions) withDB(cmd *cobra.Command, fn func(ctx context.Context, db *bun.DB) error) error {
	url := o.DatabaseURL
	if url == "" {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		url = cfg.DatabaseURL
	}

	db, err := o.openDB(url)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() { _ = postgres.Close(db) }()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if o.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.Timeout)
		defer cancel()
	}
	return fn(ctx, db)
}
