package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/uptrace/bun"

	"carfixer/backend/internal/store/postgres"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "migrate",
		Short:        "Apply the embedded schema migrations",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withDB(cmd, func(ctx context.Context, db *bun.DB) error {
				if err := postgres.Migrate(ctx, db); err != nil {
					return err
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
				return err
			})
		},
	}
}
