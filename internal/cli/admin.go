package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/uptrace/bun"

	"carfixer/backend/internal/auth"
	"carfixer/backend/internal/domain"
	"carfixer/backend/internal/store/postgres"
)

type createAdminOptions struct {
	Username string
	Password string
}

type adminCreator interface {
	Create(ctx context.Context, username, passwordHash string) (domain.Admin, error)
}

// NewCreateAdminCommand creates the create-admin command.
func NewCreateAdminCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &createAdminOptions{}

	cmd := &cobra.Command{
		Use:          "create-admin",
		Short:        "Add an admin account to the admins table",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.validate(); err != nil {
				return err
			}
			return rootOpts.withDB(cmd, func(ctx context.Context, db *bun.DB) error {
				return createAdmin(ctx, postgres.NewAdminRepo(db), *opts, cmd.OutOrStdout())
			})
		},
	}

	cmd.Flags().StringVar(&opts.Username, "username", "", "admin username")
	cmd.Flags().StringVar(&opts.Password, "password", "", "admin password")

	return cmd
}

func (o *createAdminOptions) validate() error {
	o.Username = strings.TrimSpace(o.Username)
	if o.Username == "" || o.Password == "" {
		return errors.New("--username and --password are required")
	}
	return nil
}

func createAdmin(ctx context.Context, repo adminCreator, opts createAdminOptions, out io.Writer) error {
	hash, err := auth.HashPassword(opts.Password)
	if err != nil {
		return err
	}
	admin, err := repo.Create(ctx, opts.Username, hash)
	if err != nil {
		if errors.Is(err, postgres.ErrAdminExists) {
			return fmt.Errorf("admin %q already exists", opts.Username)
		}
		return err
	}
	_, err = fmt.Fprintf(out, "created admin %s (id %d)\n", admin.Username, admin.ID)
	return err
}
