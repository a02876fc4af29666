package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"carfixer/backend/internal/auth"
)

// NewHashPasswordCommand creates the hash-password command.
func NewHashPasswordCommand(_ *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hash-password <password|->",
		Short: "Print a bcrypt hash for admin.password_hash",
		Long: `Print a bcrypt hash suitable for CARFIXER_ADMIN_PASSWORD_HASH.

Pass "-" to read the password from the first line of stdin so it stays out of
shell history.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := readPassword(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			hash, err := auth.HashPassword(pw)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), hash)
			return err
		},
	}
	return cmd
}

func readPassword(arg string, stdin io.Reader) (string, error) {
	pw := arg
	if arg == "-" {
		line, err := bufio.NewReader(stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		pw = strings.TrimRight(line, "\r\n")
	}
	if pw == "" {
		return "", errors.New("password must not be empty")
	}
	return pw, nil
}
