package cli

import (
	"fmt"

	"quiz-grading-service/internal/auth"

	"github.com/spf13/cobra"
)

// NewHashPasswordCmd prints a bcrypt hash for auth.admin_password_hash.
func NewHashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print a bcrypt hash for the admin password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := auth.HashPassword(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), hash)
			return err
		},
	}
}
