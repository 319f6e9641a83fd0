package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"chargesim/backend/libs/password"
)

func newHashTokenCmd() *cobra.Command {
	var cost int

	cmd := &cobra.Command{
		Use:   "hash-token <token>",
		Short: "Print a bcrypt hash suitable for auth.tokenHash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token := strings.TrimSpace(args[0])
			if token == "" {
				return errors.New("token must not be empty")
			}
			hash, err := password.NewBcryptHasher(cost).Hash(token)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), hash)
			return err
		},
	}
	cmd.Flags().IntVar(&cost, "cost", 0, "bcrypt cost (0 uses the library default)")
	return cmd
}
