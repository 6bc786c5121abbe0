package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ridwanfathin/invoice-service/internal/auth"
)

var tokenCmd = &cobra.Command{
	Use:   "token [user-id]",
	Short: "Issue an access token for local testing",
	Long: `Issue an HS256 access token signed with JWT_SECRET. Production tokens come
from the authentication service; this command exists for development and tests.`,
	Example: `  invoice-service token user-123 --email dev@example.com --ttl 2h`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		email, _ := cmd.Flags().GetString("email")
		ttl, _ := cmd.Flags().GetDuration("ttl")
		if ttl <= 0 {
			ttl = cfg.JWTExpiration
		}

		token, expiresAt, err := auth.NewTokenManager(cfg.JWTSecret, ttl, nil).IssueAccessToken(args[0], email)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), token)
		fmt.Fprintf(cmd.ErrOrStderr(), "expires at %s\n", expiresAt.Format(time.RFC3339))
		return nil
	},
}

func init() {
	tokenCmd.Flags().String("email", "", "Email claim")
	tokenCmd.Flags().Duration("ttl", 0, "Token lifetime (defaults to JWT_EXPIRATION_HOURS)")
}
