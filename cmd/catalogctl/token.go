package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/heartmarshall/eduprompt-backend/internal/auth"
	"github.com/heartmarshall/eduprompt-backend/internal/domain"
)

var (
	tokenUser string
	tokenRole string
	tokenTTL  time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage access tokens",
}

var tokenIssueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Print a signed access token",
	Long: `Signs an access token with the configured secret, for scripts and
operators calling the admin API:

  catalogctl token issue --user 3f1c... --role admin --ttl 1h`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		userID, err := uuid.Parse(tokenUser)
		if err != nil {
			return fmt.Errorf("--user must be a UUID: %w", err)
		}
		role := domain.UserRole(tokenRole)
		if !role.IsValid() {
			return fmt.Errorf("--role must be %q or %q", domain.UserRoleUser, domain.UserRoleAdmin)
		}

		tm := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL)
		token, err := tm.Issue(userID, role, tokenTTL)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenIssueCmd.Flags().StringVar(&tokenUser, "user", "", "user id (UUID)")
	tokenIssueCmd.Flags().StringVar(&tokenRole, "role", string(domain.UserRoleUser), "user or admin")
	tokenIssueCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "token lifetime (default auth.access_token_ttl)")
	_ = tokenIssueCmd.MarkFlagRequired("user")

	tokenCmd.AddCommand(tokenIssueCmd)
	rootCmd.AddCommand(tokenCmd)
}
