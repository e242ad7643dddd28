package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"quiz-sitting-service/internal/config"
	"quiz-sitting-service/internal/domain"
	transport "quiz-sitting-service/internal/transport/http"
)

// NewTokenCmd mints a bearer token for local testing.
func NewTokenCmd(configPath *string) *cobra.Command {
	var (
		userID   string
		username string
		perms    []string
		ttl      time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a signed bearer token for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if username == "" {
				username = userID
			}
			auth := transport.NewAuthenticator(cfg.Auth.JWTSecret)
			token, err := auth.Issue(domain.Principal{UserID: userID, Username: username, Permissions: perms}, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id (token subject)")
	cmd.Flags().StringVar(&username, "name", "", "display name (defaults to user id)")
	cmd.Flags().StringSliceVar(&perms, "perm", nil, "permission to grant, e.g. quiz.view_sittings (repeatable)")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
