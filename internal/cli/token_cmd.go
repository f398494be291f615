package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"

	"github.com/iglide21/BabyBuddy-sub001/internal"
	"github.com/iglide21/BabyBuddy-sub001/internal/auth"
)

// newTokenCmd mints a bearer token signed with SUPABASE_JWT_SECRET, for
// calling the API locally without the hosted sign-in flow.
func newTokenCmd(env *runtimeEnv) *cobra.Command {
	var userID, email string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print a signed development access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if env.cfg.SupabaseJWTSecret == "" {
				return errors.New("SUPABASE_JWT_SECRET is not set")
			}
			now := time.Now()
			token, err := auth.SignToken(env.cfg.SupabaseJWTSecret, internal.User{ID: userID, Email: email}, jwt.RegisteredClaims{
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", auth.DevUserID, "Subject (user ID) of the token")
	cmd.Flags().StringVar(&email, "email", "", "Email claim")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "Token lifetime")
	return cmd
}
