package main

import (
	"context"
	"fmt"
	"nerisdash/internal/config"
	"nerisdash/pkg/logger"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// JWTCommand constructs the 'jwt' subcommand that mints a HS256 embed token,
// as the NERIS site passes to embedded dashboards, for local testing.
func JWTCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jwt",
		Short: "Generates an embed token for given user sub",
		Run: func(cmd *cobra.Command, args []string) {
			subject, _ := cmd.Flags().GetString("subject")
			accessToken, _ := cmd.Flags().GetString("access-token")
			TTL, _ := cmd.Flags().GetDuration("ttl")

			if cfg.Auth.SecretKey == "" {
				logger.Fatal(context.Background(), "NERIS_SECRET_KEY is not configured")
			}

			now := time.Now()
			claims := jwt.MapClaims{
				"sub":          subject,
				"access_token": accessToken,
				"iat":          now.Unix(),
				"nbf":          now.Unix(),
				"exp":          now.Add(TTL).Unix(),
			}
			signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Auth.SecretKey))
			if err != nil {
				logger.Fatal(context.Background(), "could not sign JWT", zap.Error(err))
			}

			fmt.Println(signed) //nolint: forbidigo
		},
	}

	cmd.Flags().String("subject", "", "NERIS user sub")
	cmd.Flags().String("access-token", "", "NERIS access token forwarded to the permissions API")
	cmd.Flags().Duration("ttl", 24*time.Hour, "Token TTL (e.g., 30s, 15m, 1h)")
	_ = cmd.MarkFlagRequired("subject")

	return cmd
}
