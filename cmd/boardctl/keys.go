// AngelaMos | 2026
// keys.go

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/carterperez-dev/projectboard/internal/auth"
	"github.com/carterperez-dev/projectboard/internal/core"
	"github.com/carterperez-dev/projectboard/internal/policy"
)

func keysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage ES256 signing keys",
	}
	cmd.AddCommand(keysGenerateCmd())
	return cmd
}

func keysGenerateCmd() *cobra.Command {
	var (
		privatePath string
		publicPath  string
		force       bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a new P-256 key pair as PEM",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !force {
				for _, p := range []string{privatePath, publicPath} {
					if _, err := os.Stat(p); err == nil {
						return fmt.Errorf("%s exists, pass --force to overwrite", p)
					}
				}
			}

			for _, p := range []string{privatePath, publicPath} {
				if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
					return fmt.Errorf("create key dir: %w", err)
				}
			}

			if err := auth.GenerateKeyPair(privatePath, publicPath); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s and %s\n", privatePath, publicPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&privatePath, "private", "keys/private.pem", "private key output path")
	cmd.Flags().StringVar(&publicPath, "public", "keys/public.pem", "public key output path")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing keys")
	return cmd
}

func tokenCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Development access tokens",
	}
	cmd.AddCommand(tokenIssueCmd(opts))
	return cmd
}

func tokenIssueCmd(opts *rootOptions) *cobra.Command {
	var claims auth.AccessTokenClaims

	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Sign a development access token (dev only)",
		Long: `Sign an access token with the configured private key, for local
development and manual API testing only. This is not a login flow: no
credentials are checked and the user id is not looked up. Refuses to run
when app.environment is production.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := policy.ParseRole(claims.Role); err != nil {
				return err
			}
			if !core.IsUUID(claims.UserID) {
				return fmt.Errorf("--user-id %q must be a UUID", claims.UserID)
			}

			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if cfg.IsProduction() {
				return errors.New("token issue is for development only")
			}

			manager, err := auth.NewJWTManager(cfg.JWT)
			if err != nil {
				return err
			}

			token, err := manager.CreateAccessToken(claims)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&claims.UserID, "user-id", "", "subject user id")
	cmd.Flags().StringVar(&claims.Name, "name", "", "display name")
	cmd.Flags().StringVar(&claims.Role, "role", string(policy.RoleUser), "ADMIN, MANAGER or USER")
	_ = cmd.MarkFlagRequired("user-id") //nolint:errcheck // flag is defined above
	return cmd
}
