package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cjrt007/Tornado.Ai/auth"
	"github.com/cjrt007/Tornado.Ai/config"
)

func newTokenCmd() *cobra.Command {
	var (
		configPath string
		ttl        time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token <principal> <role>...",
		Short: "Mint a bearer token signed with the configured JWT secret",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			rbac := auth.NewRBAC(nil)
			for _, role := range args[1:] {
				if _, err := rbac.Permissions(role); err != nil {
					return err
				}
			}
			if cfg.Auth.JWTSecret == "" {
				return auth.ErrEmptySecret
			}
			issuer, err := auth.NewJWTAuthenticator(auth.JWTConfig{
				Secret:   []byte(cfg.Auth.JWTSecret),
				Issuer:   cfg.Auth.Issuer,
				Audience: cfg.Auth.Audience,
			})
			if err != nil {
				return err
			}
			tok, err := issuer.Issue(args[0], args[1:], ttl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), tok)
			return err
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	return cmd
}
