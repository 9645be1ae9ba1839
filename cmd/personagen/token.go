package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"personagen/internal/cache"
	"personagen/internal/session"
)

// newTokenCmd issues bearer tokens. Identity is external to the service;
// an operator or an upstream identity provider calls this to map a user
// onto an owner id.
func newTokenCmd() *cobra.Command {
	var (
		owner string
		ttl   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for an owner",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			client, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
			if err != nil {
				return err
			}
			defer client.Close()

			token, err := session.NewStore(client).Create(cmd.Context(), owner, ttl)
			if err != nil {
				return fmt.Errorf("issue token: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "owner id the token authenticates as")
	cmd.Flags().DurationVar(&ttl, "ttl", session.DefaultTTL, "token lifetime")
	cmd.MarkFlagRequired("owner")
	cmd.AddCommand(newTokenRevokeCmd())
	return cmd
}

func newTokenRevokeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "revoke <token>",
		Short: "Revoke a bearer token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			client, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
			if err != nil {
				return err
			}
			defer client.Close()

			if err := session.NewStore(client).Destroy(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("revoke token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "token revoked")
			return nil
		},
	}
}
