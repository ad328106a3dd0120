package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/tootgroup/internal/application"
	"github.com/ericfisherdev/tootgroup/internal/config"
	"github.com/ericfisherdev/tootgroup/internal/domain/model"
	"github.com/ericfisherdev/tootgroup/internal/domain/port/driven"
)

// RegisterCmd returns the register subcommand.
func RegisterCmd() *cobra.Command {
	var (
		group         string
		instance      string
		token         string
		acceptDMs     string
		acceptRetoots string
	)

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a group account or replace its credentials",
		Long: `Register validates the access token against the instance before storing
anything. The token is stored encrypted with TOOTGROUP_SECRET_KEY. When the
token flag is omitted it is read from TOOTGROUP_ACCESS_TOKEN.

Registering an existing group replaces its instance, token and policy but
keeps its notification cursor.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dms, err := config.ParseYesNo(acceptDMs)
			if err != nil {
				return fmt.Errorf("--accept-dms: %w", err)
			}
			retoots, err := config.ParseYesNo(acceptRetoots)
			if err != nil {
				return fmt.Errorf("--accept-retoots: %w", err)
			}
			if token == "" {
				token = os.Getenv("TOOTGROUP_ACCESS_TOKEN")
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if !a.cfg.HasSecretKey() {
				return driven.ErrEncryptionKeyNotSet
			}

			g, account, err := a.groups.Register(cmd.Context(), application.RegisterRequest{
				Name:        group,
				InstanceURL: instance,
				AccessToken: token,
				Policy: model.Policy{
					AcceptDirectMessages: dms,
					AcceptPublicRetoots:  retoots,
				},
			})
			if err != nil {
				return withGroup(group, err)
			}

			out := newPrinter(cmd.OutOrStdout())
			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s as @%s on %s\n", g.Name, account.Username, g.InstanceURL)
			out.Policy(g)
			return nil
		},
	}

	cmd.Flags().StringVarP(&group, "group", "u", model.DefaultGroupName, "group name")
	cmd.Flags().StringVar(&instance, "instance", "", "instance URL, e.g. https://mastodon.social")
	cmd.Flags().StringVar(&token, "token", "", "access token of the group account")
	cmd.Flags().StringVar(&acceptDMs, "accept-dms", "yes", "repost direct messages from members (yes|no)")
	cmd.Flags().StringVar(&acceptRetoots, "accept-retoots", "yes", "boost public posts that mention the group (yes|no)")
	_ = cmd.MarkFlagRequired("instance")

	return cmd
}
