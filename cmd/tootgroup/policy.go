package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/tootgroup/internal/application"
	"github.com/ericfisherdev/tootgroup/internal/config"
	"github.com/ericfisherdev/tootgroup/internal/domain/model"
)

// PolicyCmd returns the policy subcommand. Without switches it prints the
// current policy.
func PolicyCmd() *cobra.Command {
	var (
		group         string
		acceptDMs     string
		acceptRetoots string
	)

	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Show or change the repost policy of a group",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var update application.PolicyUpdate
			if cmd.Flags().Changed("accept-dms") {
				v, err := config.ParseYesNo(acceptDMs)
				if err != nil {
					return fmt.Errorf("--accept-dms: %w", err)
				}
				update.AcceptDirectMessages = &v
			}
			if cmd.Flags().Changed("accept-retoots") {
				v, err := config.ParseYesNo(acceptRetoots)
				if err != nil {
					return fmt.Errorf("--accept-retoots: %w", err)
				}
				update.AcceptPublicRetoots = &v
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			var g model.Group
			if update.AcceptDirectMessages == nil && update.AcceptPublicRetoots == nil {
				g, err = a.groups.Get(cmd.Context(), group)
			} else {
				g, err = a.groups.UpdatePolicy(cmd.Context(), group, update)
			}
			if err != nil {
				return withGroup(group, err)
			}

			newPrinter(cmd.OutOrStdout()).Policy(g)
			return nil
		},
	}

	cmd.Flags().StringVarP(&group, "group", "u", model.DefaultGroupName, "group name")
	cmd.Flags().StringVar(&acceptDMs, "accept-dms", "", "repost direct messages from members (yes|no)")
	cmd.Flags().StringVar(&acceptRetoots, "accept-retoots", "", "boost public posts that mention the group (yes|no)")

	return cmd
}
