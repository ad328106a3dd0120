package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// GroupsCmd returns the groups subcommand.
func GroupsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "groups",
		Short: "List registered groups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			groups, err := a.groups.List(cmd.Context())
			if err != nil {
				return err
			}
			newPrinter(cmd.OutOrStdout()).Groups(groups)
			return nil
		},
	}

	cmd.AddCommand(groupsRemoveCmd())
	return cmd
}

func groupsRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove NAME",
		Short: "Remove a group with its credentials and history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.groups.Remove(cmd.Context(), args[0]); err != nil {
				return withGroup(args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed group %s\n", args[0])
			return nil
		},
	}
}
