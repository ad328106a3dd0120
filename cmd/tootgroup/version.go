package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/tootgroup/internal/adapter/driven/github"
	"github.com/ericfisherdev/tootgroup/internal/application"
)

const (
	releaseOwner = "ericfisherdev"
	releaseRepo  = "tootgroup"
)

// VersionCmd returns the version subcommand.
func VersionCmd() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "tootgroup %s\n", version)
			fmt.Fprintf(w, "  commit: %s\n", commit)
			fmt.Fprintf(w, "  built:  %s\n", date)

			if !check {
				return nil
			}

			checker := github.NewReleaseChecker(releaseOwner, releaseRepo)
			info, err := application.CheckForUpdate(cmd.Context(), checker, version)
			if err != nil {
				return err
			}
			newPrinter(w).Update(info)
			return nil
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "check GitHub for a newer release")

	return cmd
}
