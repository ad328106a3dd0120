package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/tootgroup/internal/application"
	"github.com/ericfisherdev/tootgroup/internal/domain/model"
)

// RunCmd returns the run subcommand.
func RunCmd() *cobra.Command {
	var (
		group  string
		dryRun bool
		all    bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process new notifications once and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			out := newPrinter(cmd.OutOrStdout())
			opts := application.RunOptions{DryRun: dryRun}

			if all {
				if err := a.requireGroups(ctx); err != nil {
					return err
				}
				reports, err := a.pollService(opts).RunAll(ctx)
				for _, r := range reports {
					out.RunReport(r)
				}
				if err != nil {
					return err
				}
				return failedRuns(reports)
			}

			report, err := a.relay.RunGroup(ctx, group, opts)
			if report.RunID != "" {
				out.RunReport(report)
			}
			return withGroup(group, err)
		},
	}

	cmd.Flags().StringVarP(&group, "group", "u", model.DefaultGroupName, "group to run")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "log decisions without boosting, posting or saving state")
	cmd.Flags().BoolVar(&all, "all", false, "run every registered group")
	cmd.MarkFlagsMutuallyExclusive("group", "all")

	return cmd
}

// failedRuns returns an error naming the runs that failed, if any.
func failedRuns(reports []model.RunReport) error {
	var errs []error
	for _, r := range reports {
		if r.Error != "" {
			errs = append(errs, fmt.Errorf("group %q: %s", r.GroupName, r.Error))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%d of %d runs failed: %w", len(errs), len(reports), errors.Join(errs...))
}
