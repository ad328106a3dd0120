package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	root := rootCmd()
	if err := root.Execute(); err != nil {
		reportError(os.Stderr, err)
		os.Exit(1)
	}
}

// rootCmd builds the command tree. Running tootgroup without a subcommand
// performs a single run for the default group.
func rootCmd() *cobra.Command {
	var logOpts logOptions

	root := &cobra.Command{
		Use:   "tootgroup",
		Short: "Relay member posts through a Mastodon group account",
		Long: `tootgroup turns a regular Mastodon account into a group.

Accounts the group follows are its members. A member's public post that
contains !@<group> is boosted; a member's direct message to the group is
reposted as a new public status. Each group keeps its own instance, access
token, policy and notification cursor in a local SQLite database.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return setupLogging(cmd.ErrOrStderr(), logOpts)
		},
	}

	root.PersistentFlags().BoolVarP(&logOpts.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVar(&logOpts.format, "log-format", "text", "log format: text or json")

	run := RunCmd()
	root.RunE = run.RunE
	root.Flags().AddFlagSet(run.Flags())

	root.AddCommand(run)
	root.AddCommand(WatchCmd())
	root.AddCommand(RegisterCmd())
	root.AddCommand(PolicyCmd())
	root.AddCommand(GroupsCmd())
	root.AddCommand(VersionCmd())

	return root
}

type logOptions struct {
	verbose bool
	format  string
}

// setupLogging installs the default slog logger on w.
func setupLogging(w io.Writer, opts logOptions) error {
	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch opts.format {
	case "text", "":
		handler = slog.NewTextHandler(w, handlerOpts)
	case "json":
		handler = slog.NewJSONHandler(w, handlerOpts)
	default:
		return fmt.Errorf("unknown log format %q (want text or json)", opts.format)
	}

	slog.SetDefault(slog.New(handler))
	return nil
}

// reportError prints err and, for errors the user can fix, a hint.
func reportError(w io.Writer, err error) {
	fmt.Fprintln(w, "error:", err)
	if hint := errorHint(err); hint != "" {
		fmt.Fprintln(w, hint)
	}
}

func errorHint(err error) string {
	var groupErr *groupError
	group := "<group>"
	if errors.As(err, &groupErr) {
		group = groupErr.group
	}

	switch {
	case isAuthError(err):
		return fmt.Sprintf("The instance rejected the access token. Register the group again:\n"+
			"  tootgroup register -u %s --instance <url> --token <token>", group)
	case isNotRegistered(err):
		return fmt.Sprintf("The group is not registered yet:\n"+
			"  tootgroup register -u %s --instance <url> --token <token>", group)
	case isMissingKey(err):
		return "Generate a key with `openssl rand -hex 32` and export it as TOOTGROUP_SECRET_KEY."
	default:
		return ""
	}
}

// groupError attaches the group a failure belongs to.
type groupError struct {
	group string
	err   error
}

func (e *groupError) Error() string { return fmt.Sprintf("group %q: %v", e.group, e.err) }
func (e *groupError) Unwrap() error { return e.err }

func withGroup(group string, err error) error {
	if err == nil {
		return nil
	}
	return &groupError{group: group, err: err}
}
