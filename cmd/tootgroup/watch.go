package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	httphandler "github.com/ericfisherdev/tootgroup/internal/adapter/driving/http"
	"github.com/ericfisherdev/tootgroup/internal/application"
)

// WatchCmd returns the watch subcommand.
func WatchCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll every registered group and serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return watch(ctx, application.RunOptions{DryRun: dryRun})
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "log decisions without boosting, posting or saving state")

	return cmd
}

func watch(ctx context.Context, opts application.RunOptions) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	slog.Info("starting tootgroup",
		"version", version,
		"listen_addr", a.cfg.ListenAddr,
		"poll_interval", a.cfg.PollInterval,
		"adaptive_polling", a.cfg.AdaptivePolling,
		"dry_run", opts.DryRun,
	)

	poller := a.pollService(opts)
	go poller.Start(ctx)

	logger := slog.Default()
	handler := httphandler.NewHandler(a.groupStore, a.runStore, a.repostLog, poller, logger)
	mux := httphandler.NewServeMux(handler, logger)

	srv := &http.Server{
		Addr:              a.cfg.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Refresh requests block for a whole run.
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "addr", a.cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
		fmt.Fprintln(os.Stderr, "forced shutdown:", err)
	}

	slog.Info("tootgroup stopped")
	return nil
}
