package main

import (
	"context"
	"errors"
	"log/slog"

	mastodonadapter "github.com/ericfisherdev/tootgroup/internal/adapter/driven/mastodon"
	sqliteadapter "github.com/ericfisherdev/tootgroup/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/tootgroup/internal/application"
	"github.com/ericfisherdev/tootgroup/internal/config"
	"github.com/ericfisherdev/tootgroup/internal/domain/port/driven"
)

// app holds the wired adapters and services shared by the subcommands.
type app struct {
	cfg *config.Config
	db  *sqliteadapter.DB

	groupStore  *sqliteadapter.GroupRepo
	cursorStore *sqliteadapter.CursorRepo
	credStore   *sqliteadapter.CredentialRepo
	repostLog   *sqliteadapter.RepostRepo
	runStore    *sqliteadapter.RunRepo

	provider *application.ClientProvider
	relay    *application.RelayService
	groups   *application.GroupService
}

// newMastodonClient is the production ClientFactory.
func newMastodonClient(instanceURL, accessToken string) driven.MastodonClient {
	return mastodonadapter.NewClient(instanceURL, accessToken)
}

// openApp loads the configuration, opens and migrates the database and wires
// every service.
func openApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	slog.Debug("config loaded",
		"db_path", cfg.DBPath,
		"poll_interval", cfg.PollInterval,
		"adaptive_polling", cfg.AdaptivePolling,
		"max_notifications", cfg.MaxNotifications,
		"media_dir", cfg.MediaDir,
		"secret_key_set", cfg.HasSecretKey(),
	)

	db, err := sqliteadapter.NewDB(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		_ = db.Close()
		return nil, err
	}

	a := &app{
		cfg:         cfg,
		db:          db,
		groupStore:  sqliteadapter.NewGroupRepo(db),
		cursorStore: sqliteadapter.NewCursorRepo(db),
		credStore:   sqliteadapter.NewCredentialRepo(db, cfg.SecretKey),
		repostLog:   sqliteadapter.NewRepostRepo(db),
		runStore:    sqliteadapter.NewRunRepo(db),
	}

	a.provider = application.NewClientProvider(a.groupStore, a.credStore, newMastodonClient)
	a.relay = application.NewRelayService(
		a.provider,
		a.groupStore,
		a.cursorStore,
		a.repostLog,
		a.runStore,
		mastodonadapter.NewMediaFetcher(nil),
		cfg.MaxNotifications,
		cfg.MediaDir,
	)
	a.groups = application.NewGroupService(a.groupStore, a.credStore, a.cursorStore, a.provider, newMastodonClient)

	return a, nil
}

// pollService builds a PollService over every registered group.
func (a *app) pollService(opts application.RunOptions) *application.PollService {
	return application.NewPollService(a.relay, a.groupStore, a.cfg.PollInterval, a.cfg.AdaptivePolling, opts)
}

func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		slog.Error("error closing database", "error", err)
	}
}

func isAuthError(err error) bool {
	return errors.Is(err, driven.ErrAuth)
}

func isNotRegistered(err error) bool {
	return errors.Is(err, application.ErrNotRegistered) || errors.Is(err, driven.ErrGroupNotFound)
}

func isMissingKey(err error) bool {
	return errors.Is(err, driven.ErrEncryptionKeyNotSet)
}

// requireGroups fails when no group is registered yet.
func (a *app) requireGroups(ctx context.Context) error {
	groups, err := a.groupStore.ListAll(ctx)
	if err != nil {
		return err
	}
	if len(groups) == 0 {
		return application.ErrNotRegistered
	}
	return nil
}
