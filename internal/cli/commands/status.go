package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"UniversalInbox/internal/cli/api"
	"UniversalInbox/internal/cli/bootstrap"
	"UniversalInbox/internal/cli/repo"
	"UniversalInbox/internal/config"
)

type statusCmd struct{}

func (statusCmd) Name() string        { return "status" }
func (statusCmd) Description() string { return "Показать бэкенды и проверить сервер записей" }
func (statusCmd) Usage() string       { return "status" }

func (statusCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	remote := cfg.RemoteBackend
	if remote == config.RemoteNone {
		remote = "none (local only)"
	}
	fmt.Fprintf(Out, "Data dir: %s\n", cfg.DataDir)
	fmt.Fprintf(Out, "Local:    %s\n", cfg.LocalBackend)
	fmt.Fprintf(Out, "Remote:   %s\n", remote)
	fmt.Fprintf(Out, "Saved:    %s\n", lastSaved(ctx, cfg))

	if cfg.RemoteBackend != config.RemoteHTTP {
		return nil
	}
	opts := api.DefaultOptions()
	opts.Logger = logger
	if err := api.NewClient(cfg.ServerURL, opts).Health(ctx); err != nil {
		return fmt.Errorf("server %s unreachable: %w", cfg.ServerURL, err)
	}
	fmt.Fprintf(Out, "Server:   %s ok\n", cfg.ServerURL)
	return nil
}

// lastSaved: когда локальное состояние последний раз сбрасывалось на диск.
// Черновик пишется при каждом сбросе, поэтому его метка и есть время сброса.
func lastSaved(ctx context.Context, cfg *config.Config) string {
	local, closeLocal, err := bootstrap.OpenLocal(cfg)
	if err != nil {
		return "unknown (" + err.Error() + ")"
	}
	if closeLocal != nil {
		defer func() { _ = closeLocal() }()
	}
	tr, ok := local.(repo.UpdateTracker)
	if !ok {
		return "unknown"
	}
	ts, err := tr.UpdatedAt(ctx, repo.KeyDraft)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return "never"
	case err != nil:
		return "unknown (" + err.Error() + ")"
	}
	return ts.Local().Format(time.DateTime)
}

func init() { RegisterCmd(statusCmd{}) }
