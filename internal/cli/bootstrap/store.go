package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"UniversalInbox/internal/cli/api"
	"UniversalInbox/internal/cli/repo"
	fsrepo "UniversalInbox/internal/cli/repo/fs"
	redisrepo "UniversalInbox/internal/cli/repo/redis"
	reposqlite "UniversalInbox/internal/cli/repo/sqlite"
	"UniversalInbox/internal/cli/state"
	"UniversalInbox/internal/cli/validate"
	"UniversalInbox/internal/config"

	"go.uber.org/zap"
)

// OpenStore собирает хранилище состояния по конфигурации: локальное KV, секреты и
// (опционально) удалённое хранилище записей. Возвращает store и cleanup.
// cleanup дожидается фоновых задач, сбрасывает черновик и закрывает соединения.
func OpenStore(ctx context.Context, cfg *config.Config, logger *zap.SugaredLogger) (*state.Store, func(context.Context) error, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	var closers []func() error

	local, closeLocal, err := OpenLocal(cfg)
	if err != nil {
		return nil, nil, err
	}
	if closeLocal != nil {
		closers = append(closers, closeLocal)
	}

	secrets, err := fsrepo.OpenSecrets(cfg.DataDir)
	if err != nil {
		closeAll(closers)
		return nil, nil, fmt.Errorf("open secrets: %w", err)
	}

	remote, closeRemote, err := openRemote(ctx, cfg, logger)
	if err != nil {
		closeAll(closers)
		return nil, nil, err
	}
	if closeRemote != nil {
		closers = append(closers, closeRemote)
	}

	s := state.New(ctx, state.Deps{
		Local:     local,
		Remote:    remote,
		Secrets:   secrets,
		Logger:    logger,
		Validator: validate.New(cfg.MaxItemLength),
	})

	done := false
	cleanup := func(ctx context.Context) error {
		if done {
			return nil
		}
		done = true
		err := s.Close(ctx)
		return errors.Join(err, closeAll(closers))
	}
	return s, cleanup, nil
}

// OpenLocal открывает локальное KV выбранного бэкенда; close может быть nil.
func OpenLocal(cfg *config.Config) (repo.KVStore, func() error, error) {
	switch cfg.LocalBackend {
	case config.LocalFile:
		kv, err := fsrepo.OpenKV(cfg.DataDir)
		if err != nil {
			return nil, nil, fmt.Errorf("open file store: %w", err)
		}
		return kv, nil, nil
	default:
		kv, _, err := reposqlite.Open(cfg.DataDir)
		if err != nil {
			return nil, nil, fmt.Errorf("open local db: %w", err)
		}
		if err := kv.Migrate(); err != nil {
			_ = kv.Close()
			return nil, nil, fmt.Errorf("migrate local db: %w", err)
		}
		return kv, kv.Close, nil
	}
}

func openRemote(ctx context.Context, cfg *config.Config, logger *zap.SugaredLogger) (repo.RemoteStore, func() error, error) {
	switch cfg.RemoteBackend {
	case config.RemoteHTTP:
		opts := api.DefaultOptions()
		opts.Gzip = cfg.GzipRequests
		opts.Logger = logger
		return api.NewClient(cfg.ServerURL, opts), nil, nil
	case config.RemoteRedis:
		rs, err := redisrepo.Open(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("open redis store: %w", err)
		}
		return rs, rs.Close, nil
	default:
		return nil, nil, nil
	}
}

func closeAll(closers []func() error) error {
	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
