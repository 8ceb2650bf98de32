package commands

import (
	"context"
	"fmt"

	"UniversalInbox/internal/cli/state"
	"UniversalInbox/internal/config"
)

type keyCmd struct{}

func (keyCmd) Name() string        { return "key" }
func (keyCmd) Description() string { return "Управлять API-ключом (set/clear/show)" }
func (keyCmd) Usage() string       { return "key set <value> | key clear | key show" }

func (keyCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) == 0 {
		return ErrUsage
	}
	switch args[0] {
	case "set":
		if len(args) != 2 {
			return ErrUsage
		}
		return withStore(ctx, cfg, func(s *state.Store) error {
			if err := s.SetCredential(ctx, args[1]); err != nil {
				return err
			}
			fmt.Fprintln(Out, "API key saved")
			return nil
		})
	case "clear":
		if len(args) != 1 {
			return ErrUsage
		}
		return withStore(ctx, cfg, func(s *state.Store) error {
			if err := s.SetCredential(ctx, ""); err != nil {
				return err
			}
			fmt.Fprintln(Out, "API key removed")
			return nil
		})
	case "show":
		if len(args) != 1 {
			return ErrUsage
		}
		return withStore(ctx, cfg, func(s *state.Store) error {
			fmt.Fprintln(Out, maskKey(s.Credential()))
			return nil
		})
	default:
		return ErrUsage
	}
}

// maskKey прячет ключ, оставляя последние 4 символа.
func maskKey(k string) string {
	if k == "" {
		return "<not set>"
	}
	r := []rune(k)
	if len(r) <= 4 {
		return "****"
	}
	return "****" + string(r[len(r)-4:])
}

func init() { RegisterCmd(keyCmd{}) }
