package commands

import (
	"context"
	"fmt"

	"UniversalInbox/internal/cli/state"
	"UniversalInbox/internal/config"
)

type moveCmd struct{}

func (moveCmd) Name() string        { return "move" }
func (moveCmd) Description() string { return "Разложить запись в bin (статус processed)" }
func (moveCmd) Usage() string       { return "move <item-id> <bin-id|bin-name>" }

func (moveCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 2 {
		return ErrUsage
	}
	return withStore(ctx, cfg, func(s *state.Store) error {
		it, err := resolveItem(s, args[0])
		if err != nil {
			return err
		}
		b, err := resolveBin(s, args[1])
		if err != nil {
			return err
		}
		s.Move(it.ID, b.ID)
		fmt.Fprintf(Out, "Moved %s to %s\n", shortID(it.ID), b.Name)
		return nil
	})
}

type deleteCmd struct{}

func (deleteCmd) Name() string        { return "delete" }
func (deleteCmd) Description() string { return "Удалить запись" }
func (deleteCmd) Usage() string       { return "delete <item-id>" }

func (deleteCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	return withStore(ctx, cfg, func(s *state.Store) error {
		it, err := resolveItem(s, args[0])
		if err != nil {
			return err
		}
		s.Delete(it.ID)
		fmt.Fprintf(Out, "Deleted %s\n", shortID(it.ID))
		return nil
	})
}

func init() {
	RegisterCmd(moveCmd{})
	RegisterCmd(deleteCmd{})
}
