package commands

import (
	"context"
	"fmt"

	"UniversalInbox/internal/cli/state"
	"UniversalInbox/internal/config"
)

type inboxCmd struct{}

func (inboxCmd) Name() string        { return "inbox" }
func (inboxCmd) Description() string { return "Показать неразобранные записи" }
func (inboxCmd) Usage() string       { return "inbox" }

func (inboxCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	return withStore(ctx, cfg, func(s *state.Store) error {
		items := s.InboxItems()
		if len(items) == 0 {
			fmt.Fprintln(Out, "Inbox is empty")
			return nil
		}
		printItems(items, binNames(s.Bins()))
		fmt.Fprintf(Out, "Total: %d\n", len(items))
		return nil
	})
}

type itemsCmd struct{}

func (itemsCmd) Name() string        { return "items" }
func (itemsCmd) Description() string { return "Показать все записи" }
func (itemsCmd) Usage() string       { return "items [bin]" }

func (itemsCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) > 1 {
		return ErrUsage
	}
	return withStore(ctx, cfg, func(s *state.Store) error {
		items := s.Items()
		if len(args) == 1 {
			b, err := resolveBin(s, args[0])
			if err != nil {
				return err
			}
			items = s.ItemsInBin(b.ID)
		}
		if len(items) == 0 {
			fmt.Fprintln(Out, "No items")
			return nil
		}
		printItems(items, binNames(s.Bins()))
		fmt.Fprintf(Out, "Total: %d\n", len(items))
		return nil
	})
}

type binsCmd struct{}

func (binsCmd) Name() string        { return "bins" }
func (binsCmd) Description() string { return "Показать bins и число записей в них" }
func (binsCmd) Usage() string       { return "bins" }

func (binsCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	return withStore(ctx, cfg, func(s *state.Store) error {
		for _, b := range s.Bins() {
			fmt.Fprintf(Out, "- %s  %-10s %3d  %s\n", shortID(b.ID), b.Name, len(s.ItemsInBin(b.ID)), b.Description)
		}
		return nil
	})
}

func init() {
	RegisterCmd(inboxCmd{})
	RegisterCmd(itemsCmd{})
	RegisterCmd(binsCmd{})
}
