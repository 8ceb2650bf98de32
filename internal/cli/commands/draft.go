package commands

import (
	"context"
	"fmt"
	"strings"

	"UniversalInbox/internal/cli/state"
	"UniversalInbox/internal/config"
)

type draftCmd struct{}

func (draftCmd) Name() string        { return "draft" }
func (draftCmd) Description() string { return "Показать или заменить черновик (без аргументов: показать)" }
func (draftCmd) Usage() string       { return "draft [text...]" }

func (draftCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	return withStore(ctx, cfg, func(s *state.Store) error {
		if len(args) == 0 {
			if d := s.Draft(); d != "" {
				fmt.Fprintln(Out, d)
			} else {
				fmt.Fprintln(Out, "Draft is empty")
			}
			return nil
		}
		s.SetDraft(strings.Join(args, " "))
		fmt.Fprintln(Out, "Draft saved")
		return nil
	})
}

func init() { RegisterCmd(draftCmd{}) }
