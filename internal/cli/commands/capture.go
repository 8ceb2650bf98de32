package commands

import (
	"context"
	"fmt"
	"strings"

	"UniversalInbox/internal/cli/state"
	"UniversalInbox/internal/config"
)

type captureCmd struct{}

func (captureCmd) Name() string        { return "capture" }
func (captureCmd) Description() string { return "Записать мысль во входящие (черновик очищается)" }
func (captureCmd) Usage() string       { return "capture <text...>" }

func (captureCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) == 0 {
		return ErrUsage
	}
	text := strings.Join(args, " ")
	return withStore(ctx, cfg, func(s *state.Store) error {
		it, err := s.Capture(text)
		if err != nil {
			return err
		}
		fmt.Fprintf(Out, "Captured %s\n", it.ID)
		return nil
	})
}

func init() { RegisterCmd(captureCmd{}) }
