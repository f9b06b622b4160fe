package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/wirefeed/internal/app"
	"github.com/vovakirdan/wirefeed/internal/tui"
)

func newTUICmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Start the interactive terminal interface",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if s.cfg.LogFile == "" {
				// Console logs would corrupt the alternate screen.
				s.log = nopLogger()
			}
			return s.withApp(cmd, func(ctx context.Context, a *app.App) error {
				return tui.Run(ctx, a)
			})
		},
	}
}
