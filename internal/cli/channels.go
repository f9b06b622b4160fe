package cli

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/wirefeed/internal/app"
	"github.com/vovakirdan/wirefeed/internal/store"
)

func newChannelsCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "channels",
		Aliases: []string{"channel"},
		Short:   "List, create and follow channels",
	}
	cmd.AddCommand(
		newChannelsListCmd(s),
		newChannelsCreateCmd(s),
		newSubscriptionCmd(s, "subscribe", "Follow a channel"),
		newSubscriptionCmd(s, "unsubscribe", "Stop following a channel"),
	)
	return cmd
}

func newChannelsListCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all channels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return s.withApp(cmd, func(ctx context.Context, a *app.App) error {
				all, err := a.Channels.List(ctx)
				if err != nil {
					return fmt.Errorf("failed to list channels: %w", err)
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tNAME\tDESCRIPTION")
				for _, ch := range all {
					fmt.Fprintf(w, "%d\t%s\t%s\n", ch.ID, ch.Name, ch.Description)
				}
				return w.Flush()
			})
		},
	}
}

func newChannelsCreateCmd(s *session) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a channel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.withApp(cmd, func(ctx context.Context, a *app.App) error {
				ch, err := a.Channels.Create(ctx, args[0], description)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created channel %s (id %d)\n", ch.Name, ch.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "channel description")
	return cmd
}

func newSubscriptionCmd(s *session, action, short string) *cobra.Command {
	var creds credentials

	cmd := &cobra.Command{
		Use:   action + " <channel>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.withApp(cmd, func(ctx context.Context, a *app.App) error {
				user, err := authenticate(ctx, cmd, a, &creds)
				if err != nil {
					return err
				}
				ch, err := findChannel(ctx, a, args[0])
				if err != nil {
					return err
				}

				if action == "subscribe" {
					err = a.Channels.Subscribe(ctx, user.ID, ch.ID)
				} else {
					err = a.Channels.Unsubscribe(ctx, user.ID, ch.ID)
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%sd %s\n", action, ch.Name)
				return nil
			})
		},
	}
	creds.bind(cmd)
	return cmd
}

func findChannel(ctx context.Context, a *app.App, name string) (*store.Channel, error) {
	ch, err := a.Channels.FindByName(ctx, name)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("channel %q not found", name)
	}
	return ch, err
}
