package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/wirefeed/internal/app"
	"github.com/vovakirdan/wirefeed/internal/store"
)

const timeLayout = "2006-01-02 15:04"

func newPostCmd(s *session) *cobra.Command {
	var creds credentials

	cmd := &cobra.Command{
		Use:   "post <channel> <message...>",
		Short: "Post a message to a channel",
		Args:  cobra.MinimumNArgs(2),
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

				content := strings.Join(args[1:], " ")
				msg, err := a.Messages.Post(ctx, ch.ID, user.ID, &content)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "posted message %d to %s\n", msg.ID, ch.Name)
				return nil
			})
		},
	}
	creds.bind(cmd)
	return cmd
}

func newHistoryCmd(s *session) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history <channel>",
		Short: "Show channel messages, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.withApp(cmd, func(ctx context.Context, a *app.App) error {
				ch, err := findChannel(ctx, a, args[0])
				if err != nil {
					return err
				}
				msgs, err := a.Messages.MessagesForChannel(ctx, ch.ID)
				if err != nil {
					return err
				}
				printMessages(cmd.OutOrStdout(), msgs, limit, nil)
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show at most n messages (0 for all)")
	return cmd
}

func newFeedCmd(s *session) *cobra.Command {
	var (
		creds credentials
		limit int
	)

	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Show messages from followed channels, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return s.withApp(cmd, func(ctx context.Context, a *app.App) error {
				user, err := authenticate(ctx, cmd, a, &creds)
				if err != nil {
					return err
				}
				msgs, err := a.Messages.MessagesForSubscribedChannels(ctx, user.ID)
				if err != nil {
					return err
				}

				names, err := channelNames(ctx, a)
				if err != nil {
					return err
				}
				printMessages(cmd.OutOrStdout(), msgs, limit, names)
				return nil
			})
		},
	}
	creds.bind(cmd)
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show at most n messages (0 for all)")
	return cmd
}

func channelNames(ctx context.Context, a *app.App) (map[int64]string, error) {
	all, err := a.Channels.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(all))
	for _, ch := range all {
		names[ch.ID] = ch.Name
	}
	return names, nil
}

// printMessages writes one line per message. names, when set, prefixes each line with the channel.
func printMessages(w io.Writer, msgs []*store.Message, limit int, names map[int64]string) {
	if len(msgs) == 0 {
		fmt.Fprintln(w, "No messages yet.")
		return
	}
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[:limit]
	}
	for _, m := range msgs {
		prefix := ""
		if names != nil {
			prefix = "#" + names[m.ChannelID] + " "
		}
		fmt.Fprintf(w, "%s[%s] %s: %s\n", prefix, m.CreatedAt.Local().Format(timeLayout), m.AuthorEmail, m.Content)
	}
}
