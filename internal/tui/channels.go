package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/wirefeed/internal/store"
)

type channelItem struct {
	channel    *store.Channel
	subscribed bool
}

type channelsLoadedMsg struct {
	items []channelItem
	err   error
}

type subscriptionChangedMsg struct {
	channelID  int64
	subscribed bool
	err        error
}

type channelsModel struct {
	items   []channelItem
	cursor  int
	loading bool
	status  string
	err     error
}

func (m Model) loadChannels() tea.Cmd {
	ctx, a, userID := m.ctx, m.app, m.user.ID
	return func() tea.Msg {
		all, err := a.Channels.List(ctx)
		if err != nil {
			return channelsLoadedMsg{err: err}
		}

		items := make([]channelItem, 0, len(all))
		for _, ch := range all {
			subscribed, err := a.Channels.IsSubscribed(ctx, userID, ch.ID)
			if err != nil {
				return channelsLoadedMsg{err: err}
			}
			items = append(items, channelItem{channel: ch, subscribed: subscribed})
		}
		return channelsLoadedMsg{items: items}
	}
}

func (m Model) toggleSubscription(item channelItem) tea.Cmd {
	ctx, a, userID := m.ctx, m.app, m.user.ID
	return func() tea.Msg {
		if item.subscribed {
			err := a.Channels.Unsubscribe(ctx, userID, item.channel.ID)
			return subscriptionChangedMsg{channelID: item.channel.ID, subscribed: err != nil, err: err}
		}
		err := a.Channels.Subscribe(ctx, userID, item.channel.ID)
		return subscriptionChangedMsg{channelID: item.channel.ID, subscribed: err == nil, err: err}
	}
}

func (c channelsModel) selected() (channelItem, bool) {
	if c.cursor < 0 || c.cursor >= len(c.items) {
		return channelItem{}, false
	}
	return c.items[c.cursor], true
}

func (m Model) updateChannels(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case channelsLoadedMsg:
		m.channels.loading = false
		m.channels.err = msg.err
		if msg.err == nil {
			m.channels.items = msg.items
			if m.channels.cursor >= len(msg.items) {
				m.channels.cursor = max(len(msg.items)-1, 0)
			}
		}
		return m, nil

	case subscriptionChangedMsg:
		m.channels.err = msg.err
		for i := range m.channels.items {
			item := &m.channels.items[i]
			if item.channel.ID != msg.channelID {
				continue
			}
			item.subscribed = msg.subscribed
			if msg.err == nil {
				verb := "Unsubscribed from "
				if msg.subscribed {
					verb = "Subscribed to "
				}
				m.channels.status = verb + item.channel.Name
			}
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.channels.cursor > 0 {
				m.channels.cursor--
			}
		case "down", "j":
			if m.channels.cursor < len(m.channels.items)-1 {
				m.channels.cursor++
			}
		case "s":
			if item, ok := m.channels.selected(); ok {
				return m, m.toggleSubscription(item)
			}
		case "enter":
			if item, ok := m.channels.selected(); ok {
				cmd := m.openChannel(item.channel)
				return m, cmd
			}
		case "f":
			cmd := m.openFeed()
			return m, cmd
		case "r":
			m.channels.loading = true
			return m, m.loadChannels()
		case "esc":
			m.user = nil
			m.channels = channelsModel{}
			m.screen = screenLogin
			cmd := m.login.inputs[m.login.focus].Focus()
			return m, cmd
		case "q":
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m Model) viewChannels() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Channels"))
	b.WriteString("\n")

	switch {
	case m.channels.loading:
		b.WriteString(helpStyle.Render("Loading channels..."))
		b.WriteString("\n")
	case len(m.channels.items) == 0:
		b.WriteString(helpStyle.Render("No channels yet."))
		b.WriteString("\n")
	}

	for i, item := range m.channels.items {
		mark := "[ ]"
		if item.subscribed {
			mark = "[x]"
		}
		line := fmt.Sprintf("%s %s", mark, item.channel.Name)
		if item.channel.Description != "" {
			line += helpStyle.Render("  " + item.channel.Description)
		}
		if i == m.channels.cursor {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.channels.err != nil {
		b.WriteString(renderError(m.channels.err))
		b.WriteString("\n")
	} else if m.channels.status != "" {
		b.WriteString(successStyle.Render(m.channels.status))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("enter: open • s: subscribe/unsubscribe • f: feed • r: refresh • esc: sign out • q: quit"))
	return b.String()
}
