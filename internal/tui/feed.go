package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/wirefeed/internal/store"
)

type feedLoadedMsg struct {
	msgs  []*store.Message
	names map[int64]string
	err   error
}

type feedModel struct {
	msgs     []*store.Message
	names    map[int64]string
	viewport viewport.Model
	loading  bool
	err      error
}

func (f *feedModel) resize(width, height int) {
	f.viewport.Width = max(width-6, 20)
	f.viewport.Height = max(height-chromeHeight+3, 3)
	f.render()
}

func (f *feedModel) render() {
	if len(f.msgs) == 0 {
		f.viewport.SetContent(helpStyle.Render("Nothing here yet. Subscribe to a channel to fill your feed."))
		return
	}
	parts := make([]string, 0, len(f.msgs))
	for _, msg := range f.msgs {
		parts = append(parts, formatMessage(*msg, f.names[msg.ChannelID]))
	}
	f.viewport.SetContent(strings.Join(parts, "\n\n"))
	f.viewport.GotoTop()
}

func (m *Model) openFeed() tea.Cmd {
	m.screen = screenFeed
	m.feed = feedModel{
		viewport: viewport.New(m.width, m.height),
		loading:  true,
	}
	m.feed.resize(m.width, m.height)
	return m.loadFeed()
}

func (m Model) loadFeed() tea.Cmd {
	ctx, a, userID := m.ctx, m.app, m.user.ID
	return func() tea.Msg {
		msgs, err := a.Messages.MessagesForSubscribedChannels(ctx, userID)
		if err != nil {
			return feedLoadedMsg{err: err}
		}
		all, err := a.Channels.List(ctx)
		if err != nil {
			return feedLoadedMsg{err: err}
		}
		names := make(map[int64]string, len(all))
		for _, ch := range all {
			names[ch.ID] = ch.Name
		}
		return feedLoadedMsg{msgs: msgs, names: names}
	}
}

func (m Model) updateFeed(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case feedLoadedMsg:
		m.feed.loading = false
		m.feed.err = msg.err
		if msg.err == nil {
			m.feed.msgs = msg.msgs
			m.feed.names = msg.names
			m.feed.render()
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			m.screen = screenChannels
			return m, nil
		case "r":
			m.feed.loading = true
			return m, m.loadFeed()
		case "q":
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.feed.viewport, cmd = m.feed.viewport.Update(msg)
	return m, cmd
}

func (m Model) viewFeed() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Your feed"))
	b.WriteString("\n")
	if m.feed.loading {
		b.WriteString(helpStyle.Render("Loading..."))
		b.WriteString("\n")
	}
	b.WriteString(boxStyle.Render(m.feed.viewport.View()))
	b.WriteString("\n")
	if m.feed.err != nil {
		b.WriteString(renderError(m.feed.err))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("↑/↓: scroll • r: refresh • esc: back • q: quit"))
	return b.String()
}
