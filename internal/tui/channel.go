package tui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/wirefeed/internal/common"
	"github.com/vovakirdan/wirefeed/internal/core"
	"github.com/vovakirdan/wirefeed/internal/store"
)

type historyLoadedMsg struct {
	channelID int64
	msgs      []*store.Message
	err       error
}

// liveMessageMsg carries a message delivered to the client with the given id.
type liveMessageMsg struct {
	clientID string
	msg      store.Message
}

type postResultMsg struct {
	msg *store.Message
	err error
}

type channelModel struct {
	channel *store.Channel
	client  *core.Client
	done    chan struct{}

	messages []store.Message // newest first
	input    textinput.Model
	viewport viewport.Model
	posting  bool
	status   string
	err      error
}

func newChannelModel(ch *store.Channel, client *core.Client, width, height int) channelModel {
	in := textinput.New()
	in.Prompt = "> "
	in.Placeholder = "Write a message"
	in.CharLimit = common.MaxMessageLength
	in.Cursor.Style = focusedStyle

	c := channelModel{
		channel:  ch,
		client:   client,
		done:     make(chan struct{}),
		input:    in,
		viewport: viewport.New(width, max(height-chromeHeight, 3)),
	}
	c.resize(width, height)
	return c
}

func (c *channelModel) resize(width, height int) {
	if c.channel == nil {
		return
	}
	c.viewport.Width = max(width-6, 20)
	c.viewport.Height = max(height-chromeHeight, 3)
	c.input.Width = max(width-10, 20)
	c.render()
}

// add inserts msg keeping newest-first order. Returns false for duplicates.
func (c *channelModel) add(msg store.Message) bool {
	for _, existing := range c.messages {
		if existing.ID == msg.ID {
			return false
		}
	}
	i := 0
	for i < len(c.messages) && c.messages[i].ID > msg.ID {
		i++
	}
	c.messages = append(c.messages, store.Message{})
	copy(c.messages[i+1:], c.messages[i:])
	c.messages[i] = msg
	return true
}

func (c *channelModel) render() {
	if len(c.messages) == 0 {
		c.viewport.SetContent(helpStyle.Render("No messages yet. Be the first to post!"))
		return
	}
	parts := make([]string, 0, len(c.messages))
	for _, msg := range c.messages {
		parts = append(parts, formatMessage(msg, ""))
	}
	c.viewport.SetContent(strings.Join(parts, "\n\n"))
	c.viewport.GotoTop()
}

// openChannel attaches a live client for ch and loads its history.
func (m *Model) openChannel(ch *store.Channel) tea.Cmd {
	m.closeChannel()

	client := core.NewClient(m.user.Email)
	client.Join(ch.ID)
	m.app.Messages.Attach(client)

	m.channel = newChannelModel(ch, client, m.width, m.height)
	m.screen = screenChannel

	return tea.Batch(
		m.channel.input.Focus(),
		m.loadHistory(ch.ID),
		waitForLive(client, m.channel.done),
	)
}

// closeChannel detaches the live client. Safe to call when no channel is open.
func (m *Model) closeChannel() {
	if m.channel.client == nil {
		return
	}
	m.app.Messages.Detach(m.channel.client)
	m.channel.client.LeaveAll()
	close(m.channel.done)
	m.channel.client = nil
}

func (m Model) loadHistory(channelID int64) tea.Cmd {
	ctx, a := m.ctx, m.app
	return func() tea.Msg {
		msgs, err := a.Messages.MessagesForChannel(ctx, channelID)
		return historyLoadedMsg{channelID: channelID, msgs: msgs, err: err}
	}
}

func waitForLive(client *core.Client, done <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-client.Messages:
			return liveMessageMsg{clientID: client.ID, msg: msg}
		case <-done:
			return nil
		}
	}
}

func (m *Model) post() tea.Cmd {
	content := m.channel.input.Value()
	if _, err := validateDraft(content); err != nil {
		m.channel.err = err
		return nil
	}

	m.channel.posting = true
	m.channel.err = nil
	ctx, a, channelID, userID := m.ctx, m.app, m.channel.channel.ID, m.user.ID
	return func() tea.Msg {
		msg, err := a.Messages.Post(ctx, channelID, userID, &content)
		return postResultMsg{msg: msg, err: err}
	}
}

// validateDraft mirrors the service rules so obvious mistakes skip a round trip.
func validateDraft(content string) (int, error) {
	n := utf8.RuneCountInString(strings.TrimSpace(content))
	if n == 0 {
		return 0, common.InvalidInput("message content cannot be empty")
	}
	if n > common.MaxMessageLength {
		return n, &common.MessageTooLongError{Actual: n, Max: common.MaxMessageLength}
	}
	return n, nil
}

func (m Model) updateChannel(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.channelID != m.channel.channel.ID {
			return m, nil
		}
		if msg.err != nil {
			m.channel.err = msg.err
			return m, nil
		}
		for _, stored := range msg.msgs {
			m.channel.add(*stored)
		}
		m.channel.render()
		return m, nil

	case liveMessageMsg:
		if m.channel.client == nil || msg.clientID != m.channel.client.ID {
			return m, nil
		}
		if m.channel.add(msg.msg) {
			m.channel.render()
		}
		return m, waitForLive(m.channel.client, m.channel.done)

	case postResultMsg:
		m.channel.posting = false
		if msg.err != nil {
			m.channel.err = msg.err
			return m, nil
		}
		m.channel.input.Reset()
		m.channel.status = "Message posted"
		if m.channel.add(*msg.msg) {
			m.channel.render()
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			m.closeChannel()
			m.screen = screenChannels
			m.channels.loading = true
			return m, m.loadChannels()
		case "enter":
			if m.channel.posting {
				return m, nil
			}
			cmd := m.post()
			return m, cmd
		case "pgup", "pgdown", "ctrl+u", "ctrl+d":
			var cmd tea.Cmd
			m.channel.viewport, cmd = m.channel.viewport.Update(msg)
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.channel.input, cmd = m.channel.input.Update(msg)
	return m, cmd
}

func (m Model) viewChannel() string {
	c := m.channel
	var b strings.Builder

	title := "#" + c.channel.Name
	if c.channel.Description != "" {
		title += "  " + helpStyle.Render(c.channel.Description)
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(boxStyle.Render(c.viewport.View()))
	b.WriteString("\n")
	b.WriteString(c.input.View())
	b.WriteString("\n")

	count := utf8.RuneCountInString(strings.TrimSpace(c.input.Value()))
	counter := fmt.Sprintf("%d/%d", count, common.MaxMessageLength)
	if count > common.MaxMessageLength {
		b.WriteString(errorStyle.Render(counter))
	} else {
		b.WriteString(helpStyle.Render(counter))
	}
	b.WriteString("\n")

	switch {
	case c.posting:
		b.WriteString(helpStyle.Render("Posting..."))
	case c.err != nil:
		b.WriteString(renderError(c.err))
	case c.status != "":
		b.WriteString(successStyle.Render(c.status))
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter: post • pgup/pgdown: scroll • esc: back"))
	return b.String()
}
