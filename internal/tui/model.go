// Package tui is the interactive terminal front end.
package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/wirefeed/internal/app"
	"github.com/vovakirdan/wirefeed/internal/store"
)

type screen int

const (
	screenLogin screen = iota
	screenChannels
	screenChannel
	screenFeed
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	// rows used by titles, input and help around a viewport
	chromeHeight = 10
)

// Model is the root bubbletea model. It routes messages to the active screen.
type Model struct {
	ctx  context.Context
	app  *app.App
	user *store.User

	screen        screen
	width, height int

	login    loginModel
	channels channelsModel
	channel  channelModel
	feed     feedModel
}

// New creates the root model starting at the login screen.
func New(ctx context.Context, a *app.App) Model {
	return Model{
		ctx:    ctx,
		app:    a,
		screen: screenLogin,
		width:  defaultWidth,
		height: defaultHeight,
		login:  newLoginModel(),
	}
}

// Run starts the program and blocks until the user quits or ctx is done.
func Run(ctx context.Context, a *app.App) error {
	p := tea.NewProgram(New(ctx, a), tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if m, ok := final.(Model); ok {
		m.closeChannel()
	}
	return err
}

func (m Model) Init() tea.Cmd {
	return m.login.init()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.channel.resize(m.width, m.height)
		m.feed.resize(m.width, m.height)
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.closeChannel()
			return m, tea.Quit
		}
	}

	switch m.screen {
	case screenChannels:
		return m.updateChannels(msg)
	case screenChannel:
		return m.updateChannel(msg)
	case screenFeed:
		return m.updateFeed(msg)
	default:
		return m.updateLogin(msg)
	}
}

func (m Model) View() string {
	var body string
	switch m.screen {
	case screenChannels:
		body = m.viewChannels()
	case screenChannel:
		body = m.viewChannel()
	case screenFeed:
		body = m.viewFeed()
	default:
		body = m.viewLogin()
	}

	if m.user != nil {
		header := helpStyle.Render("signed in as " + m.user.Email)
		body = header + "\n" + body
	}
	return docStyle.Render(body)
}

func formatMessage(msg store.Message, channel string) string {
	var b strings.Builder
	if channel != "" {
		b.WriteString(focusedStyle.Render("#" + channel))
		b.WriteString(" ")
	}
	b.WriteString(timeStyle.Render(msg.CreatedAt.Local().Format("Jan 02 15:04")))
	b.WriteString(" ")
	b.WriteString(authorStyle.Render(msg.AuthorEmail))
	b.WriteString("\n")
	b.WriteString(msg.Content)
	return b.String()
}

func renderError(err error) string {
	if err == nil {
		return ""
	}
	return errorStyle.Render(fmt.Sprintf("Error: %v", err))
}
