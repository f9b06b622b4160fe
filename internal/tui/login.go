package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/wirefeed/internal/store"
)

type authResultMsg struct {
	user       *store.User
	registered bool
	err        error
}

type loginModel struct {
	inputs []textinput.Model // 0: email, 1: password
	focus  int
	busy   bool
	err    error
}

func newLoginModel() loginModel {
	m := loginModel{inputs: make([]textinput.Model, 2)}

	for i := range m.inputs {
		t := textinput.New()
		t.Cursor.Style = focusedStyle
		t.CharLimit = 128
		t.Width = 40
		switch i {
		case 0:
			t.Prompt = "Email:    "
			t.Placeholder = "you@example.com"
		case 1:
			t.Prompt = "Password: "
			t.EchoMode = textinput.EchoPassword
			t.EchoCharacter = '•'
		}
		m.inputs[i] = t
	}
	m.inputs[0].Focus()
	return m
}

func (l loginModel) init() tea.Cmd {
	return textinput.Blink
}

func (l *loginModel) cycleFocus() tea.Cmd {
	l.inputs[l.focus].Blur()
	l.focus = (l.focus + 1) % len(l.inputs)
	return l.inputs[l.focus].Focus()
}

func (m Model) updateLogin(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case authResultMsg:
		m.login.busy = false
		if msg.err != nil {
			m.login.err = msg.err
			return m, nil
		}
		m.user = msg.user
		m.login.err = nil
		m.login.inputs[1].Reset()
		m.screen = screenChannels
		m.channels = channelsModel{loading: true}
		if msg.registered {
			m.channels.status = "Welcome, " + msg.user.Email
		}
		return m, m.loadChannels()

	case tea.KeyMsg:
		if m.login.busy {
			return m, nil
		}
		switch msg.String() {
		case "esc":
			return m, tea.Quit
		case "tab", "shift+tab", "up", "down":
			cmd := m.login.cycleFocus()
			return m, cmd
		case "enter":
			cmd := m.submitAuth(false)
			return m, cmd
		case "ctrl+r":
			cmd := m.submitAuth(true)
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.login.inputs[m.login.focus], cmd = m.login.inputs[m.login.focus].Update(msg)
	return m, cmd
}

// submitAuth hashes and queries off the UI loop.
func (m *Model) submitAuth(register bool) tea.Cmd {
	email := m.login.inputs[0].Value()
	password := m.login.inputs[1].Value()
	m.login.busy = true
	m.login.err = nil

	ctx, a := m.ctx, m.app
	return func() tea.Msg {
		if register {
			if a.Auth.Exists(ctx, email) {
				return authResultMsg{registered: true, err: store.ErrDuplicateUser}
			}
			user, err := a.Auth.Register(ctx, email, password)
			return authResultMsg{user: user, registered: true, err: err}
		}
		user, err := a.Auth.Authenticate(ctx, email, password)
		return authResultMsg{user: user, err: err}
	}
}

func (m Model) viewLogin() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("wirefeed"))
	b.WriteString("\n")
	for _, in := range m.login.inputs {
		b.WriteString(in.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch {
	case m.login.busy:
		b.WriteString(helpStyle.Render("Checking credentials..."))
	case m.login.err != nil:
		b.WriteString(renderError(m.login.err))
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter: sign in • ctrl+r: register • tab: switch field • esc: quit"))
	return b.String()
}
