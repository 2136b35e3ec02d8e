// Package widget is a terminal rendition of the website chat window.
package widget

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dwizi/concierge/internal/resolver"
	"github.com/dwizi/concierge/internal/sanitize"
)

const Greeting = "Hello! How can I assist you today with our IT consulting services?"

type Sessions interface {
	Submit(ctx context.Context, sessionID, text string) (string, resolver.Outcome)
}

type speaker int

const (
	speakerBot speaker = iota
	speakerUser
)

type line struct {
	from speaker
	text string
}

type replyMsg struct {
	sessionID string
	outcome   resolver.Outcome
}

type model struct {
	ctx       context.Context
	sessions  Sessions
	sessionID string
	keys      keyMap
	theme     theme
	input     textinput.Model
	spinner   spinner.Model
	lines     []line
	waiting   bool
	width     int
}

func newModel(ctx context.Context, sessions Sessions, sessionID string) model {
	input := textinput.New()
	input.Placeholder = "Type your message..."
	input.CharLimit = 500
	input.Focus()

	dots := spinner.New()
	dots.Spinner = spinner.Dot

	return model{
		ctx:       ctx,
		sessions:  sessions,
		sessionID: sessionID,
		keys:      newKeyMap(),
		theme:     newTheme(),
		input:     input,
		spinner:   dots,
		lines:     []line{{from: speakerBot, text: Greeting}},
	}
}

// Run opens the chat window on the given terminal streams and blocks until
// the visitor closes it.
func Run(ctx context.Context, sessions Sessions, sessionID string, in io.Reader, out io.Writer) error {
	program := tea.NewProgram(
		newModel(ctx, sessions, sessionID),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
	)
	_, err := program.Run()
	return err
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = typed.Width
		m.input.Width = max(typed.Width-8, 10)
		return m, nil
	case tea.KeyMsg:
		switch {
		case key.Matches(typed, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(typed, m.keys.Send):
			return m.send()
		}
		if m.waiting {
			return m, nil
		}
	case replyMsg:
		m.waiting = false
		m.sessionID = typed.sessionID
		m.lines = append(m.lines, line{from: speakerBot, text: typed.outcome.Reply})
		m.input.Focus()
		return m, nil
	case spinner.TickMsg:
		if !m.waiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(typed)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) send() (tea.Model, tea.Cmd) {
	if m.waiting {
		return m, nil
	}
	text := sanitize.Text(m.input.Value())
	if text == "" {
		return m, nil
	}
	m.lines = append(m.lines, line{from: speakerUser, text: text})
	m.input.Reset()
	m.input.Blur()
	m.waiting = true
	return m, tea.Batch(m.spinner.Tick, m.ask(text))
}

func (m model) ask(text string) tea.Cmd {
	ctx, sessions, sessionID := m.ctx, m.sessions, m.sessionID
	return func() tea.Msg {
		id, outcome := sessions.Submit(ctx, sessionID, text)
		return replyMsg{sessionID: id, outcome: outcome}
	}
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString(m.theme.header.Render("Azayd IT Consulting"))
	b.WriteString("\n\n")
	for _, entry := range m.lines {
		b.WriteString(m.renderLine(entry))
		b.WriteString("\n")
	}
	if m.waiting {
		b.WriteString(m.theme.typing.Render(m.spinner.View() + " Assistant is typing..."))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.theme.inputBox.Render(m.input.View()))
	b.WriteString("\n")
	b.WriteString(m.theme.help.Render(m.keys.helpLine()))
	return b.String()
}

func (m model) renderLine(entry line) string {
	label, style := m.theme.botLabel.Render("Assistant"), m.theme.bot
	if entry.from == speakerUser {
		label, style = m.theme.userLabel.Render("You"), m.theme.user
	}
	if m.width > 12 {
		style = style.Width(m.width - 8)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, label, " ", style.Render(entry.text))
}
