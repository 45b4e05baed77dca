// Package ui provides the optional terminal chat interface.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/nibzard/duke-go/internal/session"
)

// Handler processes one command line. *session.Session implements it.
type Handler interface {
	Handle(line string) session.Reply
}

// TUIOption configures the TUI behavior.
type TUIOption func(*tuiConfig)

type tuiConfig struct {
	altScreen bool
	dataPath  string
}

// WithAltScreen runs the TUI in the terminal's alternate screen.
func WithAltScreen(enabled bool) TUIOption {
	return func(c *tuiConfig) {
		c.altScreen = enabled
	}
}

// WithDataPath shows the data file path in the footer.
func WithDataPath(path string) TUIOption {
	return func(c *tuiConfig) {
		c.dataPath = path
	}
}

// RunTUI starts the chat TUI around h. It returns when the user types the
// exit keyword, presses ctrl+c or esc, or ctx is cancelled.
func RunTUI(ctx context.Context, h Handler, opts ...TUIOption) error {
	c := &tuiConfig{altScreen: true}
	for _, opt := range opts {
		opt(c)
	}

	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}

	programOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if c.altScreen {
		programOpts = append(programOpts, tea.WithAltScreen())
	}
	program := tea.NewProgram(newTUIModel(h, c.dataPath), programOpts...)
	_, err := program.Run()
	return err
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	userStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	dukeStyle   = lipgloss.NewStyle().PaddingLeft(2)
	errorStyle  = dukeStyle.Foreground(lipgloss.Color("9"))
	hintStyle   = dukeStyle.Foreground(lipgloss.Color("11"))
	footerStyle = lipgloss.NewStyle().Faint(true)
)

type speaker int

const (
	speakerDuke speaker = iota
	speakerUser
)

type entry struct {
	from  speaker
	text  string
	style lipgloss.Style
}

type tuiModel struct {
	handler  Handler
	dataPath string
	input    textinput.Model
	entries  []entry
	width    int
	height   int
	done     bool
}

func newTUIModel(h Handler, dataPath string) *tuiModel {
	ti := textinput.New()
	ti.Placeholder = "todo read book"
	ti.Prompt = "> "
	ti.CharLimit = 1024
	ti.Width = 60
	ti.Focus()

	return &tuiModel{
		handler:  h,
		dataPath: dataPath,
		input:    ti,
		entries:  []entry{{from: speakerDuke, text: session.Greeting, style: dukeStyle}},
	}
}

func (m *tuiModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.done = true
			return m, tea.Quit
		case "enter":
			return m.submit()
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if msg.Width > 10 {
			m.input.Width = msg.Width - 10
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *tuiModel) submit() (tea.Model, tea.Cmd) {
	line := m.input.Value()
	if strings.TrimSpace(line) == "" {
		return m, nil
	}
	m.input.SetValue("")

	reply := m.handler.Handle(line)
	style := dukeStyle
	switch {
	case reply.Result.Rejected():
		style = errorStyle
	case reply.Result.Hint:
		style = hintStyle
	}
	m.entries = append(m.entries,
		entry{from: speakerUser, text: line, style: userStyle},
		entry{from: speakerDuke, text: reply.Text, style: style},
	)

	if reply.Exit {
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m *tuiModel) View() string {
	var b strings.Builder
	writeTitle(&b)

	lines := m.transcript()
	if budget := m.height - 6; m.height > 0 && budget > 0 && len(lines) > budget {
		lines = lines[len(lines)-budget:]
	}
	for _, line := range lines {
		b.WriteString(line + "\n")
	}
	b.WriteString("\n")

	if !m.done {
		b.WriteString(m.input.View() + "\n\n")
	}
	writeFooter(&b, m.dataPath)
	return b.String()
}

// transcript renders every entry as display lines.
func (m *tuiModel) transcript() []string {
	var lines []string
	for _, e := range m.entries {
		text := e.text
		if e.from == speakerUser {
			text = "> " + text
		}
		if m.width > 4 {
			e.style = e.style.MaxWidth(m.width)
		}
		for _, line := range strings.Split(text, "\n") {
			lines = append(lines, e.style.Render(line))
		}
	}
	return lines
}

func writeTitle(b *strings.Builder) {
	b.WriteString(titleStyle.Render("Duke") + "\n\n")
}

func writeFooter(b *strings.Builder, dataPath string) {
	footer := "enter to send | bye, esc or ctrl+c to quit"
	if dataPath != "" {
		footer += " | " + dataPath
	}
	b.WriteString(footerStyle.Render(footer) + "\n")
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
