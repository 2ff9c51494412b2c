package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"sitechat/internal/service"
)

// ChatPort is the TUI-facing subset of the chat service.
type ChatPort interface {
	Load(ctx context.Context, target string) (service.LoadReport, error)
	Ask(ctx context.Context, question string) (string, error)
}

type role int

const (
	roleUser role = iota
	roleBot
	roleSystem
)

type entry struct {
	role role
	text string
}

type loadedMsg struct {
	report service.LoadReport
	err    error
}

type answerMsg struct {
	answer string
	err    error
}

// Model is the Bubble Tea model for the chat application.
type Model struct {
	ctx        context.Context
	port       ChatPort
	input      textinput.Model
	viewport   viewport.Model
	transcript []entry
	summary    string
	loaded     string
	status     string
	busy       bool
	ready      bool
	preload    string
}

// New creates a chat model. A non-empty target is loaded on start.
func New(ctx context.Context, port ChatPort, target string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Paste a URL, /load <path>, or ask a question"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		ctx:      ctx,
		port:     port,
		input:    ti,
		viewport: vp,
		status:   "Load a page or file to start.",
		preload:  strings.TrimSpace(target),
	}
}

// Init starts the cursor blink and the optional preload.
func (m Model) Init() tea.Cmd {
	if m.preload == "" {
		return textinput.Blink
	}
	return tea.Batch(textinput.Blink, m.loadCmd(m.preload))
}

// Update handles key, window and async result events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, th := transcriptBoxStyle.GetFrameSize()
		_, ih := inputBoxStyle.GetFrameSize()
		reserved := 2 + 1 + ih + 1 // header + summary, status, spacer
		vh := msg.Height - reserved - th
		m.viewport.Width = maxInt(20, msg.Width-2)
		m.viewport.Height = maxInt(3, vh)
		m.refresh()
		return m, nil
	case loadedMsg:
		m.busy = false
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
			m.transcript = append(m.transcript, entry{roleSystem, "Failed to load content: " + msg.err.Error()})
			m.refresh()
			return m, nil
		}
		m.transcript = nil
		m.loaded = msg.report.Target
		m.summary = msg.report.Summary
		m.status = fmt.Sprintf("Successfully indexed %d segments", msg.report.Count)
		m.transcript = append(m.transcript, entry{roleSystem, fmt.Sprintf("Loaded %s via %s in %s.", msg.report.Target, msg.report.Source, msg.report.Took.Round(time.Millisecond))})
		m.refresh()
		return m, nil
	case answerMsg:
		m.busy = false
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
			m.transcript = append(m.transcript, entry{roleSystem, "Error: " + msg.err.Error()})
		} else {
			m.status = "Ready."
			m.transcript = append(m.transcript, entry{roleBot, msg.answer})
		}
		m.refresh()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		if msg.Type == tea.KeyEnter {
			return m.submit()
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	var vcmd tea.Cmd
	// typed characters belong to the input, not the viewport key bindings
	if k, ok := msg.(tea.KeyMsg); !ok || (k.Type != tea.KeyRunes && k.Type != tea.KeySpace) {
		m.viewport, vcmd = m.viewport.Update(msg)
	}
	return m, tea.Batch(cmd, vcmd)
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}
	if m.busy {
		m.status = "Still working, please wait..."
		return m, nil
	}
	m.input.SetValue("")
	switch kind, arg := parseInput(text); kind {
	case inputClear:
		m.transcript = nil
		m.status = "Transcript cleared."
		m.refresh()
		return m, nil
	case inputLoad:
		if arg == "" {
			m.status = "Usage: /load <url or path>"
			return m, nil
		}
		m.busy = true
		m.status = "Loading " + arg + "..."
		return m, m.loadCmd(arg)
	default:
		m.busy = true
		m.status = "Thinking..."
		m.transcript = append(m.transcript, entry{roleUser, text})
		m.refresh()
		return m, m.askCmd(text)
	}
}

func (m Model) loadCmd(target string) tea.Cmd {
	ctx, port := m.ctx, m.port
	return func() tea.Msg {
		report, err := port.Load(ctx, target)
		return loadedMsg{report: report, err: err}
	}
}

func (m Model) askCmd(question string) tea.Cmd {
	ctx, port := m.ctx, m.port
	return func() tea.Msg {
		answer, err := port.Ask(ctx, question)
		return answerMsg{answer: answer, err: err}
	}
}

// View renders the header, transcript, input and status line.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	title := "sitechat"
	if m.loaded != "" {
		title += " · " + m.loaded
	}
	header := headerStyle.Render(title)
	summary := summaryStyle.Render(firstLine(m.summary))
	body := transcriptBoxStyle.Render(m.viewport.View())
	input := inputBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + summary + "\n" + body + "\n" + input + "\n" + status
}

func (m *Model) refresh() {
	m.viewport.SetContent(renderTranscript(m.transcript, m.viewport.Width))
	m.viewport.GotoBottom()
}

type inputKind int

const (
	inputQuestion inputKind = iota
	inputLoad
	inputClear
)

// parseInput classifies a submitted line. URLs load directly; other
// commands start with a slash.
func parseInput(text string) (inputKind, string) {
	lower := strings.ToLower(text)
	switch {
	case lower == "/clear":
		return inputClear, ""
	case lower == "/load" || strings.HasPrefix(lower, "/load "):
		return inputLoad, strings.TrimSpace(text[len("/load"):])
	case strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://"):
		return inputLoad, text
	}
	return inputQuestion, text
}

func renderTranscript(entries []entry, width int) string {
	if len(entries) == 0 {
		return hintStyle.Render("No messages yet.")
	}
	wrap := lipgloss.NewStyle().Width(maxInt(10, width-2))
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		switch e.role {
		case roleUser:
			parts = append(parts, userStyle.Render("You: ")+wrap.Render(e.text))
		case roleBot:
			parts = append(parts, botStyle.Render("Bot:")+"\n"+wrap.Render(e.text))
		default:
			parts = append(parts, systemStyle.Render(wrap.Render(e.text)))
		}
	}
	return strings.Join(parts, "\n\n")
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

var (
	headerStyle        = lipgloss.NewStyle().Bold(true)
	summaryStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	hintStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
	userStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	botStyle           = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	systemStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	transcriptBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
