package tui

import (
	"context"
	"strings"

	"github.com/akolanti/ChatPDF/internal/chat"
	"github.com/akolanti/ChatPDF/internal/uploader"
	"github.com/akolanti/ChatPDF/internal/widget"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Model is the terminal chat widget.
type Model struct {
	ctx        context.Context
	controller *chat.Controller
	uploader   *uploader.Uploader
	changes    <-chan struct{}

	input      textinput.Model
	spin       spinner.Model
	frame      int
	transcript viewport.Model
	showFiles  bool
	width      int
	height     int
	quitting   bool
}

func NewModel(ctx context.Context, controller *chat.Controller, up *uploader.Uploader) Model {
	in := textinput.New()
	in.Placeholder = "Ask a question, or /upload <file.pdf>..."
	in.CharLimit = 2000
	in.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot

	m := Model{
		ctx:        ctx,
		controller: controller,
		uploader:   up,
		changes:    controller.Changes(),
		input:      in,
		spin:       sp,
		transcript: viewport.New(80, 20),
		showFiles:  true,
		width:      80,
		height:     24,
	}
	m.refresh()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spin.Tick, waitForChange(m.changes))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.refresh()
		return m, nil

	case stateChangedMsg:
		m.refresh()
		return m, waitForChange(m.changes)

	case controllerClosedMsg:
		m.quitting = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		m.frame++
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "enter":
			return m.submit()
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.transcript, cmd = m.transcript.Update(msg)
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit handles the input line. Empty input does nothing, like a disabled send button.
func (m Model) submit() (tea.Model, tea.Cmd) {
	line := strings.TrimSpace(m.input.Value())
	if line == "" {
		return m, nil
	}

	if name, args, ok := parseCommand(line); ok {
		switch name {
		case "/files":
			m.input.Reset()
			m.showFiles = !m.showFiles
			m.refresh()
			return m, nil
		case "/upload":
			if len(args) == 0 || m.controller.Snapshot().Uploading {
				return m, nil
			}
			m.input.Reset()
			return m, m.uploadCmd(args)
		}
	}

	m.input.Reset()
	return m, m.askCmd(line)
}

func (m *Model) refresh() {
	s := m.controller.Snapshot()
	m.transcript.Width = m.width
	m.transcript.Height = m.transcriptHeight()
	m.transcript.SetContent(widget.RenderTranscript(s.Messages, s.Typing, s.TypingLabel, m.width-2))
	m.transcript.GotoBottom()
}

func (m Model) filesPanel() string {
	if !m.showFiles {
		return ""
	}
	return widget.RenderUploadedFiles(m.controller.UploadedFiles())
}

func (m Model) transcriptHeight() int {
	used := 3
	if panel := m.filesPanel(); panel != "" {
		used += lipgloss.Height(panel)
	}
	if h := m.height - used; h > 3 {
		return h
	}
	return 3
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("PDF Chat") + "\n")
	b.WriteString(m.transcript.View() + "\n")
	if panel := m.filesPanel(); panel != "" {
		b.WriteString(panel + "\n")
	}

	prompt := statusBarStyle.Render(">")
	if m.controller.Snapshot().Uploading {
		prompt = statusBarStyle.Render(widget.Spinner(m.frame))
	}
	b.WriteString(prompt + inputStyle.Render(m.input.View()) + "\n")
	b.WriteString(helpStyle.Render("  Enter: send  /upload <paths>: add PDFs  /files: toggle files  Esc: quit"))
	return b.String()
}
