package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/akolanti/ChatPDF/internal/config"
	"github.com/akolanti/ChatPDF/internal/uploader"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
)

// stateChangedMsg is sent whenever the controller reports a change.
type stateChangedMsg struct{}

// controllerClosedMsg is sent once the controller's change channel is closed.
type controllerClosedMsg struct{}

func waitForChange(changes <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return controllerClosedMsg{}
		}
		return stateChangedMsg{}
	}
}

func (m Model) askCmd(question string) tea.Cmd {
	ctx := withTrace(m.ctx)
	controller := m.controller
	return func() tea.Msg {
		controller.SendMessage(ctx, question)
		return nil
	}
}

// uploadCmd opens each path and hands the selection to the uploader.
// Paths that cannot be opened are reported in the chat and left out.
func (m Model) uploadCmd(paths []string) tea.Cmd {
	ctx := withTrace(m.ctx)
	controller := m.controller
	up := m.uploader
	return func() tea.Msg {
		var files []uploader.SelectedFile
		for _, p := range paths {
			f, err := uploader.FromPath(p)
			if err != nil {
				controller.DisplayChatbotMessage(fmt.Sprintf("Could not open %s: %v", p, err))
				continue
			}
			files = append(files, f)
		}
		up.HandleFileUpload(ctx, files)
		return nil
	}
}

func withTrace(ctx context.Context) context.Context {
	return context.WithValue(ctx, config.TRACE_ID_KEY, uuid.NewString())
}

// parseCommand splits "/upload a.pdf b.pdf" into the command and its arguments.
func parseCommand(line string) (string, []string, bool) {
	if !strings.HasPrefix(line, "/") {
		return "", nil, false
	}
	fields := strings.Fields(line)
	return fields[0], fields[1:], true
}
