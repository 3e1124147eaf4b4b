package widget

import (
	"strings"

	"github.com/akolanti/ChatPDF/internal/domain/chatModel"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
)

const (
	userLabel = "You"
	botLabel  = "PDF Chat Bot"
	minWidth  = 20
)

// RenderTranscript draws the chat in order, followed by the typing label while the bot is typing.
func RenderTranscript(messages []chatModel.Message, typing bool, label string, width int) string {
	if width < minWidth {
		width = minWidth
	}
	body := lipgloss.NewStyle().Width(width).PaddingLeft(1)

	var b strings.Builder
	for i, m := range messages {
		if i > 0 {
			b.WriteString("\n")
		}
		header := botRoleStyle.Render(botLabel)
		if m.Sender == chatModel.SenderUser {
			header = userRoleStyle.Render(userLabel)
		}
		if !m.Time.IsZero() {
			header += dimStyle.Render(" " + m.Time.Format("15:04"))
		}
		b.WriteString(header + "\n")
		b.WriteString(body.Render(m.Text) + "\n")
	}

	if typing {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(botRoleStyle.Render(botLabel) + "\n")
		b.WriteString(body.Render(typingStyle.Render(label)) + "\n")
	}
	return b.String()
}

var spinnerFrames = spinner.MiniDot.Frames

// Spinner returns the frame to show at the given tick.
func Spinner(tick int) string {
	if tick < 0 {
		tick = -tick
	}
	return spinnerStyle.Render(spinnerFrames[tick%len(spinnerFrames)])
}
