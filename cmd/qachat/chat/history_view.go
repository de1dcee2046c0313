package chat

import (
	"strings"

	"qachat/cmd/qachat/ui"
	"qachat/internal/controller"
	"qachat/internal/transcript"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// historyView is the scrollable transcript container. It implements
// controller.Surface on top of a bubbles viewport.
type historyView struct {
	vp       viewport.Model
	styles   ui.Styles
	markdown bool
	renderer *glamour.TermRenderer
	messages []transcript.Message
}

func newHistoryView(styles ui.Styles, markdown bool, width, height int) *historyView {
	h := &historyView{
		vp:       viewport.New(width, height),
		styles:   styles,
		markdown: markdown,
	}
	h.renderer = h.newRenderer(width)
	return h
}

func (h *historyView) newRenderer(width int) *glamour.TermRenderer {
	if !h.markdown {
		return nil
	}
	style := "light"
	if h.styles.Theme.IsDark {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithWordWrap(max(width-4, 20)),
	)
	if err != nil {
		return nil
	}
	return r
}

// Refresh implements controller.Surface.
func (h *historyView) Refresh(messages []transcript.Message) {
	h.messages = messages
	h.vp.SetContent(h.render())
}

// ScrollToBottom implements controller.Surface.
func (h *historyView) ScrollToBottom() {
	h.vp.GotoBottom()
}

// Resize changes the viewport size and rewraps the transcript.
func (h *historyView) Resize(width, height int) {
	h.vp.Width = max(width, 1)
	h.vp.Height = max(height, 1)
	h.renderer = h.newRenderer(h.vp.Width)
	h.vp.SetContent(h.render())
}

// View renders the viewport.
func (h *historyView) View() string {
	return h.vp.View()
}

func (h *historyView) render() string {
	var sb strings.Builder

	for _, msg := range h.messages {
		label, body := h.styles.Message(msg.Sender.Class())

		if msg.Sender == transcript.User {
			sb.WriteString(label.Render("You") + "\n")
			sb.WriteString(body.Render(msg.Text))
			sb.WriteString("\n\n")
			continue
		}

		sb.WriteString(label.Render("Assistant") + "\n")
		switch {
		case msg.IsPending():
			sb.WriteString(h.styles.Placeholder.Render(msg.Text))
			sb.WriteString("\n\n")
		case msg.Text == controller.ErrorText:
			sb.WriteString(h.styles.Error.Render(msg.Text))
			sb.WriteString("\n\n")
		default:
			sb.WriteString(h.safeRenderMarkdown(msg.Text, body))
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

// safeRenderMarkdown renders markdown with panic recovery
func (h *historyView) safeRenderMarkdown(content string, plain lipgloss.Style) (result string) {
	defer func() {
		if r := recover(); r != nil {
			// If glamour panics, return plain text
			result = plain.Render(content)
		}
	}()

	if h.renderer != nil && content != "" {
		rendered, err := h.renderer.Render(content)
		if err == nil {
			return rendered
		}
	}
	return plain.Render(content) + "\n"
}
