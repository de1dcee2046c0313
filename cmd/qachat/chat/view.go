package chat

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// View renders the UI
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var content string
	if len(m.ctl.Messages()) == 0 {
		content = m.styles.Muted.Render("Type a question and press Enter.")
	} else {
		content = m.history.View()
	}
	chatView := m.styles.Content.Render(content)

	status := ""
	if n := m.ctl.Pending(); n > 0 {
		status = m.spinner.View() + " " + m.styles.Warning.Render(waitingText(n))
	}

	inputArea := m.styles.Input.Width(max(m.width-4, 10)).Render(m.input.View())

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderHeader(),
		chatView,
		status,
		inputArea,
		m.renderFooter(),
	)
}

func waitingText(pending int) string {
	if pending == 1 {
		return "Waiting for backend..."
	}
	return fmt.Sprintf("Waiting for backend (%d requests)...", pending)
}

// renderHeader renders the header
func (m Model) renderHeader() string {
	title := m.styles.Header.Render(" qachat ")
	backend := m.styles.Muted.Render(" " + m.backendURL)

	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Center, title, backend),
		m.styles.RenderDivider(m.width),
	)
}

// renderFooter renders the footer
func (m Model) renderFooter() string {
	help := "Enter: send │ PgUp/PgDn: scroll │ Esc/Ctrl+C: quit"
	count := fmt.Sprintf("%d messages", len(m.ctl.Messages()))
	return m.styles.Footer.Render(help + " │ " + count)
}
