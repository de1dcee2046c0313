package chat

import (
	"qachat/internal/controller"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// Layout rows outside the transcript viewport.
const (
	headerHeight  = 3
	inputHeight   = 3
	footerHeight  = 2
	spinnerHeight = 1
	contentPad    = 2
)

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.Shutdown()
			return m, tea.Quit

		case tea.KeyEnter:
			return m.handleSubmit()

		case tea.KeyPgUp, tea.KeyPgDown:
			m.history.vp, vpCmd = m.history.vp.Update(msg)
			return m, vpCmd
		}

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.MouseMsg:
		m.history.vp, vpCmd = m.history.vp.Update(msg)
		return m, vpCmd

	case spinner.TickMsg:
		if m.ctl.Pending() == 0 {
			// Let the tick chain stop once nothing is outstanding
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case resolvedMsg:
		// Failures are already logged by the controller
		m.ctl.Apply(controller.Resolution(msg))
		return m, nil
	}

	*m.input, tiCmd = m.input.Update(msg)
	return m, tiCmd
}

// handleSubmit sends the current input to the backend. Earlier requests may
// still be in flight; each gets its own placeholder.
func (m Model) handleSubmit() (tea.Model, tea.Cmd) {
	wasIdle := m.ctl.Pending() == 0

	req, ok := m.ctl.Submit(m.input.Value())
	if !ok {
		return m, nil
	}
	m.log.Debug("submitted query",
		zap.String("placeholder_id", req.PlaceholderID),
		zap.Int("query_len", len(req.Query)))

	if wasIdle {
		return m, tea.Batch(m.spinner.Tick, m.request(req))
	}
	return m, m.request(req)
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	vpHeight := height - headerHeight - inputHeight - footerHeight - spinnerHeight - contentPad
	m.history.Resize(width-4, vpHeight)
	m.input.Width = max(width-8, 10)
	m.ready = true

	// Rewrap at the new width
	m.ctl.Refresh()
}
