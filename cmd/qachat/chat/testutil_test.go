package chat

import (
	"context"
	"errors"
	"sync"
	"testing"

	"qachat/cmd/qachat/ui"
	"qachat/internal/controller"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
)

// stubBackend answers from a fixed table. Unknown queries fail.
type stubBackend struct {
	mu      sync.Mutex
	replies map[string]string
	calls   []string
}

func (s *stubBackend) Generate(ctx context.Context, query string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, query)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	reply, ok := s.replies[query]
	if !ok {
		return "", errors.New("connection refused")
	}
	return reply, nil
}

func newTestModel(t *testing.T, backend controller.Generator, policy controller.ResolvePolicy) Model {
	t.Helper()
	m := New(Config{
		Backend:    backend,
		BackendURL: "http://localhost:8000/generate",
		Policy:     policy,
		Styles:     ui.NewStyles(ui.LightTheme()),
		CharLimit:  4096,
	})
	t.Cleanup(m.Shutdown)

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return updated.(Model)
}

// send runs one Update and returns the new model.
func send(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	next, ok := updated.(Model)
	require.True(t, ok, "Update returned %T", updated)
	return next, cmd
}

// typeAndSubmit types text into the input and presses Enter.
func typeAndSubmit(t *testing.T, m Model, text string) (Model, tea.Cmd) {
	t.Helper()
	m.input.SetValue(text)
	return send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
}

// resolutions executes cmd (expanding batches) and keeps only backend results.
func resolutions(cmd tea.Cmd) []resolvedMsg {
	if cmd == nil {
		return nil
	}
	switch msg := cmd().(type) {
	case resolvedMsg:
		return []resolvedMsg{msg}
	case tea.BatchMsg:
		var out []resolvedMsg
		for _, c := range msg {
			out = append(out, resolutions(c)...)
		}
		return out
	default:
		return nil
	}
}
