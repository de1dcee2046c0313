// Package chat provides the interactive TUI chat interface for qachat.
// The bubbletea Model hosts a controller.Controller: the text input is the
// controller's input field and the history view is its transcript surface.
package chat

import (
	"context"
	"sync"

	"qachat/cmd/qachat/ui"
	"qachat/internal/controller"
	"qachat/internal/transcript"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

const inputPlaceholder = "Ask a question... (Enter to send, Esc to exit)"

// Config holds configuration for initializing the chat interface.
type Config struct {
	Backend    controller.Generator
	BackendURL string // shown in the header
	Policy     controller.ResolvePolicy
	Styles     ui.Styles
	Markdown   bool
	CharLimit  int
	Logger     *zap.Logger
}

// resolvedMsg carries a finished backend request back to the UI goroutine.
type resolvedMsg controller.Resolution

// Model is the main model for the interactive chat interface
type Model struct {
	input   *textinput.Model
	history *historyView
	spinner spinner.Model
	styles  ui.Styles
	ctl     *controller.Controller

	backendURL string
	width      int
	height     int
	ready      bool

	// Root context for in-flight requests, cancelled on shutdown
	ctx          context.Context
	cancel       context.CancelFunc
	shutdownOnce *sync.Once

	log *zap.Logger
}

// New initializes the chat model.
func New(cfg Config) Model {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	ti := textinput.New()
	ti.Placeholder = inputPlaceholder
	ti.Focus()
	ti.Prompt = "│ "
	ti.CharLimit = cfg.CharLimit
	ti.Width = 80
	ti.PromptStyle = cfg.Styles.Prompt
	ti.TextStyle = cfg.Styles.UserMessage

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = cfg.Styles.Spinner

	history := newHistoryView(cfg.Styles, cfg.Markdown, 80, 20)

	policy := cfg.Policy
	if policy == "" {
		policy = controller.ResolvePlaceholder
	}
	ctl := controller.New(&ti, history, cfg.Backend,
		controller.WithPolicy(policy),
		controller.WithLogger(log),
	)

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		input:        &ti,
		history:      history,
		spinner:      sp,
		styles:       cfg.Styles,
		ctl:          ctl,
		backendURL:   cfg.BackendURL,
		ctx:          ctx,
		cancel:       cancel,
		shutdownOnce: &sync.Once{},
		log:          log,
	}
}

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Shutdown cancels in-flight requests. Safe to call multiple times.
func (m Model) Shutdown() {
	m.shutdownOnce.Do(func() {
		pending := m.ctl.Pending()
		if pending > 0 {
			m.log.Info("shutting down with pending requests", zap.Int("pending", pending))
		}
		m.cancel()
	})
}

// Messages returns the transcript.
func (m Model) Messages() []transcript.Message {
	return m.ctl.Messages()
}

// request runs the backend call off the UI goroutine and reports back with a resolvedMsg.
func (m Model) request(req controller.Request) tea.Cmd {
	ctl, ctx := m.ctl, m.ctx
	return func() tea.Msg {
		return resolvedMsg(ctl.Request(ctx, req))
	}
}

// Run starts the interactive chat program and blocks until it exits.
func Run(cfg Config) error {
	m := New(cfg)
	defer m.Shutdown()

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	_, err := p.Run()
	return err
}
