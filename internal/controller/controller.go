// Package controller implements the chat controller: it captures user text,
// shows it, sends it to the backend and shows the reply (or an error
// placeholder) while keeping the transcript scrolled to the newest entry.
//
// The controller owns the transcript and receives its input field, display
// surface and backend at construction time. Apart from Request, every method
// must be called from the single UI goroutine.
package controller

import (
	"context"
	"fmt"
	"strings"

	"qachat/internal/transcript"

	"go.uber.org/zap"
)

// Display literals.
const (
	PlaceholderText = "..."
	NoAnswerText    = "No answer."
	ErrorText       = "Error contacting backend."
)

// ResolvePolicy decides which bot entry a reply updates when several
// submissions are in flight.
type ResolvePolicy string

const (
	// ResolvePlaceholder updates the placeholder created by the reply's own submission.
	ResolvePlaceholder ResolvePolicy = "placeholder"
	// ResolveLast updates the most recent bot entry, whichever submission created it.
	ResolveLast ResolvePolicy = "last"
)

// ParseResolvePolicy validates a policy name. Empty selects ResolvePlaceholder.
func ParseResolvePolicy(s string) (ResolvePolicy, error) {
	switch ResolvePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", ResolvePlaceholder:
		return ResolvePlaceholder, nil
	case ResolveLast:
		return ResolveLast, nil
	default:
		return "", fmt.Errorf("unknown resolve policy %q (valid: placeholder, last)", s)
	}
}

// Input is the text field the user types into.
type Input interface {
	Value() string
	Reset()
}

// Surface displays the transcript.
type Surface interface {
	Refresh(messages []transcript.Message)
	ScrollToBottom()
}

// Generator answers a query. An empty answer means the backend had none.
type Generator interface {
	Generate(ctx context.Context, query string) (string, error)
}

// Request is an outstanding backend call created by Submit.
type Request struct {
	PlaceholderID string
	Query         string
}

// Resolution is the outcome of a Request, ready to be applied to the transcript.
type Resolution struct {
	PlaceholderID string
	Text          string
	Err           error
}

// Option configures a Controller.
type Option func(*Controller)

// WithPolicy sets the overlapping-submission policy.
func WithPolicy(p ResolvePolicy) Option {
	return func(c *Controller) {
		c.policy = p
	}
}

// WithLogger sets the logger used for request failures.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

// Controller drives one chat session.
type Controller struct {
	input      Input
	surface    Surface
	backend    Generator
	transcript *transcript.Transcript
	policy     ResolvePolicy
	inflight   int
	log        *zap.Logger
}

// New creates a controller bound to its collaborators.
func New(input Input, surface Surface, backend Generator, opts ...Option) *Controller {
	c := &Controller{
		input:      input,
		surface:    surface,
		backend:    backend,
		transcript: transcript.New(),
		policy:     ResolvePlaceholder,
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Policy returns the active resolve policy.
func (c *Controller) Policy() ResolvePolicy {
	return c.policy
}

// Submit shows the user's text and a placeholder reply, clears the input and
// returns the request to run. Whitespace-only text is ignored.
func (c *Controller) Submit(inputText string) (Request, bool) {
	text := strings.TrimSpace(inputText)
	if text == "" {
		return Request{}, false
	}

	c.Render(transcript.User, text)
	c.input.Reset()

	placeholder := c.transcript.AppendPlaceholder(PlaceholderText)
	c.inflight++
	c.show()

	return Request{PlaceholderID: placeholder.ID, Query: text}, true
}

// Request performs the backend call for req. It only touches the backend, so
// it may run on any goroutine; the result is applied with Apply.
func (c *Controller) Request(ctx context.Context, req Request) Resolution {
	reply, err := c.backend.Generate(ctx, req.Query)
	if err != nil {
		c.log.Debug("request failed",
			zap.String("placeholder", req.PlaceholderID),
			zap.Error(err))
	}
	return Resolution{
		PlaceholderID: req.PlaceholderID,
		Text:          ResolveText(reply, err),
		Err:           err,
	}
}

// Apply writes a resolution into the transcript according to the policy.
func (c *Controller) Apply(res Resolution) {
	if c.inflight > 0 {
		c.inflight--
	}
	if c.policy == ResolveLast || res.PlaceholderID == "" {
		c.UpdateLast(res.Text)
		return
	}
	if err := c.transcript.Resolve(res.PlaceholderID, res.Text); err != nil {
		c.log.Warn("placeholder not updated",
			zap.String("placeholder", res.PlaceholderID),
			zap.Error(err))
	}
	c.show()
}

// Render appends a message and scrolls to it.
func (c *Controller) Render(sender transcript.Sender, text string) transcript.Message {
	msg := c.transcript.Append(sender, text)
	c.show()
	return msg
}

// UpdateLast replaces the text of the most recent bot entry and scrolls to the
// bottom. Without a bot entry the transcript is left unchanged.
func (c *Controller) UpdateLast(text string) {
	if c.transcript.UpdateLast(text) {
		c.surface.Refresh(c.transcript.Messages())
	}
	c.surface.ScrollToBottom()
}

// Refresh redraws the surface, e.g. after a resize.
func (c *Controller) Refresh() {
	c.show()
}

// Messages returns a copy of the transcript.
func (c *Controller) Messages() []transcript.Message {
	return c.transcript.Messages()
}

// Pending returns the number of submissions whose resolution has not been
// applied yet. Under ResolveLast this can differ from the number of
// placeholders still showing "...".
func (c *Controller) Pending() int {
	return c.inflight
}

// LastBot returns the most recent bot message.
func (c *Controller) LastBot() (transcript.Message, bool) {
	msgs := c.transcript.Messages()
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Sender == transcript.Bot {
			return msgs[i], true
		}
	}
	return transcript.Message{}, false
}

func (c *Controller) show() {
	c.surface.Refresh(c.transcript.Messages())
	c.surface.ScrollToBottom()
}

// ResolveText maps a backend outcome to the text shown in place of the placeholder.
func ResolveText(reply string, err error) string {
	if err != nil {
		return ErrorText
	}
	if reply == "" {
		return NoAnswerText
	}
	return reply
}
