// Package transcript holds the ordered list of chat messages shown to the user.
// The list is append-only; the only mutation is the one-time resolution of a
// pending bot placeholder.
package transcript

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Sender identifies who produced a message.
type Sender int

const (
	User Sender = iota
	Bot
)

// String returns the sender name.
func (s Sender) String() string {
	switch s {
	case User:
		return "user"
	case Bot:
		return "bot"
	default:
		return "unknown"
	}
}

// Class returns the display class used to style the message ("message user", "message bot").
func (s Sender) Class() string {
	return "message " + s.String()
}

// State tracks a placeholder through its two-step lifecycle.
type State int

const (
	Resolved State = iota
	Pending
)

var (
	ErrNotFound        = errors.New("transcript: message not found")
	ErrAlreadyResolved = errors.New("transcript: message already resolved")
)

// Message is a single transcript entry.
type Message struct {
	ID      string
	Sender  Sender
	Text    string
	State   State
	Created time.Time
}

// IsPending reports whether the message is an unresolved placeholder.
func (m Message) IsPending() bool {
	return m.State == Pending
}

// Transcript is the ordered message sequence. It is not safe for concurrent use;
// callers mutate it from a single UI goroutine.
type Transcript struct {
	messages []Message
	now      func() time.Time
}

// New creates an empty transcript.
func New() *Transcript {
	return &Transcript{now: time.Now}
}

// Append adds a resolved message and returns it.
func (t *Transcript) Append(sender Sender, text string) Message {
	return t.append(sender, text, Resolved)
}

// AppendPlaceholder adds a pending bot message that is later resolved exactly once.
func (t *Transcript) AppendPlaceholder(text string) Message {
	return t.append(Bot, text, Pending)
}

func (t *Transcript) append(sender Sender, text string, state State) Message {
	msg := Message{
		ID:      uuid.NewString(),
		Sender:  sender,
		Text:    text,
		State:   state,
		Created: t.now(),
	}
	t.messages = append(t.messages, msg)
	return msg
}

// Resolve replaces the text of the pending placeholder with the given id.
func (t *Transcript) Resolve(id, text string) error {
	for i := range t.messages {
		if t.messages[i].ID != id {
			continue
		}
		if t.messages[i].State != Pending {
			return ErrAlreadyResolved
		}
		t.messages[i].Text = text
		t.messages[i].State = Resolved
		return nil
	}
	return ErrNotFound
}

// UpdateLast replaces the text of the most recent bot message, whichever
// request created it. Returns false when the transcript has no bot message.
func (t *Transcript) UpdateLast(text string) bool {
	for i := len(t.messages) - 1; i >= 0; i-- {
		if t.messages[i].Sender == Bot {
			t.messages[i].Text = text
			t.messages[i].State = Resolved
			return true
		}
	}
	return false
}

// Messages returns a copy of the transcript in display order.
func (t *Transcript) Messages() []Message {
	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// Last returns the most recent message.
func (t *Transcript) Last() (Message, bool) {
	if len(t.messages) == 0 {
		return Message{}, false
	}
	return t.messages[len(t.messages)-1], true
}

// Len returns the number of messages.
func (t *Transcript) Len() int {
	return len(t.messages)
}

// Pending returns the number of unresolved placeholders.
func (t *Transcript) Pending() int {
	n := 0
	for _, m := range t.messages {
		if m.State == Pending {
			n++
		}
	}
	return n
}
