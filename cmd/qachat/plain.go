package main

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"qachat/internal/controller"
	"qachat/internal/logging"
	"qachat/internal/transcript"
)

// lineInput is the input field of line mode: the last line read.
type lineInput struct {
	line string
}

func (l *lineInput) Value() string { return l.line }
func (l *lineInput) Reset()        { l.line = "" }

// writerSurface prints each resolved message once, and again if its text
// changes. Placeholders are not printed.
type writerSurface struct {
	out     io.Writer
	printed map[string]string
}

func newWriterSurface(out io.Writer) *writerSurface {
	return &writerSurface{out: out, printed: make(map[string]string)}
}

func (w *writerSurface) Refresh(messages []transcript.Message) {
	for _, msg := range messages {
		if msg.IsPending() {
			continue
		}
		if text, ok := w.printed[msg.ID]; ok && text == msg.Text {
			continue
		}
		w.printed[msg.ID] = msg.Text
		fmt.Fprintf(w.out, "%s: %s\n", label(msg.Sender), msg.Text)
	}
}

func (w *writerSurface) ScrollToBottom() {}

func label(s transcript.Sender) string {
	if s == transcript.User {
		return "You"
	}
	return "Assistant"
}

// readLines sends each line of in on the returned channel until in is
// exhausted or ctx is done. The error channel receives the scanner error
// when in ends.
func readLines(ctx context.Context, in io.Reader) (<-chan string, <-chan error) {
	lines := make(chan string)
	errc := make(chan error, 1)

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		errc <- scanner.Err()
	}()

	return lines, errc
}

// runPlain reads one question per line and waits for each answer before
// reading the next. It returns when input ends or ctx is cancelled, even
// while blocked on input.
func runPlain(ctx context.Context, in io.Reader, out io.Writer, gen controller.Generator, policy controller.ResolvePolicy) error {
	input := &lineInput{}
	ctl := controller.New(input, newWriterSurface(out), gen,
		controller.WithPolicy(policy),
		controller.WithLogger(logging.Get(logging.CategorySession)),
	)

	lines, errc := readLines(ctx, in)
	for {
		fmt.Fprint(out, "> ")

		var (
			line string
			ok   bool
		)
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return nil
		case line, ok = <-lines:
		}
		if !ok {
			break
		}
		if ctx.Err() != nil {
			fmt.Fprintln(out)
			return nil
		}

		input.line = line
		req, submitted := ctl.Submit(input.Value())
		if !submitted {
			continue
		}
		ctl.Apply(ctl.Request(ctx, req))
	}
	fmt.Fprintln(out)

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
	default:
	}
	return nil
}
