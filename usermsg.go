package toolbox

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// UserMessenger delivers progress and remediation messages to the operator.
type UserMessenger interface {
	Message(ctx context.Context, msg string)
	// Confirm asks a yes/no question and returns the answer. The default
	// (empty input) is no.
	Confirm(ctx context.Context, prompt string) (bool, error)
}

type terminalMessenger struct {
	writer io.Writer
	reader *bufio.Reader
}

// NewTerminalMessenger returns a UserMessenger that prints to writer and reads
// confirmations from reader.
func NewTerminalMessenger(writer io.Writer, reader io.Reader) UserMessenger {
	return &terminalMessenger{writer: writer, reader: bufio.NewReader(reader)}
}

func (tm *terminalMessenger) Message(ctx context.Context, msg string) {
	if tm.writer == nil {
		slog.DebugContext(ctx, "userMsg (no writer)", "msg", msg)
		return
	}
	fmt.Fprintln(tm.writer, "\033[90m"+msg+"\033[0m")
}

func (tm *terminalMessenger) Confirm(ctx context.Context, prompt string) (bool, error) {
	if tm.writer == nil || tm.reader == nil {
		return false, nil
	}
	fmt.Fprintf(tm.writer, "%s [y/N]? ", prompt)
	text, err := tm.reader.ReadString('\n')
	if err != nil {
		return false, fmt.Errorf("couldn't read from stdin: %w", err)
	}
	text = strings.TrimSpace(strings.ToLower(text))
	return text == "y" || text == "yes", nil
}

type nullMessenger struct{}

// NewNullMessenger returns a UserMessenger that discards messages and answers
// no to every confirmation.
func NewNullMessenger() UserMessenger {
	return &nullMessenger{}
}

func (nm *nullMessenger) Message(ctx context.Context, msg string) {
	slog.DebugContext(ctx, "userMsg (null messenger)", "msg", msg)
}

func (nm *nullMessenger) Confirm(ctx context.Context, prompt string) (bool, error) {
	slog.DebugContext(ctx, "confirm (null messenger)", "prompt", prompt)
	return false, nil
}
