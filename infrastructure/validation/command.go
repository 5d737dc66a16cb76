package validation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/helixml/linedit/domain/edit"
)

// DefaultCommandTimeout bounds an external validator run.
const DefaultCommandTimeout = 10 * time.Second

// Command validates content by piping it to an external program on stdin.
// A non-zero exit rejects the content; the first line of stderr (or
// stdout) becomes the message.
type Command struct {
	name    string
	args    []string
	timeout time.Duration
}

// NewCommand creates a Command validator. A timeout of zero uses
// DefaultCommandTimeout.
func NewCommand(name string, args []string, timeout time.Duration) *Command {
	if timeout <= 0 {
		timeout = DefaultCommandTimeout
	}
	return &Command{name: name, args: append([]string(nil), args...), timeout: timeout}
}

var lineRef = regexp.MustCompile(`(?i)line[ :]*(\d+)|:(\d+):`)

// Validate implements edit.SyntaxValidator.
func (c *Command) Validate(ctx context.Context, text string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.name, c.args...)
	cmd.Stdin = strings.NewReader(text)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return fmt.Errorf("run %s: %w", c.name, ctx.Err())
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return fmt.Errorf("run %s: %w", c.name, err)
	}

	msg := firstLine(stderr.String())
	if msg == "" {
		msg = firstLine(stdout.String())
	}
	if msg == "" {
		msg = fmt.Sprintf("%s exited with status %d", c.name, exitErr.ExitCode())
	}
	return &edit.SyntaxError{Line: lineOf(msg), Message: msg}
}

func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func lineOf(msg string) int {
	m := lineRef.FindStringSubmatch(msg)
	if m == nil {
		return 0
	}
	digits := m[1]
	if digits == "" {
		digits = m[2]
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return n
}
