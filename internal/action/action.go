// Package action performs the side effects of fired schedule actions.
package action

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os/exec"
	"strings"

	"github.com/sadopc/routine/internal/schedule"
)

const DefaultShell = "sh"

// Runner executes command actions through a shell and waits for them.
type Runner struct {
	Shell string
}

// Run executes command with "<shell> -c". A non-zero exit is an error that
// carries the exit status and the trimmed output.
func (r Runner) Run(ctx context.Context, command string) ([]byte, error) {
	shell := r.Shell
	if shell == "" {
		shell = DefaultShell
	}
	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, shell, "-c", command)
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	if err == nil {
		return out.Bytes(), nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		msg := strings.TrimSpace(out.String())
		if msg == "" {
			return out.Bytes(), fmt.Errorf("exit status %d", exitErr.ExitCode())
		}
		return out.Bytes(), fmt.Errorf("exit status %d: %s", exitErr.ExitCode(), msg)
	}
	return out.Bytes(), fmt.Errorf("run %s: %w", shell, err)
}

// Notifier presents a notification. It returns the snooze offsets chosen
// synchronously; presenters that answer later return none and snooze through
// the dispatcher themselves.
type Notifier interface {
	Notify(ctx context.Context, a schedule.Action, offsets []int) ([]int, error)
}

// Executor routes actions by kind: commands to the Runner, notifications to
// the Notifier.
type Executor struct {
	Runner   Runner
	Notifier Notifier
}

func (e *Executor) Execute(ctx context.Context, a schedule.Action, offsets []int) ([]int, error) {
	switch a.Kind {
	case schedule.Command:
		out, err := e.Runner.Run(ctx, a.Content)
		if len(out) > 0 {
			log.Printf("action: `%s` output: %s", a.Content, strings.TrimSpace(string(out)))
		}
		return nil, err
	case schedule.Notification:
		if e.Notifier == nil {
			log.Printf("action: notification %s %q (no presenter)", a.Time, a.Content)
			return nil, nil
		}
		return e.Notifier.Notify(ctx, a, offsets)
	default:
		return nil, fmt.Errorf("unknown action kind %d", a.Kind)
	}
}
