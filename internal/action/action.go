// Package action runs the action attached to a configured event.
package action

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"buildhook/internal/common/fsutil"
	"buildhook/internal/events"
)

// Evaluator expands script containers and properties in action text.
type Evaluator interface {
	Eval(text string) (string, error)
}

// Error wraps an action failure with the event that produced it.
type Error struct {
	Event string
	Err   error
}

func (e *Error) Error() string { return fmt.Sprintf("action %q: %v", e.Event, e.Err) }
func (e *Error) Unwrap() error  { return e.Err }

// IsActionError reports whether err came from running an action.
func IsActionError(err error) bool {
	var e *Error
	return errors.As(err, &e)
}

// Config tunes an Executor. Zero values select defaults.
type Config struct {
	// Shell is the command prefix used for command mode, e.g. "sh -c".
	Shell   string
	Timeout time.Duration
	Engine  Evaluator
	Logger  zerolog.Logger
}

// Executor implements the coordinator's action executor.
type Executor struct {
	shell   []string
	timeout time.Duration
	engine  Evaluator
	log     zerolog.Logger
}

func New(cfg Config) *Executor {
	shell := strings.Fields(cfg.Shell)
	if len(shell) == 0 {
		shell = defaultShell()
	}
	return &Executor{shell: shell, timeout: cfg.Timeout, engine: cfg.Engine, log: cfg.Logger}
}

func defaultShell() []string {
	if runtime.GOOS == "windows" {
		return []string{"cmd", "/C"}
	}
	return []string{"sh", "-c"}
}

// Exec runs evt's action. The bool reports whether the action did anything
// worth logging.
func (x *Executor) Exec(ctx context.Context, evt events.Event, cat events.Category) (bool, error) {
	text := evt.Mode.Command
	if strings.TrimSpace(text) == "" {
		return false, nil
	}
	if x.engine != nil {
		expanded, err := x.engine.Eval(text)
		if err != nil {
			return false, &Error{Event: evt.Label(), Err: err}
		}
		text = expanded
	}
	l := x.logger(ctx).With().Str("category", string(cat)).Str("event", evt.Label()).Logger()
	switch evt.Mode.Type {
	case events.ModeScript:
		l.Debug().Str("result", text).Msg("script evaluated")
		return strings.TrimSpace(text) != "", nil
	default:
		return x.runCommand(ctx, l, evt, text)
	}
}

func (x *Executor) runCommand(ctx context.Context, l zerolog.Logger, evt events.Event, text string) (bool, error) {
	if strings.TrimSpace(text) == "" {
		return false, nil
	}
	dir, err := fsutil.WorkDir(evt.Mode.Dir)
	if err != nil {
		return false, &Error{Event: evt.Label(), Err: err}
	}
	if x.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, x.timeout)
		defer cancel()
	}
	args := append(append([]string(nil), x.shell[1:]...), text)
	cmd := exec.CommandContext(ctx, x.shell[0], args...)
	cmd.Dir = dir
	// children of the shell may keep the output pipe open after a kill
	cmd.WaitDelay = 500 * time.Millisecond
	start := time.Now()
	out, err := cmd.CombinedOutput()
	output := strings.TrimSpace(string(out))
	if ctx.Err() == context.DeadlineExceeded {
		err = fmt.Errorf("command timeout after %s", x.timeout)
	}
	if err != nil {
		if output != "" {
			err = fmt.Errorf("%w: %s", err, lastLine(output))
		}
		return false, &Error{Event: evt.Label(), Err: err}
	}
	l.Debug().Dur("dur", time.Since(start)).Int("output_bytes", len(output)).Msg("command finished")
	return true, nil
}

func (x *Executor) logger(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &x.log
}

func lastLine(s string) string {
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
