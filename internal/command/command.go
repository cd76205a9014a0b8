package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultTimeout bounds a single invocation when the runner has none set.
const DefaultTimeout = 5 * time.Minute

// Result is the captured outcome of one process invocation.
type Result struct {
	Command    string
	Stdout     string
	Stderr     string
	ExitStatus int
	Duration   time.Duration
}

// Runner executes an external command.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (*Result, error)
}

// CmdError reports a command that could not be started or exited non-zero.
type CmdError struct {
	Command    string
	ExitStatus int
	Stdout     string
	Stderr     string
	Err        error
}

func (e *CmdError) Error() string {
	msg := fmt.Sprintf("command %q failed", e.Command)
	if e.ExitStatus != 0 {
		msg += fmt.Sprintf(" with exit status %d", e.ExitStatus)
	}
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += ": " + stderr
	} else if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *CmdError) Unwrap() error {
	return e.Err
}

// IsCmdError reports whether err wraps a *CmdError.
func IsCmdError(err error) bool {
	var cmdErr *CmdError
	return errors.As(err, &cmdErr)
}

// ExecRunner runs commands as local processes.
type ExecRunner struct {
	timeout time.Duration
}

// NewExecRunner creates a runner. A zero timeout means DefaultTimeout.
func NewExecRunner(timeout time.Duration) *ExecRunner {
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &ExecRunner{timeout: timeout}
}

// Run executes name with args and waits for it to exit.
// A non-zero exit status is returned as a *CmdError alongside the Result.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	line := Line(name, args...)
	log.Debug().Str("cmd", line).Msg("running command")

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	res := &Result{
		Command:  line,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if err != nil {
		res.ExitStatus = -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitStatus = exitErr.ExitCode()
		}
		if ctx.Err() != nil {
			err = fmt.Errorf("%w: %w", ctx.Err(), err)
		}
		return res, &CmdError{
			Command:    line,
			ExitStatus: res.ExitStatus,
			Stdout:     res.Stdout,
			Stderr:     res.Stderr,
			Err:        err,
		}
	}

	log.Debug().
		Str("cmd", line).
		Dur("duration", res.Duration).
		Msg("command finished")
	return res, nil
}

// LookPath resolves name on PATH, reporting a missing binary as a *CmdError.
func LookPath(name string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", &CmdError{
			Command:    "which " + name,
			ExitStatus: 1,
			Err:        fmt.Errorf("%s command is not found: %w", name, err),
		}
	}
	return path, nil
}

// Line renders a command and its arguments as a single shell-like string.
func Line(name string, args ...string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, name)
	for _, a := range args {
		if a == "" || strings.ContainsAny(a, " \t\"'") {
			a = fmt.Sprintf("%q", a)
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}

// SplitOptions turns an option string such as "--source-dev /dev/sdb" into
// separate arguments.
func SplitOptions(opts ...string) []string {
	var out []string
	for _, o := range opts {
		out = append(out, strings.Fields(o)...)
	}
	return out
}
