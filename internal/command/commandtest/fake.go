// Package commandtest provides a scripted command.Runner for tests.
package commandtest

import (
	"context"
	"fmt"
	"sync"

	"github.com/jbweber/virtstore/internal/command"
)

// Response is the scripted outcome for one command line.
type Response struct {
	Stdout     string
	Stderr     string
	ExitStatus int
}

// Fake replays responses keyed by the full command line (see command.Line).
// When a key has several responses they are consumed in order and the last
// one repeats. Unknown command lines fail with exit status 127.
type Fake struct {
	mu        sync.Mutex
	responses map[string][]Response
	calls     []string
}

// NewFake creates an empty Fake.
func NewFake() *Fake {
	return &Fake{responses: make(map[string][]Response)}
}

// On scripts responses for a command line.
func (f *Fake) On(line string, responses ...Response) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[line] = append(f.responses[line], responses...)
	return f
}

// OK scripts a successful response with the given stdout.
func (f *Fake) OK(line, stdout string) *Fake {
	return f.On(line, Response{Stdout: stdout})
}

// Fail scripts a failing response with the given stderr.
func (f *Fake) Fail(line, stderr string) *Fake {
	return f.On(line, Response{Stderr: stderr, ExitStatus: 1})
}

// Calls returns the command lines run so far.
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// Count returns how many times line was run.
func (f *Fake) Count(line string) int {
	n := 0
	for _, c := range f.Calls() {
		if c == line {
			n++
		}
	}
	return n
}

// Run implements command.Runner.
func (f *Fake) Run(_ context.Context, name string, args ...string) (*command.Result, error) {
	line := command.Line(name, args...)

	f.mu.Lock()
	f.calls = append(f.calls, line)
	queue, ok := f.responses[line]
	var resp Response
	if !ok || len(queue) == 0 {
		resp = Response{Stderr: fmt.Sprintf("unexpected command: %s", line), ExitStatus: 127}
	} else {
		resp = queue[0]
		if len(queue) > 1 {
			f.responses[line] = queue[1:]
		}
	}
	f.mu.Unlock()

	res := &command.Result{
		Command:    line,
		Stdout:     resp.Stdout,
		Stderr:     resp.Stderr,
		ExitStatus: resp.ExitStatus,
	}
	if resp.ExitStatus != 0 {
		return res, &command.CmdError{
			Command:    line,
			ExitStatus: resp.ExitStatus,
			Stdout:     resp.Stdout,
			Stderr:     resp.Stderr,
		}
	}
	return res, nil
}
