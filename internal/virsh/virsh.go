// Package virsh binds virsh subcommands used for storage pool and volume
// management. Each method issues exactly one subcommand and returns the raw
// output; interpretation of the text lives in internal/storage.
package virsh

import (
	"context"
	"time"

	"github.com/jbweber/virtstore/internal/command"
)

// DefaultBinary is the virsh executable looked up on PATH.
const DefaultBinary = "virsh"

// Virsh issues subcommands against one libvirt connection.
type Virsh struct {
	binary  string
	uri     string
	timeout time.Duration
	runner  command.Runner
}

// Option configures a Virsh.
type Option func(*Virsh)

// WithBinary overrides the virsh executable.
func WithBinary(path string) Option {
	return func(v *Virsh) {
		if path != "" {
			v.binary = path
		}
	}
}

// WithURI connects to uri (virsh -c) instead of the default connection.
func WithURI(uri string) Option {
	return func(v *Virsh) {
		v.uri = uri
	}
}

// WithRunner replaces the process runner.
func WithRunner(r command.Runner) Option {
	return func(v *Virsh) {
		v.runner = r
	}
}

// WithTimeout sets the per-command timeout of the default runner. It has no
// effect when WithRunner supplies the runner.
func WithTimeout(timeout time.Duration) Option {
	return func(v *Virsh) {
		v.timeout = timeout
	}
}

// New creates a Virsh bound to the local default connection.
func New(opts ...Option) *Virsh {
	v := &Virsh{binary: DefaultBinary}
	for _, opt := range opts {
		opt(v)
	}
	if v.runner == nil {
		v.runner = command.NewExecRunner(v.timeout)
	}
	return v
}

// URI returns the connection URI, empty for the default connection.
func (v *Virsh) URI() string {
	return v.uri
}

// Run executes an arbitrary virsh subcommand.
func (v *Virsh) Run(ctx context.Context, subcommand string, args ...string) (*command.Result, error) {
	argv := make([]string, 0, len(args)+3)
	if v.uri != "" {
		argv = append(argv, "-c", v.uri)
	}
	argv = append(argv, subcommand)
	argv = append(argv, args...)
	return v.runner.Run(ctx, v.binary, argv...)
}

// Version runs "virsh version".
func (v *Virsh) Version(ctx context.Context) (*command.Result, error) {
	return v.Run(ctx, "version")
}
