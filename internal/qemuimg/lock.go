package qemuimg

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/jbweber/virtstore/internal/command"
)

// CheckLockSupport reports whether qemu-img accepts -U. binary defaults to
// DefaultBinary; a binary that cannot be found is a *command.CmdError.
// The exit status of "qemu-img -h" is ignored, but a run that was cancelled
// or never exited normally is an error.
func CheckLockSupport(ctx context.Context, r command.Runner, binary string) (bool, error) {
	if binary == "" {
		binary = DefaultBinary
	}
	path, err := command.LookPath(binary)
	if err != nil {
		return false, err
	}

	res, err := r.Run(ctx, path, "-h")
	if err != nil {
		if ctx.Err() != nil || res == nil {
			return false, err
		}
		var cmdErr *command.CmdError
		if errors.As(err, &cmdErr) && cmdErr.ExitStatus < 0 {
			return false, err
		}
	}
	supported := strings.Contains(res.Stdout, "-U")
	log.Debug().Str("cmd", res.Command).Bool("supported", supported).Msg("Checked qemu-img lock support")
	return supported, nil
}
