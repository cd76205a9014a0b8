package virsh

import (
	"context"

	"github.com/jbweber/virtstore/internal/command"
)

// PoolList runs "pool-list" with extra options such as "--all".
func (v *Virsh) PoolList(ctx context.Context, extra ...string) (*command.Result, error) {
	return v.Run(ctx, "pool-list", command.SplitOptions(extra...)...)
}

// PoolInfo runs "pool-info <name>".
func (v *Virsh) PoolInfo(ctx context.Context, name string) (*command.Result, error) {
	return v.Run(ctx, "pool-info", name)
}

// PoolDestroy runs "pool-destroy <name>".
func (v *Virsh) PoolDestroy(ctx context.Context, name string) (*command.Result, error) {
	return v.Run(ctx, "pool-destroy", name)
}

// PoolUndefine runs "pool-undefine <name>".
func (v *Virsh) PoolUndefine(ctx context.Context, name string) (*command.Result, error) {
	return v.Run(ctx, "pool-undefine", name)
}

// PoolAutostart runs "pool-autostart <name>"; pass "--disable" to turn it off.
func (v *Virsh) PoolAutostart(ctx context.Context, name string, extra ...string) (*command.Result, error) {
	return v.Run(ctx, "pool-autostart", append([]string{name}, command.SplitOptions(extra...)...)...)
}

// PoolBuild runs "pool-build <name>" with options such as "--overwrite".
func (v *Virsh) PoolBuild(ctx context.Context, name string, extra ...string) (*command.Result, error) {
	return v.Run(ctx, "pool-build", append([]string{name}, command.SplitOptions(extra...)...)...)
}

// PoolStart runs "pool-start <name>".
func (v *Virsh) PoolStart(ctx context.Context, name string) (*command.Result, error) {
	return v.Run(ctx, "pool-start", name)
}

// PoolRefresh runs "pool-refresh <name>".
func (v *Virsh) PoolRefresh(ctx context.Context, name string) (*command.Result, error) {
	return v.Run(ctx, "pool-refresh", name)
}

// PoolDefineAs runs "pool-define-as". An empty target omits --target, which
// network pools such as rbd require.
func (v *Virsh) PoolDefineAs(ctx context.Context, name, poolType, target string, extra ...string) (*command.Result, error) {
	args := []string{"--name", name, "--type", poolType}
	if target != "" {
		args = append(args, "--target", target)
	}
	args = append(args, command.SplitOptions(extra...)...)
	return v.Run(ctx, "pool-define-as", args...)
}

// PoolDefine runs "pool-define <file>".
func (v *Virsh) PoolDefine(ctx context.Context, xmlFile string) (*command.Result, error) {
	return v.Run(ctx, "pool-define", xmlFile)
}

// PoolDumpXML runs "pool-dumpxml <name>".
func (v *Virsh) PoolDumpXML(ctx context.Context, name string) (*command.Result, error) {
	return v.Run(ctx, "pool-dumpxml", name)
}
