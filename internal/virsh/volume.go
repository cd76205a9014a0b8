package virsh

import (
	"context"

	"github.com/jbweber/virtstore/internal/command"
)

// VolList runs "vol-list <pool>".
func (v *Virsh) VolList(ctx context.Context, pool string) (*command.Result, error) {
	return v.Run(ctx, "vol-list", pool)
}

// VolInfo runs "vol-info <name> --pool <pool>".
func (v *Virsh) VolInfo(ctx context.Context, name, pool string) (*command.Result, error) {
	return v.Run(ctx, "vol-info", name, "--pool", pool)
}

// VolCreateAs runs "vol-create-as". Empty allocation or format leave the
// libvirt defaults in place.
func (v *Virsh) VolCreateAs(ctx context.Context, name, pool, capacity, allocation, format string) (*command.Result, error) {
	args := []string{pool, name, capacity}
	if allocation != "" {
		args = append(args, "--allocation", allocation)
	}
	if format != "" {
		args = append(args, "--format", format)
	}
	return v.Run(ctx, "vol-create-as", args...)
}

// VolDelete runs "vol-delete <name> --pool <pool>".
func (v *Virsh) VolDelete(ctx context.Context, name, pool string) (*command.Result, error) {
	return v.Run(ctx, "vol-delete", name, "--pool", pool)
}

// VolClone runs "vol-clone <old> <new> --pool <pool>".
func (v *Virsh) VolClone(ctx context.Context, oldName, newName, pool string) (*command.Result, error) {
	return v.Run(ctx, "vol-clone", oldName, newName, "--pool", pool)
}

// VolPath runs "vol-path <name> --pool <pool>".
func (v *Virsh) VolPath(ctx context.Context, name, pool string) (*command.Result, error) {
	return v.Run(ctx, "vol-path", name, "--pool", pool)
}

// VolDumpXML runs "vol-dumpxml <name> --pool <pool>".
func (v *Virsh) VolDumpXML(ctx context.Context, name, pool string) (*command.Result, error) {
	return v.Run(ctx, "vol-dumpxml", name, "--pool", pool)
}
