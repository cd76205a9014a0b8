package storage

import (
	"context"

	"github.com/jbweber/virtstore/internal/command"
)

// PoolType is the libvirt storage pool backend passed to pool-define-as.
type PoolType string

const (
	PoolTypeDir     PoolType = "dir"     // Directory-based storage
	PoolTypeFS      PoolType = "fs"      // Pre-formatted block device
	PoolTypeNetFS   PoolType = "netfs"   // Network exported directory (NFS)
	PoolTypeLogical PoolType = "logical" // LVM volume group
	PoolTypeDisk    PoolType = "disk"    // Partitioned physical disk
	PoolTypeISCSI   PoolType = "iscsi"   // iSCSI target
	PoolTypeRBD     PoolType = "rbd"     // Ceph RBD
)

// PoolStateActive is the pool-list state of a running pool.
const PoolStateActive = "active"

// Column and attribute names printed by virsh.
const (
	ColumnState     = "State"
	ColumnAutostart = "Autostart"
	AttrUUID        = "UUID"
	AttrPersistent  = "Persistent"
	AttrCapacity    = "Capacity"
	AttrAllocation  = "Allocation"
	AttrAvailable   = "Available"
)

// PoolRecord is one pool-list row keyed by column header, without the name
// column. It is rebuilt from virsh output on every query.
type PoolRecord map[string]string

// State returns the State column, empty when absent.
func (r PoolRecord) State() string {
	return r[ColumnState]
}

// Autostart returns the Autostart column, empty when absent.
func (r PoolRecord) Autostart() string {
	return r[ColumnAutostart]
}

// PoolCommands is the set of virsh pool subcommands StoragePool needs.
// *virsh.Virsh satisfies it.
type PoolCommands interface {
	PoolList(ctx context.Context, extra ...string) (*command.Result, error)
	PoolInfo(ctx context.Context, name string) (*command.Result, error)
	PoolDestroy(ctx context.Context, name string) (*command.Result, error)
	PoolUndefine(ctx context.Context, name string) (*command.Result, error)
	PoolAutostart(ctx context.Context, name string, extra ...string) (*command.Result, error)
	PoolBuild(ctx context.Context, name string, extra ...string) (*command.Result, error)
	PoolStart(ctx context.Context, name string) (*command.Result, error)
	PoolRefresh(ctx context.Context, name string) (*command.Result, error)
	PoolDefineAs(ctx context.Context, name, poolType, target string, extra ...string) (*command.Result, error)
	PoolDefine(ctx context.Context, xmlFile string) (*command.Result, error)
	PoolDumpXML(ctx context.Context, name string) (*command.Result, error)
}

// VolumeCommands is the set of virsh volume subcommands PoolVolume needs.
// *virsh.Virsh satisfies it.
type VolumeCommands interface {
	VolList(ctx context.Context, pool string) (*command.Result, error)
	VolInfo(ctx context.Context, name, pool string) (*command.Result, error)
	VolCreateAs(ctx context.Context, name, pool, capacity, allocation, format string) (*command.Result, error)
	VolDelete(ctx context.Context, name, pool string) (*command.Result, error)
	VolClone(ctx context.Context, oldName, newName, pool string) (*command.Result, error)
	VolPath(ctx context.Context, name, pool string) (*command.Result, error)
	VolDumpXML(ctx context.Context, name, pool string) (*command.Result, error)
}
