// Package storage manages libvirt storage pools and volumes through virsh.
//
// The package is a thin layer over virsh subcommands:
//   - StoragePool: list, inspect, define, build, start, destroy, autostart,
//     refresh and delete pools
//   - PoolVolume: list, inspect, create, clone and delete the volumes of one pool
//   - Parsers turning pool-list, pool-info, vol-list and vol-info text into maps
//
// Nothing is cached. Pool and volume records are rebuilt from virsh output on
// every call, so the libvirt daemon remains the only authority on state.
//
// Consumer-Side Interfaces:
//
// StoragePool and PoolVolume depend on the PoolCommands and VolumeCommands
// interfaces, which *virsh.Virsh satisfies. Tests drive them with a scripted
// command runner replaying recorded virsh output.
//
// Example usage:
//
//	v := virsh.New(virsh.WithURI("qemu:///system"))
//	pools := storage.NewStoragePool(v)
//
//	if err := pools.DefineDirPool(ctx, "scratch", "/var/lib/libvirt/scratch"); err != nil {
//	    return err
//	}
//	if err := pools.BuildPool(ctx, "scratch"); err != nil {
//	    return err
//	}
//	if err := pools.StartPool(ctx, "scratch"); err != nil {
//	    return err
//	}
//
//	vols := storage.NewPoolVolume("scratch", v)
//	if err := vols.CreateVolume(ctx, "disk.qcow2", "1G", "", "qcow2"); err != nil {
//	    return err
//	}
package storage
