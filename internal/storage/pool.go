package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
)

// StoragePool wraps virsh pool subcommands. It holds no state of its own:
// every query re-reads pool-list or pool-info.
type StoragePool struct {
	virsh PoolCommands
}

// NewStoragePool creates a StoragePool issuing commands through v.
func NewStoragePool(v PoolCommands) *StoragePool {
	return &StoragePool{virsh: v}
}

// ListPools returns every defined pool, active or not, keyed by name.
func (p *StoragePool) ListPools(ctx context.Context) (map[string]PoolRecord, error) {
	res, err := p.virsh.PoolList(ctx, "--all")
	if err != nil {
		return nil, fmt.Errorf("failed to list pools: %w", err)
	}

	pools, err := ParsePoolList(res.Stdout)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pool list: %w", err)
	}
	return pools, nil
}

// PoolExists reports whether name is defined. A failing pool-list counts as
// not existing.
func (p *StoragePool) PoolExists(ctx context.Context, name string) bool {
	pools, err := p.ListPools(ctx)
	if err != nil {
		return false
	}
	_, ok := pools[name]
	return ok
}

// poolColumn looks up one pool-list column for name.
func (p *StoragePool) poolColumn(ctx context.Context, name, column string) (string, error) {
	pools, err := p.ListPools(ctx)
	if err != nil {
		return "", err
	}
	record, ok := pools[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrPoolNotFound, name)
	}
	value, ok := record[column]
	if !ok {
		return "", fmt.Errorf("%w: %s of pool %s", ErrAttributeMissing, column, name)
	}
	return value, nil
}

// PoolState returns "active" or "inactive".
func (p *StoragePool) PoolState(ctx context.Context, name string) (string, error) {
	return p.poolColumn(ctx, name, ColumnState)
}

// PoolAutostart returns "yes" or "no".
func (p *StoragePool) PoolAutostart(ctx context.Context, name string) (string, error) {
	return p.poolColumn(ctx, name, ColumnAutostart)
}

// PoolInfo returns the pool-info attributes (Name, UUID, State, Persistent,
// Autostart, Capacity, ...). The map is empty when pool-info fails.
func (p *StoragePool) PoolInfo(ctx context.Context, name string) map[string]string {
	res, err := p.virsh.PoolInfo(ctx, name)
	if err != nil {
		log.Error().Err(err).Str("pool", name).Msg("Get pool info failed")
		return map[string]string{}
	}
	return ParsePoolInfo(res.Stdout)
}

func (p *StoragePool) poolAttr(ctx context.Context, name, attr string) (string, error) {
	value, ok := p.PoolInfo(ctx, name)[attr]
	if !ok {
		return "", fmt.Errorf("%w: %s of pool %s", ErrAttributeMissing, attr, name)
	}
	return value, nil
}

// PoolUUID returns the pool UUID from pool-info.
func (p *StoragePool) PoolUUID(ctx context.Context, name string) (string, error) {
	return p.poolAttr(ctx, name, AttrUUID)
}

// IsPoolActive reports whether the pool is listed as active.
func (p *StoragePool) IsPoolActive(ctx context.Context, name string) bool {
	state, err := p.PoolState(ctx, name)
	return err == nil && state == PoolStateActive
}

// IsPoolPersistent reports whether pool-info lists the pool as persistent.
func (p *StoragePool) IsPoolPersistent(ctx context.Context, name string) (bool, error) {
	value, err := p.poolAttr(ctx, name, AttrPersistent)
	if err != nil {
		return false, err
	}
	return value == "yes", nil
}

// DeletePool destroys the pool if it is active and then undefines it.
//
// pool-delete is not used since it removes the underlying storage. An
// undefine failure is ignored when the pool is gone afterwards.
func (p *StoragePool) DeletePool(ctx context.Context, name string) error {
	if p.IsPoolActive(ctx, name) {
		if _, err := p.virsh.PoolDestroy(ctx, name); err != nil {
			log.Error().Err(err).Str("pool", name).Msg("Destroy pool failed")
			return fmt.Errorf("failed to destroy pool %s: %w", name, err)
		}
	}

	if _, err := p.virsh.PoolUndefine(ctx, name); err != nil {
		if p.PoolExists(ctx, name) {
			log.Error().Err(err).Str("pool", name).Msg("Undefine pool failed")
			return fmt.Errorf("failed to undefine pool %s: %w", name, err)
		}
	}

	log.Info().Str("pool", name).Msg("Deleted pool")
	return nil
}

// SetPoolAutostart marks the pool autostart. Pass "--disable" to clear it.
func (p *StoragePool) SetPoolAutostart(ctx context.Context, name string, extra ...string) error {
	if _, err := p.virsh.PoolAutostart(ctx, name, extra...); err != nil {
		log.Error().Err(err).Str("pool", name).Msg("Autostart pool failed")
		return fmt.Errorf("failed to set autostart on pool %s: %w", name, err)
	}
	log.Info().Str("pool", name).Msg("Set pool autostart")
	return nil
}

// BuildPool runs pool-build with optional flags such as "--overwrite".
func (p *StoragePool) BuildPool(ctx context.Context, name string, extra ...string) error {
	if _, err := p.virsh.PoolBuild(ctx, name, extra...); err != nil {
		log.Error().Err(err).Str("pool", name).Msg("Build pool failed")
		return fmt.Errorf("failed to build pool %s: %w", name, err)
	}
	log.Info().Str("pool", name).Msg("Built pool")
	return nil
}

// StartPool starts the pool unless it is already active.
func (p *StoragePool) StartPool(ctx context.Context, name string) error {
	if p.IsPoolActive(ctx, name) {
		log.Info().Str("pool", name).Msg("Pool is already active")
		return nil
	}
	if _, err := p.virsh.PoolStart(ctx, name); err != nil {
		log.Error().Err(err).Str("pool", name).Msg("Start pool failed")
		return fmt.Errorf("failed to start pool %s: %w", name, err)
	}
	log.Info().Str("pool", name).Msg("Started pool")
	return nil
}

// DestroyPool stops the pool unless it is already inactive.
func (p *StoragePool) DestroyPool(ctx context.Context, name string) error {
	if !p.IsPoolActive(ctx, name) {
		log.Info().Str("pool", name).Msg("Pool is already inactive")
		return nil
	}
	if _, err := p.virsh.PoolDestroy(ctx, name); err != nil {
		log.Error().Err(err).Str("pool", name).Msg("Destroy pool failed")
		return fmt.Errorf("failed to destroy pool %s: %w", name, err)
	}
	log.Info().Str("pool", name).Msg("Destroyed pool")
	return nil
}

// RefreshPool rescans the pool's backing storage.
func (p *StoragePool) RefreshPool(ctx context.Context, name string) error {
	if _, err := p.virsh.PoolRefresh(ctx, name); err != nil {
		log.Error().Err(err).Str("pool", name).Msg("Refresh pool failed")
		return fmt.Errorf("failed to refresh pool %s: %w", name, err)
	}
	return nil
}

func (p *StoragePool) defineAs(ctx context.Context, name string, poolType PoolType, target string, extra ...string) error {
	if _, err := p.virsh.PoolDefineAs(ctx, name, string(poolType), target, extra...); err != nil {
		log.Error().Err(err).Str("pool", name).Str("type", string(poolType)).Msg("Define pool failed")
		return fmt.Errorf("failed to define %s pool %s: %w", poolType, name, err)
	}
	log.Info().Str("pool", name).Str("type", string(poolType)).Msg("Defined pool")
	return nil
}

// DefineDirPool defines a directory pool rooted at targetPath.
func (p *StoragePool) DefineDirPool(ctx context.Context, name, targetPath string) error {
	return p.defineAs(ctx, name, PoolTypeDir, targetPath)
}

// DefineFSPool defines a filesystem pool mounting blockDevice on targetPath.
func (p *StoragePool) DefineFSPool(ctx context.Context, name, blockDevice, targetPath string) error {
	return p.defineAs(ctx, name, PoolTypeFS, targetPath,
		"--source-dev", blockDevice)
}

// DefineLVMPool defines a logical pool over volume group vgName on blockDevice.
func (p *StoragePool) DefineLVMPool(ctx context.Context, name, blockDevice, vgName, targetPath string) error {
	return p.defineAs(ctx, name, PoolTypeLogical, targetPath,
		"--source-dev", blockDevice, "--source-name", vgName)
}

// DefineDiskPool defines a disk pool partitioning blockDevice.
func (p *StoragePool) DefineDiskPool(ctx context.Context, name, blockDevice, targetPath string) error {
	return p.defineAs(ctx, name, PoolTypeDisk, targetPath,
		"--source-dev", blockDevice)
}

// DefineISCSIPool defines an iSCSI pool for target sourceDev on sourceHost.
func (p *StoragePool) DefineISCSIPool(ctx context.Context, name, sourceHost, sourceDev, targetPath string) error {
	return p.defineAs(ctx, name, PoolTypeISCSI, targetPath,
		"--source-host", sourceHost, "--source-dev", sourceDev)
}

// DefineNetFSPool defines an NFS pool mounting sourceHost:sourcePath on targetPath.
func (p *StoragePool) DefineNetFSPool(ctx context.Context, name, sourceHost, sourcePath, targetPath string) error {
	return p.defineAs(ctx, name, PoolTypeNetFS, targetPath,
		"--source-host", sourceHost, "--source-path", sourcePath)
}

// DefineRBDPool defines a Ceph RBD pool. RBD pools have no target path;
// extra carries options such as "--auth-type ceph --auth-username admin".
func (p *StoragePool) DefineRBDPool(ctx context.Context, name, sourceHost, sourceName string, extra ...string) error {
	args := append([]string{"--source-host", sourceHost, "--source-name", sourceName}, extra...)
	return p.defineAs(ctx, name, PoolTypeRBD, "", args...)
}

// IsNotFound reports whether err means the pool is not defined.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrPoolNotFound)
}
