package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

// PoolVolume manages the volumes of a single pool.
type PoolVolume struct {
	pool  string
	virsh VolumeCommands
}

// NewPoolVolume creates a PoolVolume for pool.
func NewPoolVolume(pool string, v VolumeCommands) *PoolVolume {
	return &PoolVolume{pool: pool, virsh: v}
}

// Pool returns the pool name.
func (pv *PoolVolume) Pool() string {
	return pv.pool
}

// ListVolumes returns volume name -> path. The map is empty when vol-list
// fails.
func (pv *PoolVolume) ListVolumes(ctx context.Context) map[string]string {
	res, err := pv.virsh.VolList(ctx, pv.pool)
	if err != nil {
		log.Error().Err(err).Str("pool", pv.pool).Msg("List volume failed")
		return map[string]string{}
	}
	return ParseVolList(res.Stdout)
}

// VolumeExists reports whether name is listed in the pool.
func (pv *PoolVolume) VolumeExists(ctx context.Context, name string) bool {
	_, ok := pv.ListVolumes(ctx)[name]
	return ok
}

// VolumeInfo returns the vol-info attributes (Name, Type, Capacity,
// Allocation). The map is empty when vol-info fails.
func (pv *PoolVolume) VolumeInfo(ctx context.Context, name string) map[string]string {
	res, err := pv.virsh.VolInfo(ctx, name, pv.pool)
	if err != nil {
		log.Error().Err(err).Str("pool", pv.pool).Str("volume", name).Msg("Get volume information failed")
		return map[string]string{}
	}
	return ParseVolInfo(res.Stdout)
}

// CreateVolume creates name with the given capacity ("10G", "512M").
// allocation and format may be empty. The volume must not exist beforehand
// and must be listed afterwards.
func (pv *PoolVolume) CreateVolume(ctx context.Context, name, capacity, allocation, format string) error {
	if pv.VolumeExists(ctx, name) {
		log.Debug().Str("pool", pv.pool).Str("volume", name).Msg("Volume already exists")
		return fmt.Errorf("%w: %s in pool %s", ErrVolumeExists, name, pv.pool)
	}

	if _, err := pv.virsh.VolCreateAs(ctx, name, pv.pool, capacity, allocation, format); err != nil {
		log.Error().Err(err).Str("pool", pv.pool).Str("volume", name).Msg("Create volume failed")
		return fmt.Errorf("failed to create volume %s: %w", name, err)
	}

	if volumes := pv.ListVolumes(ctx); !hasVolume(volumes, name) {
		log.Error().Str("pool", pv.pool).Str("volume", name).
			Interface("volumes", volumes).Msg("Created volume does not exist")
		return fmt.Errorf("%w: %s not listed after create", ErrVolumeMissing, name)
	}
	return nil
}

// DeleteVolume removes name. Deleting a volume that does not exist succeeds.
func (pv *PoolVolume) DeleteVolume(ctx context.Context, name string) error {
	if !pv.VolumeExists(ctx, name) {
		log.Info().Str("pool", pv.pool).Str("volume", name).Msg("Volume does not exist")
		return nil
	}

	if _, err := pv.virsh.VolDelete(ctx, name, pv.pool); err != nil {
		log.Error().Err(err).Str("pool", pv.pool).Str("volume", name).Msg("Delete volume failed")
		return fmt.Errorf("failed to delete volume %s: %w", name, err)
	}

	if pv.VolumeExists(ctx, name) {
		log.Debug().Str("pool", pv.pool).Str("volume", name).Msg("Delete volume failed")
		return fmt.Errorf("%w: %s", ErrVolumeStillPresent, name)
	}
	log.Debug().Str("pool", pv.pool).Str("volume", name).Msg("Volume has been deleted")
	return nil
}

// CloneVolume copies oldName to newName within the pool. oldName must exist
// and newName must not.
func (pv *PoolVolume) CloneVolume(ctx context.Context, oldName, newName string) error {
	volumes := pv.ListVolumes(ctx)
	if !hasVolume(volumes, oldName) {
		log.Info().Str("pool", pv.pool).Str("volume", oldName).Msg("Clone source does not exist")
		return fmt.Errorf("%w: clone source %s", ErrVolumeMissing, oldName)
	}
	if hasVolume(volumes, newName) {
		log.Info().Str("pool", pv.pool).Str("volume", newName).Msg("Clone target already exists")
		return fmt.Errorf("%w: clone target %s", ErrVolumeExists, newName)
	}

	if _, err := pv.virsh.VolClone(ctx, oldName, newName, pv.pool); err != nil {
		log.Error().Err(err).Str("pool", pv.pool).Str("volume", oldName).Msg("Clone volume failed")
		return fmt.Errorf("failed to clone volume %s to %s: %w", oldName, newName, err)
	}

	if !pv.VolumeExists(ctx, newName) {
		log.Debug().Str("pool", pv.pool).Str("volume", oldName).Msg("Volume clone failed")
		return fmt.Errorf("%w: %s not listed after clone", ErrVolumeMissing, newName)
	}
	log.Debug().Str("pool", pv.pool).Str("volume", newName).Msg("Volume has been created by clone")
	return nil
}

// VolumePath returns the volume's path (or key for network pools).
func (pv *PoolVolume) VolumePath(ctx context.Context, name string) (string, error) {
	res, err := pv.virsh.VolPath(ctx, name, pv.pool)
	if err != nil {
		return "", fmt.Errorf("failed to get path of volume %s: %w", name, err)
	}
	return strings.TrimSpace(res.Stdout), nil
}

func hasVolume(volumes map[string]string, name string) bool {
	_, ok := volumes[name]
	return ok
}
