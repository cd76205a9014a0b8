package loader

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/jbweber/virtstore/internal/storage"
)

// Commands is what Apply and Teardown need from virsh.
type Commands interface {
	storage.PoolCommands
	storage.VolumeCommands
}

// Apply defines the pool when it does not exist, then builds, starts and
// autostarts it as requested and creates the missing volumes in order.
// An active pool is not built again.
func Apply(ctx context.Context, v Commands, plan *PoolPlan) error {
	pools := storage.NewStoragePool(v)

	if pools.PoolExists(ctx, plan.Name) {
		log.Info().Str("pool", plan.Name).Msg("Pool already defined")
	} else if err := define(ctx, pools, plan); err != nil {
		return err
	}

	if plan.Build && !pools.IsPoolActive(ctx, plan.Name) {
		if err := pools.BuildPool(ctx, plan.Name); err != nil {
			return err
		}
	}
	if plan.Start {
		if err := pools.StartPool(ctx, plan.Name); err != nil {
			return err
		}
	}
	if plan.Autostart {
		if err := pools.SetPoolAutostart(ctx, plan.Name); err != nil {
			return err
		}
	}

	if len(plan.Volumes) == 0 {
		return nil
	}
	vols := storage.NewPoolVolume(plan.Name, v)
	for _, vol := range plan.Volumes {
		if vols.VolumeExists(ctx, vol.Name) {
			log.Debug().Str("pool", plan.Name).Str("volume", vol.Name).Msg("Volume already exists")
			continue
		}
		var err error
		if vol.CloneOf != "" {
			err = vols.CloneVolume(ctx, vol.CloneOf, vol.Name)
		} else {
			err = vols.CreateVolume(ctx, vol.Name, vol.Capacity, vol.Allocation, vol.Format)
		}
		if err != nil {
			return fmt.Errorf("pool %s: %w", plan.Name, err)
		}
	}
	return nil
}

// Teardown deletes the plan's volumes in reverse order, then the pool.
// Missing volumes and pools are skipped.
func Teardown(ctx context.Context, v Commands, plan *PoolPlan) error {
	pools := storage.NewStoragePool(v)
	if !pools.PoolExists(ctx, plan.Name) {
		log.Info().Str("pool", plan.Name).Msg("Pool does not exist")
		return nil
	}

	if len(plan.Volumes) > 0 && pools.IsPoolActive(ctx, plan.Name) {
		vols := storage.NewPoolVolume(plan.Name, v)
		for i := len(plan.Volumes) - 1; i >= 0; i-- {
			if err := vols.DeleteVolume(ctx, plan.Volumes[i].Name); err != nil {
				return fmt.Errorf("pool %s: %w", plan.Name, err)
			}
		}
	}
	return pools.DeletePool(ctx, plan.Name)
}

func define(ctx context.Context, pools *storage.StoragePool, plan *PoolPlan) error {
	src := plan.Source
	switch plan.Type {
	case storage.PoolTypeDir:
		return pools.DefineDirPool(ctx, plan.Name, plan.Target)
	case storage.PoolTypeFS:
		return pools.DefineFSPool(ctx, plan.Name, src.Device, plan.Target)
	case storage.PoolTypeLogical:
		return pools.DefineLVMPool(ctx, plan.Name, src.Device, src.Name, plan.Target)
	case storage.PoolTypeDisk:
		return pools.DefineDiskPool(ctx, plan.Name, src.Device, plan.Target)
	case storage.PoolTypeISCSI:
		return pools.DefineISCSIPool(ctx, plan.Name, src.Host, src.Device, plan.Target)
	case storage.PoolTypeNetFS:
		return pools.DefineNetFSPool(ctx, plan.Name, src.Host, src.Path, plan.Target)
	case storage.PoolTypeRBD:
		return pools.DefineRBDPool(ctx, plan.Name, src.Host, src.Name, plan.Extra)
	default:
		return fmt.Errorf("unsupported pool type %q", plan.Type)
	}
}
