package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jbweber/virtstore/internal/loader"
	"github.com/jbweber/virtstore/internal/naming"
	"github.com/jbweber/virtstore/internal/storage"
)

var smokeCmd = &cobra.Command{
	Use:   "smoke <target-dir>",
	Short: "Exercise pool and volume operations with a throwaway pool",
	Long: `Define a scratch dir pool under target-dir, build and start it, create a
volume, clone it, check both are listed, then delete the volumes and the pool.

The pool and volume names are random, so smoke runs never collide with
existing storage. Use --keep to leave everything in place for inspection.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		capacity, _ := cmd.Flags().GetString("capacity")
		format, _ := cmd.Flags().GetString("format")
		keep, _ := cmd.Flags().GetBool("keep")
		return runSmoke(cmd, smokePlan(args[0], capacity, format), keep)
	},
}

func init() {
	smokeCmd.Flags().String("capacity", "16M", "Capacity of the scratch volume")
	smokeCmd.Flags().String("format", "qcow2", "Format of the scratch volume")
	smokeCmd.Flags().Bool("keep", false, "Keep the scratch pool and volumes")
}

func smokePlan(targetDir, capacity, format string) *loader.PoolPlan {
	pool := naming.ScratchName("smoke")
	vol := naming.ScratchVolume("vol", format)
	return &loader.PoolPlan{
		Name:   pool,
		Type:   storage.PoolTypeDir,
		Target: filepath.Join(targetDir, pool),
		Build:  true,
		Start:  true,
		Volumes: []loader.VolumePlan{
			{Name: vol, Capacity: capacity, Format: format},
			{Name: naming.CloneName(vol), CloneOf: vol},
		},
	}
}

func runSmoke(cmd *cobra.Command, plan *loader.PoolPlan, keep bool) (err error) {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	v := newVirsh()
	start := time.Now()

	if err := plan.Validate(); err != nil {
		return err
	}
	if !keep {
		defer func() {
			// Clean up even when ctx was cancelled mid-run.
			if tdErr := loader.Teardown(context.WithoutCancel(ctx), v, plan); tdErr != nil {
				log.Error().Err(tdErr).Str("pool", plan.Name).Msg("Smoke teardown failed")
				if err == nil {
					err = tdErr
				}
				return
			}
			fmt.Fprintf(out, "✓ Pool %s deleted\n", plan.Name)
		}()
	}

	if err := loader.Apply(ctx, v, plan); err != nil {
		return fmt.Errorf("smoke test failed: %w", err)
	}
	fmt.Fprintf(out, "✓ Pool %s defined, built and started at %s\n", plan.Name, plan.Target)

	sp := storage.NewStoragePool(v)
	uuid, err := sp.PoolUUID(ctx, plan.Name)
	if err != nil {
		return fmt.Errorf("smoke test failed: %w", err)
	}
	fmt.Fprintf(out, "✓ Pool UUID %s\n", uuid)

	info := sp.PoolInfo(ctx, plan.Name)
	fmt.Fprintf(out, "✓ Pool capacity %s, allocation %s, available %s\n",
		attrOrDash(info, storage.AttrCapacity),
		attrOrDash(info, storage.AttrAllocation),
		attrOrDash(info, storage.AttrAvailable))

	vols := storage.NewPoolVolume(plan.Name, v)
	listed := vols.ListVolumes(ctx)
	for _, vol := range plan.Volumes {
		path, ok := listed[vol.Name]
		if !ok {
			return fmt.Errorf("smoke test failed: %w: %s", storage.ErrVolumeMissing, vol.Name)
		}
		fmt.Fprintf(out, "✓ Volume %s at %s\n", vol.Name, path)
	}

	fmt.Fprintf(out, "Smoke test passed in %s\n", time.Since(start).Round(time.Millisecond))
	return nil
}

func attrOrDash(info map[string]string, attr string) string {
	if v := info[attr]; v != "" {
		return v
	}
	return "-"
}
