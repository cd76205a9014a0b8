package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jbweber/virtstore/internal/loader"
	"github.com/jbweber/virtstore/internal/storage"
)

// Pool management commands
var poolCmd = &cobra.Command{
	Use:   "pool",
	Short: "Manage storage pools",
	Long: `Manage libvirt storage pools.

Pool state is always read back from virsh; nothing is cached between
invocations.`,
}

func init() {
	poolCmd.AddCommand(poolListCmd)
	poolCmd.AddCommand(poolInfoCmd)
	poolCmd.AddCommand(poolStartCmd)
	poolCmd.AddCommand(poolDestroyCmd)
	poolCmd.AddCommand(poolDeleteCmd)
	poolCmd.AddCommand(poolAutostartCmd)
	poolCmd.AddCommand(poolBuildCmd)
	poolCmd.AddCommand(poolRefreshCmd)
	poolCmd.AddCommand(poolDumpXMLCmd)
	poolCmd.AddCommand(poolDefineCmd)
	poolCmd.AddCommand(poolApplyCmd)
	poolCmd.AddCommand(poolTeardownCmd)

	poolAutostartCmd.Flags().Bool("disable", false, "Disable autostart instead of enabling it")
	poolBuildCmd.Flags().Bool("overwrite", false, "Overwrite existing data on the source (pool-build --overwrite)")
	poolBuildCmd.Flags().Bool("no-overwrite", false, "Fail if the source is already formatted (pool-build --no-overwrite)")

	f := poolDefineCmd.Flags()
	f.String("target", "", "Target path")
	f.String("source-host", "", "Source host (iscsi, netfs, rbd)")
	f.String("source-dev", "", "Source device (fs, logical, disk, iscsi)")
	f.String("source-name", "", "Source name: volume group (logical) or rbd pool (rbd)")
	f.String("source-path", "", "Exported source path (netfs)")
	f.String("extra", "", "Additional pool-define-as options")
	f.Bool("build", false, "Build the pool after defining it")
	f.Bool("start", false, "Start the pool after defining it")
	f.Bool("autostart", false, "Mark the pool autostart (implies --start)")
	f.Bool("xml", false, "Define a dir pool from generated XML owned by the qemu user")
}

func newStoragePool() *storage.StoragePool {
	return storage.NewStoragePool(newVirsh())
}

var poolListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all storage pools",
	Long:  `List active and inactive storage pools with their state and autostart flag.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pools, err := newStoragePool().ListPools(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list pools: %w", err)
		}
		formatter, err := newFormatter()
		if err != nil {
			return err
		}
		s, err := formatter.FormatPools(pools)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), s)
		return nil
	},
}

var poolInfoCmd = &cobra.Command{
	Use:   "info <name>",
	Short: "Show pool-info attributes",
	Long: `Display the attributes reported by pool-info: UUID, state, persistence,
autostart, capacity, allocation and available space.

Example:
  virtstore pool info default`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		info := newStoragePool().PoolInfo(cmd.Context(), args[0])
		if len(info) == 0 {
			return fmt.Errorf("no information for pool %s", args[0])
		}
		formatter, err := newFormatter()
		if err != nil {
			return err
		}
		s, err := formatter.FormatAttributes(info)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), s)
		return nil
	},
}

// poolAction builds a single-argument pool command.
func poolAction(use, short string, action func(cmd *cobra.Command, sp *storage.StoragePool, name string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <name>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := action(cmd, newStoragePool(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Pool %s: %s done\n", args[0], use)
			return nil
		},
	}
}

var poolStartCmd = poolAction("start", "Start a pool (no-op when active)",
	func(cmd *cobra.Command, sp *storage.StoragePool, name string) error {
		return sp.StartPool(cmd.Context(), name)
	})

var poolDestroyCmd = poolAction("destroy", "Stop a pool (no-op when inactive)",
	func(cmd *cobra.Command, sp *storage.StoragePool, name string) error {
		return sp.DestroyPool(cmd.Context(), name)
	})

var poolDeleteCmd = poolAction("delete", "Destroy and undefine a pool, keeping its storage",
	func(cmd *cobra.Command, sp *storage.StoragePool, name string) error {
		return sp.DeletePool(cmd.Context(), name)
	})

var poolRefreshCmd = poolAction("refresh", "Rescan a pool's volumes",
	func(cmd *cobra.Command, sp *storage.StoragePool, name string) error {
		return sp.RefreshPool(cmd.Context(), name)
	})

var poolAutostartCmd = poolAction("autostart", "Enable or disable pool autostart",
	func(cmd *cobra.Command, sp *storage.StoragePool, name string) error {
		var extra []string
		if disable, _ := cmd.Flags().GetBool("disable"); disable {
			extra = append(extra, "--disable")
		}
		return sp.SetPoolAutostart(cmd.Context(), name, extra...)
	})

var poolBuildCmd = poolAction("build", "Build a pool's underlying storage",
	func(cmd *cobra.Command, sp *storage.StoragePool, name string) error {
		overwrite, _ := cmd.Flags().GetBool("overwrite")
		noOverwrite, _ := cmd.Flags().GetBool("no-overwrite")
		if overwrite && noOverwrite {
			return fmt.Errorf("--overwrite and --no-overwrite are mutually exclusive")
		}
		var extra []string
		if overwrite {
			extra = append(extra, "--overwrite")
		}
		if noOverwrite {
			extra = append(extra, "--no-overwrite")
		}
		return sp.BuildPool(cmd.Context(), name, extra...)
	})

var poolDumpXMLCmd = &cobra.Command{
	Use:   "dumpxml <name>",
	Short: "Print a pool's XML definition",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		def, err := newStoragePool().PoolDefinition(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		xml, err := def.Marshal()
		if err != nil {
			return fmt.Errorf("failed to marshal pool XML: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), xml)
		return nil
	},
}

var poolDefineCmd = &cobra.Command{
	Use:   "define <type> <name>",
	Short: "Define a pool with pool-define-as",
	Long: `Define a storage pool. Supported types and their required flags:

  dir      --target
  fs       --source-dev --target
  logical  --source-dev --source-name --target
  disk     --source-dev --target
  iscsi    --source-host --source-dev --target
  netfs    --source-host --source-path --target
  rbd      --source-host --source-name [--extra "--auth-type ceph ..."]

Example:
  virtstore pool define dir scratch --target /var/lib/virtstore/scratch --build --start`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		plan := &loader.PoolPlan{
			Name: args[1],
			Type: storage.PoolType(args[0]),
		}
		plan.Target, _ = f.GetString("target")
		plan.Source.Host, _ = f.GetString("source-host")
		plan.Source.Device, _ = f.GetString("source-dev")
		plan.Source.Name, _ = f.GetString("source-name")
		plan.Source.Path, _ = f.GetString("source-path")
		plan.Extra, _ = f.GetString("extra")
		plan.Build, _ = f.GetBool("build")
		plan.Start, _ = f.GetBool("start")
		plan.Autostart, _ = f.GetBool("autostart")
		if plan.Autostart {
			plan.Start = true
		}
		if err := plan.Validate(); err != nil {
			return err
		}

		ctx := cmd.Context()
		v := newVirsh()
		if useXML, _ := f.GetBool("xml"); useXML {
			if plan.Type != storage.PoolTypeDir {
				return fmt.Errorf("--xml is only supported for dir pools")
			}
			sp := storage.NewStoragePool(v)
			if err := sp.DefinePoolXML(ctx, storage.DirPoolDefinition(plan.Name, plan.Target)); err != nil {
				return err
			}
		}

		// Apply skips the define step when the XML path already defined the pool.
		if err := loader.Apply(ctx, v, plan); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Pool %s defined\n", plan.Name)
		return nil
	},
}

var poolApplyCmd = &cobra.Command{
	Use:   "apply <plan.yaml>",
	Short: "Define a pool and its volumes from a plan file",
	Long: `Apply a declarative pool plan: define the pool if missing, build, start and
autostart it as requested, then create or clone the listed volumes that do
not exist yet. Applying the same plan twice is a no-op.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		plan, err := loader.LoadFromFile(args[0])
		if err != nil {
			return err
		}
		if err := loader.Apply(cmd.Context(), newVirsh(), plan); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Pool %s applied (%d volumes)\n", plan.Name, len(plan.Volumes))
		return nil
	},
}

var poolTeardownCmd = &cobra.Command{
	Use:   "teardown <plan.yaml>",
	Short: "Delete a plan's volumes and pool",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		plan, err := loader.LoadFromFile(args[0])
		if err != nil {
			return err
		}
		if err := loader.Teardown(cmd.Context(), newVirsh(), plan); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Pool %s torn down\n", plan.Name)
		return nil
	},
}
