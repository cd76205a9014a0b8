package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jbweber/virtstore/internal/naming"
	"github.com/jbweber/virtstore/internal/storage"
)

// Volume management commands
var volCmd = &cobra.Command{
	Use:   "vol",
	Short: "Manage storage volumes",
	Long: `Manage the volumes of a storage pool. Every command takes the pool name
first.

Create, delete and clone verify the result by listing the pool again.`,
}

func init() {
	volCmd.AddCommand(volListCmd)
	volCmd.AddCommand(volInfoCmd)
	volCmd.AddCommand(volCreateCmd)
	volCmd.AddCommand(volDeleteCmd)
	volCmd.AddCommand(volCloneCmd)
	volCmd.AddCommand(volPathCmd)
	volCmd.AddCommand(volDumpXMLCmd)

	volCreateCmd.Flags().String("allocation", "", "Initial allocation, e.g. 0 or 512M")
	volCreateCmd.Flags().String("format", "", "Volume format, e.g. qcow2 or raw")
}

func newPoolVolume(pool string) *storage.PoolVolume {
	return storage.NewPoolVolume(pool, newVirsh())
}

var volListCmd = &cobra.Command{
	Use:   "list <pool>",
	Short: "List volumes in a pool",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		volumes := newPoolVolume(args[0]).ListVolumes(cmd.Context())
		formatter, err := newFormatter()
		if err != nil {
			return err
		}
		s, err := formatter.FormatVolumes(volumes)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), s)
		return nil
	},
}

var volInfoCmd = &cobra.Command{
	Use:   "info <pool> <volume>",
	Short: "Show vol-info attributes",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		info := newPoolVolume(args[0]).VolumeInfo(cmd.Context(), args[1])
		if len(info) == 0 {
			return fmt.Errorf("no information for volume %s in pool %s", args[1], args[0])
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

var volCreateCmd = &cobra.Command{
	Use:   "create <pool> <volume> <capacity>",
	Short: "Create a volume",
	Long: `Create a volume with vol-create-as. Fails when the volume already exists.

Example:
  virtstore vol create default disk1.qcow2 10G --format qcow2 --allocation 0`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		allocation, _ := cmd.Flags().GetString("allocation")
		format, _ := cmd.Flags().GetString("format")
		if err := newPoolVolume(args[0]).CreateVolume(cmd.Context(), args[1], args[2], allocation, format); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Volume %s created in pool %s\n", args[1], args[0])
		return nil
	},
}

var volDeleteCmd = &cobra.Command{
	Use:   "delete <pool> <volume>",
	Short: "Delete a volume (no-op when missing)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := newPoolVolume(args[0]).DeleteVolume(cmd.Context(), args[1]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Volume %s deleted from pool %s\n", args[1], args[0])
		return nil
	},
}

var volCloneCmd = &cobra.Command{
	Use:   "clone <pool> <volume> [new-volume]",
	Short: "Clone a volume within its pool",
	Long: `Clone a volume with vol-clone. The new name defaults to the source name
with "-clone" inserted before the extension (base.qcow2 → base-clone.qcow2).`,
	Args: cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		newName := naming.CloneName(args[1])
		if len(args) == 3 {
			newName = args[2]
		}
		if err := newPoolVolume(args[0]).CloneVolume(cmd.Context(), args[1], newName); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Volume %s cloned to %s\n", args[1], newName)
		return nil
	},
}

var volPathCmd = &cobra.Command{
	Use:   "path <pool> <volume>",
	Short: "Print a volume's path",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := newPoolVolume(args[0]).VolumePath(cmd.Context(), args[1])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

var volDumpXMLCmd = &cobra.Command{
	Use:   "dumpxml <pool> <volume>",
	Short: "Print a volume's XML definition",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		def, err := newPoolVolume(args[0]).VolumeDefinition(cmd.Context(), args[1])
		if err != nil {
			return err
		}
		xml, err := def.Marshal()
		if err != nil {
			return fmt.Errorf("failed to marshal volume XML: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), xml)
		return nil
	},
}
