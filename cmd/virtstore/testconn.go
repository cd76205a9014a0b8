package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jbweber/virtstore/internal/libvirt"
	"github.com/jbweber/virtstore/internal/output"
)

var testConnCmd = &cobra.Command{
	Use:   "test-conn",
	Short: "Test libvirt connection",
	Long: `Test connectivity to the libvirt daemon over its RPC socket and display
version, hostname, connection URI and the defined storage pools.

The socket is taken from socket_path in the config file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := libvirt.ConnectWithContext(cmd.Context(), cfg.SocketPath, libvirt.DefaultDialTimeout)
		if err != nil {
			return fmt.Errorf("failed to connect to libvirt: %w", err)
		}
		defer func() {
			if closeErr := client.Close(); closeErr != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close libvirt connection: %v\n", closeErr)
			}
		}()

		if err := client.Ping(); err != nil {
			return fmt.Errorf("connection test failed: %w", err)
		}

		info, err := libvirt.Describe(client.Libvirt())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if f := output.Format(outputFormat); f != output.FormatTable {
			s, err := output.Structured(f, info)
			if err != nil {
				return err
			}
			fmt.Fprint(out, s)
			return nil
		}

		fmt.Fprintln(out, "✓ Connected to libvirt daemon")
		fmt.Fprintf(out, "✓ Libvirt version: %s\n", info.Version)
		fmt.Fprintf(out, "✓ Hypervisor hostname: %s\n", info.Hostname)
		fmt.Fprintf(out, "✓ Connection URI: %s\n", info.URI)
		fmt.Fprintf(out, "✓ Storage pools: %d\n", len(info.Pools))
		fmt.Fprintln(out, "\nConnection test successful!")
		return nil
	},
}
