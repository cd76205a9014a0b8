package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jbweber/virtstore/internal/command"
	"github.com/jbweber/virtstore/internal/config"
	"github.com/jbweber/virtstore/internal/logging"
	"github.com/jbweber/virtstore/internal/output"
	"github.com/jbweber/virtstore/internal/virsh"
)

var (
	version = "dev"
	commit  = "unknown"
)

// Global flags.
var (
	configPath   string
	connectURI   string
	logLevel     string
	logFormat    string
	outputFormat string
	noHeaders    bool
)

// cfg is loaded before any subcommand runs.
var cfg *config.Config

// runner replaces the process runner in tests.
var runner command.Runner

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "virtstore",
	Short: "virtstore - libvirt storage pool and volume automation",
	Long: `virtstore drives libvirt storage pools and volumes through virsh.

It wraps the pool and volume subcommands with existence checks, verifies
every change by listing again, and can exercise a host end to end with a
throwaway pool (see "virtstore smoke").`,
	Version:           fmt.Sprintf("%s (commit: %s)", version, commit),
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "Path to a YAML config file")
	flags.StringVarP(&connectURI, "connect", "c", "", "Hypervisor connection URI (overrides config and LIBVIRT_DEFAULT_URI)")
	flags.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.StringVar(&logFormat, "log-format", "", "Log format (console, json)")
	flags.StringVarP(&outputFormat, "output", "o", string(output.FormatTable), "Output format (table, yaml, json)")
	flags.BoolVar(&noHeaders, "no-headers", false, "Omit the header row in table output")

	rootCmd.AddCommand(poolCmd)
	rootCmd.AddCommand(volCmd)
	rootCmd.AddCommand(imageCmd)
	rootCmd.AddCommand(smokeCmd)
	rootCmd.AddCommand(testConnCmd)
	rootCmd.AddCommand(versionCmd)
}

// setup loads the config, applies flag overrides and installs the logger.
func setup(cmd *cobra.Command, _ []string) error {
	c, err := config.Load(configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("connect") {
		c.URI = connectURI
	}
	if flags.Changed("log-level") {
		c.LogLevel = logLevel
	}
	if flags.Changed("log-format") {
		c.LogFormat = logFormat
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	if err := output.ValidateFormat(outputFormat); err != nil {
		return err
	}
	if err := logging.Setup(c.LogLevel, c.LogFormat, os.Stderr); err != nil {
		return err
	}

	cfg = c
	return nil
}

func processRunner() command.Runner {
	if runner != nil {
		return runner
	}
	return command.NewExecRunner(cfg.Timeout)
}

func newVirsh() *virsh.Virsh {
	opts := []virsh.Option{
		virsh.WithBinary(cfg.VirshPath),
		virsh.WithURI(cfg.URI),
		virsh.WithTimeout(cfg.Timeout),
	}
	if runner != nil {
		opts = append(opts, virsh.WithRunner(runner))
	}
	return virsh.New(opts...)
}

func newFormatter() (output.Formatter, error) {
	return output.NewFormatter(output.Options{Format: output.Format(outputFormat), NoHeaders: noHeaders})
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show virtstore and virsh versions",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "virtstore %s (commit: %s)\n", version, commit)

		if short, _ := cmd.Flags().GetBool("short"); short {
			return nil
		}
		res, err := newVirsh().Version(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to query virsh version: %w", err)
		}
		fmt.Fprint(out, res.Stdout)
		return nil
	},
}

func init() {
	versionCmd.Flags().Bool("short", false, "Only print the virtstore version")
}
