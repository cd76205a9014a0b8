package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jbweber/virtstore/internal/qemuimg"
)

// Image commands operate on image files through qemu-img.
var imageCmd = &cobra.Command{
	Use:   "image",
	Short: "Work with disk image files through qemu-img",
	Long: `Work with disk image files through qemu-img.

Relative file names resolve against image_dir from the config file.`,
}

func init() {
	imageCmd.AddCommand(imageLockSupportCmd)
	imageCmd.AddCommand(imageCreateCmd)
	imageCmd.AddCommand(imageCheckCmd)
	imageCmd.AddCommand(imageInfoCmd)
	imageCmd.AddCommand(imageConvertCmd)

	imageCreateCmd.Flags().String("format", qemuimg.DefaultFormat, "Image format")
	imageCreateCmd.Flags().String("backing-file", "", "Backing file for an overlay image")
	imageCreateCmd.Flags().String("backing-format", "", "Format of the backing file")
	imageCheckCmd.Flags().String("format", "", "Image format (detected from the file when empty)")
	imageConvertCmd.Flags().String("format", "", "Source format (detected from the file when empty)")
	imageConvertCmd.Flags().String("output-format", "", "Target format (source format when empty)")
}

func imageOptions() []qemuimg.Option {
	return []qemuimg.Option{
		qemuimg.WithBinary(cfg.QemuImgPath),
		qemuimg.WithRunner(processRunner()),
	}
}

func imageTag(file string) string {
	return strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
}

// newImage opens file under the image directory. An empty format is
// detected from the file's magic bytes.
func newImage(file, format string) (*qemuimg.Image, error) {
	params := qemuimg.Params{Filename: file, Format: format}
	img := qemuimg.NewImage(params, cfg.ImageDir, imageTag(file), imageOptions()...)
	if format != "" {
		return img, nil
	}

	detected, err := qemuimg.DetectFormat(img.Path())
	if err != nil {
		return nil, err
	}
	params.Format = detected
	return qemuimg.NewImage(params, cfg.ImageDir, imageTag(file), imageOptions()...), nil
}

var imageLockSupportCmd = &cobra.Command{
	Use:   "lock-support",
	Short: "Report whether qemu-img supports -U (force share)",
	Long: `Report whether the installed qemu-img supports the -U option that came
with image locking in qemu 2.10. Exits non-zero when qemu-img is missing.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ok, err := qemuimg.CheckLockSupport(cmd.Context(), processRunner(), cfg.QemuImgPath)
		if err != nil {
			return err
		}
		if ok {
			fmt.Fprintln(cmd.OutOrStdout(), "✓ qemu-img supports image locking (-U)")
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "✗ qemu-img does not support image locking (-U)")
		}
		return nil
	},
}

var imageCreateCmd = &cobra.Command{
	Use:   "create <file> [size]",
	Short: "Create an image file",
	Long: `Create an image file. The size may be omitted for overlays with a backing file.

Example:
  virtstore image create overlay.qcow2 --backing-file base.qcow2 --backing-format qcow2`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		params := qemuimg.Params{Filename: args[0]}
		params.Format, _ = f.GetString("format")
		params.BackingFile, _ = f.GetString("backing-file")
		params.BackingFormat, _ = f.GetString("backing-format")
		if len(args) == 2 {
			params.Size = args[1]
		}

		img := qemuimg.NewImage(params, cfg.ImageDir, imageTag(args[0]), imageOptions()...)
		if err := img.Create(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Image %s created\n", img.Path())
		return nil
	},
}

var imageCheckCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "Check an image for consistency",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		img, err := newImage(args[0], format)
		if err != nil {
			return err
		}
		if err := img.Check(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Image %s is consistent\n", img.Path())
		return nil
	},
}

var imageInfoCmd = &cobra.Command{
	Use:   "info <file>",
	Short: "Show qemu-img info attributes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		// qemu-img info probes the format itself.
		img, err := newImage(args[0], qemuimg.DefaultFormat)
		if err != nil {
			return err
		}
		info, err := img.Info(cmd.Context())
		if err != nil {
			return err
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

var imageConvertCmd = &cobra.Command{
	Use:   "convert <file> <output-file>",
	Short: "Convert or copy an image",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		outFormat, _ := cmd.Flags().GetString("output-format")
		img, err := newImage(args[0], format)
		if err != nil {
			return err
		}
		out, err := img.Convert(cmd.Context(), qemuimg.Params{
			OutputFilename: args[1],
			OutputFormat:   outFormat,
		}, cfg.ImageDir)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Image converted to %s (%s)\n", out.Path(), out.Format())
		return nil
	},
}
