package qemuimg

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/jbweber/virtstore/internal/command"
)

const (
	// DefaultBinary is the qemu-img executable looked up on PATH.
	DefaultBinary = "qemu-img"

	// DefaultFormat is used when Params.Format is empty.
	DefaultFormat = "qcow2"
)

var (
	// ErrImageCheck is returned when qemu-img check reports a damaged image.
	ErrImageCheck = errors.New("image check failed")

	// ErrInvalidParams is returned when Params lack a field an operation needs.
	ErrInvalidParams = errors.New("invalid image parameters")
)

// Params describes an image. Filename may be relative to the root directory
// given to NewImage.
type Params struct {
	Filename      string `yaml:"filename"`
	Format        string `yaml:"format"`
	Size          string `yaml:"size"`
	BackingFile   string `yaml:"backing_file"`
	BackingFormat string `yaml:"backing_format"`
	SnapshotName  string `yaml:"snapshot_name"`

	// Convert target.
	OutputFilename string `yaml:"output_filename"`
	OutputFormat   string `yaml:"output_format"`
}

// Image is a disk image handled through qemu-img.
type Image struct {
	tag     string
	rootDir string
	params  Params
	binary  string
	runner  command.Runner
}

// Option configures an Image.
type Option func(*Image)

// WithBinary overrides the qemu-img executable.
func WithBinary(path string) Option {
	return func(i *Image) {
		if path != "" {
			i.binary = path
		}
	}
}

// WithRunner replaces the process runner.
func WithRunner(r command.Runner) Option {
	return func(i *Image) {
		i.runner = r
	}
}

// NewImage creates an image handle. An empty Filename falls back to tag and
// an empty Format to DefaultFormat.
func NewImage(params Params, rootDir, tag string, opts ...Option) *Image {
	if params.Filename == "" {
		params.Filename = tag
	}
	if params.Format == "" {
		params.Format = DefaultFormat
	}
	img := &Image{
		tag:     tag,
		rootDir: rootDir,
		params:  params,
		binary:  DefaultBinary,
		runner:  command.NewExecRunner(0),
	}
	for _, opt := range opts {
		opt(img)
	}
	return img
}

// Tag returns the image tag.
func (i *Image) Tag() string {
	return i.tag
}

// Format returns the image format.
func (i *Image) Format() string {
	return i.params.Format
}

// BackingFile returns the current backing file, empty for standalone images.
func (i *Image) BackingFile() string {
	return i.params.BackingFile
}

// Path returns the absolute image path.
func (i *Image) Path() string {
	return resolve(i.rootDir, i.params.Filename)
}

func resolve(rootDir, name string) string {
	if filepath.IsAbs(name) || rootDir == "" {
		return name
	}
	return filepath.Join(rootDir, name)
}

func (i *Image) run(ctx context.Context, args ...string) (*command.Result, error) {
	res, err := i.runner.Run(ctx, i.binary, args...)
	if err != nil {
		log.Error().Err(err).Str("image", i.tag).Str("path", i.Path()).Msg("qemu-img failed")
	}
	return res, err
}

// Create creates the image. Without a backing file Size is required.
func (i *Image) Create(ctx context.Context) error {
	p := i.params
	if p.Size == "" && p.BackingFile == "" {
		return fmt.Errorf("%w: size or backing file required to create %s", ErrInvalidParams, i.tag)
	}

	args := []string{"create", "-f", p.Format}
	if p.BackingFile != "" {
		args = append(args, "-b", p.BackingFile)
		if p.BackingFormat != "" {
			args = append(args, "-F", p.BackingFormat)
		}
	}
	args = append(args, i.Path())
	if p.Size != "" {
		args = append(args, p.Size)
	}

	if _, err := i.run(ctx, args...); err != nil {
		return fmt.Errorf("failed to create image %s: %w", i.Path(), err)
	}
	log.Info().Str("image", i.tag).Str("path", i.Path()).Msg("Image created")
	return nil
}

// Convert writes a copy of the image to params.OutputFilename under rootDir
// in params.OutputFormat (the source format when empty) and returns it.
func (i *Image) Convert(ctx context.Context, params Params, rootDir string) (*Image, error) {
	if params.OutputFilename == "" {
		return nil, fmt.Errorf("%w: output filename required to convert %s", ErrInvalidParams, i.tag)
	}
	outFormat := params.OutputFormat
	if outFormat == "" {
		outFormat = i.params.Format
	}
	dst := resolve(rootDir, params.OutputFilename)

	if _, err := i.run(ctx, "convert", "-f", i.params.Format, "-O", outFormat, i.Path(), dst); err != nil {
		return nil, fmt.Errorf("failed to convert image %s to %s: %w", i.Path(), dst, err)
	}

	out := &Image{
		tag:     i.tag,
		rootDir: rootDir,
		params:  Params{Filename: dst, Format: outFormat},
		binary:  i.binary,
		runner:  i.runner,
	}
	log.Info().Str("image", i.tag).Str("path", dst).Str("format", outFormat).Msg("Image converted")
	return out, nil
}

// Rebase switches the image to params.BackingFile. An empty backing file
// flattens the image.
func (i *Image) Rebase(ctx context.Context, params Params) error {
	args := []string{"rebase", "-f", i.params.Format, "-b", params.BackingFile}
	if params.BackingFile != "" && params.BackingFormat != "" {
		args = append(args, "-F", params.BackingFormat)
	}
	args = append(args, i.Path())

	if _, err := i.run(ctx, args...); err != nil {
		return fmt.Errorf("failed to rebase image %s: %w", i.Path(), err)
	}
	i.params.BackingFile = params.BackingFile
	i.params.BackingFormat = params.BackingFormat
	return nil
}

// Commit merges the image into its backing file.
func (i *Image) Commit(ctx context.Context) error {
	if i.params.BackingFile == "" {
		return fmt.Errorf("%w: image %s has no backing file", ErrInvalidParams, i.tag)
	}
	if _, err := i.run(ctx, "commit", "-f", i.params.Format, i.Path()); err != nil {
		return fmt.Errorf("failed to commit image %s: %w", i.Path(), err)
	}
	return nil
}

// SnapshotCreate creates the internal snapshot named by Params.SnapshotName.
func (i *Image) SnapshotCreate(ctx context.Context) error {
	return i.snapshot(ctx, "-c", "create")
}

// SnapshotDelete deletes the internal snapshot named by Params.SnapshotName.
func (i *Image) SnapshotDelete(ctx context.Context) error {
	return i.snapshot(ctx, "-d", "delete")
}

func (i *Image) snapshot(ctx context.Context, flag, action string) error {
	name := i.params.SnapshotName
	if name == "" {
		return fmt.Errorf("%w: snapshot name required to %s snapshot of %s", ErrInvalidParams, action, i.tag)
	}
	if _, err := i.run(ctx, "snapshot", flag, name, i.Path()); err != nil {
		return fmt.Errorf("failed to %s snapshot %s of %s: %w", action, name, i.Path(), err)
	}
	return nil
}

// Remove deletes the image file. A missing file is not an error.
func (i *Image) Remove() error {
	if err := os.Remove(i.Path()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove image %s: %w", i.Path(), err)
	}
	log.Debug().Str("image", i.tag).Str("path", i.Path()).Msg("Image removed")
	return nil
}

// Check runs qemu-img check. Failures wrap ErrImageCheck.
func (i *Image) Check(ctx context.Context) error {
	if _, err := i.run(ctx, "check", "-f", i.params.Format, i.Path()); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrImageCheck, i.Path(), err)
	}
	return nil
}

// Info returns the "key: value" lines of qemu-img info.
func (i *Image) Info(ctx context.Context) (map[string]string, error) {
	res, err := i.run(ctx, "info", i.Path())
	if err != nil {
		return nil, fmt.Errorf("failed to get image info for %s: %w", i.Path(), err)
	}

	info := make(map[string]string)
	for _, line := range strings.Split(res.Stdout, "\n") {
		key, value, ok := strings.Cut(line, ":")
		// Indented lines belong to nested sections such as "Format specific information".
		if !ok || strings.HasPrefix(line, " ") {
			continue
		}
		info[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return info, nil
}
