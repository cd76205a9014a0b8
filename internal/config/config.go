// Package config loads virtstore settings from a YAML file and the
// environment.
//
// Precedence, lowest first: built-in defaults, the config file, environment
// variables, command-line flags (applied by the caller).
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Environment variables read by ApplyEnv.
const (
	EnvURI     = "LIBVIRT_DEFAULT_URI"
	EnvVirsh   = "VIRTSTORE_VIRSH"
	EnvQemuImg = "VIRTSTORE_QEMU_IMG"
)

// Log formats.
const (
	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

// Config holds the connection and tooling settings.
type Config struct {
	// URI is passed to virsh -c. Empty uses the libvirt default.
	URI         string `yaml:"uri"`
	VirshPath   string `yaml:"virsh_path"`
	QemuImgPath string `yaml:"qemu_img_path"`

	// Timeout bounds each external command, e.g. "5m".
	Timeout time.Duration `yaml:"timeout"`

	// SocketPath is the libvirt RPC socket used by test-conn.
	SocketPath string `yaml:"socket_path"`
	LogLevel   string `yaml:"log_level"`
	LogFormat  string `yaml:"log_format"`

	// ImageDir is the root for relative qemu-img filenames.
	ImageDir string `yaml:"image_dir"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		VirshPath:   "virsh",
		QemuImgPath: "qemu-img",
		Timeout:     5 * time.Minute,
		SocketPath:  "/var/run/libvirt/libvirt-sock",
		LogLevel:    "info",
		LogFormat:   LogFormatConsole,
		ImageDir:    "/var/lib/libvirt/images",
	}
}

// Load reads path over the defaults and applies the environment. An empty
// path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := cfg.Decode(data); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}
	cfg.ApplyEnv(os.Getenv)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Decode reads YAML over the current values. Unknown keys are rejected and
// an empty document changes nothing.
func (c *Config) Decode(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ApplyEnv overrides fields from the environment variables that are set.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvURI); v != "" {
		c.URI = v
	}
	if v := getenv(EnvVirsh); v != "" {
		c.VirshPath = v
	}
	if v := getenv(EnvQemuImg); v != "" {
		c.QemuImgPath = v
	}
}

// Validate checks the settings.
func (c *Config) Validate() error {
	if c.VirshPath == "" {
		return fmt.Errorf("virsh_path is required")
	}
	if c.QemuImgPath == "" {
		return fmt.Errorf("qemu_img_path is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be > 0, got %s", c.Timeout)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	switch c.LogFormat {
	case LogFormatConsole, LogFormatJSON:
	default:
		return fmt.Errorf("log_format must be %q or %q, got %q", LogFormatConsole, LogFormatJSON, c.LogFormat)
	}
	return nil
}
