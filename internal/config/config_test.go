package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "virtstore.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvURI, EnvVirsh, EnvQemuImg} {
		t.Setenv(k, "")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "virsh", cfg.VirshPath)
	assert.Equal(t, "qemu-img", cfg.QemuImgPath)
	assert.Equal(t, 5*time.Minute, cfg.Timeout)
	assert.Empty(t, cfg.URI)
}

func TestLoad(t *testing.T) {
	clearEnv(t)

	t.Run("no file", func(t *testing.T) {
		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("file overrides defaults", func(t *testing.T) {
		path := writeConfig(t, `
uri: qemu+ssh://root@hv01/system
virsh_path: /usr/local/bin/virsh
timeout: 90s
log_level: debug
log_format: json
`)
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "qemu+ssh://root@hv01/system", cfg.URI)
		assert.Equal(t, "/usr/local/bin/virsh", cfg.VirshPath)
		assert.Equal(t, 90*time.Second, cfg.Timeout)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, LogFormatJSON, cfg.LogFormat)
		// Untouched keys keep their defaults.
		assert.Equal(t, "qemu-img", cfg.QemuImgPath)
	})

	t.Run("empty file", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, ""))
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})

	t.Run("unknown key", func(t *testing.T) {
		_, err := Load(writeConfig(t, "virsh: /bin/virsh\n"))
		assert.Error(t, err)
	})

	t.Run("invalid value", func(t *testing.T) {
		_, err := Load(writeConfig(t, "log_format: xml\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "log_format")
	})
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv(EnvURI, "qemu:///session")
	t.Setenv(EnvVirsh, "/opt/libvirt/bin/virsh")
	t.Setenv(EnvQemuImg, "")

	path := writeConfig(t, "uri: qemu:///system\nqemu_img_path: /opt/qemu/bin/qemu-img\n")
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "qemu:///session", cfg.URI)
	assert.Equal(t, "/opt/libvirt/bin/virsh", cfg.VirshPath)
	assert.Equal(t, "/opt/qemu/bin/qemu-img", cfg.QemuImgPath)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr string
	}{
		{name: "defaults"},
		{name: "no virsh", modify: func(c *Config) { c.VirshPath = "" }, wantErr: "virsh_path"},
		{name: "no qemu-img", modify: func(c *Config) { c.QemuImgPath = "" }, wantErr: "qemu_img_path"},
		{name: "zero timeout", modify: func(c *Config) { c.Timeout = 0 }, wantErr: "timeout"},
		{name: "bad level", modify: func(c *Config) { c.LogLevel = "loud" }, wantErr: "log_level"},
		{name: "bad format", modify: func(c *Config) { c.LogFormat = "xml" }, wantErr: "log_format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			if tt.modify != nil {
				tt.modify(cfg)
			}
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
