// Package naming provides the naming conventions for the throwaway pools and
// volumes created while exercising a libvirt host.
package naming

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// DefaultPrefix is used by ScratchName when prefix is empty.
const DefaultPrefix = "virtstore"

// ScratchName returns a unique name of the form {prefix}-{8 hex chars}.
//
// Example: ScratchName("pool") → pool-3f2a9c1e
func ScratchName(prefix string) string {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	id := strings.ReplaceAll(uuid.New().String(), "-", "")
	return fmt.Sprintf("%s-%s", prefix, id[:8])
}

// ScratchVolume returns a scratch volume name carrying the format extension.
//
// Example: ScratchVolume("smoke", "qcow2") → smoke-3f2a9c1e.qcow2
func ScratchVolume(prefix, format string) string {
	name := ScratchName(prefix)
	if format == "" {
		return name
	}
	return name + "." + format
}

// CloneName returns the name used for a clone of volume. "-clone" is
// inserted before the extension.
//
// Example: CloneName("base.qcow2") → base-clone.qcow2
func CloneName(volume string) string {
	ext := filepath.Ext(volume)
	if ext == volume {
		// Dot files such as ".img" have no stem.
		ext = ""
	}
	return strings.TrimSuffix(volume, ext) + "-clone" + ext
}
