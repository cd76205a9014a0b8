package qemuimg

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrUnknownFormat is returned by DetectFormat for files that are neither
// qcow2 nor a bootable raw disk.
var ErrUnknownFormat = errors.New("unknown image format")

var (
	// "QFI" followed by 0xfb at offset 0.
	qcow2Magic = []byte{0x51, 0x46, 0x49, 0xfb}

	// Boot sector signature at offset 510. GPT disks carry it in their
	// protective MBR as well.
	mbrSignature = []byte{0x55, 0xaa}
)

// DetectFormat reads magic bytes from path and returns "qcow2" or "raw".
func DetectFormat(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open image: %w", err)
	}
	defer func() { _ = f.Close() }()

	magic := make([]byte, len(qcow2Magic))
	if _, err := io.ReadFull(f, magic); err != nil {
		return "", fmt.Errorf("%w: %s is too small", ErrUnknownFormat, path)
	}
	if bytes.Equal(magic, qcow2Magic) {
		return "qcow2", nil
	}

	sig := make([]byte, len(mbrSignature))
	if _, err := f.ReadAt(sig, 510); err != nil {
		return "", fmt.Errorf("%w: %s has no boot sector", ErrUnknownFormat, path)
	}
	if bytes.Equal(sig, mbrSignature) {
		return "raw", nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}
