package storage

import "errors"

var (
	// ErrPoolNotFound is returned when a pool is absent from pool-list.
	ErrPoolNotFound = errors.New("pool not found")
	// ErrAttributeMissing is returned when virsh output lacks a requested field.
	ErrAttributeMissing = errors.New("attribute missing from virsh output")
	// ErrMalformedOutput is returned when tabular output cannot be parsed.
	ErrMalformedOutput = errors.New("malformed virsh output")
	// ErrVolumeExists is returned when creating a volume that is already present.
	ErrVolumeExists = errors.New("volume already exists")
	// ErrVolumeMissing is returned when a volume is absent after it was created
	// or cloned, or when a clone source does not exist.
	ErrVolumeMissing = errors.New("volume does not exist")
	// ErrVolumeStillPresent is returned when a deleted volume is still listed.
	ErrVolumeStillPresent = errors.New("volume still present after delete")
)
