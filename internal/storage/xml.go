package storage

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	libvirtxml "libvirt.org/go/libvirtxml"
)

// DirPoolDefinition builds a directory pool definition whose target is owned
// by the QEMU user, so guests can open volumes created in it.
func DirPoolDefinition(name, path string) *libvirtxml.StoragePool {
	uid, gid, err := GetQEMUUserGroup()
	if err != nil {
		log.Debug().Err(err).Msg("Using fallback QEMU user")
	}

	return &libvirtxml.StoragePool{
		Type: string(PoolTypeDir),
		Name: name,
		Target: &libvirtxml.StoragePoolTarget{
			Path: path,
			Permissions: &libvirtxml.StoragePoolTargetPermissions{
				Owner: uid,
				Group: gid,
				Mode:  "0755",
			},
		},
	}
}

// marshalXML renders a libvirtxml document without the XML declaration.
func marshalXML(doc interface{ Marshal() (string, error) }) (string, error) {
	out, err := doc.Marshal()
	if err != nil {
		return "", err
	}
	out = strings.TrimPrefix(out, "<?xml version=\"1.0\" encoding=\"UTF-8\"?>")
	return strings.TrimSpace(out), nil
}

// DefinePoolXML defines a pool from a libvirtxml definition via pool-define.
func (p *StoragePool) DefinePoolXML(ctx context.Context, def *libvirtxml.StoragePool) error {
	doc, err := marshalXML(def)
	if err != nil {
		return fmt.Errorf("failed to generate pool XML: %w", err)
	}

	f, err := os.CreateTemp("", "virtstore-pool-*.xml")
	if err != nil {
		return fmt.Errorf("failed to create pool XML file: %w", err)
	}
	defer func() { _ = os.Remove(f.Name()) }()

	if _, err := f.WriteString(doc); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write pool XML file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write pool XML file: %w", err)
	}

	if _, err := p.virsh.PoolDefine(ctx, f.Name()); err != nil {
		log.Error().Err(err).Str("pool", def.Name).Msg("Define pool failed")
		return fmt.Errorf("failed to define pool %s: %w", def.Name, err)
	}
	log.Info().Str("pool", def.Name).Str("type", def.Type).Msg("Defined pool")
	return nil
}

// PoolDefinition returns the pool's current XML definition.
func (p *StoragePool) PoolDefinition(ctx context.Context, name string) (*libvirtxml.StoragePool, error) {
	res, err := p.virsh.PoolDumpXML(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to dump pool %s XML: %w", name, err)
	}

	var def libvirtxml.StoragePool
	if err := def.Unmarshal(res.Stdout); err != nil {
		return nil, fmt.Errorf("failed to parse pool %s XML: %w", name, err)
	}
	return &def, nil
}

// VolumeDefinition returns the volume's current XML definition.
func (pv *PoolVolume) VolumeDefinition(ctx context.Context, name string) (*libvirtxml.StorageVolume, error) {
	res, err := pv.virsh.VolDumpXML(ctx, name, pv.pool)
	if err != nil {
		return nil, fmt.Errorf("failed to dump volume %s XML: %w", name, err)
	}

	var def libvirtxml.StorageVolume
	if err := def.Unmarshal(res.Stdout); err != nil {
		return nil, fmt.Errorf("failed to parse volume %s XML: %w", name, err)
	}
	return &def, nil
}
