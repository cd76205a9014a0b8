package loader

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jbweber/virtstore/internal/storage"
)

func TestLoadFromYAML_Valid(t *testing.T) {
	plan, err := LoadFromYAML([]byte(`
name: scratch
type: dir
target: /srv/scratch
build: true
autostart: true
volumes:
  - name: base.qcow2
    capacity: 1G
    format: qcow2
  - name: base-clone.qcow2
    clone_of: base.qcow2
`))
	require.NoError(t, err)

	assert.Equal(t, "scratch", plan.Name)
	assert.Equal(t, storage.PoolTypeDir, plan.Type)
	assert.Equal(t, "/srv/scratch", plan.Target)
	assert.True(t, plan.Build)
	assert.True(t, plan.Autostart)
	assert.True(t, plan.Start, "autostart implies start")
	require.Len(t, plan.Volumes, 2)
	assert.Equal(t, VolumePlan{Name: "base.qcow2", Capacity: "1G", Format: "qcow2"}, plan.Volumes[0])
	assert.Equal(t, "base.qcow2", plan.Volumes[1].CloneOf)
}

func TestLoadFromYAML_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "not yaml",
			yaml:    "name: [",
			wantErr: "unmarshal",
		},
		{
			name:    "missing name",
			yaml:    "type: dir\ntarget: /srv\n",
			wantErr: "name is required",
		},
		{
			name:    "missing type",
			yaml:    "name: p\n",
			wantErr: "type is required",
		},
		{
			name:    "unknown type",
			yaml:    "name: p\ntype: zfs\n",
			wantErr: `unsupported pool type "zfs"`,
		},
		{
			name:    "dir without target",
			yaml:    "name: p\ntype: dir\n",
			wantErr: "target is required for dir pools",
		},
		{
			name:    "logical without volume group",
			yaml:    "name: p\ntype: logical\ntarget: /dev/vg\nsource:\n  device: /dev/sdb\n",
			wantErr: "source.name is required for logical pools",
		},
		{
			name:    "netfs without export path",
			yaml:    "name: p\ntype: netfs\ntarget: /mnt\nsource:\n  host: nfs01\n",
			wantErr: "source.path is required for netfs pools",
		},
		{
			name:    "iscsi without host",
			yaml:    "name: p\ntype: iscsi\ntarget: /dev/disk/by-path\nsource:\n  device: iqn.2024-01.io.example:t1\n",
			wantErr: "source.host is required for iscsi pools",
		},
		{
			name:    "rbd without pool name",
			yaml:    "name: p\ntype: rbd\nsource:\n  host: mon01\n",
			wantErr: "source.name is required for rbd pools",
		},
		{
			name:    "volume without capacity",
			yaml:    "name: p\ntype: dir\ntarget: /srv\nvolumes:\n  - name: a.qcow2\n",
			wantErr: "volumes[0].capacity is required",
		},
		{
			name:    "clone with capacity",
			yaml:    "name: p\ntype: dir\ntarget: /srv\nvolumes:\n  - name: a.qcow2\n    capacity: 1G\n    clone_of: b.qcow2\n",
			wantErr: "cannot specify both",
		},
		{
			name:    "duplicate volume",
			yaml:    "name: p\ntype: dir\ntarget: /srv\nvolumes:\n  - name: a\n    capacity: 1G\n  - name: a\n    capacity: 1G\n",
			wantErr: "duplicated",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromYAML([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFromYAML_RBD(t *testing.T) {
	plan, err := LoadFromYAML([]byte(`
name: ceph
type: rbd
source:
  host: mon01.example.com
  name: libvirt-pool
extra: --auth-type ceph --auth-username libvirt
`))
	require.NoError(t, err)
	assert.Empty(t, plan.Target)
	assert.Equal(t, "libvirt-pool", plan.Source.Name)
	assert.Equal(t, "--auth-type ceph --auth-username libvirt", plan.Extra)
}

func TestSaveAndLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pool.yaml")
	plan := &PoolPlan{
		Name:   "nfs",
		Type:   storage.PoolTypeNetFS,
		Target: "/mnt/nfs",
		Source: SourceSpec{Host: "nfs01", Path: "/export/images"},
		Start:  true,
	}

	require.NoError(t, SaveToFile(plan, path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, plan, loaded)

	_, err = LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
