package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jbweber/virtstore/internal/command"
	"github.com/jbweber/virtstore/internal/command/commandtest"
	"github.com/jbweber/virtstore/internal/virsh"
)

const cmdPoolListAll = "virsh pool-list --all"

func newTestPool(fake *commandtest.Fake) *StoragePool {
	return NewStoragePool(virsh.New(virsh.WithRunner(fake)))
}

func TestStoragePool_ListPools(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		fake := commandtest.NewFake().OK(cmdPoolListAll, poolListAll)
		pools, err := newTestPool(fake).ListPools(ctx)
		require.NoError(t, err)
		assert.Len(t, pools, 3)
		assert.Equal(t, "inactive", pools["scratch"].State())
	})

	t.Run("command failure", func(t *testing.T) {
		fake := commandtest.NewFake().Fail(cmdPoolListAll, "error: failed to connect to the hypervisor")
		_, err := newTestPool(fake).ListPools(ctx)
		require.Error(t, err)
		assert.True(t, command.IsCmdError(err))
	})

	t.Run("malformed output", func(t *testing.T) {
		fake := commandtest.NewFake().OK(cmdPoolListAll, " Name State Autostart\n---\n a\n")
		_, err := newTestPool(fake).ListPools(ctx)
		assert.True(t, errors.Is(err, ErrMalformedOutput))
	})
}

func TestStoragePool_PoolExists(t *testing.T) {
	ctx := context.Background()

	fake := commandtest.NewFake().OK(cmdPoolListAll, poolListAll)
	p := newTestPool(fake)
	assert.True(t, p.PoolExists(ctx, "default"))
	assert.True(t, p.PoolExists(ctx, "scratch"))
	assert.False(t, p.PoolExists(ctx, "missing"))

	failing := newTestPool(commandtest.NewFake().Fail(cmdPoolListAll, "error"))
	assert.False(t, failing.PoolExists(ctx, "default"))
}

func TestStoragePool_PoolStateAndAutostart(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name          string
		pool          string
		wantState     string
		wantAutostart string
		wantErr       error
	}{
		{name: "active autostart", pool: "default", wantState: "active", wantAutostart: "yes"},
		{name: "inactive", pool: "scratch", wantState: "inactive", wantAutostart: "no"},
		{name: "missing pool", pool: "missing", wantErr: ErrPoolNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPool(commandtest.NewFake().OK(cmdPoolListAll, poolListAll))

			state, err := p.PoolState(ctx, tt.pool)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr))
				assert.True(t, IsNotFound(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantState, state)

			autostart, err := p.PoolAutostart(ctx, tt.pool)
			require.NoError(t, err)
			assert.Equal(t, tt.wantAutostart, autostart)
		})
	}

	t.Run("list failure", func(t *testing.T) {
		p := newTestPool(commandtest.NewFake().Fail(cmdPoolListAll, "error"))
		_, err := p.PoolState(ctx, "default")
		require.Error(t, err)
		assert.True(t, command.IsCmdError(err))
		assert.False(t, IsNotFound(err))
	})

	t.Run("column missing", func(t *testing.T) {
		p := newTestPool(commandtest.NewFake().OK(cmdPoolListAll, " Name   State\n------\n a      active\n"))
		_, err := p.PoolAutostart(ctx, "a")
		assert.True(t, errors.Is(err, ErrAttributeMissing))
	})
}

func TestStoragePool_PoolInfo_LogsFailure(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })

	fake := commandtest.NewFake().Fail("virsh pool-info missing", "error: failed to get pool 'missing'")
	assert.Empty(t, newTestPool(fake).PoolInfo(context.Background(), "missing"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "missing", entry["pool"])
}

func TestStoragePool_PoolInfo(t *testing.T) {
	ctx := context.Background()

	fake := commandtest.NewFake().
		OK("virsh pool-info default", poolInfoDefault).
		OK("virsh pool-info transient", poolInfoTransient).
		Fail("virsh pool-info missing", "error: failed to get pool 'missing'")
	p := newTestPool(fake)

	info := p.PoolInfo(ctx, "default")
	assert.Equal(t, "running", info["State"])

	assert.Empty(t, p.PoolInfo(ctx, "missing"))

	uuid, err := p.PoolUUID(ctx, "default")
	require.NoError(t, err)
	assert.Equal(t, "4b3a8d0e-3f0a-4d62-9c6d-8b1f1e0f7d21", uuid)

	_, err = p.PoolUUID(ctx, "missing")
	assert.True(t, errors.Is(err, ErrAttributeMissing))

	persistent, err := p.IsPoolPersistent(ctx, "default")
	require.NoError(t, err)
	assert.True(t, persistent)

	persistent, err = p.IsPoolPersistent(ctx, "transient")
	require.NoError(t, err)
	assert.False(t, persistent)

	_, err = p.IsPoolPersistent(ctx, "missing")
	assert.True(t, errors.Is(err, ErrAttributeMissing))
}

func TestStoragePool_IsPoolActive(t *testing.T) {
	ctx := context.Background()

	p := newTestPool(commandtest.NewFake().OK(cmdPoolListAll, poolListAll))
	assert.True(t, p.IsPoolActive(ctx, "default"))
	assert.False(t, p.IsPoolActive(ctx, "scratch"))
	assert.False(t, p.IsPoolActive(ctx, "missing"))
}

func TestStoragePool_DeletePool(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name          string
		setup         func(f *commandtest.Fake)
		wantErr       bool
		wantDestroy   int
		wantUndefines int
	}{
		{
			name: "active pool is destroyed then undefined",
			setup: func(f *commandtest.Fake) {
				f.OK(cmdPoolListAll, poolListOnlyScratchActive).
					OK("virsh pool-destroy scratch", "Pool scratch destroyed\n").
					OK("virsh pool-undefine scratch", "Pool scratch has been undefined\n")
			},
			wantDestroy:   1,
			wantUndefines: 1,
		},
		{
			name: "inactive pool is only undefined",
			setup: func(f *commandtest.Fake) {
				f.OK(cmdPoolListAll, poolListOnlyScratchInactive).
					OK("virsh pool-undefine scratch", "Pool scratch has been undefined\n")
			},
			wantUndefines: 1,
		},
		{
			name: "destroy failure aborts",
			setup: func(f *commandtest.Fake) {
				f.OK(cmdPoolListAll, poolListOnlyScratchActive).
					Fail("virsh pool-destroy scratch", "error: device busy")
			},
			wantErr:     true,
			wantDestroy: 1,
		},
		{
			name: "undefine failure with pool gone succeeds",
			setup: func(f *commandtest.Fake) {
				f.On(cmdPoolListAll,
					commandtest.Response{Stdout: poolListOnlyScratchInactive},
					commandtest.Response{Stdout: poolListEmpty}).
					Fail("virsh pool-undefine scratch", "error: failed to get pool 'scratch'")
			},
			wantUndefines: 1,
		},
		{
			name: "undefine failure with pool present fails",
			setup: func(f *commandtest.Fake) {
				f.OK(cmdPoolListAll, poolListOnlyScratchInactive).
					Fail("virsh pool-undefine scratch", "error: internal error")
			},
			wantErr:       true,
			wantUndefines: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := commandtest.NewFake()
			tt.setup(fake)

			err := newTestPool(fake).DeletePool(ctx, "scratch")
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantDestroy, fake.Count("virsh pool-destroy scratch"))
			assert.Equal(t, tt.wantUndefines, fake.Count("virsh pool-undefine scratch"))
		})
	}
}

func TestStoragePool_StartPool(t *testing.T) {
	ctx := context.Background()

	t.Run("already active", func(t *testing.T) {
		fake := commandtest.NewFake().OK(cmdPoolListAll, poolListOnlyScratchActive)
		require.NoError(t, newTestPool(fake).StartPool(ctx, "scratch"))
		assert.Zero(t, fake.Count("virsh pool-start scratch"))
	})

	t.Run("inactive is started", func(t *testing.T) {
		fake := commandtest.NewFake().
			OK(cmdPoolListAll, poolListOnlyScratchInactive).
			OK("virsh pool-start scratch", "Pool scratch started\n")
		require.NoError(t, newTestPool(fake).StartPool(ctx, "scratch"))
		assert.Equal(t, 1, fake.Count("virsh pool-start scratch"))
	})

	t.Run("start failure", func(t *testing.T) {
		fake := commandtest.NewFake().
			OK(cmdPoolListAll, poolListOnlyScratchInactive).
			Fail("virsh pool-start scratch", "error: cannot open directory")
		err := newTestPool(fake).StartPool(ctx, "scratch")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot open directory")
	})
}

func TestStoragePool_DestroyPool(t *testing.T) {
	ctx := context.Background()

	t.Run("already inactive", func(t *testing.T) {
		fake := commandtest.NewFake().OK(cmdPoolListAll, poolListOnlyScratchInactive)
		require.NoError(t, newTestPool(fake).DestroyPool(ctx, "scratch"))
		assert.Zero(t, fake.Count("virsh pool-destroy scratch"))
	})

	t.Run("active is destroyed", func(t *testing.T) {
		fake := commandtest.NewFake().
			OK(cmdPoolListAll, poolListOnlyScratchActive).
			OK("virsh pool-destroy scratch", "")
		require.NoError(t, newTestPool(fake).DestroyPool(ctx, "scratch"))
		assert.Equal(t, 1, fake.Count("virsh pool-destroy scratch"))
	})

	t.Run("destroy failure", func(t *testing.T) {
		fake := commandtest.NewFake().
			OK(cmdPoolListAll, poolListOnlyScratchActive).
			Fail("virsh pool-destroy scratch", "error")
		assert.Error(t, newTestPool(fake).DestroyPool(ctx, "scratch"))
	})
}

func TestStoragePool_SimpleCommands(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		line string
		call func(p *StoragePool) error
	}{
		{
			name: "autostart",
			line: "virsh pool-autostart scratch",
			call: func(p *StoragePool) error { return p.SetPoolAutostart(ctx, "scratch") },
		},
		{
			name: "autostart disable",
			line: "virsh pool-autostart scratch --disable",
			call: func(p *StoragePool) error { return p.SetPoolAutostart(ctx, "scratch", "--disable") },
		},
		{
			name: "build",
			line: "virsh pool-build scratch",
			call: func(p *StoragePool) error { return p.BuildPool(ctx, "scratch") },
		},
		{
			name: "build overwrite",
			line: "virsh pool-build scratch --overwrite",
			call: func(p *StoragePool) error { return p.BuildPool(ctx, "scratch", "--overwrite") },
		},
		{
			name: "refresh",
			line: "virsh pool-refresh scratch",
			call: func(p *StoragePool) error { return p.RefreshPool(ctx, "scratch") },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok := commandtest.NewFake().OK(tt.line, "")
			require.NoError(t, tt.call(newTestPool(ok)))
			assert.Equal(t, []string{tt.line}, ok.Calls())

			failing := commandtest.NewFake().Fail(tt.line, "error: boom")
			assert.Error(t, tt.call(newTestPool(failing)))
		})
	}
}

func TestStoragePool_Define(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		line string
		call func(p *StoragePool) error
	}{
		{
			name: "dir",
			line: "virsh pool-define-as --name p --type dir --target /srv/p",
			call: func(p *StoragePool) error { return p.DefineDirPool(ctx, "p", "/srv/p") },
		},
		{
			name: "fs",
			line: "virsh pool-define-as --name p --type fs --target /mnt/p --source-dev /dev/sdb1",
			call: func(p *StoragePool) error { return p.DefineFSPool(ctx, "p", "/dev/sdb1", "/mnt/p") },
		},
		{
			name: "lvm",
			line: "virsh pool-define-as --name p --type logical --target /dev/vg0 --source-dev /dev/sdb --source-name vg0",
			call: func(p *StoragePool) error { return p.DefineLVMPool(ctx, "p", "/dev/sdb", "vg0", "/dev/vg0") },
		},
		{
			name: "disk",
			line: "virsh pool-define-as --name p --type disk --target /dev --source-dev /dev/sdc",
			call: func(p *StoragePool) error { return p.DefineDiskPool(ctx, "p", "/dev/sdc", "/dev") },
		},
		{
			name: "iscsi",
			line: "virsh pool-define-as --name p --type iscsi --target /dev/disk/by-path --source-host 10.0.0.5 --source-dev iqn.2024-01.io.example:t1",
			call: func(p *StoragePool) error {
				return p.DefineISCSIPool(ctx, "p", "10.0.0.5", "iqn.2024-01.io.example:t1", "/dev/disk/by-path")
			},
		},
		{
			name: "netfs uses the source path",
			line: "virsh pool-define-as --name p --type netfs --target /mnt/nfs --source-host nfs1 --source-path /export/images",
			call: func(p *StoragePool) error { return p.DefineNetFSPool(ctx, "p", "nfs1", "/export/images", "/mnt/nfs") },
		},
		{
			name: "rbd without target",
			line: "virsh pool-define-as --name p --type rbd --source-host mon1 --source-name rbd --auth-type ceph --auth-username admin",
			call: func(p *StoragePool) error {
				return p.DefineRBDPool(ctx, "p", "mon1", "rbd", "--auth-type ceph --auth-username admin")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok := commandtest.NewFake().OK(tt.line, "Pool p defined\n")
			require.NoError(t, tt.call(newTestPool(ok)))
			assert.Equal(t, []string{tt.line}, ok.Calls())

			failing := commandtest.NewFake().Fail(tt.line, "error: pool p already exists")
			assert.Error(t, tt.call(newTestPool(failing)))
		})
	}
}

// defineRecorder captures the XML document handed to pool-define.
type defineRecorder struct {
	PoolCommands
	xml  string
	file string
	err  error
}

func (d *defineRecorder) PoolDefine(_ context.Context, xmlFile string) (*command.Result, error) {
	data, err := os.ReadFile(xmlFile)
	if err != nil {
		return nil, err
	}
	d.xml = string(data)
	d.file = xmlFile
	return &command.Result{}, d.err
}

func TestStoragePool_DefinePoolXML(t *testing.T) {
	ctx := context.Background()

	rec := &defineRecorder{}
	p := NewStoragePool(rec)

	def := DirPoolDefinition("scratch", "/var/lib/libvirt/scratch")
	require.NoError(t, p.DefinePoolXML(ctx, def))

	assert.Contains(t, rec.xml, `<pool type="dir">`)
	assert.Contains(t, rec.xml, "<name>scratch</name>")
	assert.Contains(t, rec.xml, "<path>/var/lib/libvirt/scratch</path>")
	assert.Contains(t, rec.xml, "<mode>0755</mode>")
	assert.NotContains(t, rec.xml, "<?xml")

	_, err := os.Stat(rec.file)
	assert.True(t, os.IsNotExist(err), "temporary XML file should be removed")

	rec = &defineRecorder{err: errors.New("define failed")}
	assert.Error(t, NewStoragePool(rec).DefinePoolXML(ctx, def))
}

func TestDirPoolDefinition(t *testing.T) {
	def := DirPoolDefinition("images", "/srv/images")
	assert.Equal(t, "dir", def.Type)
	assert.Equal(t, "images", def.Name)
	require.NotNil(t, def.Target)
	require.NotNil(t, def.Target.Permissions)
	assert.Equal(t, "/srv/images", def.Target.Path)
	assert.NotEmpty(t, def.Target.Permissions.Owner)
	assert.NotEmpty(t, def.Target.Permissions.Group)
}

func TestStoragePool_PoolDefinition(t *testing.T) {
	ctx := context.Background()

	fake := commandtest.NewFake().
		OK("virsh pool-dumpxml default", poolDumpXMLDefault).
		OK("virsh pool-dumpxml broken", "<pool").
		Fail("virsh pool-dumpxml missing", "error: failed to get pool 'missing'")
	p := newTestPool(fake)

	def, err := p.PoolDefinition(ctx, "default")
	require.NoError(t, err)
	assert.Equal(t, "dir", def.Type)
	assert.Equal(t, "4b3a8d0e-3f0a-4d62-9c6d-8b1f1e0f7d21", def.UUID)
	require.NotNil(t, def.Target)
	assert.Equal(t, "/var/lib/libvirt/images", def.Target.Path)

	_, err = p.PoolDefinition(ctx, "broken")
	assert.Error(t, err)

	_, err = p.PoolDefinition(ctx, "missing")
	assert.True(t, command.IsCmdError(err))
}
