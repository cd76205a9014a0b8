package libvirt

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConnect requires a running libvirt daemon.
func TestConnect(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	c, err := Connect("", 0)
	if err != nil {
		t.Skipf("libvirt not available: %v", err)
	}
	defer func() {
		assert.NoError(t, c.Close())
	}()

	require.NoError(t, c.Ping())

	info, err := Describe(c.Libvirt())
	require.NoError(t, err)
	assert.NotEmpty(t, info.Version)
}

func TestConnect_InvalidSocket(t *testing.T) {
	_, err := Connect("/nonexistent/socket", 100*time.Millisecond)
	assert.Error(t, err)
}

func TestConnectWithContext_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ConnectWithContext(ctx, "/nonexistent/socket", 100*time.Millisecond)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_NotConnected(t *testing.T) {
	c := &Client{}
	assert.Error(t, c.Ping())
	assert.NoError(t, c.Close())
	assert.Nil(t, c.Libvirt())
}
