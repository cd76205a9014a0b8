package libvirt

import (
	"fmt"
	"sort"

	"github.com/digitalocean/go-libvirt"
)

// DaemonAPI is the subset of *libvirt.Libvirt used by Describe.
type DaemonAPI interface {
	ConnectGetLibVersion() (uint64, error)
	ConnectGetHostname() (string, error)
	ConnectGetUri() (string, error)
	ConnectListAllStoragePools(NeedResults int32, Flags libvirt.ConnectListAllStoragePoolsFlags) ([]libvirt.StoragePool, uint32, error)
}

// DaemonInfo describes a libvirt daemon.
type DaemonInfo struct {
	Version  string   `json:"version" yaml:"version"`
	Hostname string   `json:"hostname" yaml:"hostname"`
	URI      string   `json:"uri" yaml:"uri"`
	Pools    []string `json:"pools" yaml:"pools"`
}

// FormatVersion renders libvirt's packed version number (8006000) as
// major.minor.patch (8.6.0).
func FormatVersion(v uint64) string {
	return fmt.Sprintf("%d.%d.%d", v/1000000, (v%1000000)/1000, v%1000)
}

// Describe queries version, hostname, URI and the storage pool names.
func Describe(api DaemonAPI) (*DaemonInfo, error) {
	version, err := api.ConnectGetLibVersion()
	if err != nil {
		return nil, fmt.Errorf("failed to get libvirt version: %w", err)
	}
	hostname, err := api.ConnectGetHostname()
	if err != nil {
		return nil, fmt.Errorf("failed to get hostname: %w", err)
	}
	uri, err := api.ConnectGetUri()
	if err != nil {
		return nil, fmt.Errorf("failed to get connection URI: %w", err)
	}

	// Flags 0 lists active and inactive pools.
	pools, _, err := api.ConnectListAllStoragePools(1, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list storage pools: %w", err)
	}
	names := make([]string, 0, len(pools))
	for _, p := range pools {
		names = append(names, p.Name)
	}
	sort.Strings(names)

	return &DaemonInfo{
		Version:  FormatVersion(version),
		Hostname: hostname,
		URI:      uri,
		Pools:    names,
	}, nil
}
