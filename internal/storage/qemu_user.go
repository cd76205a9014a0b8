package storage

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/user"
	"strings"
	"sync"
)

// QEMUConfPath is where libvirt's QEMU driver reads its process user.
const QEMUConfPath = "/etc/libvirt/qemu.conf"

// fallbackQEMUID is the Fedora/RHEL uid and gid of the qemu user.
const fallbackQEMUID = "107"

var (
	qemuUID  string
	qemuGID  string
	qemuErr  error
	qemuOnce sync.Once
)

// GetQEMUUserGroup returns the uid and gid QEMU processes run as, used as the
// owner of directory pool targets. It consults qemu.conf, then the usual
// account names, then falls back to 107 and returns an error describing the
// fallback. The lookup runs once per process.
func GetQEMUUserGroup() (uid, gid string, err error) {
	qemuOnce.Do(func() {
		qemuUID, qemuGID, qemuErr = lookupQEMUUserGroup(QEMUConfPath)
	})
	return qemuUID, qemuGID, qemuErr
}

func lookupQEMUUserGroup(confPath string) (uid, gid string, err error) {
	var username, groupname string
	if f, err := os.Open(confPath); err == nil {
		username, groupname = parseQEMUConf(f)
		_ = f.Close()
	}

	candidates := []string{"qemu", "libvirt-qemu"}
	if username != "" {
		candidates = append([]string{username}, candidates...)
	}

	for i, name := range candidates {
		u, err := user.Lookup(name)
		if err != nil {
			continue
		}
		gid := u.Gid
		// The configured group only applies to the configured user.
		if i == 0 && username != "" && groupname != "" {
			if g, err := user.LookupGroup(groupname); err == nil {
				gid = g.Gid
			}
		}
		return u.Uid, gid, nil
	}

	return fallbackQEMUID, fallbackQEMUID,
		fmt.Errorf("could not determine QEMU user/group, using fallback UID/GID %s", fallbackQEMUID)
}

// parseQEMUConf extracts the user and group settings from qemu.conf content.
func parseQEMUConf(r io.Reader) (username, groupname string) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		value = strings.Trim(strings.TrimSpace(value), "\"'")

		switch strings.TrimSpace(key) {
		case "user":
			username = value
		case "group":
			groupname = value
		}
	}
	return username, groupname
}
