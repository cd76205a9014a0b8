// Package libvirt talks to the libvirt daemon over its RPC socket.
//
// virtstore drives storage through virsh; this package only checks that the
// daemon behind it is reachable and describes it:
//
//	client, err := libvirt.Connect("", 0)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	info, err := libvirt.Describe(client.Libvirt())
//
// Describe accepts the narrow DaemonAPI interface, which *libvirt.Libvirt
// satisfies implicitly, so tests can substitute a fake.
package libvirt
