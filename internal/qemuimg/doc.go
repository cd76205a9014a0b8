// Package qemuimg wraps the qemu-img tool for the disk images that back
// storage volumes.
//
// An Image is described by Params and resolved against a root directory, so
// relative filenames from test parameters land next to the other images of
// the run:
//
//	img := qemuimg.NewImage(qemuimg.Params{
//		Filename: "disk1.qcow2",
//		Format:   "qcow2",
//		Size:     "1G",
//	}, "/var/lib/libvirt/images", "disk1")
//	if err := img.Create(ctx); err != nil {
//		return err
//	}
//
// CheckLockSupport reports whether the installed qemu-img understands the
// -U (force share) option introduced with image locking in qemu 2.10.
package qemuimg
