// Package command runs external binaries and captures their output.
//
// Every caller in virtstore goes through the Runner interface so that the
// virsh and qemu-img bindings can be exercised in tests with recorded output
// instead of a live libvirt host:
//
//	r := command.NewExecRunner(30 * time.Second)
//	res, err := r.Run(ctx, "virsh", "pool-list", "--all")
//	if err != nil {
//	    var cmdErr *command.CmdError
//	    if errors.As(err, &cmdErr) {
//	        fmt.Println(cmdErr.Stderr)
//	    }
//	    return err
//	}
//	fmt.Print(res.Stdout)
package command
