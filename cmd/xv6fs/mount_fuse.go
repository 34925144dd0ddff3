//go:build fuse

package main

import (
	"fmt"

	xv6fs "github.com/cell-os/xv6fs"
)

func runMount(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: xv6fs mount <image> <mountpoint>")
	}
	dev, err := xv6fs.OpenDevice(args[0], false, 0)
	if err != nil {
		return err
	}
	defer dev.Close()

	sb, err := xv6fs.Mount(dev)
	if err != nil {
		return err
	}
	return xv6fs.MountFUSE(args[1], sb)
}
