// Command xv6fs is a small CLI over the xv6fs package: format images,
// inspect them, and read/write files. A plain os.Args switch, no
// flag-parsing library.
package main

import (
	"fmt"
	"os"
	"strconv"

	xv6fs "github.com/cell-os/xv6fs"
)

const usage = `xv6fs - checksummed filesystem CLI tool

Usage:
  xv6fs mkfs <image> <size_blocks> [ninodes]   Format a fresh image
  xv6fs stat <image> <path>                    Print inode metadata
  xv6fs ls <image> <path>                      List a directory's entries
  xv6fs cat <image> <path>                      Print a file's contents
  xv6fs write <image> <path> <local_file>      Write a local file's contents into path
  xv6fs fsck <image>                           Check an image for inconsistencies
  xv6fs mount <image> <mountpoint>             Mount an image over FUSE (built with -tags fuse)
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "mkfs":
		err = runMkfs(os.Args[2:])
	case "stat":
		err = runStat(os.Args[2:])
	case "ls":
		err = runLs(os.Args[2:])
	case "cat":
		err = runCat(os.Args[2:])
	case "write":
		err = runWrite(os.Args[2:])
	case "fsck":
		err = runFsck(os.Args[2:])
	case "mount":
		err = runMount(os.Args[2:])
	case "help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n", os.Args[1])
		fmt.Print(usage)
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func runMkfs(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: xv6fs mkfs <image> <size_blocks> [ninodes]")
	}
	size, err := strconv.ParseUint(args[1], 10, 32)
	if err != nil {
		return fmt.Errorf("bad size_blocks: %w", err)
	}
	var opts []xv6fs.FormatOption
	if len(args) > 2 {
		n, err := strconv.ParseUint(args[2], 10, 32)
		if err != nil {
			return fmt.Errorf("bad ninodes: %w", err)
		}
		opts = append(opts, xv6fs.WithInodeCount(uint32(n)))
	}

	dev, err := xv6fs.OpenDevice(args[0], true, uint32(size))
	if err != nil {
		return err
	}
	defer dev.Close()

	_, err = xv6fs.Format(dev, uint32(size), opts...)
	return err
}

func openMounted(path string) (*xv6fs.Superblock, *xv6fs.FileDevice, error) {
	dev, err := xv6fs.OpenDevice(path, false, 0)
	if err != nil {
		return nil, nil, err
	}
	sb, err := xv6fs.Mount(dev)
	if err != nil {
		dev.Close()
		return nil, nil, err
	}
	return sb, dev, nil
}

// runStat opens a path, stats it, and prints
// type/dev/ino/nlink/size/checksum (checksum in hex).
func runStat(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: xv6fs stat <image> <path>")
	}
	sb, dev, err := openMounted(args[0])
	if err != nil {
		return err
	}
	defer dev.Close()

	ip, err := xv6fs.Namei(sb, nil, args[1])
	if err != nil {
		return err
	}
	if err := xv6fs.Ilock(ip); err != nil {
		return err
	}
	defer xv6fs.Iunlockput(ip)

	st, err := xv6fs.Stati(ip)
	if err != nil {
		return err
	}
	fmt.Printf("type %d dev %d ino %d nlink %d size %d checksum %x\n",
		st.Type, st.Dev, st.Inum, st.Nlink, st.Size, st.Checksum)
	return nil
}

func runLs(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: xv6fs ls <image> <path>")
	}
	sb, dev, err := openMounted(args[0])
	if err != nil {
		return err
	}
	defer dev.Close()

	ip, err := xv6fs.Namei(sb, nil, args[1])
	if err != nil {
		return err
	}
	if err := xv6fs.Ilock(ip); err != nil {
		return err
	}
	defer xv6fs.Iunlockput(ip)

	entries, err := xv6fs.ReadDirNames(ip)
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Println(e)
	}
	return nil
}

func runCat(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: xv6fs cat <image> <path>")
	}
	sb, dev, err := openMounted(args[0])
	if err != nil {
		return err
	}
	defer dev.Close()

	ip, err := xv6fs.Namei(sb, nil, args[1])
	if err != nil {
		return err
	}
	if err := xv6fs.Ilock(ip); err != nil {
		return err
	}
	defer xv6fs.Iunlockput(ip)

	data, err := xv6fs.ReadAll(ip)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}

func runWrite(args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: xv6fs write <image> <path> <local_file>")
	}
	sb, dev, err := openMounted(args[0])
	if err != nil {
		return err
	}
	defer dev.Close()

	data, err := os.ReadFile(args[2])
	if err != nil {
		return err
	}

	dp, name, err := xv6fs.NameiParent(sb, nil, args[1])
	if err != nil {
		return err
	}
	if err := xv6fs.Ilock(dp); err != nil {
		return err
	}
	ip, err := xv6fs.DirLookup(dp, name)
	if err != nil {
		ip, err = xv6fs.CreateFile(dp, name)
		if err != nil {
			xv6fs.Iunlockput(dp)
			return err
		}
	}
	xv6fs.Iunlockput(dp)

	if err := xv6fs.Ilock(ip); err != nil {
		return err
	}
	defer xv6fs.Iunlockput(ip)
	return xv6fs.WriteAll(ip, data)
}

func runFsck(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: xv6fs fsck <image>")
	}
	dev, err := xv6fs.OpenDevice(args[0], false, 0)
	if err != nil {
		return err
	}
	defer dev.Close()

	problems, err := xv6fs.Check(dev)
	if err != nil {
		return err
	}
	for _, p := range problems {
		fmt.Println(p.String())
	}
	if len(problems) > 0 {
		os.Exit(1)
	}
	return nil
}
