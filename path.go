package xv6fs

import "strings"

// namex walks path to an inode, optionally stopping at the parent of
// the final element. cwd stands in for the process table's "current
// working directory", which this package does not itself maintain:
// callers resolving a relative path must supply the inode to resolve
// against; nil is only valid for absolute-only resolution.
func namex(sb *Superblock, cwd *Inode, path string, wantParent bool) (*Inode, string, error) {
	var ip *Inode
	if strings.HasPrefix(path, "/") {
		ip = iget(sb, ROOTINO)
	} else {
		if cwd == nil {
			return nil, "", ErrBadPath
		}
		ip = idup(cwd)
	}

	for {
		elem, rest, ok := skipelem(path)
		if !ok {
			break
		}

		if err := ilock(ip); err != nil {
			iput(ip)
			return nil, "", err
		}
		if ip.Type != T_DIR {
			iunlockput(ip)
			return nil, "", ErrNotDir
		}

		if wantParent && rest == "" {
			// Caller wants the parent of the final element: return it
			// still holding a reference, but unlocked.
			iunlock(ip)
			return ip, elem, nil
		}

		next, err := dirlookup(ip, elem, nil)
		if err != nil {
			iunlockput(ip)
			return nil, "", err
		}
		iunlockput(ip)
		ip = next
		path = rest
	}

	if wantParent {
		// Reached the end without the early return above: the path
		// had no final element to split off a parent for.
		iput(ip)
		return nil, "", ErrBadPath
	}
	return ip, "", nil
}

// Namei resolves path to an unlocked inode reference, or an error if
// no such path exists. Relative paths resolve against cwd.
func Namei(sb *Superblock, cwd *Inode, path string) (*Inode, error) {
	ip, _, err := namex(sb, cwd, path, false)
	return ip, err
}

// NameiParent resolves path to the unlocked inode of its parent
// directory, returning the final path element's name alongside it.
// Relative paths resolve against cwd.
func NameiParent(sb *Superblock, cwd *Inode, path string) (*Inode, string, error) {
	return namex(sb, cwd, path, true)
}
