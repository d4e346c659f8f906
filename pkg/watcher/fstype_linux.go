//go:build linux

package watcher

import (
	"path/filepath"

	"golang.org/x/sys/unix"
)

// Magic numbers from statfs(2).
const (
	nfsSuperMagic   = 0x6969
	smbSuperMagic   = 0x517B
	cifsMagicNumber = 0xFF534D42
	smb2MagicNumber = 0xFE534D42
	fuseSuperMagic  = 0x65735546
)

// DetectFilesystemType classifies the filesystem holding path. A path that
// does not exist yet is resolved through its parent directory.
func DetectFilesystemType(path string) FilesystemType {
	if path == "" {
		return FSTypeUnknown
	}
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		if err := unix.Statfs(filepath.Dir(path), &st); err != nil {
			return FSTypeUnknown
		}
	}
	switch uint32(st.Type) {
	case nfsSuperMagic:
		return FSTypeNFS
	case smbSuperMagic, cifsMagicNumber, smb2MagicNumber:
		return FSTypeSMB
	case fuseSuperMagic:
		// sshfs is the common FUSE mount for remote data; both are polled.
		return FSTypeFUSE
	}
	return FSTypeLocal
}
