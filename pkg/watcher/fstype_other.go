//go:build !linux

package watcher

// DetectFilesystemType cannot classify filesystems on this platform and
// assumes a local one unless path is empty.
func DetectFilesystemType(path string) FilesystemType {
	if path == "" {
		return FSTypeUnknown
	}
	return FSTypeLocal
}
