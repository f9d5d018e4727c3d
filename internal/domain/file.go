package domain

import "io"

// RemoteFileName identifies a file inside the flat remote backup folder.
type RemoteFileName = string

// FileEntry is one row of the reconciliation view.
type FileEntry struct {
	Name     string
	Uploaded bool
}

// UploadRequest names the local file a trigger wants backed up.
type UploadRequest struct {
	Filename string
}

// LocalFile is an opened candidate file from the source directory. The
// holder must Close it.
type LocalFile struct {
	Name string
	Size int64
	io.ReadCloser
}
