package dups

import (
	"errors"
	"io"
	"os"
)

// FileRecord is one discovered regular file.
//
// A record is owned by exactly one Group at a time. Its handle and window are
// only allocated once the owning group has to be compared, and are released as
// soon as that group resolves.
type FileRecord struct {
	// Path is the path the file was reached through.
	Path string
	// Identity is the file's (device, inode) pair.
	Identity Identity
	// Size is the declared size in bytes.
	Size int64

	remaining int64
	file      *os.File
	window    []byte
}

// NewFileRecord creates a record with nothing read yet.
func NewFileRecord(path string, id Identity, size int64) *FileRecord {
	return &FileRecord{
		Path:      path,
		Identity:  id,
		Size:      size,
		remaining: size,
	}
}

// Remaining returns the number of bytes not yet compared.
func (f *FileRecord) Remaining() int64 {
	return f.remaining
}

// open opens the file for reading and allocates its window, unless already done.
func (f *FileRecord) open(blockSize int64) error {
	if f.file != nil {
		return nil
	}

	file, err := os.Open(f.Path)
	if err != nil {
		return &OpenError{Path: f.Path, Err: err}
	}

	adviseSequential(file)

	f.file = file
	f.window = make([]byte, 0, min(blockSize, f.Size))

	return nil
}

// readWindow reads exactly n bytes into the window.
func (f *FileRecord) readWindow(n int64) error {
	f.window = f.window[:n]

	got, err := io.ReadFull(f.file, f.window)
	if err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return &TruncationError{Path: f.Path, Want: n, Got: got}
		}

		return &ReadError{Path: f.Path, Err: err}
	}

	f.remaining -= n

	return nil
}

// release closes the handle and drops the window. It is safe to call more than once.
func (f *FileRecord) release() {
	if f.file != nil {
		_ = f.file.Close()
		f.file = nil
	}

	f.window = nil
}
