//go:build !unix && !windows

package dups

import (
	"errors"
	"io/fs"
)

// identityOf is unsupported where stat data carries no device and inode.
func identityOf(string, fs.FileInfo) (Identity, error) {
	return Identity{}, errors.ErrUnsupported
}
