package dups

import (
	"cmp"
	"fmt"
)

// Identity is the (device, inode) pair of a physical file.
type Identity struct {
	Dev uint64 `json:"dev"`
	Ino uint64 `json:"ino"`
}

// Compare orders identities by device, then inode.
func (id Identity) Compare(other Identity) int {
	if c := cmp.Compare(id.Dev, other.Dev); c != 0 {
		return c
	}

	return cmp.Compare(id.Ino, other.Ino)
}

func (id Identity) String() string {
	return fmt.Sprintf("dev %d, ino %d", id.Dev, id.Ino)
}
