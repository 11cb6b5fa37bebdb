//go:build !linux

package dups

import "os"

func adviseSequential(*os.File) {}
