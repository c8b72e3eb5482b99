// Package filesystem defines the read-only filesystem interface the decision
// core depends on. Production code uses the OS implementation; tests inject
// an in-memory one from pkg/testutil.
package filesystem

import (
	"io/fs"
	"os"
)

// FS is the minimal filesystem surface needed by the scanner and the
// destination resolver. All methods are read-only.
type FS interface {
	// Stat returns file info for the given path
	Stat(name string) (fs.FileInfo, error)

	// ReadDir reads the directory and returns its entries
	ReadDir(name string) ([]os.DirEntry, error)
}

// osFS implements FS using the os package
type osFS struct{}

// NewOS returns an FS backed by the host filesystem
func NewOS() FS {
	return &osFS{}
}

func (osFS) Stat(name string) (fs.FileInfo, error) {
	return os.Stat(name)
}

func (osFS) ReadDir(name string) ([]os.DirEntry, error) {
	return os.ReadDir(name)
}
