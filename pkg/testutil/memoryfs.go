// Package testutil provides test helpers shared across packages, most
// notably an in-memory filesystem implementing filesystem.FS.
package testutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// MemoryFS is an in-memory read-only filesystem for tests
type MemoryFS struct {
	dirs  map[string]bool
	files map[string]*memFileInfo
}

// NewMemoryFS creates an empty in-memory filesystem
func NewMemoryFS() *MemoryFS {
	return &MemoryFS{
		dirs:  make(map[string]bool),
		files: make(map[string]*memFileInfo),
	}
}

// AddDir registers a directory and all its parents
func (m *MemoryFS) AddDir(path string) *MemoryFS {
	path = filepath.Clean(path)
	for path != "/" && path != "." {
		m.dirs[path] = true
		path = filepath.Dir(path)
	}
	return m
}

// AddFile registers a file with the given size and modification time.
// Parent directories are created implicitly.
func (m *MemoryFS) AddFile(path string, size int64, modTime time.Time) *MemoryFS {
	path = filepath.Clean(path)
	m.AddDir(filepath.Dir(path))
	m.files[path] = &memFileInfo{
		name:    filepath.Base(path),
		size:    size,
		modTime: modTime,
	}
	return m
}

// Remove deletes a file or directory, for simulating vanished destinations
func (m *MemoryFS) Remove(path string) {
	path = filepath.Clean(path)
	delete(m.files, path)
	delete(m.dirs, path)
}

// Stat implements filesystem.FS
func (m *MemoryFS) Stat(name string) (fs.FileInfo, error) {
	name = filepath.Clean(name)
	if info, ok := m.files[name]; ok {
		return info, nil
	}
	if m.dirs[name] || name == "/" {
		return &memFileInfo{name: filepath.Base(name), isDir: true}, nil
	}
	return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrNotExist}
}

// ReadDir implements filesystem.FS
func (m *MemoryFS) ReadDir(name string) ([]os.DirEntry, error) {
	name = filepath.Clean(name)
	if !m.dirs[name] && name != "/" {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrNotExist}
	}

	seen := make(map[string]bool)
	var entries []os.DirEntry
	for path, info := range m.files {
		if filepath.Dir(path) == name {
			entries = append(entries, memDirEntry{info: info})
			seen[info.name] = true
		}
	}
	for dir := range m.dirs {
		if filepath.Dir(dir) == name && !seen[filepath.Base(dir)] {
			entries = append(entries, memDirEntry{
				info: &memFileInfo{name: filepath.Base(dir), isDir: true},
			})
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		return strings.Compare(entries[i].Name(), entries[j].Name()) < 0
	})
	return entries, nil
}

// memFileInfo implements fs.FileInfo
type memFileInfo struct {
	name    string
	size    int64
	modTime time.Time
	isDir   bool
}

func (i *memFileInfo) Name() string       { return i.name }
func (i *memFileInfo) Size() int64        { return i.size }
func (i *memFileInfo) ModTime() time.Time { return i.modTime }
func (i *memFileInfo) IsDir() bool        { return i.isDir }
func (i *memFileInfo) Sys() interface{}   { return nil }

func (i *memFileInfo) Mode() fs.FileMode {
	if i.isDir {
		return fs.ModeDir | 0755
	}
	return 0644
}

// memDirEntry implements os.DirEntry
type memDirEntry struct {
	info *memFileInfo
}

func (e memDirEntry) Name() string               { return e.info.name }
func (e memDirEntry) IsDir() bool                { return e.info.isDir }
func (e memDirEntry) Type() fs.FileMode          { return e.info.Mode().Type() }
func (e memDirEntry) Info() (fs.FileInfo, error) { return e.info, nil }
