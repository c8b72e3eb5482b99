// Package scanner lists the files of a watched folder as records ready for
// rule evaluation. Scanning is shallow: rules organize the files sitting
// directly in a folder, never the contents of its subfolders.
package scanner

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/shelf/pkg/errors"
	"github.com/arthur-debert/shelf/pkg/files"
	"github.com/arthur-debert/shelf/pkg/filesystem"
	"github.com/arthur-debert/shelf/pkg/logging"
	"github.com/arthur-debert/shelf/pkg/paths"
	"github.com/rs/zerolog"
)

// Scanner builds file records from a directory listing
type Scanner struct {
	fs       filesystem.FS
	userDirs map[files.Location]string
	logger   zerolog.Logger
}

// New creates a scanner over the given filesystem. userDirs classifies each
// scanned directory into a source location (see paths.UserDirs).
func New(fsys filesystem.FS, userDirs map[files.Location]string) *Scanner {
	return &Scanner{
		fs:       fsys,
		userDirs: userDirs,
		logger:   logging.GetLogger("scanner"),
	}
}

// Scan lists the files directly inside dir. Subdirectories, hidden files and
// system artifacts are skipped. Entries that vanish between the listing and
// the stat are skipped too; a scan observes, it never fails on a race.
func (s *Scanner) Scan(dir string) ([]files.Record, error) {
	dir = filepath.Clean(paths.ExpandHome(dir))

	entries, err := s.fs.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess,
			"failed to list %s", dir)
	}

	location := paths.LocationForDir(dir, s.userDirs)

	records := make([]files.Record, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || skipName(entry.Name()) {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		info, err := s.fs.Stat(path)
		if err != nil {
			s.logger.Debug().Err(err).Str("path", path).Msg("file vanished during scan")
			continue
		}

		records = append(records, buildRecord(path, info, location))
	}

	s.logger.Debug().
		Str("dir", dir).
		Int("files", len(records)).
		Msg("scan complete")
	return records, nil
}

// skipName filters hidden files and well-known system artifacts
func skipName(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	switch name {
	case "Thumbs.db", "desktop.ini":
		return true
	}
	return false
}

// buildRecord converts a stat result into an evaluation-ready record. The
// portable file metadata carries only the modification time, so creation and
// access times fall back to it; age conditions then behave conservatively
// rather than treating unknown times as ancient.
func buildRecord(path string, info fs.FileInfo, location files.Location) files.Record {
	name := info.Name()
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	modTime := info.ModTime()

	return files.Record{
		Name:        name,
		Extension:   ext,
		SizeInBytes: info.Size(),
		CreatedAt:   modTime,
		ModifiedAt:  modTime,
		AccessedAt:  modTime,
		Path:        path,
		Kind:        files.KindForExtension(ext),
		Location:    location,
	}
}
