// Package paths provides centralized path handling for shelf.
// It implements XDG Base Directory specification compliance and maps the
// well-known user folders (desktop, downloads, ...) that source-location
// conditions and placeholder destinations refer to.
package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/shelf/pkg/files"
)

// Environment variable names
const (
	// EnvConfigDir overrides the XDG config directory for shelf
	EnvConfigDir = "SHELF_CONFIG_DIR"

	// EnvStateDir overrides the XDG state directory for shelf
	EnvStateDir = "SHELF_STATE_DIR"
)

const (
	// AppDirName is the directory name for shelf-specific files
	AppDirName = "shelf"

	// RuleFileName is the name of the rule configuration file
	RuleFileName = "shelf.toml"

	// LogFileName is the name of the log file
	LogFileName = "shelf.log"
)

// ConfigDir returns the directory holding shelf's configuration
func ConfigDir() string {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return dir
	}
	return filepath.Join(xdg.ConfigHome, AppDirName)
}

// StateDir returns the directory holding shelf's state (logs, history)
func StateDir() string {
	if dir := os.Getenv(EnvStateDir); dir != "" {
		return dir
	}
	return filepath.Join(xdg.StateHome, AppDirName)
}

// RuleFile returns the path to the user's rule file
func RuleFile() string {
	return filepath.Join(ConfigDir(), RuleFileName)
}

// TrashDir returns the directory delete rules move files into. Files are
// parked here rather than unlinked so a bad rule never destroys data.
func TrashDir() string {
	return filepath.Join(StateDir(), "trash")
}

// UserDirs maps each well-known source location to its directory on this
// machine, as reported by the XDG user-dirs configuration.
func UserDirs() map[files.Location]string {
	return map[files.Location]string{
		files.LocationDesktop:   xdg.UserDirs.Desktop,
		files.LocationDownloads: xdg.UserDirs.Download,
		files.LocationDocuments: xdg.UserDirs.Documents,
		files.LocationPictures:  xdg.UserDirs.Pictures,
		files.LocationMusic:     xdg.UserDirs.Music,
		files.LocationHome:      xdg.Home,
	}
}

// LocationForDir classifies a directory against the given well-known user
// folders. Unrecognized directories fall back to the closest ancestor match,
// so ~/Downloads/receipts still counts as downloads; anything outside the
// known folders maps to home.
func LocationForDir(dir string, userDirs map[files.Location]string) files.Location {
	cleaned := filepath.Clean(dir)

	// Exact matches first; home would otherwise swallow everything
	for _, loc := range files.Locations() {
		if loc == files.LocationHome {
			continue
		}
		if base, ok := userDirs[loc]; ok && base != "" && cleaned == filepath.Clean(base) {
			return loc
		}
	}
	for _, loc := range files.Locations() {
		if loc == files.LocationHome {
			continue
		}
		if base, ok := userDirs[loc]; ok && base != "" && isWithin(cleaned, filepath.Clean(base)) {
			return loc
		}
	}
	return files.LocationHome
}

// isWithin reports whether path is inside base
func isWithin(path, base string) bool {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && rel != "."
}

// ExpandHome replaces a leading ~ with the user's home directory
func ExpandHome(path string) string {
	if path == "~" {
		return xdg.Home
	}
	if strings.HasPrefix(path, "~"+string(filepath.Separator)) {
		return filepath.Join(xdg.Home, path[2:])
	}
	return path
}
