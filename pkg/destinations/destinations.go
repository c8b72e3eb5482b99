// Package destinations models where a matched file gets routed and answers
// whether that place is currently usable.
//
// Folder access on the host platform is granted through security-scoped
// bookmarks; that API is abstracted behind BookmarkStore so the resolver
// stays portable and testable. Resolution is read-only: it classifies, it
// never creates folders or mutates access state.
package destinations

import (
	goerrors "errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/arthur-debert/shelf/pkg/errors"
	"github.com/arthur-debert/shelf/pkg/files"
	"github.com/arthur-debert/shelf/pkg/filesystem"
	"github.com/arthur-debert/shelf/pkg/logging"
	"github.com/rs/zerolog"
)

// Destination is a reference to where a rule routes matching files
type Destination struct {
	// Trash marks the destination as the system trash. Only meaningful for
	// delete rules; Handle and DisplayName are ignored when set.
	Trash bool

	// Handle is the opaque security-scoped bookmark for the target folder.
	// Empty for a draft destination whose access was never confirmed.
	Handle string

	// DisplayName is what the user sees for this destination. For a draft
	// it may name a well-known folder (downloads, documents, ...), which
	// resolves without a grant.
	DisplayName string
}

// NewFolder creates a destination backed by a granted bookmark handle
func NewFolder(handle, displayName string) Destination {
	return Destination{Handle: handle, DisplayName: displayName}
}

// NewPlaceholder creates a draft destination with no access grant yet
func NewPlaceholder(displayName string) Destination {
	return Destination{DisplayName: displayName}
}

// NewTrash creates the trash destination used by delete rules
func NewTrash() Destination {
	return Destination{Trash: true}
}

// HasHandle reports whether folder access was granted for this destination
func (d Destination) HasHandle() bool {
	return d.Handle != ""
}

// Describe returns the user-facing name of the destination
func (d Destination) Describe() string {
	if d.Trash {
		return "Trash"
	}
	if d.DisplayName != "" {
		return d.DisplayName
	}
	return d.Handle
}

// Resolvability reasons. The unconfirmed case is deliberately distinct from
// the stale one: the first needs a single folder-picker confirmation, the
// second needs the user to re-grant access to a folder they already chose.
const (
	ReasonStale        = "destination folder requires re-granting access"
	ReasonMissing      = "destination folder no longer exists"
	ReasonNotDirectory = "destination is not a folder"
)

// Resolvability is the classified outcome of a destination check
type Resolvability struct {
	Valid  bool
	Path   string // resolved absolute path, set only when Valid
	Reason string // actionable explanation, set only when not Valid
}

func valid(path string) Resolvability {
	return Resolvability{Valid: true, Path: path}
}

func unresolvable(reason string) Resolvability {
	return Resolvability{Reason: reason}
}

// BookmarkStore resolves opaque security-scoped bookmark handles to live
// filesystem paths. Implementations wrap the host platform's bookmark API.
type BookmarkStore interface {
	// Resolve returns the absolute path a handle points at. It returns an
	// error with code BOOKMARK_STALE when the access grant was revoked.
	Resolve(handle string) (string, error)
}

// PathBookmarks is a BookmarkStore whose handles are absolute paths. It backs
// the CLI, where rule files reference folders by path rather than by a
// platform bookmark blob.
type PathBookmarks struct{}

// Resolve implements BookmarkStore
func (PathBookmarks) Resolve(handle string) (string, error) {
	if !filepath.IsAbs(handle) {
		return "", errors.Newf(errors.ErrBookmarkInvalid,
			"bookmark handle is not an absolute path: %q", handle)
	}
	return filepath.Clean(handle), nil
}

// Resolver classifies destinations against the bookmark store and the
// filesystem. Checks are read-only and safe to run from any goroutine.
type Resolver struct {
	bookmarks BookmarkStore
	fs        filesystem.FS
	userDirs  map[files.Location]string
	logger    zerolog.Logger
}

// NewResolver creates a destination resolver
func NewResolver(bookmarks BookmarkStore, fsys filesystem.FS, userDirs map[files.Location]string) *Resolver {
	return &Resolver{
		bookmarks: bookmarks,
		fs:        fsys,
		userDirs:  userDirs,
		logger:    logging.GetLogger("destinations.resolver"),
	}
}

// CheckResolvability determines whether the destination is currently usable.
// Outcomes:
//   - Trash: always valid.
//   - Granted handle: valid if it resolves to an existing directory;
//     otherwise stale (re-grant) or missing, each with its own reason.
//   - No handle: a well-known folder name resolves through the user dirs;
//     anything else needs a one-time folder-picker confirmation.
func (r *Resolver) CheckResolvability(dest Destination) Resolvability {
	if dest.Trash {
		return valid("")
	}

	if !dest.HasHandle() {
		return r.checkPlaceholder(dest)
	}

	path, err := r.bookmarks.Resolve(dest.Handle)
	if err != nil {
		r.logger.Debug().
			Err(err).
			Str("destination", dest.Describe()).
			Msg("bookmark resolution failed")
		return unresolvable(ReasonStale)
	}

	return r.checkDirectory(path)
}

// checkPlaceholder handles destinations that never got an access grant
func (r *Resolver) checkPlaceholder(dest Destination) Resolvability {
	if loc, err := files.ParseLocation(dest.DisplayName); err == nil {
		if dir := r.userDirs[loc]; dir != "" {
			return r.checkDirectory(dir)
		}
	}
	return unresolvable(fmt.Sprintf(
		"folder access for %q must be confirmed via the folder picker before the rule can run",
		dest.Describe()))
}

// checkDirectory verifies the resolved path still points at a directory
func (r *Resolver) checkDirectory(path string) Resolvability {
	info, err := r.fs.Stat(path)
	if err != nil {
		if goerrors.Is(err, fs.ErrNotExist) {
			return unresolvable(ReasonMissing)
		}
		r.logger.Debug().Err(err).Str("path", path).Msg("destination stat failed")
		return unresolvable(fmt.Sprintf("destination folder cannot be read: %v", err))
	}
	if !info.IsDir() {
		return unresolvable(ReasonNotDirectory)
	}
	return valid(path)
}
