// Package files defines the file record consumed by the rule engine and the
// enumerated vocabularies (kind, source location) conditions can match on.
package files

import (
	"strings"
	"time"

	"github.com/arthur-debert/shelf/pkg/errors"
)

// Kind is a coarse classification of a file derived from its extension
type Kind string

const (
	KindImage        Kind = "image"
	KindAudio        Kind = "audio"
	KindVideo        Kind = "video"
	KindDocument     Kind = "document"
	KindSpreadsheet  Kind = "spreadsheet"
	KindPresentation Kind = "presentation"
	KindArchive      Kind = "archive"
	KindCode         Kind = "code"
	KindOther        Kind = "other"
)

// Location identifies a well-known user folder a file came from
type Location string

const (
	LocationDesktop   Location = "desktop"
	LocationDownloads Location = "downloads"
	LocationDocuments Location = "documents"
	LocationPictures  Location = "pictures"
	LocationMusic     Location = "music"
	LocationHome      Location = "home"
)

// Record is the read-only file metadata the engine evaluates rules against.
// It is produced by the scanner (or any external producer) and never mutated
// by the engine.
type Record struct {
	Name        string    // base name including extension
	Extension   string    // lowercase, without the leading dot; empty if none
	SizeInBytes int64
	CreatedAt   time.Time
	ModifiedAt  time.Time
	AccessedAt  time.Time
	Path        string   // absolute path
	Kind        Kind     // derived from Extension
	Location    Location // derived from the source folder
}

// kindsByExtension maps lowercase extensions to their kind. The table covers
// the formats the organizer vocabulary talks about; anything else is "other".
var kindsByExtension = map[string]Kind{
	"jpg": KindImage, "jpeg": KindImage, "png": KindImage, "gif": KindImage,
	"heic": KindImage, "webp": KindImage, "tiff": KindImage, "bmp": KindImage,
	"svg": KindImage, "raw": KindImage,

	"mp3": KindAudio, "wav": KindAudio, "aac": KindAudio, "flac": KindAudio,
	"ogg": KindAudio, "m4a": KindAudio, "aiff": KindAudio,

	"mp4": KindVideo, "mov": KindVideo, "avi": KindVideo, "mkv": KindVideo,
	"webm": KindVideo, "m4v": KindVideo, "wmv": KindVideo,

	"pdf": KindDocument, "doc": KindDocument, "docx": KindDocument,
	"txt": KindDocument, "rtf": KindDocument, "md": KindDocument,
	"pages": KindDocument, "epub": KindDocument,

	"xls": KindSpreadsheet, "xlsx": KindSpreadsheet, "csv": KindSpreadsheet,
	"numbers": KindSpreadsheet, "tsv": KindSpreadsheet,

	"ppt": KindPresentation, "pptx": KindPresentation, "key": KindPresentation,

	"zip": KindArchive, "tar": KindArchive, "gz": KindArchive,
	"bz2": KindArchive, "xz": KindArchive, "7z": KindArchive,
	"rar": KindArchive, "dmg": KindArchive, "iso": KindArchive,

	"go": KindCode, "py": KindCode, "js": KindCode, "ts": KindCode,
	"rb": KindCode, "rs": KindCode, "c": KindCode, "h": KindCode,
	"cpp": KindCode, "java": KindCode, "swift": KindCode, "sh": KindCode,
	"html": KindCode, "css": KindCode, "json": KindCode, "yaml": KindCode,
	"toml": KindCode, "sql": KindCode,
}

// KindForExtension derives the kind for a file extension (without dot).
// Unknown extensions map to KindOther.
func KindForExtension(ext string) Kind {
	if kind, ok := kindsByExtension[strings.ToLower(ext)]; ok {
		return kind
	}
	return KindOther
}

// ParseKind validates a kind name from the fixed vocabulary
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindImage, KindAudio, KindVideo, KindDocument, KindSpreadsheet,
		KindPresentation, KindArchive, KindCode:
		return Kind(strings.ToLower(strings.TrimSpace(s))), nil
	}
	return "", errors.Newf(errors.ErrConditionValue, "unknown file kind: %q", s)
}

// ParseLocation validates a source location name from the fixed vocabulary
func ParseLocation(s string) (Location, error) {
	switch Location(strings.ToLower(strings.TrimSpace(s))) {
	case LocationDesktop, LocationDownloads, LocationDocuments,
		LocationPictures, LocationMusic, LocationHome:
		return Location(strings.ToLower(strings.TrimSpace(s))), nil
	}
	return "", errors.Newf(errors.ErrConditionValue, "unknown source location: %q", s)
}

// Locations lists the well-known source locations in display order
func Locations() []Location {
	return []Location{
		LocationDesktop,
		LocationDownloads,
		LocationDocuments,
		LocationPictures,
		LocationMusic,
		LocationHome,
	}
}
