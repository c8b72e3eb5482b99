package conditions

import (
	"strings"
	"time"

	"github.com/arthur-debert/shelf/pkg/files"
)

// Matches reports whether the file satisfies this condition at the given
// time. It is pure: no I/O, no mutation, and no allocation, so it is safe to
// call from any goroutine and cheap enough for per-keystroke previews.
func (c Condition) Matches(file *files.Record, now time.Time) bool {
	switch c.ctype {
	case FileExtension:
		return strings.EqualFold(file.Extension, c.text)
	case NameContains:
		return containsFold(file.Name, c.text)
	case NameStartsWith:
		return hasPrefixFold(file.Name, c.text)
	case NameEndsWith:
		return hasSuffixFold(file.Name, c.text)
	case DateOlderThan:
		return olderThan(file.CreatedAt, c.days, now)
	case DateModifiedOlderThan:
		return olderThan(file.ModifiedAt, c.days, now)
	case DateAccessedOlderThan:
		return olderThan(file.AccessedAt, c.days, now)
	case ExtensionOlderThan:
		return strings.EqualFold(file.Extension, c.text) &&
			olderThan(file.CreatedAt, c.days, now)
	case SizeLargerThan:
		return file.SizeInBytes > c.bytes
	case FileKind:
		return string(file.Kind) == c.text
	case SourceLocation:
		return string(file.Location) == c.text
	}
	return false
}

// olderThan reports whether t falls before now minus the given day count
func olderThan(t time.Time, days int, now time.Time) bool {
	if t.IsZero() {
		return false
	}
	return t.Before(now.AddDate(0, 0, -days))
}

// The fold helpers compare case-insensitively without allocating. The needle
// is already lowercased at construction time.

func containsFold(s, needle string) bool {
	if len(needle) == 0 {
		return true
	}
	if len(needle) > len(s) {
		return false
	}
	for i := 0; i+len(needle) <= len(s); i++ {
		if strings.EqualFold(s[i:i+len(needle)], needle) {
			return true
		}
	}
	return false
}

func hasPrefixFold(s, needle string) bool {
	return len(s) >= len(needle) && strings.EqualFold(s[:len(needle)], needle)
}

func hasSuffixFold(s, needle string) bool {
	return len(s) >= len(needle) && strings.EqualFold(s[len(s)-len(needle):], needle)
}
