// Package conditions implements the atomic predicates rules are built from.
//
// A Condition is a closed variant over one file attribute. It is validated at
// construction time and immutable afterwards; editing a condition means
// constructing a new validated instance and replacing the old one.
package conditions

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/arthur-debert/shelf/pkg/errors"
	"github.com/arthur-debert/shelf/pkg/files"
)

// Type identifies which file attribute a condition tests
type Type string

const (
	FileExtension         Type = "extension"
	NameContains          Type = "name-contains"
	NameStartsWith        Type = "name-starts-with"
	NameEndsWith          Type = "name-ends-with"
	DateOlderThan         Type = "older-than"
	DateModifiedOlderThan Type = "modified-older-than"
	DateAccessedOlderThan Type = "accessed-older-than"
	SizeLargerThan        Type = "larger-than"
	FileKind              Type = "kind"
	SourceLocation        Type = "source"

	// ExtensionOlderThan is the extension-qualified age variant. It is also
	// produced when an older-than condition is given the legacy "ext:days"
	// compound value, which older saved rules still use.
	ExtensionOlderThan Type = "extension-older-than"
)

// Condition is a single validated predicate over one file attribute.
// The zero value is invalid; always construct through New.
type Condition struct {
	ctype Type
	value string // canonical textual form, round-trips through New
	text  string // normalized string payload (extension, substring, kind, location)
	days  int
	bytes int64
}

// New constructs a validated condition from its textual value.
// It returns a condition error (see pkg/errors) when the value is malformed;
// no partial condition is ever produced.
func New(ctype Type, rawValue string) (Condition, error) {
	value := strings.TrimSpace(rawValue)

	switch ctype {
	case FileExtension:
		if value == "" {
			return Condition{}, errors.New(errors.ErrConditionValue,
				"extension must not be empty")
		}
		if strings.HasPrefix(value, ".") {
			return Condition{}, errors.Newf(errors.ErrConditionValue,
				"extension must not start with a dot: %q", value)
		}
		ext := strings.ToLower(value)
		return Condition{ctype: ctype, value: ext, text: ext}, nil

	case NameContains, NameStartsWith, NameEndsWith:
		if value == "" {
			return Condition{}, errors.Newf(errors.ErrConditionValue,
				"%s condition must not be empty", ctype)
		}
		return Condition{ctype: ctype, value: value, text: strings.ToLower(value)}, nil

	case DateOlderThan:
		// Legacy compound form "ext:days" promotes to the qualified variant
		if strings.Contains(value, ":") {
			return New(ExtensionOlderThan, value)
		}
		days, err := parseDays(value)
		if err != nil {
			return Condition{}, err
		}
		return Condition{ctype: ctype, value: strconv.Itoa(days), days: days}, nil

	case DateModifiedOlderThan, DateAccessedOlderThan:
		days, err := parseDays(value)
		if err != nil {
			return Condition{}, err
		}
		return Condition{ctype: ctype, value: strconv.Itoa(days), days: days}, nil

	case ExtensionOlderThan:
		ext, daysPart, ok := strings.Cut(value, ":")
		ext = strings.TrimSpace(ext)
		if !ok || ext == "" || strings.HasPrefix(ext, ".") {
			return Condition{}, errors.Newf(errors.ErrConditionValue,
				"expected \"extension:days\", got %q", value)
		}
		days, err := parseDays(strings.TrimSpace(daysPart))
		if err != nil {
			return Condition{}, err
		}
		ext = strings.ToLower(ext)
		return Condition{
			ctype: ctype,
			value: fmt.Sprintf("%s:%d", ext, days),
			text:  ext,
			days:  days,
		}, nil

	case SizeLargerThan:
		bytes, err := ParseByteSize(value)
		if err != nil {
			return Condition{}, err
		}
		return Condition{ctype: ctype, value: value, bytes: bytes}, nil

	case FileKind:
		kind, err := files.ParseKind(value)
		if err != nil {
			return Condition{}, err
		}
		return Condition{ctype: ctype, value: string(kind), text: string(kind)}, nil

	case SourceLocation:
		loc, err := files.ParseLocation(value)
		if err != nil {
			return Condition{}, err
		}
		return Condition{ctype: ctype, value: string(loc), text: string(loc)}, nil
	}

	return Condition{}, errors.Newf(errors.ErrConditionType,
		"unknown condition type: %q", ctype)
}

// parseDays parses a non-negative day count
func parseDays(s string) (int, error) {
	days, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, errors.Wrapf(err, errors.ErrConditionValue,
			"day count must be an integer, got %q", s)
	}
	if days < 0 {
		return 0, errors.Newf(errors.ErrConditionValue,
			"day count must not be negative: %d", days)
	}
	return days, nil
}

// Type returns the condition's variant
func (c Condition) Type() Type {
	return c.ctype
}

// Value returns the canonical textual value; New(c.Type(), c.Value())
// reconstructs an equal condition.
func (c Condition) Value() string {
	return c.value
}

// Days returns the day threshold for age conditions, 0 otherwise
func (c Condition) Days() int {
	return c.days
}

// Bytes returns the size threshold for larger-than conditions, 0 otherwise
func (c Condition) Bytes() int64 {
	return c.bytes
}

// Equal reports whether two conditions are structurally identical
func (c Condition) Equal(other Condition) bool {
	return c.ctype == other.ctype &&
		c.text == other.text &&
		c.days == other.days &&
		c.bytes == other.bytes
}

// Describe returns a short human-readable description of the predicate
func (c Condition) Describe() string {
	switch c.ctype {
	case FileExtension:
		return fmt.Sprintf("extension is %q", c.text)
	case NameContains:
		return fmt.Sprintf("name contains %q", c.value)
	case NameStartsWith:
		return fmt.Sprintf("name starts with %q", c.value)
	case NameEndsWith:
		return fmt.Sprintf("name ends with %q", c.value)
	case DateOlderThan:
		return fmt.Sprintf("added more than %d days ago", c.days)
	case DateModifiedOlderThan:
		return fmt.Sprintf("not modified for %d days", c.days)
	case DateAccessedOlderThan:
		return fmt.Sprintf("not opened for %d days", c.days)
	case ExtensionOlderThan:
		return fmt.Sprintf("%q files added more than %d days ago", c.text, c.days)
	case SizeLargerThan:
		return fmt.Sprintf("larger than %s", c.value)
	case FileKind:
		return fmt.Sprintf("kind is %s", c.text)
	case SourceLocation:
		return fmt.Sprintf("comes from %s", c.text)
	}
	return string(c.ctype)
}
