package conditions

import (
	"math"
	"strconv"
	"strings"

	"github.com/arthur-debert/shelf/pkg/errors"
)

// Byte units use the binary base: 1KB = 1024 bytes, so "1.5GB" is
// 1,610,612,736 bytes. This matches how the size thresholds were always
// interpreted by the organizer, decimal SI units are not supported.
const (
	kilobyte int64 = 1 << 10
	megabyte int64 = 1 << 20
	gigabyte int64 = 1 << 30
	terabyte int64 = 1 << 40
)

var byteUnits = map[string]int64{
	"":    1,
	"b":   1,
	"kb":  kilobyte,
	"kib": kilobyte,
	"mb":  megabyte,
	"mib": megabyte,
	"gb":  gigabyte,
	"gib": gigabyte,
	"tb":  terabyte,
	"tib": terabyte,
}

// ParseByteSize parses a human-readable byte string such as "500KB",
// "100 MB" or "1.5GB" into a byte count.
func ParseByteSize(s string) (int64, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0, errors.New(errors.ErrConditionValue, "size must not be empty")
	}

	// Split the numeric magnitude from the unit suffix
	split := len(trimmed)
	for i, r := range trimmed {
		if (r < '0' || r > '9') && r != '.' && r != '-' && r != '+' {
			split = i
			break
		}
	}
	magnitudePart := trimmed[:split]
	unitPart := strings.ToLower(strings.TrimSpace(trimmed[split:]))

	magnitude, err := strconv.ParseFloat(magnitudePart, 64)
	if err != nil {
		return 0, errors.Wrapf(err, errors.ErrConditionValue,
			"size magnitude is not a number: %q", s)
	}
	if magnitude < 0 {
		return 0, errors.Newf(errors.ErrConditionValue,
			"size must not be negative: %q", s)
	}

	unit, ok := byteUnits[unitPart]
	if !ok {
		return 0, errors.Newf(errors.ErrConditionValue,
			"unknown size unit %q in %q", unitPart, s)
	}

	bytes := magnitude * float64(unit)
	if bytes > math.MaxInt64 {
		return 0, errors.Newf(errors.ErrConditionValue, "size too large: %q", s)
	}
	return int64(bytes), nil
}
