package conditions

import (
	"testing"

	"github.com/arthur-debert/shelf/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseByteSize(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		// Units are binary: 1KB = 1024 bytes
		{"1.5GB", 1_610_612_736},
		{"1GB", 1_073_741_824},
		{"100MB", 104_857_600},
		{"500KB", 512_000},
		{"1024", 1024},
		{"10B", 10},
		{"0", 0},
		{"2TB", 2_199_023_255_552},
		{"1.5 GB", 1_610_612_736},
		{"1.5GiB", 1_610_612_736},
		{"100mb", 104_857_600},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseByteSize(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseByteSize_Invalid(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"large",
		"-100MB",
		"10XB",
		"MB",
		"10 10MB",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			_, err := ParseByteSize(input)
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, errors.ErrConditionValue))
		})
	}
}
