package shared_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/manahg/internal/repos/shared"
)

func TestWriterReporterFormatsNotices(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		prefix   string
		format   string
		args     []any
		expected string
	}{
		{name: "prefixed", prefix: "manahg", format: "%d of %d repositories failed", args: []any{1, 3}, expected: "manahg: 1 of 3 repositories failed\n"},
		{name: "newline_not_doubled", prefix: "manahg", format: "Revert cancelled\n", expected: "manahg: Revert cancelled\n"},
		{name: "bare", format: "scan failed: %v", args: []any{"permission denied"}, expected: "scan failed: permission denied\n"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			buffer := &bytes.Buffer{}
			shared.NewWriterReporter(buffer, testCase.prefix).Printf(testCase.format, testCase.args...)
			require.Equal(t, testCase.expected, buffer.String())
		})
	}
}

func TestWriterReporterWithoutWriterDiscards(t *testing.T) {
	t.Parallel()

	require.NotPanics(t, func() {
		shared.NewWriterReporter(nil, "manahg").Printf("ignored %s", "notice")
	})
}
