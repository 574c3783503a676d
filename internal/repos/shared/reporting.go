package shared

import (
	"fmt"
	"io"
	"strings"
)

// Reporter emits human-readable notices that are not part of a command's output document.
type Reporter interface {
	Printf(format string, args ...any)
}

// PrefixedReporter writes each notice on its own line behind a fixed prefix.
type PrefixedReporter struct {
	writer io.Writer
	prefix string
}

// NewWriterReporter returns a reporter writing "<prefix>: <notice>" lines to writer.
// A nil writer discards every notice; an empty prefix writes notices bare.
func NewWriterReporter(writer io.Writer, prefix string) *PrefixedReporter {
	if writer == nil {
		writer = io.Discard
	}
	if len(prefix) > 0 {
		prefix += ": "
	}
	return &PrefixedReporter{writer: writer, prefix: prefix}
}

// Printf formats one notice, adding the trailing newline when format lacks it.
func (reporter *PrefixedReporter) Printf(format string, args ...any) {
	notice := strings.TrimRight(fmt.Sprintf(format, args...), "\n")
	fmt.Fprintf(reporter.writer, "%s%s\n", reporter.prefix, notice)
}
