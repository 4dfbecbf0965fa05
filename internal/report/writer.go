package report

import (
	"io"
	"path/filepath"
	"strings"
)

// Writer writes a build summary.
type Writer interface {
	// Write outputs the summary and returns the number of bytes written.
	Write(s *Summary) (int, error)
}

// MultiWriter writes to multiple Writers in order and stops at the first
// error.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the summary to all configured Writers.
func (m *MultiWriter) Write(s *Summary) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(s)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for summary writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// ForPath returns the writer matching the extension of path: JSON for
// ".json", Markdown otherwise.
func ForPath(path string, output io.Writer) Writer {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return NewJSONWriter(output, WithPrettyPrint())
	}
	return NewMarkdownWriter(output)
}
