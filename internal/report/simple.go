package report

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// SimpleWriter writes a plain text summary for the terminal.
type SimpleWriter struct {
	baseWriter

	// verbose adds the table of contents and performed steps.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables the table of contents and step list.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the summary in human-readable format.
func (w *SimpleWriter) Write(s *Summary) (int, error) {
	var sb strings.Builder

	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "%s\n", s.Title)
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(&sb, "Source:    %s\n", s.BaseURL)
	if s.OutputFile != "" {
		fmt.Fprintf(&sb, "Output:    %s\n", s.OutputFile)
	}
	fmt.Fprintf(&sb, "Pages:     %d\n", s.Pages)
	fmt.Fprintf(&sb, "Images:    %d\n", s.Images)
	fmt.Fprintf(&sb, "Sections:  %d\n", s.Sections)
	fmt.Fprintf(&sb, "Duration:  %s\n", s.Duration.Round(time.Millisecond))
	if s.Succeeded() {
		sb.WriteString("Status:    Complete\n")
	} else {
		fmt.Fprintf(&sb, "Status:    FAILED - %s\n", s.Error)
	}

	if w.verbose {
		if len(s.Steps) > 0 {
			sb.WriteString("\nSteps:\n")
			for _, step := range s.Steps {
				fmt.Fprintf(&sb, "  [+] %s\n", step)
			}
		}
		if len(s.Contents) > 0 {
			sb.WriteString("\nContents:\n")
			for _, e := range s.Contents {
				fmt.Fprintf(&sb, "  %s%s\n", strings.Repeat("  ", max(e.Depth-1, 0)), e.Label)
			}
		}
	}
	sb.WriteString("\n")

	return io.WriteString(w.output, sb.String())
}
