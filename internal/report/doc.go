// Package report writes the summary of a finished build.
//
// Writers produce the same Summary as plain text for the terminal, as
// Markdown for a summary file, or as JSON for tooling. They implement the
// Writer interface and can be combined with MultiWriter.
package report
