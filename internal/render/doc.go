// Package render writes an assembled book to its final file format.
//
// HTML output is written directly. Every other format is produced by the
// pandoc executable, which must be on PATH.
//
// The book is written to a temporary HTML file and converted with
//
//	pandoc -s -f html -t <format> --resource-path <output dir> --metadata title=<title> -o <file> <temp file>
//
// so the relinked img/<uuid> paths resolve against the output directory. The
// temporary file is removed whether or not pandoc succeeds. A failed run is
// returned as a *model.ToolError carrying the command line and pandoc's
// standard error verbatim.
package render
