package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/nao1215/docepub/internal/model"
)

// FormatHTML is the format written without pandoc.
const FormatHTML = "html"

// ErrEmptyFormat is returned for an Output without a format.
var ErrEmptyFormat = errors.New("output format cannot be empty")

// Output describes the file to produce.
type Output struct {
	// Dir is the output directory. Image paths in the book are relative to it.
	Dir string

	// Name is the file name without extension.
	Name string

	// Format is "html" or a pandoc writer name such as "epub".
	Format string

	// Title is the document title passed to pandoc as metadata.
	Title string
}

// Path returns the output file path.
func (o Output) Path() string {
	return filepath.Join(o.Dir, o.Name+"."+Extension(o.Format))
}

// Renderer writes a book and returns the path of the written file.
type Renderer interface {
	Render(ctx context.Context, book *model.Book, out Output) (string, error)
}

// CommandRunner abstracts command execution so tests can run without pandoc.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr string, err error)
}

// ExecRunner implements CommandRunner using os/exec.
type ExecRunner struct{}

// Run runs name with args and captures both output streams.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// Pandoc renders books with the pandoc executable.
type Pandoc struct {
	runner     CommandRunner
	lookPath   func(string) (string, error)
	executable string
	logger     *slog.Logger
}

// Option configures a Pandoc renderer.
type Option func(*Pandoc)

// WithRunner replaces the command runner.
func WithRunner(r CommandRunner) Option {
	return func(p *Pandoc) {
		p.runner = r
	}
}

// WithLookPath replaces the PATH lookup.
func WithLookPath(fn func(string) (string, error)) Option {
	return func(p *Pandoc) {
		p.lookPath = fn
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pandoc) {
		p.logger = logger
	}
}

// NewPandoc creates a renderer that runs pandoc.
func NewPandoc(opts ...Option) *Pandoc {
	p := &Pandoc{
		runner:     ExecRunner{},
		lookPath:   exec.LookPath,
		executable: Executable(runtime.GOOS),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// Executable returns the pandoc executable name on goos.
func Executable(goos string) string {
	if goos == "windows" {
		return "pandoc.exe"
	}
	return "pandoc"
}

// Render writes book to out.Path().
func (p *Pandoc) Render(ctx context.Context, book *model.Book, out Output) (string, error) {
	if out.Format == "" {
		return "", ErrEmptyFormat
	}
	if err := os.MkdirAll(out.Dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	dest := out.Path()
	if strings.EqualFold(out.Format, FormatHTML) {
		if err := writeHTML(dest, book); err != nil {
			return "", err
		}
		p.logger.Info("book written", "path", dest, "format", out.Format)
		return dest, nil
	}

	if _, err := p.lookPath(p.executable); err != nil {
		return "", &model.ToolError{Command: p.executable, Err: fmt.Errorf("not found on PATH: %w", err)}
	}

	tmp, err := writeTempHTML(book)
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp) //nolint:errcheck // best effort cleanup

	args := Args(out, tmp)
	p.logger.Debug("running pandoc", "executable", p.executable, "args", args)

	if _, stderr, err := p.runner.Run(ctx, p.executable, args...); err != nil {
		return "", &model.ToolError{
			Command: p.executable + " " + strings.Join(args, " "),
			Stderr:  stderr,
			Err:     err,
		}
	}

	p.logger.Info("book written", "path", dest, "format", out.Format)
	return dest, nil
}

// Args returns the pandoc arguments converting the HTML file src to out.
func Args(out Output, src string) []string {
	args := []string{"-s", "-f", "html", "-t", out.Format, "--resource-path", out.Dir}
	if out.Title != "" {
		args = append(args, "--metadata", "title="+out.Title)
	}
	return append(args, "-o", out.Path(), src)
}

// Extension returns the file extension for a pandoc writer name.
func Extension(format string) string {
	f := strings.ToLower(format)
	// Writer names may carry extensions, e.g. "markdown+smart".
	if i := strings.IndexAny(f, "+-"); i > 0 {
		f = f[:i]
	}
	switch f {
	case "epub", "epub2", "epub3":
		return "epub"
	case "html", "html4", "html5":
		return "html"
	case "markdown", "gfm", "commonmark", "commonmark_x", "markdown_strict":
		return "md"
	case "latex":
		return "tex"
	case "plain":
		return "txt"
	case "asciidoc":
		return "adoc"
	default:
		return f
	}
}

func writeHTML(dest string, book *model.Book) error {
	f, err := os.Create(dest) //nolint:gosec // path is built from the output options
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dest, err)
	}
	if err := book.Render(f); err != nil {
		f.Close() //nolint:errcheck,gosec // render error takes precedence
		return fmt.Errorf("failed to render book: %w", err)
	}
	return f.Close()
}

func writeTempHTML(book *model.Book) (string, error) {
	f, err := os.CreateTemp("", "docepub-*.html")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	path := f.Name()

	if err := book.Render(f); err != nil {
		f.Close()       //nolint:errcheck,gosec // render error takes precedence
		os.Remove(path) //nolint:errcheck,gosec // best effort cleanup
		return "", fmt.Errorf("writing temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path) //nolint:errcheck,gosec // best effort cleanup
		return "", fmt.Errorf("closing temp file: %w", err)
	}
	return path, nil
}
