package model

import (
	"errors"
	"fmt"
)

// Error kinds of a failed build.
// Every typed error below matches its kind with errors.Is, so callers can
// tell which stage failed without inspecting the concrete type.
var (
	// ErrStructure is the kind of errors caused by missing or malformed
	// navigation markup.
	ErrStructure = errors.New("structural parse error")

	// ErrCrawl is the kind of errors caused by a page that could not be
	// retrieved.
	ErrCrawl = errors.New("crawl error")

	// ErrExtraction is the kind of errors caused by a page without exactly
	// one content element.
	ErrExtraction = errors.New("content extraction error")

	// ErrCoverage is the kind of errors caused by a fetched page that is
	// unknown to the navigation index.
	ErrCoverage = errors.New("coverage mismatch")

	// ErrImage is the kind of errors caused by an image that could not be
	// resolved or downloaded.
	ErrImage = errors.New("image error")

	// ErrTool is the kind of errors caused by the external renderer.
	ErrTool = errors.New("external tool error")
)

// StructuralError reports a required navigation element that is missing or
// malformed.
type StructuralError struct {
	// Element names the expected element, e.g. "nav.nav-menu".
	Element string

	// Detail describes what was wrong with it.
	Detail string

	// Err is the underlying cause, if any.
	Err error
}

func (e *StructuralError) Error() string {
	msg := fmt.Sprintf("%s: expected %s", ErrStructure, e.Element)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *StructuralError) Unwrap() error { return e.Err }

// Is reports whether target is ErrStructure.
func (e *StructuralError) Is(target error) bool { return target == ErrStructure }

// CrawlError reports a page or resource that could not be retrieved.
type CrawlError struct {
	// URL is the address that was requested.
	URL string

	// Attempts is the number of attempts made before giving up.
	Attempts int

	// Err is the cause of the last failed attempt.
	Err error
}

func (e *CrawlError) Error() string {
	if e.Attempts > 1 {
		return fmt.Sprintf("%s: unable to retrieve %s after %d attempts: %v", ErrCrawl, e.URL, e.Attempts, e.Err)
	}
	return fmt.Sprintf("%s: unable to retrieve %s: %v", ErrCrawl, e.URL, e.Err)
}

func (e *CrawlError) Unwrap() error { return e.Err }

// Is reports whether target is ErrCrawl.
func (e *CrawlError) Is(target error) bool { return target == ErrCrawl }

// ExtractionError reports a page that does not contain exactly one content
// element.
type ExtractionError struct {
	// Ref is the reference of the page.
	Ref string

	// Tag is the content tag that was searched for.
	Tag string

	// Count is the number of matching elements found.
	Count int
}

func (e *ExtractionError) Error() string {
	if e.Count == 0 {
		return fmt.Sprintf("%s: no <%s> element in document [href=%s]", ErrExtraction, e.Tag, e.Ref)
	}
	return fmt.Sprintf("%s: found %d <%s> elements in document [href=%s], expected exactly one", ErrExtraction, e.Count, e.Tag, e.Ref)
}

// Is reports whether target is ErrExtraction.
func (e *ExtractionError) Is(target error) bool { return target == ErrExtraction }

// CoverageError reports a fetched page whose reference is absent from the
// navigation index.
type CoverageError struct {
	// Ref is the reference missing from the index.
	Ref string
}

func (e *CoverageError) Error() string {
	return fmt.Sprintf("%s: reference %q is not in the navigation index", ErrCoverage, e.Ref)
}

// Is reports whether target is ErrCoverage.
func (e *CoverageError) Is(target error) bool { return target == ErrCoverage }

// ImageError reports an image that could not be resolved or downloaded.
type ImageError struct {
	// Ref is the reference of the page the image belongs to.
	Ref string

	// Source is the src attribute or resolved URL of the image.
	Source string

	// Err is the underlying cause.
	Err error
}

func (e *ImageError) Error() string {
	return fmt.Sprintf("%s: %s [href=%s]: %v", ErrImage, e.Source, e.Ref, e.Err)
}

func (e *ImageError) Unwrap() error { return e.Err }

// Is reports whether target is ErrImage.
func (e *ImageError) Is(target error) bool { return target == ErrImage }

// ToolError reports a failure of an external executable.
type ToolError struct {
	// Command is the command line that was run.
	Command string

	// Stderr is the captured standard error output, verbatim.
	Stderr string

	// Err is the underlying cause.
	Err error
}

func (e *ToolError) Error() string {
	msg := fmt.Sprintf("%s: %s: %v", ErrTool, e.Command, e.Err)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *ToolError) Unwrap() error { return e.Err }

// Is reports whether target is ErrTool.
func (e *ToolError) Is(target error) bool { return target == ErrTool }
