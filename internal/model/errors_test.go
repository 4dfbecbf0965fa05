package model

import (
	"errors"
	"strings"
	"testing"
)

// TestErrorKinds tests that typed errors match their kind.
func TestErrorKinds(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	tests := []struct {
		name string
		err  error
		kind error
		text string
	}{
		{name: "structural", err: &StructuralError{Element: "nav.nav-menu"}, kind: ErrStructure, text: "nav.nav-menu"},
		{name: "crawl", err: &CrawlError{URL: "http://x/a.html", Attempts: 3, Err: cause}, kind: ErrCrawl, text: "after 3 attempts"},
		{name: "extraction none", err: &ExtractionError{Ref: "a.html", Tag: "article"}, kind: ErrExtraction, text: "href=a.html"},
		{name: "extraction many", err: &ExtractionError{Ref: "a.html", Tag: "article", Count: 2}, kind: ErrExtraction, text: "found 2"},
		{name: "coverage", err: &CoverageError{Ref: "b.html"}, kind: ErrCoverage, text: `"b.html"`},
		{name: "image", err: &ImageError{Ref: "a.html", Source: "x.png", Err: cause}, kind: ErrImage, text: "x.png"},
		{name: "tool", err: &ToolError{Command: "pandoc", Stderr: "bad", Err: cause}, kind: ErrTool, text: "bad"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if !errors.Is(tt.err, tt.kind) {
				t.Errorf("expected %v to match %v", tt.err, tt.kind)
			}
			if !strings.Contains(tt.err.Error(), tt.text) {
				t.Errorf("expected %q in %q", tt.text, tt.err.Error())
			}
		})
	}

	t.Run("wrapped cause is reachable", func(t *testing.T) {
		t.Parallel()
		err := &CrawlError{URL: "u", Attempts: 1, Err: cause}
		if !errors.Is(err, cause) {
			t.Error("expected cause to be reachable through Unwrap")
		}
	})
}
