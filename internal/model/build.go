package model

import (
	"net/url"
	"time"

	"golang.org/x/net/html"
)

// Build holds the state of one documentation build.
// It is created by the orchestrator for a single run and every pipeline step
// fills in the output of its stage. Nothing in a Build is shared with other
// runs.
type Build struct {
	// BaseURL is the documentation root the navigation is read from.
	BaseURL *url.URL

	// OutputDir is the directory images and the rendered book are written to.
	OutputDir string

	// Parallel selects the worker pool for crawling instead of sequential
	// retrieval.
	Parallel bool

	// Title is the document title of the assembled book.
	Title string

	// StartedAt is the time the build was created.
	StartedAt time.Time

	// Nav is the parsed navigation tree.
	Nav *NavItem

	// Refs are the page references in navigation pre-order.
	Refs []string

	// Index maps each reference to its navigation item.
	Index map[string]*NavItem

	// Pages maps each reference to its fetched page.
	Pages map[string]*Page

	// Fragments maps each reference to its extracted content fragment.
	Fragments map[string]*html.Node

	// Images maps each reference to the images found in its fragment.
	Images map[string][]ImageLink

	// Book is the assembled output document.
	Book *Book

	// OutputFile is the path of the rendered book, once written.
	OutputFile string

	// PerformedSteps lists the names of the steps that completed.
	PerformedSteps []string
}

// NewBuild creates the state for a build of base into outputDir.
func NewBuild(base *url.URL, outputDir string, parallel bool) *Build {
	return &Build{
		BaseURL:        base,
		OutputDir:      outputDir,
		Parallel:       parallel,
		StartedAt:      time.Now(),
		PerformedSteps: make([]string, 0),
	}
}

// ImageCount returns the number of image elements collected by the build.
func (b *Build) ImageCount() int {
	n := 0
	for _, links := range b.Images {
		n += len(links)
	}
	return n
}
