package report

import (
	"time"

	"github.com/nao1215/docepub/internal/model"
)

// Entry is one section of the book in navigation order.
type Entry struct {
	Depth int    `json:"depth"`
	Label string `json:"label"`
	Ref   string `json:"ref"`
}

// Summary describes the outcome of one build.
type Summary struct {
	Title      string        `json:"title"`
	BaseURL    string        `json:"baseUrl"`
	Format     string        `json:"format,omitempty"`
	OutputFile string        `json:"outputFile,omitempty"`
	Pages      int           `json:"pages"`
	Images     int           `json:"images"`
	Sections   int           `json:"sections"`
	Digest     string        `json:"digest,omitempty"`
	StartedAt  time.Time     `json:"startedAt"`
	Duration   time.Duration `json:"duration"`
	Steps      []string      `json:"steps"`
	Contents   []Entry       `json:"contents,omitempty"`
	Error      string        `json:"error,omitempty"`
}

// NewSummary summarizes build. buildErr is the error the build failed with,
// or nil.
func NewSummary(build *model.Build, format string, buildErr error) *Summary {
	s := &Summary{
		Title:      build.Title,
		Format:     format,
		OutputFile: build.OutputFile,
		Pages:      len(build.Pages),
		Images:     build.ImageCount(),
		StartedAt:  build.StartedAt,
		Duration:   time.Since(build.StartedAt),
		Steps:      append([]string(nil), build.PerformedSteps...),
	}
	if build.BaseURL != nil {
		s.BaseURL = build.BaseURL.String()
	}
	if build.Book != nil {
		s.Sections = build.Book.Sections()
	}
	if buildErr != nil {
		s.Error = buildErr.Error()
	}

	for _, ref := range build.Refs {
		item, ok := build.Index[ref]
		if !ok {
			continue
		}
		s.Contents = append(s.Contents, Entry{Depth: item.Depth, Label: item.Label, Ref: ref})
	}

	return s
}

// Succeeded reports whether the build finished without error.
func (s *Summary) Succeeded() bool {
	return s.Error == ""
}

// TopLevel counts the sections under each depth-1 entry, in order. Entries
// before the first depth-1 entry are counted under the book title.
func (s *Summary) TopLevel() ([]string, map[string]int) {
	var order []string
	counts := make(map[string]int)
	current := s.Title

	for _, e := range s.Contents {
		if e.Depth == 1 {
			current = e.Label
		}
		if _, seen := counts[current]; !seen {
			order = append(order, current)
		}
		counts[current]++
	}

	return order, counts
}
