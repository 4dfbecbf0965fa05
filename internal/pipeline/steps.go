package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nao1215/docepub/internal/article"
	"github.com/nao1215/docepub/internal/book"
	"github.com/nao1215/docepub/internal/crawler"
	"github.com/nao1215/docepub/internal/fetch"
	"github.com/nao1215/docepub/internal/heading"
	"github.com/nao1215/docepub/internal/images"
	"github.com/nao1215/docepub/internal/model"
	"github.com/nao1215/docepub/internal/nav"
	"github.com/nao1215/docepub/internal/render"
)

// ErrMissingInput is returned by a step whose input was not produced by an
// earlier step.
var ErrMissingInput = errors.New("step input missing")

func missing(step, what string) error {
	return fmt.Errorf("%w: %s requires %s", ErrMissingInput, step, what)
}

// ParseNavStep retrieves the root page and parses the navigation tree.
type ParseNavStep struct {
	retriever fetch.Retriever
	parser    *nav.Parser
}

// NewParseNavStep creates a ParseNavStep.
func NewParseNavStep(r fetch.Retriever, p *nav.Parser) *ParseNavStep {
	return &ParseNavStep{retriever: r, parser: p}
}

// Name returns the step name.
func (s *ParseNavStep) Name() string { return "parse_nav" }

// Do executes the step.
func (s *ParseNavStep) Do(ctx context.Context, build *model.Build) error {
	if build.BaseURL == nil {
		return missing(s.Name(), "a base URL")
	}
	doc, err := s.retriever.Retrieve(ctx, build.BaseURL)
	if err != nil {
		return err
	}
	root, err := s.parser.Parse(build.BaseURL, doc)
	if err != nil {
		return err
	}
	build.Nav = root
	return nil
}

// IndexStep flattens the navigation tree.
type IndexStep struct{}

// Name returns the step name.
func (IndexStep) Name() string { return "index" }

// Do executes the step.
func (s IndexStep) Do(_ context.Context, build *model.Build) error {
	if build.Nav == nil {
		return missing(s.Name(), "a navigation tree")
	}
	build.Refs, build.Index = nav.Index(build.Nav)
	return nil
}

// CrawlStep fetches every indexed page.
type CrawlStep struct {
	coordinator *crawler.Coordinator
}

// NewCrawlStep creates a CrawlStep.
func NewCrawlStep(c *crawler.Coordinator) *CrawlStep {
	return &CrawlStep{coordinator: c}
}

// Name returns the step name.
func (s *CrawlStep) Name() string { return "crawl" }

// Do executes the step.
func (s *CrawlStep) Do(ctx context.Context, build *model.Build) error {
	if build.Refs == nil {
		return missing(s.Name(), "indexed references")
	}
	pages, err := s.coordinator.Crawl(ctx, build.BaseURL, build.Refs, build.Parallel)
	if err != nil {
		return err
	}
	build.Pages = pages
	return nil
}

// ExtractStep selects the content fragment of each page.
type ExtractStep struct{}

// Name returns the step name.
func (ExtractStep) Name() string { return "extract" }

// Do executes the step.
func (s ExtractStep) Do(_ context.Context, build *model.Build) error {
	if build.Pages == nil {
		return missing(s.Name(), "fetched pages")
	}
	fragments, err := article.Extract(build.Pages)
	if err != nil {
		return err
	}
	build.Fragments = fragments
	return nil
}

// CoverageStep checks the fetched pages against the navigation index.
type CoverageStep struct{}

// Name returns the step name.
func (CoverageStep) Name() string { return "check_coverage" }

// Do executes the step.
func (s CoverageStep) Do(_ context.Context, build *model.Build) error {
	if build.Pages == nil || build.Index == nil {
		return missing(s.Name(), "fetched pages and an index")
	}
	return article.CheckCoverage(build.Pages, build.Index)
}

// DownloadImagesStep downloads the images of every fragment.
type DownloadImagesStep struct {
	images *images.Pipeline
}

// NewDownloadImagesStep creates a DownloadImagesStep.
func NewDownloadImagesStep(p *images.Pipeline) *DownloadImagesStep {
	return &DownloadImagesStep{images: p}
}

// Name returns the step name.
func (s *DownloadImagesStep) Name() string { return "download_images" }

// Do executes the step.
func (s *DownloadImagesStep) Do(ctx context.Context, build *model.Build) error {
	if build.Fragments == nil {
		return missing(s.Name(), "content fragments")
	}
	links, err := s.images.Download(ctx, build.BaseURL, build.OutputDir, build.Fragments)
	if err != nil {
		return err
	}
	build.Images = links
	return nil
}

// RelinkImagesStep points image elements at the downloaded files.
type RelinkImagesStep struct{}

// Name returns the step name.
func (RelinkImagesStep) Name() string { return "relink_images" }

// Do executes the step.
func (s RelinkImagesStep) Do(_ context.Context, build *model.Build) error {
	if build.Images == nil {
		return missing(s.Name(), "downloaded images")
	}
	return images.Relink(build.Images, build.OutputDir)
}

// ShiftHeadingsStep renumbers headings by navigation depth.
type ShiftHeadingsStep struct{}

// Name returns the step name.
func (ShiftHeadingsStep) Name() string { return "shift_headings" }

// Do executes the step.
func (s ShiftHeadingsStep) Do(_ context.Context, build *model.Build) error {
	if build.Fragments == nil || build.Index == nil {
		return missing(s.Name(), "content fragments and an index")
	}
	return heading.Shift(build.Refs, build.Index, build.Fragments)
}

// AssembleStep appends the fragments to the book in navigation order.
type AssembleStep struct{}

// Name returns the step name.
func (AssembleStep) Name() string { return "assemble" }

// Do executes the step.
func (s AssembleStep) Do(_ context.Context, build *model.Build) error {
	if build.Fragments == nil {
		return missing(s.Name(), "content fragments")
	}
	b, err := book.Assemble(build.Title, build.Refs, build.Fragments)
	if err != nil {
		return err
	}
	build.Book = b
	return nil
}

// RenderStep writes the assembled book.
type RenderStep struct {
	renderer render.Renderer
	name     string
	format   string
	logger   *slog.Logger
}

// NewRenderStep creates a RenderStep writing <output>/<name>.<ext> in format.
func NewRenderStep(r render.Renderer, name, format string, logger *slog.Logger) *RenderStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &RenderStep{renderer: r, name: name, format: format, logger: logger}
}

// Name returns the step name.
func (s *RenderStep) Name() string { return "render" }

// Do executes the step.
func (s *RenderStep) Do(ctx context.Context, build *model.Build) error {
	if build.Book == nil {
		return missing(s.Name(), "an assembled book")
	}
	path, err := s.renderer.Render(ctx, build.Book, render.Output{
		Dir:    build.OutputDir,
		Name:   s.name,
		Format: s.format,
		Title:  build.Title,
	})
	if err != nil {
		return err
	}
	build.OutputFile = path
	s.logger.Info("book rendered", "path", path, "sections", build.Book.Sections())
	return nil
}

// Components are the collaborators of the standard build steps.
type Components struct {
	Retriever   fetch.Retriever
	Parser      *nav.Parser
	Coordinator *crawler.Coordinator
	Images      *images.Pipeline
}

// NewBuildPipeline returns a pipeline with the nine standard build steps.
func NewBuildPipeline(c Components, opts ...Option) *Pipeline {
	p := New(opts...)
	p.AddSteps(
		NewParseNavStep(c.Retriever, c.Parser),
		IndexStep{},
		NewCrawlStep(c.Coordinator),
		ExtractStep{},
		CoverageStep{},
		NewDownloadImagesStep(c.Images),
		RelinkImagesStep{},
		ShiftHeadingsStep{},
		AssembleStep{},
	)
	return p
}
