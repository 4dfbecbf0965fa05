package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/nao1215/docepub/internal/fetch"
	"github.com/nao1215/docepub/internal/model"
	"github.com/nao1215/docepub/internal/workpool"
)

// Coordinator fetches the pages of a documentation site.
//
// References are resolved with PageURL against the base URL, which is
// treated as a directory. A sequential crawl fetches them one at a time in
// navigation order. A parallel crawl spreads them over a workpool; the first
// failure cancels the requests still running and nothing is returned.
// Either way a reference listed twice is fetched once.
//
// Retries and timeouts belong to the fetch.Retriever. The Coordinator only
// decides what is fetched and in which order.
type Coordinator struct {
	retriever fetch.Retriever
	workers   int
	logger    *slog.Logger
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithWorkers sets the size of the worker pool used by parallel crawls.
// Values below 1 keep the default, the number of logical CPUs.
func WithWorkers(n int) Option {
	return func(c *Coordinator) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

// NewCoordinator creates a Coordinator that retrieves pages with r.
func NewCoordinator(r fetch.Retriever, opts ...Option) *Coordinator {
	c := &Coordinator{
		retriever: r,
		workers:   workpool.DefaultSize(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Crawl retrieves every reference in refs relative to base.
// When parallel is false the pages are fetched in order, one at a time.
// Duplicate references are fetched once. On success the map holds exactly
// one page per distinct reference.
func (c *Coordinator) Crawl(ctx context.Context, base *url.URL, refs []string, parallel bool) (map[string]*model.Page, error) {
	unique := dedupe(refs)
	start := time.Now()

	c.logger.Info("crawling pages",
		"pages", len(unique),
		"parallel", parallel,
		"workers", c.workers,
	)

	var (
		pages []*model.Page
		err   error
	)
	if parallel {
		pages, err = workpool.Run(ctx, c.workers, len(unique), func(ctx context.Context, i int) (*model.Page, error) {
			return c.fetch(ctx, base, unique[i])
		})
	} else {
		pages, err = c.sequential(ctx, base, unique)
	}
	if err != nil {
		return nil, err
	}

	result := make(map[string]*model.Page, len(pages))
	for _, p := range pages {
		result[p.Ref] = p
	}

	c.logger.Info("crawl completed",
		"pages", len(result),
		"duration", time.Since(start),
	)
	return result, nil
}

func (c *Coordinator) sequential(ctx context.Context, base *url.URL, refs []string) ([]*model.Page, error) {
	pages := make([]*model.Page, 0, len(refs))
	for _, ref := range refs {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		p, err := c.fetch(ctx, base, ref)
		if err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, nil
}

func (c *Coordinator) fetch(ctx context.Context, base *url.URL, ref string) (*model.Page, error) {
	u, err := PageURL(base, ref)
	if err != nil {
		return nil, &model.CrawlError{URL: ref, Attempts: 1, Err: err}
	}

	c.logger.Debug("fetching page", "ref", ref, "url", u.String())

	doc, err := c.retriever.Retrieve(ctx, u)
	if err != nil {
		return nil, err
	}
	return &model.Page{Ref: ref, URL: u, Doc: doc}, nil
}

// NormalizeBase returns a copy of base whose path ends with a slash, so that
// references resolve below it rather than next to it.
func NormalizeBase(base *url.URL) *url.URL {
	u := *base
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
		if u.RawPath != "" {
			u.RawPath += "/"
		}
	}
	return &u
}

// PageURL resolves ref against the normalized base.
func PageURL(base *url.URL, ref string) (*url.URL, error) {
	r, err := url.Parse(ref)
	if err != nil {
		return nil, fmt.Errorf("invalid reference %q: %w", ref, err)
	}
	return NormalizeBase(base).ResolveReference(r), nil
}

// dedupe returns refs without repeated entries, keeping the first occurrence.
func dedupe(refs []string) []string {
	seen := make(map[string]struct{}, len(refs))
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}
