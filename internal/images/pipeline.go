package images

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nao1215/docepub/internal/crawler"
	"github.com/nao1215/docepub/internal/fetch"
	"github.com/nao1215/docepub/internal/model"
	"github.com/nao1215/docepub/internal/workpool"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/sync/singleflight"
)

// Dir is the name of the image directory below the output directory.
const Dir = "img"

// Fetcher retrieves raw resources. *fetch.Client implements it.
type Fetcher interface {
	Get(ctx context.Context, u *url.URL) (*fetch.Response, error)
}

// Pipeline downloads the images of content fragments into the output
// directory.
//
// Every img element with a non-blank src becomes one download task, run on a
// workpool of the configured size. A source is resolved by Resolve: "../"
// paths against the page, everything else must already be absolute. The
// destination file is named by FileName, the name-based UUID of the URL
// path, so every element pointing at the same path shares one file.
//
// A destination that already exists is not downloaded again, and concurrent
// tasks for the same destination are collapsed into one request. Files are
// published atomically: a reader sees either no file or the complete image.
// The first failing task fails the whole run with a *model.ImageError.
//
// A Pipeline is safe for concurrent use and must not be copied.
type Pipeline struct {
	fetcher Fetcher
	workers int
	logger  *slog.Logger

	// inflight collapses downloads of the same destination file.
	inflight singleflight.Group
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithWorkers sets the number of concurrent downloads.
func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// NewPipeline creates a Pipeline that downloads with f.
func NewPipeline(f Fetcher, opts ...Option) *Pipeline {
	p := &Pipeline{
		fetcher: f,
		workers: workpool.DefaultSize(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// task is one img element to download.
type task struct {
	ref  string
	node *html.Node
	src  string
}

// Download fetches every image of fragments into <outputDir>/img and returns
// the downloaded files per reference, in document order. base is the
// documentation root the page references are relative to.
// Any failure fails the whole download.
func (p *Pipeline) Download(ctx context.Context, base *url.URL, outputDir string, fragments map[string]*html.Node) (map[string][]model.ImageLink, error) {
	dir := filepath.Join(outputDir, Dir)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create image directory: %w", err)
	}

	tasks := collect(fragments)
	start := time.Now()
	p.logger.Info("downloading images", "images", len(tasks), "dir", dir)

	links, err := workpool.Run(ctx, p.workers, len(tasks), func(ctx context.Context, i int) (model.ImageLink, error) {
		return p.download(ctx, base, dir, tasks[i])
	})
	if err != nil {
		return nil, err
	}

	result := make(map[string][]model.ImageLink)
	for i, t := range tasks {
		result[t.ref] = append(result[t.ref], links[i])
	}

	p.logger.Info("images downloaded",
		"images", len(tasks),
		"duration", time.Since(start),
	)
	return result, nil
}

// collect lists the img elements with a non-blank src, ordered by reference
// and then by document order.
func collect(fragments map[string]*html.Node) []task {
	refs := make([]string, 0, len(fragments))
	for ref := range fragments {
		refs = append(refs, ref)
	}
	sort.Strings(refs)

	var tasks []task
	for _, ref := range refs {
		var walk func(*html.Node)
		walk = func(n *html.Node) {
			if n.Type == html.ElementNode && n.DataAtom == atom.Img {
				if src := strings.TrimSpace(getAttr(n, "src")); src != "" {
					tasks = append(tasks, task{ref: ref, node: n, src: src})
				}
			}
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				walk(c)
			}
		}
		walk(fragments[ref])
	}
	return tasks
}

func (p *Pipeline) download(ctx context.Context, base *url.URL, dir string, t task) (model.ImageLink, error) {
	u, err := Resolve(base, t.ref, t.src)
	if err != nil {
		return model.ImageLink{}, &model.ImageError{Ref: t.ref, Source: t.src, Err: err}
	}

	dest := filepath.Join(dir, FileName(u))
	_, err, _ = p.inflight.Do(dest, func() (any, error) {
		return nil, p.fetchTo(ctx, u, dest)
	})
	if err != nil {
		return model.ImageLink{}, &model.ImageError{Ref: t.ref, Source: u.String(), Err: err}
	}

	return model.ImageLink{Node: t.node, Source: u.String(), Path: dest}, nil
}

// fetchTo downloads u into dest unless dest already exists.
func (p *Pipeline) fetchTo(ctx context.Context, u *url.URL, dest string) error {
	if _, err := os.Stat(dest); err == nil {
		p.logger.Debug("image already present", "url", u.String(), "path", dest)
		return nil
	}

	resp, err := p.fetcher.Get(ctx, u)
	if err != nil {
		return err
	}
	if !fetch.IsImage(resp.ContentType) {
		return fmt.Errorf("%w: %q", ErrNotImage, resp.ContentType)
	}

	if err := publish(dest, resp.Body); err != nil {
		return err
	}
	p.logger.Debug("image downloaded", "url", u.String(), "path", dest, "bytes", len(resp.Body))
	return nil
}

// publish writes data to dest so that dest either does not exist or holds
// the complete content. An existing dest is left untouched.
func publish(dest string, data []byte) error {
	return publishWith(dest, data, os.Link)
}

// publishWith is publish with the hard link call replaced by link.
func publishWith(dest string, data []byte, link func(oldname, newname string) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".download-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // best effort cleanup

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck,gosec // write error takes precedence
		return fmt.Errorf("failed to write image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write image: %w", err)
	}

	err = link(tmpName, dest)
	switch {
	case err == nil, errors.Is(err, fs.ErrExist):
		return nil
	case errors.Is(err, errors.ErrUnsupported), errors.Is(err, fs.ErrPermission):
		// No hard links on this file system. vfat and some FUSE mounts
		// report EPERM.
		if _, statErr := os.Stat(dest); statErr == nil {
			return nil
		}
		return os.Rename(tmpName, dest)
	default:
		return fmt.Errorf("failed to publish image: %w", err)
	}
}

// Resolve returns the absolute URL of an image src found on the page ref.
func Resolve(base *url.URL, ref, src string) (*url.URL, error) {
	if strings.HasPrefix(src, "../") {
		page, err := crawler.PageURL(base, ref)
		if err != nil {
			return nil, err
		}
		s, err := url.Parse(src)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnresolvable, err)
		}
		return page.ResolveReference(s), nil
	}

	u, err := url.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnresolvable, err)
	}
	if !u.IsAbs() || (u.Host == "" && u.Scheme != "file") {
		return nil, fmt.Errorf("%w: only ../ relative or absolute sources are supported", ErrUnresolvable)
	}
	return u, nil
}

// FileName returns the content address of an image URL: the name-based UUID
// of its path.
func FileName(u *url.URL) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(u.Path)).String()
}

func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
