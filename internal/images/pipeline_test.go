package images

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nao1215/docepub/internal/fetch"
	"github.com/nao1215/docepub/internal/model"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// fakeFetcher serves the same image body for every URL.
type fakeFetcher struct {
	mu          sync.Mutex
	calls       map[string]int
	contentType string
	err         error
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{calls: make(map[string]int), contentType: "image/png"}
}

func (f *fakeFetcher) Get(_ context.Context, u *url.URL) (*fetch.Response, error) {
	f.mu.Lock()
	f.calls[u.String()]++
	f.mu.Unlock()

	// Keep concurrent requests for the same file overlapping.
	time.Sleep(10 * time.Millisecond)
	if f.err != nil {
		return nil, f.err
	}
	return &fetch.Response{URL: u.String(), ContentType: f.contentType, Body: []byte("PNG:" + u.Path)}, nil
}

func (f *fakeFetcher) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("failed to parse %q: %v", raw, err)
	}
	return u
}

// fragment parses src and returns its first article element.
func fragment(t *testing.T, src string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader("<html><body>" + src + "</body></html>"))
	if err != nil {
		t.Fatalf("failed to parse html: %v", err)
	}
	var found *html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if found == nil && n.Type == html.ElementNode && n.DataAtom == atom.Article {
			found = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	if found == nil {
		t.Fatal("fragment has no article element")
	}
	return found
}

const testBase = "https://docs.example.com/reference"

func TestPipelineDownload(t *testing.T) {
	t.Parallel()

	t.Run("same image path yields one file", func(t *testing.T) {
		t.Parallel()

		out := t.TempDir()
		f := newFakeFetcher()
		p := NewPipeline(f, WithWorkers(4), WithLogger(quietLogger()))

		fragments := map[string]*html.Node{
			"a.html":      fragment(t, `<article><img src="https://docs.example.com/reference/_images/logo.png"></article>`),
			"core/b.html": fragment(t, `<article><img src="../_images/logo.png"><img src="  "></article>`),
		}

		links, err := p.Download(context.Background(), mustURL(t, testBase), out, fragments)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(links["a.html"]) != 1 || len(links["core/b.html"]) != 1 {
			t.Fatalf("links = %v, expected one image per page", links)
		}
		if links["a.html"][0].Path != links["core/b.html"][0].Path {
			t.Errorf("paths differ: %q != %q", links["a.html"][0].Path, links["core/b.html"][0].Path)
		}

		entries, err := os.ReadDir(filepath.Join(out, Dir))
		if err != nil {
			t.Fatalf("failed to read image dir: %v", err)
		}
		if len(entries) != 1 {
			t.Errorf("image dir has %d entries, expected 1", len(entries))
		}
		if n := f.total(); n != 1 {
			t.Errorf("fetch calls = %d, expected 1", n)
		}

		if err := Relink(links, out); err != nil {
			t.Fatalf("Relink failed: %v", err)
		}
		a := getAttr(links["a.html"][0].Node, "src")
		b := getAttr(links["core/b.html"][0].Node, "src")
		if a != b {
			t.Errorf("rewritten paths differ: %q != %q", a, b)
		}
		if want := "img/" + entries[0].Name(); a != want {
			t.Errorf("src = %q, expected %q", a, want)
		}
	})

	t.Run("existing file is not downloaded again", func(t *testing.T) {
		t.Parallel()

		out := t.TempDir()
		u := mustURL(t, "https://docs.example.com/reference/_images/diagram.svg")
		if err := os.MkdirAll(filepath.Join(out, Dir), 0o750); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		dest := filepath.Join(out, Dir, FileName(u))
		if err := os.WriteFile(dest, []byte("cached"), 0o600); err != nil {
			t.Fatalf("write: %v", err)
		}

		f := newFakeFetcher()
		p := NewPipeline(f, WithLogger(quietLogger()))
		_, err := p.Download(context.Background(), mustURL(t, testBase), out, map[string]*html.Node{
			"a.html": fragment(t, `<article><img src="`+u.String()+`"></article>`),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n := f.total(); n != 0 {
			t.Errorf("fetch calls = %d, expected 0", n)
		}
		data, err := os.ReadFile(dest)
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if string(data) != "cached" {
			t.Errorf("existing file was overwritten: %q", data)
		}
	})

	t.Run("relative source without ../ is rejected", func(t *testing.T) {
		t.Parallel()

		p := NewPipeline(newFakeFetcher(), WithLogger(quietLogger()))
		_, err := p.Download(context.Background(), mustURL(t, testBase), t.TempDir(), map[string]*html.Node{
			"a.html": fragment(t, `<article><img src="_images/logo.png"></article>`),
		})
		if !errors.Is(err, model.ErrImage) {
			t.Fatalf("expected ErrImage, got %v", err)
		}
		if !errors.Is(err, ErrUnresolvable) {
			t.Errorf("expected ErrUnresolvable, got %v", err)
		}
	})

	t.Run("non-image content type fails", func(t *testing.T) {
		t.Parallel()

		f := newFakeFetcher()
		f.contentType = "text/html"
		p := NewPipeline(f, WithLogger(quietLogger()))
		_, err := p.Download(context.Background(), mustURL(t, testBase), t.TempDir(), map[string]*html.Node{
			"a.html": fragment(t, `<article><img src="https://docs.example.com/x.png"></article>`),
		})
		if !errors.Is(err, ErrNotImage) {
			t.Errorf("expected ErrNotImage, got %v", err)
		}
	})

	t.Run("download failure fails the pipeline", func(t *testing.T) {
		t.Parallel()

		f := newFakeFetcher()
		f.err = &model.CrawlError{URL: "https://docs.example.com/x.png", Attempts: 3, Err: errors.New("timeout")}
		p := NewPipeline(f, WithLogger(quietLogger()))
		links, err := p.Download(context.Background(), mustURL(t, testBase), t.TempDir(), map[string]*html.Node{
			"a.html": fragment(t, `<article><img src="https://docs.example.com/x.png"></article>`),
		})
		if !errors.Is(err, model.ErrImage) || !errors.Is(err, model.ErrCrawl) {
			t.Errorf("expected ErrImage wrapping ErrCrawl, got %v", err)
		}
		if links != nil {
			t.Errorf("expected nil links, got %v", links)
		}
	})

	t.Run("image directory is created without images", func(t *testing.T) {
		t.Parallel()

		out := t.TempDir()
		p := NewPipeline(newFakeFetcher(), WithLogger(quietLogger()))
		if _, err := p.Download(context.Background(), mustURL(t, testBase), out, map[string]*html.Node{
			"a.html": fragment(t, `<article><p>text</p></article>`),
		}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if fi, err := os.Stat(filepath.Join(out, Dir)); err != nil || !fi.IsDir() {
			t.Errorf("image directory missing: %v", err)
		}
	})
}

func TestResolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		ref     string
		src     string
		want    string
		wantErr bool
	}{
		{name: "parent relative", ref: "core/beans.html", src: "../_images/a.png", want: "https://docs.example.com/reference/_images/a.png"},
		{name: "parent relative from root page", ref: "index.html", src: "../a.png", want: "https://docs.example.com/a.png"},
		{name: "absolute", ref: "index.html", src: "https://cdn.example.com/a.png", want: "https://cdn.example.com/a.png"},
		{name: "same directory relative", ref: "index.html", src: "_images/a.png", wantErr: true},
		{name: "root relative", ref: "index.html", src: "/_images/a.png", wantErr: true},
		{name: "dot relative", ref: "index.html", src: "./a.png", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Resolve(mustURL(t, testBase), tt.ref, tt.src)
			if tt.wantErr {
				if !errors.Is(err, ErrUnresolvable) {
					t.Errorf("expected ErrUnresolvable, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.String() != tt.want {
				t.Errorf("Resolve() = %q, expected %q", got, tt.want)
			}
		})
	}
}

func TestFileName(t *testing.T) {
	t.Parallel()

	a := FileName(mustURL(t, "https://a.example.com/img/x.png?v=1"))
	b := FileName(mustURL(t, "https://b.example.com/img/x.png"))
	c := FileName(mustURL(t, "https://a.example.com/img/y.png"))
	if a != b {
		t.Errorf("same path produced different names: %q, %q", a, b)
	}
	if a == c {
		t.Errorf("different paths produced the same name %q", a)
	}
	if filepath.Ext(a) != "" {
		t.Errorf("name %q has an extension", a)
	}
}
