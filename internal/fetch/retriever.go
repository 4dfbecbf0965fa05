package fetch

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/nao1215/docepub/internal/model"
	"golang.org/x/net/html"
)

// Retriever fetches and parses one documentation page.
type Retriever interface {
	Retrieve(ctx context.Context, u *url.URL) (*html.Node, error)
}

// HTMLRetriever retrieves pages with a Client and parses them as HTML.
type HTMLRetriever struct {
	client *Client
}

// NewHTMLRetriever creates an HTMLRetriever backed by client.
func NewHTMLRetriever(client *Client) *HTMLRetriever {
	return &HTMLRetriever{client: client}
}

// Retrieve fetches u and parses the body.
// HTTP responses must have an HTML content type; file URLs are parsed as is.
func (r *HTMLRetriever) Retrieve(ctx context.Context, u *url.URL) (*html.Node, error) {
	resp, err := r.client.Get(ctx, u)
	if err != nil {
		return nil, err
	}

	if !strings.EqualFold(u.Scheme, "file") && !IsHTML(resp.ContentType) {
		return nil, &model.CrawlError{
			URL:      u.String(),
			Attempts: 1,
			Err:      fmt.Errorf("%w: unable to create an HTML document from %q", ErrNotHTML, resp.ContentType),
		}
	}

	doc, err := html.Parse(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, &model.CrawlError{URL: u.String(), Attempts: 1, Err: fmt.Errorf("parse html: %w", err)}
	}
	return doc, nil
}
