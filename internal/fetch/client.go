package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nao1215/docepub/internal/model"
)

// Default request settings.
const (
	// DefaultTimeout is the timeout of a single request attempt.
	DefaultTimeout = 60 * time.Second

	// DefaultAttempts is the number of attempts made for a request that
	// fails at the transport level.
	DefaultAttempts = 3

	// DefaultUserAgent identifies docepub in HTTP requests.
	DefaultUserAgent = "docepub/1.0 (+https://github.com/nao1215/docepub)"

	// DefaultMaxBodySize limits the response body size read into memory.
	// Larger bodies fail the request instead of being truncated.
	DefaultMaxBodySize = 64 * 1024 * 1024

	// IndexFile is the page read for a file URL naming a directory.
	IndexFile = "index.html"
)

// Response is the result of a successful Get.
type Response struct {
	// URL is the requested address.
	URL string

	// ContentType is the Content-Type header, or the type guessed from the
	// file extension for file URLs.
	ContentType string

	// Body is the response body.
	Body []byte
}

// Client performs GET requests for pages and images.
//
// http and https requests get a timeout per attempt and are attempted up to
// Attempts times when the transport fails (connection refused, reset,
// timeout, truncated body). A response outside the 2xx range, or a body
// larger than the configured limit, fails at once: asking again would get
// the same answer. There is no backoff between attempts.
//
// file URLs are read once from local storage. A directory is read through
// its index.html, so a site directory works as a base URL.
//
// Every failure is returned as a *model.CrawlError carrying the URL and the
// number of attempts made. A Client is safe for concurrent use.
type Client struct {
	httpClient  *http.Client
	timeout     time.Duration
	attempts    int
	userAgent   string
	maxBodySize int64
	logger      *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithTimeout sets the timeout of each attempt.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithAttempts sets the maximum number of attempts per request.
func WithAttempts(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.attempts = n
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithMaxBodySize sets the maximum number of body bytes read.
func WithMaxBodySize(size int64) ClientOption {
	return func(c *Client) {
		if size > 0 {
			c.maxBodySize = size
		}
	}
}

// WithClientLogger sets the logger used to report failed attempts.
func WithClientLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a Client sending requests with httpClient.
// A nil httpClient uses a direct Transport.
func NewClient(httpClient *http.Client, opts ...ClientOption) *Client {
	if httpClient == nil {
		t, _ := NewTransport() //nolint:errcheck // no options, cannot fail
		httpClient = t.HTTPClient()
	}

	c := &Client{
		httpClient:  httpClient,
		timeout:     DefaultTimeout,
		attempts:    DefaultAttempts,
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Attempts returns the maximum number of attempts per request.
func (c *Client) Attempts() int {
	return c.attempts
}

// Get retrieves u. Failures are returned as *model.CrawlError.
func (c *Client) Get(ctx context.Context, u *url.URL) (*Response, error) {
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return c.getHTTP(ctx, u)
	case "file":
		return c.getFile(u)
	default:
		return nil, &model.CrawlError{URL: u.String(), Attempts: 1, Err: fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)}
	}
}

// getHTTP performs the request, retrying transport failures.
func (c *Client) getHTTP(ctx context.Context, u *url.URL) (*Response, error) {
	var lastErr error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		resp, retry, err := c.do(ctx, u)
		if err == nil {
			return resp, nil
		}
		if !retry {
			return nil, &model.CrawlError{URL: u.String(), Attempts: attempt, Err: err}
		}
		lastErr = err

		// The caller gave up; further attempts would fail the same way.
		if ctx.Err() != nil {
			return nil, &model.CrawlError{URL: u.String(), Attempts: attempt, Err: ctx.Err()}
		}

		c.logger.Warn("request attempt failed",
			"url", u.String(),
			"attempt", attempt,
			"max_attempts", c.attempts,
			"error", err,
		)
	}

	return nil, &model.CrawlError{
		URL:      u.String(),
		Attempts: c.attempts,
		Err:      fmt.Errorf("%w (timeout %s per attempt)", lastErr, c.timeout),
	}
}

// do performs one attempt. retry reports whether a failure is worth another
// attempt.
func (c *Client) do(ctx context.Context, u *url.URL) (resp *Response, retry bool, err error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, false, fmt.Errorf("%w: %s", ErrUnexpectedStatus, res.Status)
	}

	// One byte past the limit tells a body of exactly maxBodySize from a
	// larger one.
	body, err := io.ReadAll(io.LimitReader(res.Body, c.maxBodySize+1))
	if err != nil {
		return nil, true, fmt.Errorf("reading body: %w", err)
	}
	if int64(len(body)) > c.maxBodySize {
		return nil, false, fmt.Errorf("%w: more than %d bytes", ErrBodyTooLarge, c.maxBodySize)
	}

	return &Response{
		URL:         u.String(),
		ContentType: res.Header.Get("Content-Type"),
		Body:        body,
	}, false, nil
}

// getFile reads a file URL from local storage.
// A directory is served by its index file, the way a static web server
// serves the site root.
func (c *Client) getFile(u *url.URL) (*Response, error) {
	path := filepath.FromSlash(u.Path)
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, IndexFile)
	}

	body, err := c.readFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			err = fmt.Errorf("file not found: %s", path)
		}
		return nil, &model.CrawlError{URL: u.String(), Attempts: 1, Err: err}
	}

	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = http.DetectContentType(body)
	}

	return &Response{URL: u.String(), ContentType: contentType, Body: body}, nil
}

// readFile reads path, failing for files larger than maxBodySize.
func (c *Client) readFile(path string) ([]byte, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from the user-provided base URL
	if err != nil {
		return nil, err
	}
	defer f.Close() //nolint:errcheck // read-only

	body, err := io.ReadAll(io.LimitReader(f, c.maxBodySize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > c.maxBodySize {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrBodyTooLarge, c.maxBodySize)
	}
	return body, nil
}
