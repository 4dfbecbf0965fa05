package fetch

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/proxy"
)

// maxRedirects bounds the redirect chain followed for a single request.
const maxRedirects = 10

// Credentials are the cookie and headers sent to one site.
type Credentials struct {
	// Cookie is a raw cookie string, e.g. "session=abc; theme=dark".
	Cookie string

	// Headers are extra request headers.
	Headers map[string]string
}

// Transport builds HTTP clients for the crawl.
type Transport struct {
	// proxyAddress is an optional SOCKS5 proxy in host:port form.
	proxyAddress string

	// dialer dials through the proxy when one is configured.
	dialer proxy.Dialer

	// defaults are sent to every host.
	defaults Credentials

	// sites override defaults per host name.
	sites map[string]Credentials
}

// TransportOption configures a Transport.
type TransportOption func(*Transport)

// WithProxy routes all connections through the SOCKS5 proxy at address.
func WithProxy(address string) TransportOption {
	return func(t *Transport) {
		t.proxyAddress = address
	}
}

// WithDefaultCredentials sets the cookie and headers sent to every host.
func WithDefaultCredentials(c Credentials) TransportOption {
	return func(t *Transport) {
		t.defaults = c
	}
}

// WithSiteCredentials sets the cookie and headers for a single host.
// Site headers are merged over the defaults; a site cookie replaces the
// default cookie.
func WithSiteCredentials(host string, c Credentials) TransportOption {
	return func(t *Transport) {
		if t.sites == nil {
			t.sites = make(map[string]Credentials)
		}
		t.sites[strings.ToLower(host)] = c
	}
}

// NewTransport creates a Transport. The proxy address is validated but no
// connection is made.
func NewTransport(opts ...TransportOption) (*Transport, error) {
	t := &Transport{}
	for _, opt := range opts {
		opt(t)
	}

	if t.proxyAddress != "" {
		if !isValidProxyAddress(t.proxyAddress) {
			return nil, ErrInvalidProxyAddress
		}
		dialer, err := proxy.SOCKS5("tcp", t.proxyAddress, nil, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
		}
		t.dialer = dialer
	}

	return t, nil
}

// isValidProxyAddress checks that address is host:port with a port in
// 1-65535.
func isValidProxyAddress(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" {
		return false
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return false
	}
	return n >= 1 && n <= 65535
}

// ProxyAddress returns the configured proxy address, or "" for direct
// connections.
func (t *Transport) ProxyAddress() string {
	return t.proxyAddress
}

// HTTPClient returns a client that follows redirects, dials through the
// proxy when configured and injects the configured credentials.
// The client has no overall timeout; Client applies one per attempt.
func (t *Transport) HTTPClient() *http.Client {
	base := http.DefaultTransport.(*http.Transport).Clone()
	base.MaxIdleConnsPerHost = 8
	base.IdleConnTimeout = 30 * time.Second

	if t.dialer != nil {
		dialer := t.dialer
		base.Proxy = nil
		base.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
			if cd, ok := dialer.(proxy.ContextDialer); ok {
				return cd.DialContext(ctx, network, addr)
			}
			return dialer.Dial(network, addr)
		}
	}

	var rt http.RoundTripper = base
	if t.defaults.Cookie != "" || len(t.defaults.Headers) > 0 || len(t.sites) > 0 {
		rt = &headerInjectingTransport{base: base, defaults: t.defaults, sites: t.sites}
	}

	return &http.Client{
		Transport: rt,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			return nil
		},
	}
}

// headerInjectingTransport wraps an http.RoundTripper to inject the cookie
// and headers configured for the request host.
type headerInjectingTransport struct {
	base     http.RoundTripper
	defaults Credentials
	sites    map[string]Credentials
}

// credentialsFor merges the site credentials of host over the defaults.
func (t *headerInjectingTransport) credentialsFor(host string) Credentials {
	site, ok := t.sites[strings.ToLower(host)]
	if !ok {
		return t.defaults
	}

	merged := Credentials{Cookie: t.defaults.Cookie, Headers: make(map[string]string)}
	for k, v := range t.defaults.Headers {
		merged.Headers[k] = v
	}
	for k, v := range site.Headers {
		merged.Headers[k] = v
	}
	if site.Cookie != "" {
		merged.Cookie = site.Cookie
	}
	return merged
}

// RoundTrip implements http.RoundTripper.
func (t *headerInjectingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	creds := t.credentialsFor(clone.URL.Hostname())

	if creds.Cookie != "" {
		if existing := clone.Header.Get("Cookie"); existing != "" {
			clone.Header.Set("Cookie", existing+"; "+creds.Cookie)
		} else {
			clone.Header.Set("Cookie", creds.Cookie)
		}
	}
	for key, value := range creds.Headers {
		clone.Header.Set(key, value)
	}

	return t.base.RoundTrip(clone)
}
