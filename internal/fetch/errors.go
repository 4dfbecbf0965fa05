package fetch

import "errors"

// Retrieval errors.
// They are wrapped in a *model.CrawlError by Client and HTMLRetriever.
var (
	// ErrUnsupportedScheme is returned for URLs that are neither http, https
	// nor file.
	ErrUnsupportedScheme = errors.New("unsupported URL scheme")

	// ErrNotHTML is returned when a page is served with a non-HTML content
	// type.
	ErrNotHTML = errors.New("response is not an HTML document")

	// ErrBodyTooLarge is returned when a body exceeds the size limit of the
	// client.
	ErrBodyTooLarge = errors.New("body exceeds size limit")

	// ErrUnexpectedStatus is returned for responses outside the 2xx range.
	ErrUnexpectedStatus = errors.New("unexpected HTTP status")

	// ErrInvalidProxyAddress is returned when the proxy address is not in
	// host:port form.
	ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")
)
