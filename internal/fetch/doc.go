// Package fetch retrieves documentation pages and images.
//
// # Components
//
//   - Transport: builds the *http.Client, optionally dialing through a
//     SOCKS5 proxy and injecting per-site cookies and headers
//   - Client: performs GET requests with a per-attempt timeout and a bounded
//     number of attempts on transport failures; file URLs are read from disk
//   - HTMLRetriever: the page retriever used by the crawl, which requires an
//     HTML content type and parses the body
//
// # Retry contract
//
// A request is attempted up to Attempts times (3 by default) with no backoff.
// Only transport-level failures are retried: a timeout counts as one failed
// attempt. An unexpected status code or content type fails immediately.
// File URLs are never retried.
//
// # Usage
//
//	transport, err := fetch.NewTransport(fetch.WithProxy("127.0.0.1:1080"))
//	client := fetch.NewClient(transport.HTTPClient(), fetch.WithTimeout(time.Minute))
//	doc, err := fetch.NewHTMLRetriever(client).Retrieve(ctx, pageURL)
package fetch
