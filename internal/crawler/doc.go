// Package crawler retrieves every page listed in the navigation tree.
//
// # Components
//
//   - Coordinator: fetches a list of references either one at a time or on a
//     bounded worker pool and returns the reference to page map
//   - PageURL: resolves a navigation reference against the documentation base
//
// # Failure
//
// A crawl stops at the first page that cannot be retrieved. No partial
// result is returned: the caller gets either every requested page or the
// error of the first failure. Retries are the job of the fetch.Retriever the
// coordinator is built with.
//
// # Usage
//
//	c := crawler.NewCoordinator(fetch.NewHTMLRetriever(client), crawler.WithWorkers(8))
//	pages, err := c.Crawl(ctx, base, refs, true)
package crawler
