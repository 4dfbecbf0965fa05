// Package article extracts the content fragment of each page and checks that
// the fetched pages match the navigation index.
//
// The content of a documentation page is its single <article> element.
// Navigation menus, headers and footers around it are dropped. A page
// without an article, or with more than one (nested ones included), fails
// the build with a *model.ExtractionError naming the page.
//
// CheckCoverage runs after extraction: every fetched reference must be
// present in the navigation index, otherwise the page would have no depth
// for heading renumbering and no place in the book.
package article
