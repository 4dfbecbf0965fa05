// Package heading renumbers section headings by navigation depth.
//
// A page at depth d has its headings pushed down by d-1 levels, so an h1 on
// a depth 1 page stays h1 while an h2 on a depth 3 page becomes h4. Levels
// never drop below h1.
//
// Headings are matched by tag name (h1 through h9) and renamed in place.
// Levels past h6 are kept as h7, h8 and so on; they have no atom in
// golang.org/x/net/html but render like any unknown element. Every fragment
// is shifted exactly once, even when its reference appears several times in
// the navigation.
package heading
