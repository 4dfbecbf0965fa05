// Package model defines the data structures shared by the docepub build stages.
//
// This package contains the following main types:
//   - NavItem: A node of the navigation tree parsed from the root page
//   - Page: A fetched and parsed documentation page
//   - ImageLink: An image element paired with its downloaded file
//   - Book: The assembled output document
//   - Build: The per-run state threaded through the pipeline
//
// Stage failures are reported with the typed errors declared in errors.go.
// Every stage keys its output by the page reference (the href found in the
// navigation tree), which is the join key across the whole build.
package model
