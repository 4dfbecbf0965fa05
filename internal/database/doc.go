// Package database records finished builds in a SQLite file.
//
// The history is append-only. A build never reads it back, so it never acts
// as a cache; `docepub history` is its only reader.
package database
