// Package images downloads the images referenced by content fragments and
// points the fragments at the local copies.
//
// Images are stored flat in <output>/img. The file name is a name-based UUID
// of the URL path, without extension, so the same path always maps to the
// same file. A file that already exists is not downloaded again. Concurrent
// requests for the same file share one download, and files are published
// with a hard link from a temporary file so a reader never sees a partial
// image.
//
// Source resolution is deliberately narrow: a src starting with "../" is
// resolved against the page URL; every other src must be an absolute URL.
package images
