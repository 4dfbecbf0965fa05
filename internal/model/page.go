package model

import (
	"net/url"

	"golang.org/x/net/html"
)

// Page is a documentation page retrieved during the crawl.
type Page struct {
	// Ref is the navigation reference the page was requested for.
	Ref string

	// URL is the absolute URL the page was retrieved from.
	URL *url.URL

	// Doc is the parsed document root.
	Doc *html.Node
}

// ImageLink pairs an img element of a fragment with the file its source was
// downloaded to.
type ImageLink struct {
	// Node is the img element whose src attribute is rewritten.
	Node *html.Node

	// Source is the absolute URL the image was downloaded from.
	Source string

	// Path is the location of the downloaded file on disk.
	Path string
}
