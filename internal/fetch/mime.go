package fetch

import "strings"

// IsHTML reports whether contentType identifies an HTML document.
func IsHTML(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "text/html")
}

// IsImage reports whether contentType identifies an image.
func IsImage(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "image")
}
