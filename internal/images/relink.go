package images

import (
	"fmt"
	"path/filepath"

	"github.com/nao1215/docepub/internal/model"
	"golang.org/x/net/html"
)

// Relink rewrites the src attribute of every downloaded image to the
// slash-separated path of its file relative to outputDir.
func Relink(links map[string][]model.ImageLink, outputDir string) error {
	for ref, list := range links {
		for _, l := range list {
			rel, err := filepath.Rel(outputDir, l.Path)
			if err != nil {
				return &model.ImageError{Ref: ref, Source: l.Source, Err: fmt.Errorf("relative path: %w", err)}
			}
			setAttr(l.Node, "src", filepath.ToSlash(rel))
		}
	}
	return nil
}

func setAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}
