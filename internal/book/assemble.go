package book

import (
	"fmt"

	"github.com/nao1215/docepub/internal/model"
	"golang.org/x/net/html"
)

// Assemble appends the fragment of each reference to a new book, in the
// order of refs. A reference listed more than once gets a deep copy of its
// fragment for every appearance after the first.
func Assemble(title string, refs []string, fragments map[string]*html.Node) (*model.Book, error) {
	b := model.NewBook(title)
	used := make(map[string]struct{}, len(refs))

	for _, ref := range refs {
		frag, ok := fragments[ref]
		if !ok || frag == nil {
			return nil, fmt.Errorf("no fragment for reference %q", ref)
		}
		if _, seen := used[ref]; seen {
			frag = clone(frag)
		}
		used[ref] = struct{}{}
		b.AddSection(frag)
	}
	return b, nil
}

// clone returns a detached deep copy of n.
func clone(n *html.Node) *html.Node {
	c := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
		Attr:      append([]html.Attribute(nil), n.Attr...),
	}
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		c.AppendChild(clone(ch))
	}
	return c
}
