package model

import (
	"io"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Book is the assembled output document.
// Sections are appended to the body of a single HTML document in the order
// they are added.
type Book struct {
	doc      *html.Node
	body     *html.Node
	sections int
}

// NewBook creates an empty book whose document title is title.
func NewBook(title string) *Book {
	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})

	root := element(atom.Html)
	head := element(atom.Head)
	meta := element(atom.Meta)
	meta.Attr = []html.Attribute{{Key: "charset", Val: "utf-8"}}
	head.AppendChild(meta)
	titleNode := element(atom.Title)
	titleNode.AppendChild(&html.Node{Type: html.TextNode, Data: title})
	head.AppendChild(titleNode)

	body := element(atom.Body)
	root.AppendChild(head)
	root.AppendChild(body)
	doc.AppendChild(root)

	return &Book{doc: doc, body: body}
}

func element(a atom.Atom) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
}

// AddSection appends node as the last child of the body.
// A node still attached to its source document is detached first.
func (b *Book) AddSection(node *html.Node) {
	if node.Parent != nil {
		node.Parent.RemoveChild(node)
	}
	b.body.AppendChild(node)
	b.sections++
}

// Sections returns the number of sections added so far.
func (b *Book) Sections() int {
	return b.sections
}

// Body returns the body element holding the sections.
func (b *Book) Body() *html.Node {
	return b.body
}

// Document returns the document root.
func (b *Book) Document() *html.Node {
	return b.doc
}

// Render writes the book as HTML to w.
func (b *Book) Render(w io.Writer) error {
	return html.Render(w, b.doc)
}
