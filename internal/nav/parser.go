package nav

import (
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/nao1215/docepub/internal/model"
	"golang.org/x/net/html"
)

// Selectors of the navigation markup.
const (
	selectorMenu  = "nav.nav-menu"
	selectorList  = "ul.nav-list"
	selectorItem  = "li.nav-item"
	selectorLink  = "a[href]"
	classItem     = "nav-item"
	attrDepth     = "data-depth"
	elementItem   = "li"
	attributeHref = "href"
)

// Parser builds a navigation tree from the root page of a site.
type Parser struct {
	logger *slog.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithLogger sets the logger used to report pruned items.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Parser) {
		p.logger = logger
	}
}

// NewParser creates a Parser.
func NewParser(opts ...Option) *Parser {
	p := &Parser{}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// Parse reads the navigation tree from doc.
// base decides which absolute links belong to the documentation: a link that
// does not start with base is pruned and logged, and its siblings are still
// parsed. Missing or malformed markup is reported as *model.StructuralError.
func (p *Parser) Parse(base *url.URL, doc *html.Node) (*model.NavItem, error) {
	root := goquery.NewDocumentFromNode(doc)

	menu := root.Find(selectorMenu).First()
	if menu.Length() == 0 {
		return nil, &model.StructuralError{Element: selectorMenu, Detail: "unable to find the navigation menu"}
	}

	list := menu.Find(selectorList).First()
	if list.Length() == 0 {
		return nil, &model.StructuralError{Element: selectorList, Detail: "unable to find the navigation list"}
	}

	first := list.Find(elementItem).First()
	if first.Length() == 0 {
		return nil, &model.StructuralError{Element: elementItem, Detail: "unable to find a navigation list item"}
	}

	return p.item(first, base.String())
}

// item parses one li element and its nested lists.
func (p *Parser) item(li *goquery.Selection, base string) (*model.NavItem, error) {
	if !li.Is(elementItem) || !li.HasClass(classItem) {
		return nil, &model.StructuralError{
			Element: selectorItem,
			Detail:  fmt.Sprintf("got <%s class=%q>", goquery.NodeName(li), li.AttrOr("class", "")),
		}
	}

	depth, err := parseDepth(li)
	if err != nil {
		return nil, err
	}
	node := &model.NavItem{Depth: depth}

	if a := li.ChildrenFiltered(selectorLink).First(); a.Length() > 0 {
		node.Label = collapseSpace(a.Text())
		node.Href = a.AttrOr(attributeHref, "")

		if isOutOfDomain(node.Href, base) {
			p.logger.Warn("navigation link is out of the documentation domain",
				"href", node.Href,
				"base", base,
			)
			return &model.NavItem{}, nil
		}
	}

	var childErr error
	li.ChildrenFiltered(selectorList).EachWithBreak(func(_ int, ul *goquery.Selection) bool {
		ul.ChildrenFiltered(selectorItem).EachWithBreak(func(_ int, child *goquery.Selection) bool {
			c, err := p.item(child, base)
			if err != nil {
				childErr = err
				return false
			}
			node.AddChild(c)
			return true
		})
		return childErr == nil
	})
	if childErr != nil {
		return nil, childErr
	}

	return node, nil
}

// parseDepth reads the data-depth attribute of li.
func parseDepth(li *goquery.Selection) (int, error) {
	raw, ok := li.Attr(attrDepth)
	if !ok {
		return 0, &model.StructuralError{Element: selectorItem, Detail: "missing " + attrDepth + " attribute"}
	}
	depth, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, &model.StructuralError{Element: selectorItem, Detail: "invalid " + attrDepth + " attribute", Err: err}
	}
	if depth < 0 {
		return 0, &model.StructuralError{Element: selectorItem, Detail: fmt.Sprintf("negative %s attribute %d", attrDepth, depth)}
	}
	return depth, nil
}

// isOutOfDomain reports whether href is an absolute URL outside base.
func isOutOfDomain(href, base string) bool {
	u, err := url.Parse(href)
	if err != nil || !u.IsAbs() {
		return false
	}
	return !strings.HasPrefix(href, base)
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
