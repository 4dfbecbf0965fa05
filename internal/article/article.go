package article

import (
	"sort"

	"github.com/PuerkitoBio/goquery"
	"github.com/nao1215/docepub/internal/model"
	"golang.org/x/net/html"
)

// Tag is the element holding the content of a page.
const Tag = "article"

// Extract returns the single content element of every page, keyed by
// reference. A page with no content element or more than one fails the
// extraction with *model.ExtractionError. Pages are checked in reference
// order, so the same site always reports the same page.
func Extract(pages map[string]*model.Page) (map[string]*html.Node, error) {
	fragments := make(map[string]*html.Node, len(pages))
	for _, ref := range sortedRefs(pages) {
		node, err := extractOne(ref, pages[ref].Doc)
		if err != nil {
			return nil, err
		}
		fragments[ref] = node
	}
	return fragments, nil
}

func extractOne(ref string, doc *html.Node) (*html.Node, error) {
	sel := goquery.NewDocumentFromNode(doc).Find(Tag)
	if sel.Length() != 1 {
		return nil, &model.ExtractionError{Ref: ref, Tag: Tag, Count: sel.Length()}
	}
	return sel.Get(0), nil
}

// CheckCoverage verifies that every fetched reference is known to the
// navigation index. The first unknown reference in sort order is reported.
func CheckCoverage(pages map[string]*model.Page, index map[string]*model.NavItem) error {
	for _, ref := range sortedRefs(pages) {
		if _, ok := index[ref]; !ok {
			return &model.CoverageError{Ref: ref}
		}
	}
	return nil
}

func sortedRefs(pages map[string]*model.Page) []string {
	refs := make([]string, 0, len(pages))
	for ref := range pages {
		refs = append(refs, ref)
	}
	sort.Strings(refs)
	return refs
}
