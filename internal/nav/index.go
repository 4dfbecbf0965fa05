package nav

import "github.com/nao1215/docepub/internal/model"

// Index flattens the tree rooted at root.
// refs lists the non-empty references in pre-order, the root included, and
// keeps duplicates. byRef maps each reference to the first item carrying it.
func Index(root *model.NavItem) (refs []string, byRef map[string]*model.NavItem) {
	refs = make([]string, 0)
	byRef = make(map[string]*model.NavItem)
	if root == nil {
		return refs, byRef
	}

	root.Walk(func(n *model.NavItem) {
		if n.Href == "" {
			return
		}
		refs = append(refs, n.Href)
		if _, ok := byRef[n.Href]; !ok {
			byRef[n.Href] = n
		}
	})
	return refs, byRef
}
