package model

// NavItem is a node of the navigation tree.
// Depth is read from the source markup; it is not recomputed from the
// position of the node in the tree.
type NavItem struct {
	// Depth is the navigation depth declared by the data-depth attribute.
	Depth int `json:"depth"`

	// Href is the page reference. It is empty for pruned nodes and for
	// items without an anchor.
	Href string `json:"href"`

	// Label is the anchor text displayed in the navigation menu.
	Label string `json:"label"`

	// Children are the nested items in document order.
	Children []*NavItem `json:"children,omitempty"`
}

// IsEmpty reports whether the item carries no information at all.
// Empty items are never attached to a parent.
func (n *NavItem) IsEmpty() bool {
	return n.Depth == 0 && n.Href == "" && n.Label == "" && len(n.Children) == 0
}

// AddChild appends child unless it is empty.
func (n *NavItem) AddChild(child *NavItem) {
	if child == nil || child.IsEmpty() {
		return
	}
	n.Children = append(n.Children, child)
}

// Walk visits n and its descendants in pre-order.
func (n *NavItem) Walk(fn func(*NavItem)) {
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}
