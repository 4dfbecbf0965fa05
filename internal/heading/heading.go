package heading

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/nao1215/docepub/internal/model"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var headingTag = regexp.MustCompile(`^h([1-9])$`)

// Shift renames every heading element of each fragment according to the
// depth of its navigation item. refs selects the fragments and may contain a
// reference more than once; each fragment is shifted once.
func Shift(refs []string, index map[string]*model.NavItem, fragments map[string]*html.Node) error {
	done := make(map[string]struct{}, len(refs))
	for _, ref := range refs {
		if _, ok := done[ref]; ok {
			continue
		}
		done[ref] = struct{}{}

		item, ok := index[ref]
		if !ok {
			return &model.CoverageError{Ref: ref}
		}
		frag, ok := fragments[ref]
		if !ok {
			return fmt.Errorf("no fragment for reference %q", ref)
		}
		if err := shiftNode(frag, item.Depth); err != nil {
			return fmt.Errorf("shift headings of %q: %w", ref, err)
		}
	}
	return nil
}

func shiftNode(n *html.Node, depth int) error {
	if n.Type == html.ElementNode {
		if m := headingTag.FindStringSubmatch(n.Data); m != nil {
			level, err := strconv.Atoi(m[1])
			if err != nil {
				return err
			}
			rename(n, Level(level, depth))
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := shiftNode(c, depth); err != nil {
			return err
		}
	}
	return nil
}

// Level returns the heading level of an h<level> element on a page at depth.
func Level(level, depth int) int {
	return max(level+depth-1, 1)
}

func rename(n *html.Node, level int) {
	n.Data = "h" + strconv.Itoa(level)
	// h7 and beyond have no atom.
	n.DataAtom = atom.Lookup([]byte(n.Data))
}
