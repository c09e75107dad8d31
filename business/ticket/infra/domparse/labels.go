package domparse

import (
	"strings"

	"github.com/ORDEP81/ticketsight/internal/domtree"
)

// inputValue returns the usable value of an input-like element.
func inputValue(n *domtree.Node) string {
	if v, ok := n.Attr("value"); ok && strings.TrimSpace(v) != "" {
		return v
	}
	return n.OwnText()
}

// inputLabel assembles the text a user would read as the field's label:
// aria-label, placeholder, an associated <label>, and nearby ancestor text.
func inputLabel(n *domtree.Node) string {
	var parts []string
	if v, ok := n.Attr("aria-label"); ok {
		parts = append(parts, v)
	}
	if v, ok := n.Attr("placeholder"); ok {
		parts = append(parts, v)
	}
	if v, ok := n.Attr("name"); ok {
		parts = append(parts, v)
	}
	if id, ok := n.Attr("id"); ok && id != "" {
		if label := n.Root().Find(func(c *domtree.Node) bool {
			return c.IsElement("label") && c.AttrOr("for", "") == id
		}); label != nil {
			parts = append(parts, label.Text())
		}
	}
	if wrap := n.Closest(func(p *domtree.Node) bool { return p.IsElement("label") }); wrap != nil {
		parts = append(parts, wrap.Text())
	}
	// Two levels of surrounding context is enough for a field row.
	parts = append(parts, n.Ancestor(2).Text())
	return strings.ToLower(strings.Join(parts, " "))
}

// labelMentions reports whether the assembled label contains any keyword.
func labelMentions(label string, keywords ...string) bool {
	for _, k := range keywords {
		if strings.Contains(label, k) {
			return true
		}
	}
	return false
}

// numericInputs returns inputs that plausibly hold a number.
func numericInputs(root *domtree.Node) []*domtree.Node {
	return root.FindAll(func(n *domtree.Node) bool {
		if !n.IsElement("input") {
			return false
		}
		switch strings.ToLower(n.AttrOr("type", "text")) {
		case "number", "text", "tel":
			return true
		}
		return false
	})
}
