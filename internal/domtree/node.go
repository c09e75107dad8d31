// Package domtree models the order-ticket UI subtree handed to the parsers.
//
// The tree is deliberately opaque: parsers walk structure, attributes and
// visible text, never concrete class names from a specific page build.
package domtree

import (
	"strings"

	"github.com/ORDEP81/ticketsight/internal/apperror"
)

// NodeType discriminates element nodes from text nodes.
type NodeType int

const (
	ElementNode NodeType = iota
	TextNode
)

// Node is a single node of the ticket subtree.
type Node struct {
	Type NodeType
	Tag  string // lowercase element tag, empty for text nodes
	Data string // text content for text nodes

	attrs    map[string]string
	parent   *Node
	children []*Node
	detached bool
}

// NewElement constructs an element node. Attribute pairs are given as
// alternating key, value strings.
func NewElement(tag string, attrPairs ...string) *Node {
	n := &Node{Type: ElementNode, Tag: strings.ToLower(tag)}
	for i := 0; i+1 < len(attrPairs); i += 2 {
		n.SetAttr(attrPairs[i], attrPairs[i+1])
	}
	return n
}

// NewText constructs a text node.
func NewText(text string) *Node {
	return &Node{Type: TextNode, Data: text}
}

// Append adds children and returns the receiver for chaining.
func (n *Node) Append(children ...*Node) *Node {
	for _, c := range children {
		c.parent = n
		n.children = append(n.children, c)
	}
	return n
}

// SetAttr sets an attribute, lowercasing the key.
func (n *Node) SetAttr(key, value string) {
	if n.attrs == nil {
		n.attrs = make(map[string]string)
	}
	n.attrs[strings.ToLower(key)] = value
}

// Attr returns the attribute value and whether it is present.
func (n *Node) Attr(key string) (string, bool) {
	n.checkAttached()
	v, ok := n.attrs[strings.ToLower(key)]
	return v, ok
}

// AttrOr returns the attribute value or a default.
func (n *Node) AttrOr(key, def string) string {
	if v, ok := n.Attr(key); ok {
		return v
	}
	return def
}

// HasAttr reports attribute presence.
func (n *Node) HasAttr(key string) bool {
	_, ok := n.Attr(key)
	return ok
}

// Parent returns the parent node, nil at the root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns the direct children.
func (n *Node) Children() []*Node {
	n.checkAttached()
	return n.children
}

// Detach marks the subtree as detached from its document. Subsequent
// content access panics, mirroring a live element handle going stale
// mid-parse; the orchestrator recovers and degrades.
func (n *Node) Detach() {
	n.detached = true
}

func (n *Node) checkAttached() {
	for p := n; p != nil; p = p.parent {
		if p.detached {
			panic(apperror.New(apperror.CodeTicketDetached))
		}
	}
}

// Text returns the visible text of the subtree with whitespace collapsed.
func (n *Node) Text() string {
	n.checkAttached()
	var sb strings.Builder
	n.collectText(&sb)
	return strings.Join(strings.Fields(sb.String()), " ")
}

func (n *Node) collectText(sb *strings.Builder) {
	if n.Type == TextNode {
		sb.WriteString(n.Data)
		sb.WriteByte(' ')
		return
	}
	switch n.Tag {
	case "script", "style", "noscript":
		return
	}
	for _, c := range n.children {
		c.collectText(sb)
	}
}

// OwnText returns only the text of direct text-node children.
func (n *Node) OwnText() string {
	n.checkAttached()
	var sb strings.Builder
	for _, c := range n.children {
		if c.Type == TextNode {
			sb.WriteString(c.Data)
			sb.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}

// Walk visits the subtree depth-first. Returning false from fn stops the
// walk.
func (n *Node) Walk(fn func(*Node) bool) {
	n.checkAttached()
	n.walk(fn)
}

func (n *Node) walk(fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, c := range n.children {
		if !c.walk(fn) {
			return false
		}
	}
	return true
}

// Find returns the first node in document order matching pred, or nil.
func (n *Node) Find(pred func(*Node) bool) *Node {
	var found *Node
	n.Walk(func(c *Node) bool {
		if pred(c) {
			found = c
			return false
		}
		return true
	})
	return found
}

// FindAll returns every node matching pred in document order.
func (n *Node) FindAll(pred func(*Node) bool) []*Node {
	var out []*Node
	n.Walk(func(c *Node) bool {
		if pred(c) {
			out = append(out, c)
		}
		return true
	})
	return out
}

// Closest walks ancestors (starting at the node itself) until pred matches.
func (n *Node) Closest(pred func(*Node) bool) *Node {
	for p := n; p != nil; p = p.parent {
		if pred(p) {
			return p
		}
	}
	return nil
}

// Ancestor returns the ancestor `levels` steps up, or the root if the tree
// is shallower.
func (n *Node) Ancestor(levels int) *Node {
	p := n
	for i := 0; i < levels && p.parent != nil; i++ {
		p = p.parent
	}
	return p
}

// Root returns the top of the tree.
func (n *Node) Root() *Node {
	p := n
	for p.parent != nil {
		p = p.parent
	}
	return p
}

// IsElement reports whether the node is an element with the given tag.
func (n *Node) IsElement(tag string) bool {
	return n.Type == ElementNode && n.Tag == tag
}

// ClassList returns the space-separated class attribute as a slice.
func (n *Node) ClassList() []string {
	return strings.Fields(strings.ToLower(n.AttrOr("class", "")))
}

// HasClassContaining reports whether any class contains the given substring.
func (n *Node) HasClassContaining(sub string) bool {
	sub = strings.ToLower(sub)
	for _, c := range n.ClassList() {
		if strings.Contains(c, sub) {
			return true
		}
	}
	return false
}
