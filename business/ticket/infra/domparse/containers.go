package domparse

import (
	"sort"
	"strings"

	"github.com/ORDEP81/ticketsight/internal/domtree"
)

// MinContainerScore is the stock threshold below which an element is not
// considered a ticket container.
const MinContainerScore = 6

// ScoreTicketContainer rates how ticket-like an element subtree looks.
// Yes/no toggles and fee wording weigh most; generic order wording and
// numeric inputs add a little each.
func ScoreTicketContainer(n *domtree.Node) int {
	if n.Type != domtree.ElementNode {
		return 0
	}
	text := strings.ToLower(n.Text())
	score := 0

	switch n.AttrOr("role", "") {
	case "dialog", "alertdialog":
		score += 3
	}
	if n.HasAttr("aria-modal") {
		score += 2
	}
	if strings.Contains(text, "yes") && strings.Contains(text, "no") {
		score += 3
	}
	if strings.Contains(text, "fee") || strings.Contains(text, "commission") {
		score += 3
	}
	if strings.Contains(text, "contract") {
		score += 2
	}
	for _, w := range []string{"limit", "order", "buy", "sell"} {
		if strings.Contains(text, w) {
			score++
		}
	}
	if len(numericInputs(n)) > 0 {
		score += 2
	}
	if n.HasClassContaining("ticket") || n.HasClassContaining("order") {
		score += 2
	}
	return score
}

// FindTicketContainers returns ticket-shaped elements in the document,
// best-scoring first. Nested candidates collapse to the innermost element
// that still clears the threshold, so parsers see a tight subtree.
func (p *Parsers) FindTicketContainers(root *domtree.Node) []*domtree.Node {
	type candidate struct {
		node  *domtree.Node
		score int
	}
	var candidates []candidate

	root.Walk(func(n *domtree.Node) bool {
		if n.Type != domtree.ElementNode {
			return true
		}
		if s := ScoreTicketContainer(n); s >= p.opts.MinContainerScore {
			candidates = append(candidates, candidate{node: n, score: s})
		}
		return true
	})

	// Drop any candidate that contains another candidate.
	inner := make([]candidate, 0, len(candidates))
	for _, c := range candidates {
		containsOther := false
		for _, other := range candidates {
			if other.node == c.node {
				continue
			}
			if other.node.Closest(func(a *domtree.Node) bool { return a == c.node }) != nil {
				containsOther = true
				break
			}
		}
		if !containsOther {
			inner = append(inner, c)
		}
	}

	sort.SliceStable(inner, func(i, j int) bool { return inner[i].score > inner[j].score })

	out := make([]*domtree.Node, 0, len(inner))
	for _, c := range inner {
		out = append(out, c.node)
	}
	return out
}
