package domparse

import (
	"strings"

	"github.com/ORDEP81/ticketsight/business/ticket/domain"
	"github.com/ORDEP81/ticketsight/internal/domtree"
)

// sideText maps visible button text to a contract side.
func sideText(text string) (domain.Side, bool) {
	t := strings.ToLower(text)
	switch {
	case strings.Contains(t, "yes"):
		return domain.SideYes, true
	case strings.Contains(t, "no"):
		return domain.SideNo, true
	}
	return "", false
}

// sideFromSelectedToggle finds a button-like element with an explicit
// selected state attribute and yes/no text.
func sideFromSelectedToggle(root *domtree.Node) (domain.Side, bool) {
	selected := root.FindAll(func(n *domtree.Node) bool {
		if n.Type != domtree.ElementNode {
			return false
		}
		if n.AttrOr("aria-pressed", "") == "true" || n.AttrOr("aria-selected", "") == "true" {
			return true
		}
		return n.AttrOr("data-selected", "") == "true"
	})
	for _, n := range selected {
		if side, ok := sideText(n.Text()); ok {
			return side, true
		}
	}
	return "", false
}

// sideFromIndicatorScore scores yes/no-labeled elements on weaker selection
// hints (class fragments, checked descendants) and picks a clear winner.
func sideFromIndicatorScore(root *domtree.Node) (domain.Side, bool) {
	score := func(n *domtree.Node) int {
		s := 0
		if n.HasClassContaining("selected") || n.HasClassContaining("active") {
			s += 2
		}
		if n.HasClassContaining("chosen") || n.HasClassContaining("pressed") {
			s++
		}
		if n.AttrOr("aria-checked", "") == "true" {
			s += 2
		}
		if n.HasAttr("data-active") {
			s++
		}
		return s
	}

	best := map[domain.Side]int{}
	root.Walk(func(n *domtree.Node) bool {
		if n.Type != domtree.ElementNode {
			return true
		}
		side, ok := sideText(n.OwnText())
		if !ok {
			return true
		}
		if s := score(n); s > best[side] {
			best[side] = s
		}
		return true
	})

	switch {
	case best[domain.SideYes] > 0 && best[domain.SideYes] > best[domain.SideNo]:
		return domain.SideYes, true
	case best[domain.SideNo] > 0 && best[domain.SideNo] > best[domain.SideYes]:
		return domain.SideNo, true
	}
	return "", false
}

// sideFromCheckedRadio falls back to checked radio inputs whose label text
// names a side.
func sideFromCheckedRadio(root *domtree.Node) (domain.Side, bool) {
	checked := root.FindAll(func(n *domtree.Node) bool {
		return n.IsElement("input") &&
			strings.EqualFold(n.AttrOr("type", ""), "radio") &&
			n.HasAttr("checked")
	})
	for _, n := range checked {
		if side, ok := sideText(n.AttrOr("value", "")); ok {
			return side, true
		}
		if label := n.Closest(func(p *domtree.Node) bool { return p.IsElement("label") }); label != nil {
			if side, ok := sideText(label.Text()); ok {
				return side, true
			}
		}
	}
	return "", false
}
