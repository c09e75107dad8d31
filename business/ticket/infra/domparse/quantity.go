package domparse

import (
	"regexp"
	"strings"

	"github.com/ORDEP81/ticketsight/business/ticket/domain"
	"github.com/ORDEP81/ticketsight/internal/domtree"
)

var quantityPhraseRe = regexp.MustCompile(`(?i)\b(\d{1,5})\s+contracts?\b`)

// quantityFromLabeledInput reads inputs whose label mentions quantity
// wording.
func quantityFromLabeledInput(root *domtree.Node) (int, bool) {
	for _, in := range numericInputs(root) {
		if !labelMentions(inputLabel(in), "quantity", "contracts", "amount", "shares", "qty") {
			continue
		}
		if qty, err := domain.ParseQuantityText(inputValue(in)); err == nil {
			return qty, true
		}
	}
	return 0, false
}

// quantityFromPhrase scans visible text for an "N contracts" phrase.
func quantityFromPhrase(root *domtree.Node) (int, bool) {
	m := quantityPhraseRe.FindStringSubmatch(root.Text())
	if m == nil {
		return 0, false
	}
	qty, err := domain.ParseQuantityText(m[1])
	if err != nil {
		return 0, false
	}
	return qty, true
}

// quantityFromWeakIndicators accepts an unlabeled integer input only when
// enough structural hints agree it is the contract count: stepper buttons
// beside it, an integer step attribute, or an order-row ancestor. A single
// hint is never enough on its own.
func (p *Parsers) quantityFromWeakIndicators(root *domtree.Node) (int, bool) {
	for _, in := range numericInputs(root) {
		qty, err := domain.ParseQuantityText(inputValue(in))
		if err != nil {
			continue
		}

		signals := 0
		if strings.EqualFold(in.AttrOr("type", ""), "number") {
			signals++
		}
		if step := in.AttrOr("step", ""); step == "1" {
			signals++
		}
		if hasStepperSiblings(in) {
			signals++
		}
		if row := in.Closest(func(a *domtree.Node) bool {
			return a.HasClassContaining("quantity") || a.HasClassContaining("contracts")
		}); row != nil {
			signals++
		}
		if signals >= p.opts.QuantityMinWeakSignals {
			return qty, true
		}
	}
	return 0, false
}

// hasStepperSiblings reports increment/decrement buttons next to an input.
func hasStepperSiblings(in *domtree.Node) bool {
	parent := in.Parent()
	if parent == nil {
		return false
	}
	for _, sib := range parent.Children() {
		if !sib.IsElement("button") {
			continue
		}
		t := strings.TrimSpace(sib.Text())
		if t == "+" || t == "-" || t == "−" {
			return true
		}
	}
	return false
}
