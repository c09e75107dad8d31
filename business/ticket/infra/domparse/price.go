package domparse

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ORDEP81/ticketsight/business/ticket/domain"
	"github.com/ORDEP81/ticketsight/internal/domtree"
)

var priceTextRe = regexp.MustCompile(`\$\s*(0?\.\d{1,2}|1\.00?|1)\b`)

// priceFromLabeledInput reads inputs whose label mentions price wording.
func priceFromLabeledInput(root *domtree.Node) (decimal.Decimal, bool) {
	for _, in := range numericInputs(root) {
		if !labelMentions(inputLabel(in), "price", "limit", "per contract", "contract price") {
			continue
		}
		if price, err := domain.ParsePriceText(inputValue(in)); err == nil {
			return price, true
		}
	}
	return decimal.Zero, false
}

// priceFromBoundedInput accepts any numeric input whose value already sits
// inside the contract price band. Quantity inputs never do: quantities are
// integers >= 1 and prices top out at 1.00, so only an exact 1 is ambiguous,
// which the label check above resolves first.
func priceFromBoundedInput(root *domtree.Node) (decimal.Decimal, bool) {
	for _, in := range numericInputs(root) {
		price, err := domain.ParsePriceText(inputValue(in))
		if err != nil {
			continue
		}
		if price.Equal(decimal.NewFromInt(1)) && !labelMentions(inputLabel(in), "price", "limit") {
			continue
		}
		return price, true
	}
	return decimal.Zero, false
}

// priceFromNearbyText scans short visible text for a dollar amount in the
// price band, skipping fee phrasing so a "$0.18 fee" line is never read as
// the contract price.
func priceFromNearbyText(root *domtree.Node) (decimal.Decimal, bool) {
	var found decimal.Decimal
	ok := false
	root.Walk(func(n *domtree.Node) bool {
		if n.Type != domtree.ElementNode || len(n.Children()) == 0 {
			return true
		}
		text := n.OwnText()
		if text == "" || len(text) > 80 {
			return true
		}
		if labelMentions(strings.ToLower(text), "fee", "commission", "cost", "total") {
			return true
		}
		m := priceTextRe.FindStringSubmatch(text)
		if m == nil {
			return true
		}
		price, err := domain.ParsePriceText(m[1])
		if err != nil {
			return true
		}
		found, ok = price, true
		return false
	})
	return found, ok
}
