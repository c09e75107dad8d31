package domparse

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	oddsDomain "github.com/ORDEP81/ticketsight/business/odds/domain"
	"github.com/ORDEP81/ticketsight/business/ticket/domain"
	"github.com/ORDEP81/ticketsight/internal/domtree"
)

// feePhraseRe matches fee lines like "Fee per contract: $0.02",
// "Total fees: $0.18" or "Commission $0.18".
// Everything number-shaped is captured whole; precision and sign rules
// live in domain.ParseFeeText, not here.
var feePhraseRe = regexp.MustCompile(`(?i)\b(fees?|commission)[^$\d]{0,30}\$?\s*(\d+(?:\.\d+)?)(?:\s*¢)?`)

// perContractWording flags phrasing that scopes a fee figure to one
// contract rather than the whole order.
func perContractWording(text string) bool {
	t := strings.ToLower(text)
	return strings.Contains(t, "per contract") ||
		strings.Contains(t, "per-contract") ||
		strings.Contains(t, "each") ||
		strings.Contains(t, "/contract") ||
		strings.Contains(t, "/ contract")
}

// feeFromPhrases scans short text rows for fee phrasing. Both a total and a
// per-contract figure can appear on one ticket; both are kept so the
// consistency check sees them.
func feeFromPhrases(root *domtree.Node) (*domain.FeeInfo, bool) {
	var info *domain.FeeInfo

	root.Walk(func(n *domtree.Node) bool {
		if n.Type != domtree.ElementNode {
			return true
		}
		text := n.OwnText()
		if text == "" || len(text) > 120 {
			return true
		}
		m := feePhraseRe.FindStringSubmatch(text)
		if m == nil {
			return true
		}
		fee, err := domain.ParseFeeText(m[2])
		if err != nil {
			return true
		}

		if info == nil {
			info = &domain.FeeInfo{Source: oddsDomain.FeeSourceTicket}
		}
		if perContractWording(text) {
			if !info.PerContractFee.Valid {
				info.PerContractFee = decimal.NewNullDecimal(fee)
			}
		} else if !info.TotalFee.Valid {
			info.TotalFee = decimal.NewNullDecimal(fee)
		}
		if info.RawText == "" {
			info.RawText = text
		} else {
			info.RawText += "; " + text
		}
		return true
	})

	if info == nil {
		return nil, false
	}
	return info, true
}
