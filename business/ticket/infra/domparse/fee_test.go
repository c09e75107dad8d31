package domparse

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/ORDEP81/ticketsight/internal/apperror"
	"github.com/ORDEP81/ticketsight/internal/domtree"
)

type feeCase struct {
	Name            string   `yaml:"name"`
	Rows            []string `yaml:"rows"`
	WantFound       bool     `yaml:"want_found"`
	WantPerContract string   `yaml:"want_per_contract"`
	WantTotal       string   `yaml:"want_total"`
}

func loadFeeCases(t *testing.T) []feeCase {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join("testdata", "fee_cases.yaml"))
	if err != nil {
		t.Fatalf("read fixtures: %v", err)
	}
	var cases []feeCase
	if err := yaml.Unmarshal(raw, &cases); err != nil {
		t.Fatalf("decode fixtures: %v", err)
	}
	return cases
}

func feeRowsTree(rows []string) *domtree.Node {
	root := domtree.NewElement("div")
	for _, row := range rows {
		root.Append(domtree.NewElement("div").Append(domtree.NewText(row)))
	}
	return root
}

func TestParseFee(t *testing.T) {
	p := testParsers(t)
	ctx := context.Background()

	for _, tc := range loadFeeCases(t) {
		t.Run(tc.Name, func(t *testing.T) {
			fee, err := p.ParseFee(ctx, feeRowsTree(tc.Rows))
			if !tc.WantFound {
				if !apperror.IsCode(err, apperror.CodeFieldNotFound) {
					t.Fatalf("err = %v, want FIELD_NOT_FOUND", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseFee: %v", err)
			}

			if tc.WantPerContract != "" {
				want := decimal.RequireFromString(tc.WantPerContract)
				if !fee.PerContractFee.Valid || !fee.PerContractFee.Decimal.Equal(want) {
					t.Fatalf("per-contract = %v, want %s", fee.PerContractFee, want)
				}
			} else if fee.PerContractFee.Valid {
				t.Fatalf("unexpected per-contract fee %s", fee.PerContractFee.Decimal)
			}

			if tc.WantTotal != "" {
				want := decimal.RequireFromString(tc.WantTotal)
				if !fee.TotalFee.Valid || !fee.TotalFee.Decimal.Equal(want) {
					t.Fatalf("total = %v, want %s", fee.TotalFee, want)
				}
			} else if fee.TotalFee.Valid {
				t.Fatalf("unexpected total fee %s", fee.TotalFee.Decimal)
			}

			if fee.RawText == "" {
				t.Fatal("raw text not captured")
			}
		})
	}
}
