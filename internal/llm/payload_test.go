package llm

import (
	"errors"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/joseph-ayodele/estimate-parser/internal/common"
	"github.com/joseph-ayodele/estimate-parser/internal/entity"
)

func TestDecodePayload(t *testing.T) {
	raw := []byte(`{
		"line_items": [
			{"name": " ワイパーブレード ", "amount": "¥3,800", "qty": 2, "cost_type": "Parts"},
			{"item_name_raw": "自賠責保険", "amount_excl_tax": 17650, "cost_type": "statutory_fees"},
			{"item_name_raw": "", "amount_excl_tax": 100},
			{"item_name_raw": "謎", "amount_excl_tax": "n/a"}
		],
		"subtotal": "21,450",
		"total_amount_incl_tax": null,
		"vendor_name": "株式会社サンプル自動車",
		"estimate_date": "2024年5月1日",
		"confidence": 0.9
	}`)

	p, err := DecodePayload(raw, nil)
	if err != nil {
		t.Fatalf("DecodePayload: %v", err)
	}
	wantItems := []entity.ExternalItem{
		{ItemNameRaw: "ワイパーブレード", AmountExclTax: 3800, Quantity: 2, CostType: "parts"},
		{ItemNameRaw: "自賠責保険", AmountExclTax: 17650, Quantity: 1, CostType: "statutory_fees"},
	}
	if diff := cmp.Diff(wantItems, p.Items); diff != "" {
		t.Fatalf("items mismatch (-want +got):\n%s", diff)
	}
	if p.TotalExclTax == nil || *p.TotalExclTax != 21450 {
		t.Fatalf("total excl = %v", p.TotalExclTax)
	}
	if p.TotalInclTax != nil {
		t.Fatalf("null total should be dropped, got %d", *p.TotalInclTax)
	}
	if p.EstimateDate == nil || p.EstimateDate.String() != "2024-05-01" {
		t.Fatalf("date = %v", p.EstimateDate)
	}

	var doc entity.Document
	p.ApplyTo(&doc)
	if !doc.HasPreExtracted() || doc.VendorHint != "株式会社サンプル自動車" {
		t.Fatalf("ApplyTo did not populate document: %+v", doc)
	}
	if doc.PreExtractedTotals == nil || doc.PreExtractedTotals.TotalInclTax != nil {
		t.Fatalf("totals = %+v", doc.PreExtractedTotals)
	}
}

func TestDecodePayload_Errors(t *testing.T) {
	t.Run("not json", func(t *testing.T) {
		_, err := DecodePayload([]byte(`[`), nil)
		if !errors.Is(err, common.ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})
	t.Run("missing items", func(t *testing.T) {
		_, err := DecodePayload([]byte(`{"vendor_name":"x"}`), nil)
		if !errors.Is(err, common.ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
	})
	t.Run("negative total", func(t *testing.T) {
		_, err := DecodePayload([]byte(`{"items":[],"total_amount_excl_tax":-5}`), nil)
		if !errors.Is(err, common.ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
	})
}

func TestNormalizeAndSanitizeJSON_ReportsDrops(t *testing.T) {
	_, dropped, err := NormalizeAndSanitizeJSON([]byte(`{"items":[],"foo":1,"vendor_name":"  "}`), nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"foo(unknown)", "vendor_name(empty)"} {
		if !slices.Contains(dropped, want) {
			t.Errorf("dropped %v missing %q", dropped, want)
		}
	}
}

func TestParseMoneyString(t *testing.T) {
	cases := map[string]int64{"¥3,800": 3800, "3800円": 3800, " 3,800.00 ": 3800, "$12": 12}
	for in, want := range cases {
		got, ok := parseMoneyString(in)
		if !ok || got != want {
			t.Errorf("parseMoneyString(%q) = %d,%v want %d", in, got, ok, want)
		}
	}
	if _, ok := parseMoneyString("n/a"); ok {
		t.Error("n/a should not parse")
	}
}
