package extract

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
)

var tolerance = decimal.RequireFromString("0.05")

func amounts(cs []Candidate) []int64 {
	var out []int64
	for _, c := range cs {
		out = append(out, c.Amount)
	}
	return out
}

func TestFilterTotals(t *testing.T) {
	cases := []struct {
		name string
		in   []int64
		want []int64
	}{
		{"total within tolerance", []int64{1000, 2000, 3000, 5800}, []int64{1000, 2000, 3000}},
		{"exact total", []int64{3800, 2200, 6000}, []int64{3800, 2200}},
		{"no total", []int64{3800, 2200, 4800, 1500, 2800}, []int64{3800, 2200, 4800, 1500, 2800}},
		{"single", []int64{15100}, []int64{15100}},
		{"outside tolerance", []int64{1000, 2000, 3000, 5600}, []int64{1000, 2000, 3000, 5600}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var in []Candidate
			for _, a := range c.in {
				in = append(in, Candidate{Name: "x", Amount: a, Quantity: 1})
			}
			if diff := cmp.Diff(c.want, amounts(FilterTotals(in, tolerance))); diff != "" {
				t.Fatalf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFilterTotals_DecisionsUseOriginalSet(t *testing.T) {
	// Re-summing after dropping 6000 would also drop 3000 (= 1000 + 2000).
	in := []Candidate{{Amount: 1000}, {Amount: 2000}, {Amount: 3000}, {Amount: 6000}}
	got := amounts(FilterTotals(in, tolerance))
	if diff := cmp.Diff([]int64{1000, 2000, 3000}, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeDuplicates(t *testing.T) {
	in := []Candidate{
		{Name: "bolt", Amount: 500, Quantity: 1},
		{Name: "nut", Amount: 300, Quantity: 1},
		{Name: "bolt", Amount: 500, Quantity: 2},
		{Name: "bolt", Amount: 600, Quantity: 1},
	}
	want := []Candidate{
		{Name: "bolt", Amount: 500, Quantity: 3},
		{Name: "nut", Amount: 300, Quantity: 1},
		{Name: "bolt", Amount: 600, Quantity: 1},
	}
	if diff := cmp.Diff(want, MergeDuplicates(in)); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestFallback(t *testing.T) {
	cfg := DefaultConfig()
	cases := []struct {
		name   string
		text   string
		want   int64
		wantOK bool
	}{
		{"subtotal line", "御見積書\n小計 ¥15,100\n合計 ¥16,610", 15100, true},
		{"currency preferred over bare", "管理番号 48213\n合計 ¥16,610", 16610, true},
		{"bare number when nothing else", "お見積り 15100", 15100, true},
		{"below fallback minimum", "手数料 ¥500", 0, false},
		{"phone ignored", "TEL 03-1234-5678", 0, false},
		{"empty", "", 0, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, ok := Fallback(c.text, cfg)
			if ok != c.wantOK {
				t.Fatalf("ok = %v, want %v", ok, c.wantOK)
			}
			if !ok {
				return
			}
			if got.Amount != c.want || got.Quantity != 1 || got.Name != cfg.PlaceholderName {
				t.Fatalf("got %+v", got)
			}
		})
	}
}
