package extract

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func values(ms []amountMatch) []int64 {
	var out []int64
	for _, m := range ms {
		out = append(out, m.value)
	}
	return out
}

func TestScanAmounts(t *testing.T) {
	cases := []struct {
		name string
		line string
		want []int64
	}{
		{"yen prefix", "ワイパーブレード ¥3,800", []int64{3800}},
		{"full width yen", "ワイパー ￥2,200", []int64{2200}},
		{"dollar", "Wiper blade $1,200", []int64{1200}},
		{"yen suffix", "オイル交換工賃 1,500円", []int64{1500}},
		{"grouped generic", "エアフィルター 2,800", []int64{2800}},
		{"bare four digits", "バッテリー 12800", []int64{12800}},
		{"three bare digits ignored", "部品 800", nil},
		{"multiple per line", "工賃 ¥2,200 部品 ¥3,800", []int64{2200, 3800}},
		{"hyphenated part id ignored", "品番 SJ5-056597 ワイパー", nil},
		{"phone-like ignored", "048-754-2040", nil},
		{"broken group keeps valid prefix", "12,345,6789", []int64{12345, 6789}},
		{"trailing comma group", "部品 1,234, 他", []int64{1234}},
		{"date masked", "2024/05/01 点検 ¥5,000", []int64{5000}},
		{"kanji date masked", "2024年5月1日", nil},
		{"model code not an amount", "エンジンオイル 5W-30 ¥4,800", []int64{4800}},
		{"empty digit group skipped", "¥,,, 部品 3,000円", []int64{3000}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := values(scanAmounts(c.line, true))
			if diff := cmp.Diff(c.want, got); diff != "" {
				t.Fatalf("scanAmounts(%q) mismatch (-want +got):\n%s", c.line, diff)
			}
		})
	}
}

func TestScanAmounts_OverlapKeepsCurrencyTier(t *testing.T) {
	ms := scanAmounts("ワイパー ¥3,800", true)
	if len(ms) != 1 {
		t.Fatalf("expected a single match, got %d", len(ms))
	}
	if ms[0].tier != tierCurrencyPrefix {
		t.Fatalf("tier = %d", ms[0].tier)
	}
}

func TestScanAmounts_DatesUnmasked(t *testing.T) {
	got := values(scanAmounts("2024年 点検", false))
	if diff := cmp.Diff([]int64{2024}, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestFindQuantity(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"ワイパー x2", 2, true},
		{"ワイパー ×3 ¥3,800", 3, true},
		{"タイヤ 4本", 4, true},
		{"数量：5", 5, true},
		{"数量 0", 1, true},
		{"box of parts", 0, false},
		{"部品 ¥3,800", 0, false},
	}
	for _, c := range cases {
		got, ok := findQuantity(c.in)
		if got != c.want || ok != c.ok {
			t.Errorf("findQuantity(%q) = %d,%v want %d,%v", c.in, got, ok, c.want, c.ok)
		}
	}
}
