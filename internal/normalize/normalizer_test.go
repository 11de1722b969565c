package normalize

import (
	"testing"

	"github.com/joseph-ayodele/estimate-parser/constants"
)

func TestNormalize(t *testing.T) {
	n := New(DefaultConfig())
	cases := []struct {
		raw  string
		want string
	}{
		{"ワイパーブレード", constants.WiperBlade},
		{"ワイパー交換工賃", constants.WiperBlade},
		{"エンジンオイル 5W-30", constants.EngineOil},
		{"オイルフィルター交換", constants.OilFilter},
		{"Air Filter", constants.AirFilter},
		{"フロントブレーキパッド", constants.BrakePad},
		{"スタッドレスタイヤ", constants.Tire},
		{"BATTERY 55B24L", constants.Battery},
		{"Oil change", constants.EngineOil},
		{"エンジン油 4L", constants.EngineOil},
		{"Oil element", constants.OilFilter},
		{"Brake shoe", constants.BrakePad},
		{"リアブレーキ調整", constants.BrakePad},
		{"Air cleaner", constants.AirFilter},
		{"蓄電池", constants.Battery},
		{"Rear blade", constants.WiperBlade},
		{"リアブレード", constants.WiperBlade},
		{"", constants.UnknownItem},
		{"   ", constants.UnknownItem},
		{"!!!", constants.UnknownItem},
		{"Spark Plug (Iridium)", "spark_plug_iridium"},
		{"洗車 サービス", "洗車_サービス"},
	}
	for _, c := range cases {
		if got := n.Normalize(c.raw); got != c.want {
			t.Errorf("Normalize(%q) = %q, want %q", c.raw, got, c.want)
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	n := New(DefaultConfig())
	inputs := []string{
		"ワイパーブレード", "engine  oil", "Oil Filter", "Spark Plug (Iridium)",
		"見積明細一式", "", "ＬＬＣ　部品", "tire_rotation", "wiper_blade",
	}
	inputs = append(inputs, constants.AsStringSlice()...)
	for _, in := range inputs {
		once := n.Normalize(in)
		if twice := n.Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q -> %q", in, once, twice)
		}
	}
	for _, slug := range constants.AsStringSlice() {
		if got := n.Normalize(slug); got != slug {
			t.Errorf("canonical slug %q normalized to %q", slug, got)
		}
	}
}

func TestNormalize_SlugForm(t *testing.T) {
	n := New(DefaultConfig())
	// punctuation is dropped before the slug is matched, so a split keyword
	// can still hit an earlier, shorter category
	cases := []struct {
		raw  string
		want string
	}{
		{"bat.tery pack", constants.Battery},
		{"battery_pack", constants.Battery},
		{"o-il change", constants.EngineOil},
		{"タ・イヤ", constants.Tire},
	}
	for _, c := range cases {
		if got := n.Normalize(c.raw); got != c.want {
			t.Errorf("Normalize(%q) = %q, want %q", c.raw, got, c.want)
		}
	}
}

func TestClassifyCostType(t *testing.T) {
	n := New(DefaultConfig())
	cases := []struct {
		raw  string
		want constants.CostType
	}{
		{"ワイパー交換工賃", constants.CostTypeLabor},
		{"Installation fee", constants.CostTypeLabor},
		{"技術料", constants.CostTypeLabor},
		{"エアフィルター", constants.CostTypeParts},
		{"自賠責保険", constants.CostTypeParts},
		{"", constants.CostTypeParts},
	}
	for _, c := range cases {
		if got := n.ClassifyCostType(c.raw); got != c.want {
			t.Errorf("ClassifyCostType(%q) = %q, want %q", c.raw, got, c.want)
		}
	}
}

func TestClassifyCostType_Statutory(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StatutoryKeywords = constants.StatutoryKeywords
	n := New(cfg)
	if got := n.ClassifyCostType("自賠責保険"); got != constants.CostTypeStatutoryFees {
		t.Fatalf("got %q", got)
	}
	if got := n.ClassifyCostType("重量税 手数料"); got != constants.CostTypeStatutoryFees {
		t.Fatalf("statutory should win over labor, got %q", got)
	}
}
