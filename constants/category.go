package constants

// CategoryRule maps a canonical item slug to the keywords that identify it.
type CategoryRule struct {
	Slug     string
	Keywords []string
}

const (
	WiperBlade = "wiper_blade"
	OilFilter  = "oil_filter"
	AirFilter  = "air_filter"
	EngineOil  = "engine_oil"
	BrakePad   = "brake_pad"
	Tire       = "tire"
	Battery    = "battery"

	UnknownItem = "unknown"
)

// Order matters: the first rule with a matching keyword wins, so the filters
// sit ahead of engine_oil ("オイルフィルター" also contains "オイル").
var allCategories = []CategoryRule{
	{Slug: WiperBlade, Keywords: []string{"wiper_blade", "ワイパーブレード", "ワイパー", "wiper blade", "wiper", "ブレード", "blade"}},
	{Slug: OilFilter, Keywords: []string{"oil_filter", "オイルフィルター", "オイルエレメント", "oil filter", "oil element"}},
	{Slug: AirFilter, Keywords: []string{"air_filter", "エアフィルター", "エアクリーナー", "エアエレメント", "air filter", "air cleaner"}},
	{Slug: EngineOil, Keywords: []string{"engine_oil", "エンジンオイル", "オイル", "engine oil", "motor oil", "エンジン油", "oil"}},
	{Slug: BrakePad, Keywords: []string{"brake_pad", "ブレーキパッド", "パッド", "brake pad", "ブレーキ", "brake"}},
	{Slug: Tire, Keywords: []string{"tire", "タイヤ", "tyre"}},
	{Slug: Battery, Keywords: []string{"battery", "バッテリー", "蓄電池"}},
}

// DefaultCategories returns a copy of the built-in category table in match order.
func DefaultCategories() []CategoryRule {
	out := make([]CategoryRule, len(allCategories))
	for i, c := range allCategories {
		out[i] = CategoryRule{Slug: c.Slug, Keywords: append([]string(nil), c.Keywords...)}
	}
	return out
}

// AsStringSlice lists the canonical slugs.
func AsStringSlice() []string {
	result := make([]string, len(allCategories))
	for i, cat := range allCategories {
		result[i] = cat.Slug
	}
	return result
}
