package extract

import (
	"github.com/joseph-ayodele/estimate-parser/internal/ocr"
)

// Fallback looks for a single plausible amount anywhere in text when no line
// items survived. Currency-marked amounts are preferred over bare numbers.
// Lines that look like phone numbers, postal codes or URLs are ignored.
func Fallback(text string, cfg Config) (Candidate, bool) {
	var generic *Candidate
	for idx, raw := range ocr.Lines(text) {
		line := ocr.NormalizeLine(raw, ocr.Options{FoldWidth: cfg.FoldWidth})
		if line == "" || rePhone.MatchString(line) || rePostal.MatchString(line) || reWeb.MatchString(line) {
			continue
		}
		for _, m := range scanAmounts(line, cfg.MaskDates) {
			if m.value < cfg.FallbackMinAmount || m.value > cfg.MaxAmount {
				continue
			}
			c := Candidate{Name: cfg.PlaceholderName, Amount: m.value, Quantity: 1, Line: idx}
			if m.tier.currencyMarked() {
				return c, true
			}
			if generic == nil {
				generic = &c
			}
		}
	}
	if generic != nil {
		return *generic, true
	}
	return Candidate{}, false
}
