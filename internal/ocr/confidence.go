package ocr

import (
	"regexp"
	"strings"
)

var (
	reDate   = regexp.MustCompile(`\d{4}\s*[年/\-]\s*\d{1,2}\s*[月/\-]\s*\d{1,2}`)
	reCurr   = regexp.MustCompile(`[¥￥$]|円`)
	reAmount = regexp.MustCompile(`\d{1,3}(,\d{3})+|\d{4,}`)
	reVendor = regexp.MustCompile(`株式会社|有限会社|合同会社`)
)

func hasDatePattern(s string) bool     { return reDate.MatchString(s) }
func hasCurrencyPattern(s string) bool { return reCurr.MatchString(s) }
func hasAmountPattern(s string) bool   { return reAmount.MatchString(s) }
func hasVendorPattern(s string) bool   { return reVendor.MatchString(s) }

// Confidence scores how much txt looks like an estimate, in [0,1].
// Used for diagnostics only; extraction never branches on it.
func Confidence(txt string) float32 {
	if strings.TrimSpace(txt) == "" {
		return 0
	}
	score := float32(0.2)
	if hasDatePattern(txt) {
		score += 0.15
	}
	if hasCurrencyPattern(txt) {
		score += 0.2
	}
	if hasAmountPattern(txt) {
		score += 0.2
	}
	if hasVendorPattern(txt) {
		score += 0.15
	}
	if len([]rune(txt)) > 60 {
		score += 0.1
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}
