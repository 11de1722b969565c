package extract

import (
	"regexp"
	"strconv"
)

var quantityPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:^|[^A-Za-z])[x×]\s*(\d+)`), // x2, ×3 (not the tail of a word like "box")
	regexp.MustCompile(`(\d+)\s*[個本枚台式]`),          // 2個, 4本
	regexp.MustCompile(`数量\s*[:：]?\s*(\d+)`),        // 数量:2
}

// findQuantity returns the first quantity hint in s, trying patterns in order.
func findQuantity(s string) (int, bool) {
	for _, re := range quantityPatterns {
		m := re.FindStringSubmatch(s)
		if m == nil {
			continue
		}
		q, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if q < 1 {
			q = 1
		}
		return q, true
	}
	return 0, false
}

// quantityOf is findQuantity with the default of 1.
func quantityOf(s string) int {
	if q, ok := findQuantity(s); ok {
		return q
	}
	return 1
}
