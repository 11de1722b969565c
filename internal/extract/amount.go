package extract

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

type tier int

const (
	tierCurrencyPrefix tier = iota + 1
	tierCurrencySuffix
	tierGrouped
	tierBare
)

func (t tier) currencyMarked() bool { return t <= tierCurrencySuffix }

type amountMatch struct {
	start, end int // byte span of the whole match in the line
	value      int64
	tier       tier
}

var (
	reCurrencyPrefix = regexp.MustCompile(`[¥￥$]\s*([0-9,]+)`)
	reCurrencySuffix = regexp.MustCompile(`([0-9,]+)\s*[円元]`)

	reDateToken = regexp.MustCompile(`\d{4}\s*年\s*\d{1,2}\s*月(?:\s*\d{1,2}\s*日)?|\d{4}[/\-.]\d{1,2}[/\-.]\d{1,2}|(?:令和|平成)\s*\d{1,2}\s*年(?:\s*\d{1,2}\s*月)?(?:\s*\d{1,2}\s*日)?`)
)

// parseAmount strips grouping commas and parses a non-negative integer.
func parseAmount(s string) (int64, bool) {
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

// maskDates blanks out date tokens byte-for-byte so spans stay aligned with the original line.
func maskDates(line string) string {
	return reDateToken.ReplaceAllStringFunc(line, func(m string) string {
		return strings.Repeat(" ", len(m))
	})
}

// scanAmounts returns every amount in line, left to right. Overlapping matches
// collapse onto the most confident tier.
func scanAmounts(line string, mask bool) []amountMatch {
	if mask {
		line = maskDates(line)
	}
	var all []amountMatch
	all = append(all, regexMatches(line, reCurrencyPrefix, tierCurrencyPrefix)...)
	all = append(all, regexMatches(line, reCurrencySuffix, tierCurrencySuffix)...)
	all = append(all, guardedMatches(line)...)
	if len(all) == 0 {
		return nil
	}

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].start != all[j].start {
			return all[i].start < all[j].start
		}
		return all[i].tier < all[j].tier
	})
	var out []amountMatch
	for _, m := range all {
		if n := len(out); n > 0 && m.start < out[n-1].end {
			if m.tier < out[n-1].tier {
				out[n-1] = m
			}
			continue
		}
		out = append(out, m)
	}
	return out
}

func regexMatches(line string, re *regexp.Regexp, t tier) []amountMatch {
	var out []amountMatch
	for _, idx := range re.FindAllStringSubmatchIndex(line, -1) {
		v, ok := parseAmount(line[idx[2]:idx[3]])
		if !ok {
			continue
		}
		out = append(out, amountMatch{start: idx[0], end: idx[1], value: v, tier: t})
	}
	return out
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// guarded reports whether the byte at i (if any) may border a generic number.
func guarded(line string, i int) bool {
	if i < 0 || i >= len(line) {
		return true
	}
	return !isDigit(line[i]) && line[i] != '-'
}

// guardedMatches finds comma-grouped numbers (1,000 / 100,000) and bare runs of
// four or more digits that do not touch another digit or a hyphen on either side.
// A grouped number followed by a broken group keeps its longest valid prefix.
func guardedMatches(line string) []amountMatch {
	var out []amountMatch
	for i := 0; i < len(line); {
		if !isDigit(line[i]) || !guarded(line, i-1) {
			i++
			continue
		}
		run := i
		for run < len(line) && isDigit(line[run]) {
			run++
		}
		if m, ok := groupedAt(line, i, run); ok {
			out = append(out, m)
			i = m.end
			continue
		}
		if run-i >= 4 && guarded(line, run) {
			if v, ok := parseAmount(line[i:run]); ok {
				out = append(out, amountMatch{start: i, end: run, value: v, tier: tierBare})
			}
		}
		i = run
	}
	return out
}

// groupedAt tries a comma-grouped number whose leading digits span [start, run).
func groupedAt(line string, start, run int) (amountMatch, bool) {
	if run-start > 3 {
		return amountMatch{}, false
	}
	var ends []int
	for p := run; p+4 <= len(line) && line[p] == ',' &&
		isDigit(line[p+1]) && isDigit(line[p+2]) && isDigit(line[p+3]); p += 4 {
		ends = append(ends, p+4)
	}
	for k := len(ends) - 1; k >= 0; k-- {
		if !guarded(line, ends[k]) {
			continue
		}
		v, ok := parseAmount(line[start:ends[k]])
		if !ok {
			return amountMatch{}, false
		}
		return amountMatch{start: start, end: ends[k], value: v, tier: tierGrouped}, true
	}
	return amountMatch{}, false
}
