package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joseph-ayodele/estimate-parser/constants"
	"github.com/joseph-ayodele/estimate-parser/internal/entity"
	"github.com/joseph-ayodele/estimate-parser/internal/ocr"
)

const (
	vendorScanLines = 10
	dateScanLines   = 20
)

var (
	vendorFieldKeys = []string{"会社名", "業者名", "店舗名", "Company", "Vendor"}
	dateFieldKeys   = []string{"見積日", "日付", "Date", "作成日"}

	datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(\d{4})\s*年\s*(\d{1,2})\s*月\s*(\d{1,2})\s*日`),
		regexp.MustCompile(`(\d{4})[/\-](\d{1,2})[/\-](\d{1,2})`),
	}
)

// DetectVendor returns the issuing company from form fields, else from the
// first lines of text carrying a legal-entity marker.
func DetectVendor(text string, fields map[string]string) (string, bool) {
	for _, k := range vendorFieldKeys {
		if v := strings.TrimSpace(fields[k]); v != "" {
			return v, true
		}
	}
	lines := ocr.Lines(text)
	if len(lines) > vendorScanLines {
		lines = lines[:vendorScanLines]
	}
	for _, line := range lines {
		for _, marker := range constants.VendorMarkers {
			if strings.Contains(line, marker) {
				return strings.TrimSpace(line), true
			}
		}
	}
	return "", false
}

// DetectDate returns the estimate date from form fields, else from the first
// lines of text. Impossible calendar dates (2024/02/30) are ignored.
func DetectDate(text string, fields map[string]string) (entity.Date, bool) {
	for _, k := range dateFieldKeys {
		if v := fields[k]; v != "" {
			if d, ok := ParseDateString(v); ok {
				return d, true
			}
		}
	}
	lines := ocr.Lines(text)
	if len(lines) > dateScanLines {
		lines = lines[:dateScanLines]
	}
	for _, line := range lines {
		if d, ok := ParseDateString(line); ok {
			return d, true
		}
	}
	return entity.Date{}, false
}

// ParseDateString finds the first YYYY年M月D日 or YYYY/M/D (or YYYY-M-D) date in s.
func ParseDateString(s string) (entity.Date, bool) {
	for _, re := range datePatterns {
		for _, m := range re.FindAllStringSubmatch(s, -1) {
			y, err1 := strconv.Atoi(m[1])
			mo, err2 := strconv.Atoi(m[2])
			d, err3 := strconv.Atoi(m[3])
			if err1 != nil || err2 != nil || err3 != nil {
				continue
			}
			t := time.Date(y, time.Month(mo), d, 0, 0, 0, 0, time.UTC)
			if t.Year() != y || int(t.Month()) != mo || t.Day() != d {
				continue
			}
			return entity.Date{Time: t}, true
		}
	}
	return entity.Date{}, false
}
