package extract

import (
	"log/slog"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/joseph-ayodele/estimate-parser/internal/common"
	"github.com/joseph-ayodele/estimate-parser/internal/ocr"
)

var (
	rePhone  = regexp.MustCompile(`\d{2,4}[-\s]\d{2,4}[-\s]\d{4}`)
	rePostal = regexp.MustCompile(`〒\s*\d{3}[-\s]\d{4}`)
	reWeb    = regexp.MustCompile(`(?i)(https?://|www\.|@[\w.-]+\.(com|jp|net|org))`)
)

// TextExtractor pulls candidates out of free OCR text, one or more per line.
type TextExtractor struct {
	cfg    Config
	logger *slog.Logger
}

func NewTextExtractor(cfg Config, logger *slog.Logger) *TextExtractor {
	return &TextExtractor{cfg: cfg, logger: common.LoggerOrDefault(logger)}
}

// Extract scans every line of text. Candidate.Line is the line index.
func (e *TextExtractor) Extract(text string) []Candidate {
	var out []Candidate
	for idx, raw := range ocr.Lines(text) {
		line := ocr.NormalizeLine(raw, ocr.Options{FoldWidth: e.cfg.FoldWidth})
		if reason := e.rejectReason(line); reason != "" {
			if line != "" {
				e.logger.Debug("extract.text.line.skip", "line", idx, "reason", reason)
			}
			continue
		}
		out = append(out, e.extractLine(line, idx)...)
	}
	e.logger.Debug("extract.text.done", "candidates", len(out))
	return out
}

func (e *TextExtractor) rejectReason(line string) string {
	switch {
	case utf8.RuneCountInString(line) < 3:
		return "short"
	case rePhone.MatchString(line):
		return "phone"
	case rePostal.MatchString(line):
		return "postal"
	case reWeb.MatchString(line):
		return "url_or_email"
	}
	for _, kw := range e.cfg.Denylist {
		if strings.Contains(line, kw) {
			return "keyword:" + kw
		}
	}
	return ""
}

func (e *TextExtractor) extractLine(line string, idx int) []Candidate {
	matches := scanAmounts(line, e.cfg.MaskDates)
	if len(matches) == 0 {
		return nil
	}
	qty := quantityOf(line)

	var out []Candidate
	prevEnd := 0
	for _, m := range matches {
		if !e.cfg.inRange(m.value) {
			e.logger.Debug("extract.text.amount.out_of_range", "line", idx, "amount", m.value)
			continue
		}
		name := trimItemName(line[prevEnd:m.start])
		prevEnd = m.end
		if utf8.RuneCountInString(name) < 2 {
			name = e.cfg.PlaceholderName
		}
		out = append(out, Candidate{Name: name, Amount: m.value, Quantity: qty, Line: idx})
	}
	return out
}

// trimItemName drops trailing connector symbols ("+", "-") and whitespace.
func trimItemName(s string) string {
	s = strings.TrimRightFunc(s, func(r rune) bool {
		return r == '+' || r == '-' || unicode.IsSpace(r)
	})
	return strings.TrimSpace(s)
}
