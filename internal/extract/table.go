package extract

import (
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/joseph-ayodele/estimate-parser/internal/common"
	"github.com/joseph-ayodele/estimate-parser/internal/ocr"
)

var (
	reMoneyCell   = regexp.MustCompile(`^[¥￥$]?\s*([0-9][0-9,]*)\s*[円元]?$`)
	reNumericCell = regexp.MustCompile(`^[\d,¥￥$円元.\s]+$`)
)

// TableExtractor reads candidates out of row/cell matrices. Cells are
// inspected independently; column alignment is not assumed.
type TableExtractor struct {
	cfg    Config
	logger *slog.Logger
}

func NewTableExtractor(cfg Config, logger *slog.Logger) *TableExtractor {
	return &TableExtractor{cfg: cfg, logger: common.LoggerOrDefault(logger)}
}

// Extract returns one candidate per usable row. Candidate.Line is the row index.
func (e *TableExtractor) Extract(rows [][]string) []Candidate {
	var out []Candidate
	for idx, row := range rows {
		if len(row) < 2 {
			continue
		}
		c, ok := e.extractRow(row, idx)
		if ok {
			out = append(out, c)
		}
	}
	e.logger.Debug("extract.table.done", "rows", len(rows), "candidates", len(out))
	return out
}

func (e *TableExtractor) extractRow(row []string, idx int) (Candidate, bool) {
	var (
		name      string
		amount    int64
		hasAmount bool
		qty       = 1
		hasQty    bool
	)
	for _, raw := range row {
		cell := ocr.NormalizeLine(raw, ocr.Options{FoldWidth: e.cfg.FoldWidth})
		if cell == "" {
			continue
		}
		if e.cfg.SkipSummaryRows && e.isSummary(cell) {
			e.logger.Debug("extract.table.row.skip", "row", idx, "reason", "summary")
			return Candidate{}, false
		}
		if v, money := e.cellAmount(cell); money {
			if !hasAmount && v >= e.cfg.MinAmount {
				amount, hasAmount = v, true
			}
		} else if name == "" && utf8.RuneCountInString(cell) > 2 && !reNumericCell.MatchString(cell) {
			name = cell
		}
		if !hasQty {
			if q, ok := findQuantity(cell); ok {
				qty, hasQty = q, true
			}
		}
	}
	if name == "" || !hasAmount {
		return Candidate{}, false
	}
	if amount > e.cfg.MaxAmount {
		e.logger.Debug("extract.table.row.skip", "row", idx, "reason", "above_max", "amount", amount)
		return Candidate{}, false
	}
	return Candidate{Name: name, Amount: amount, Quantity: qty, Line: idx}, true
}

// cellAmount reports whether cell holds money and, if so, the first amount in it
// of at least MinAmount. A cell that is only a number counts as money; otherwise
// a currency-marked or comma-grouped amount anywhere in the cell does, so
// "¥4,800 (4L)" and "金額 3,800" qualify while "5W-30" does not.
func (e *TableExtractor) cellAmount(cell string) (int64, bool) {
	if m := reMoneyCell.FindStringSubmatch(cell); m != nil {
		v, _ := parseAmount(m[1])
		return v, true
	}
	money := false
	for _, m := range scanAmounts(cell, e.cfg.MaskDates) {
		if m.tier > tierGrouped {
			continue
		}
		if m.value >= e.cfg.MinAmount {
			return m.value, true
		}
		money = true
	}
	return 0, money
}

func (e *TableExtractor) isSummary(cell string) bool {
	for _, kw := range e.cfg.SummaryKeywords {
		if strings.Contains(cell, kw) {
			return true
		}
	}
	return false
}
