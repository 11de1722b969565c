package pipeline

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/estimate-parser/internal/entity"
	"github.com/joseph-ayodele/estimate-parser/internal/extract"
)

// totals returns (excl, incl). Supplied totals are authoritative field by field
// and are never replaced by a recomputed sum.
func (p *Parser) totals(items []entity.LineItem, ext *entity.ExternalTotals) (int64, int64) {
	var excl, incl int64
	var haveExcl, haveIncl bool
	if ext != nil {
		if ext.TotalExclTax != nil {
			excl, haveExcl = *ext.TotalExclTax, true
		}
		if ext.TotalInclTax != nil {
			incl, haveIncl = *ext.TotalInclTax, true
		}
	}
	if !haveExcl {
		excl = entity.SumAmounts(items)
	}
	if !haveIncl {
		incl = InclusiveOf(excl, p.opts.TaxRate)
	}
	return excl, incl
}

// InclusiveOf returns floor(excl × (1 + rate)).
func InclusiveOf(excl int64, rate decimal.Decimal) int64 {
	return decimal.NewFromInt(excl).Mul(decimal.NewFromInt(1).Add(rate)).Floor().IntPart()
}

// vendor: override, then upstream hint, then text/form fields, then the sentinel.
func (p *Parser) vendor(doc entity.Document, text string) string {
	if v := strings.TrimSpace(doc.VendorName); v != "" {
		return v
	}
	if v := strings.TrimSpace(doc.VendorHint); v != "" {
		return v
	}
	if v, ok := extract.DetectVendor(text, doc.FormFields); ok {
		return v
	}
	return p.opts.VendorSentinel
}

// date: upstream date, then text/form fields, then today.
func (p *Parser) date(doc entity.Document, text string) entity.Date {
	if doc.EstimateDate != nil && !doc.EstimateDate.IsZero() {
		return *doc.EstimateDate
	}
	if d, ok := extract.DetectDate(text, doc.FormFields); ok {
		return d
	}
	return entity.NewDate(p.opts.Now())
}
