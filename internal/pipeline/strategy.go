package pipeline

import (
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/estimate-parser/constants"
	"github.com/joseph-ayodele/estimate-parser/internal/entity"
	"github.com/joseph-ayodele/estimate-parser/internal/extract"
)

// extractItems runs the strategies in order and stops at the first non-empty result.
// A supplied pre-extracted list is final even when none of its entries survive.
func (p *Parser) extractItems(doc entity.Document, text string, log *slog.Logger) ([]entity.LineItem, constants.Strategy) {
	if doc.HasPreExtracted() {
		items := p.fromPreExtracted(doc.PreExtractedItems)
		log.Debug("pipeline.strategy.pre_extracted", "supplied", len(doc.PreExtractedItems), "kept", len(items))
		if len(items) == 0 {
			log.Warn("pipeline.strategy.pre_extracted.empty", "supplied", len(doc.PreExtractedItems))
		}
		return items, constants.StrategyPreExtracted
	}

	if len(doc.Tables) > 0 {
		var cands []extract.Candidate
		for _, t := range doc.Tables {
			cands = append(cands, p.table.Extract(t)...)
		}
		merged := extract.MergeDuplicates(cands)
		log.Debug("pipeline.strategy.table", "tables", len(doc.Tables), "candidates", len(cands), "merged", len(merged))
		if len(merged) > 0 {
			return p.toLineItems(merged), constants.StrategyTable
		}
	}

	cands := p.text.Extract(text)
	filtered := extract.FilterTotals(cands, p.opts.Extract.TotalTolerance)
	merged := extract.MergeDuplicates(filtered)
	log.Debug("pipeline.strategy.text",
		"candidates", len(cands),
		"after_total_filter", len(filtered),
		"after_merge", len(merged),
	)
	if len(merged) > 0 {
		return p.toLineItems(merged), constants.StrategyText
	}

	if c, ok := extract.Fallback(text, p.opts.Extract); ok {
		log.Debug("pipeline.strategy.fallback", "amount", c.Amount, "line", c.Line)
		return p.toLineItems([]extract.Candidate{c}), constants.StrategyFallback
	}

	log.Warn("pipeline.strategy.none", "text_len", len(text))
	return []entity.LineItem{}, constants.StrategyNone
}

func (p *Parser) toLineItems(cands []extract.Candidate) []entity.LineItem {
	items := make([]entity.LineItem, 0, len(cands))
	for _, c := range cands {
		qty := c.Quantity
		if qty < 1 {
			qty = 1
		}
		costType := c.CostType
		if costType == "" {
			costType = p.normalizer.ClassifyCostType(c.Name)
		}
		items = append(items, entity.LineItem{
			ItemNameRaw:   c.Name,
			ItemNameNorm:  p.normalizer.Normalize(c.Name),
			CostType:      costType,
			AmountExclTax: c.Amount,
			Quantity:      qty,
		})
	}
	return items
}

// fromPreExtracted trusts upstream items except for entries that cannot be
// valid line items. Only statutory_fees survives from the supplied cost type.
func (p *Parser) fromPreExtracted(in []entity.ExternalItem) []entity.LineItem {
	cands := make([]extract.Candidate, 0, len(in))
	for _, it := range in {
		name := strings.TrimSpace(it.ItemNameRaw)
		if name == "" || it.AmountExclTax <= 0 {
			continue
		}
		c := extract.Candidate{Name: name, Amount: it.AmountExclTax, Quantity: it.Quantity}
		if constants.ParseCostType(it.CostType) == constants.CostTypeStatutoryFees {
			c.CostType = constants.CostTypeStatutoryFees
		}
		cands = append(cands, c)
	}
	return p.toLineItems(extract.MergeDuplicates(cands))
}
