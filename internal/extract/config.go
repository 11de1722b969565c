// Package extract turns OCR text and tables into candidate line items.
package extract

import (
	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/estimate-parser/constants"
	"github.com/joseph-ayodele/estimate-parser/internal/common"
)

// Config holds the thresholds and keyword tables used by the extractors.
type Config struct {
	MinAmount         int64
	MaxAmount         int64
	FallbackMinAmount int64
	TotalTolerance    decimal.Decimal
	PlaceholderName   string

	Denylist        []string
	SummaryKeywords []string
	SkipSummaryRows bool
	MaskDates       bool
	FoldWidth       bool
}

// DefaultConfig returns the production thresholds.
func DefaultConfig() Config {
	return Config{
		MinAmount:         100,
		MaxAmount:         1_000_000,
		FallbackMinAmount: 1000,
		TotalTolerance:    decimal.RequireFromString("0.05"),
		PlaceholderName:   constants.PlaceholderItemName,
		Denylist:          append([]string(nil), constants.DenylistKeywords...),
		SummaryKeywords:   append([]string(nil), constants.SummaryKeywords...),
		SkipSummaryRows:   true,
		MaskDates:         true,
		FoldWidth:         true,
	}
}

// ConfigFrom builds extractor settings from the application config.
func ConfigFrom(c common.ExtractionConfig) Config {
	cfg := DefaultConfig()
	cfg.MinAmount = c.MinAmount
	cfg.MaxAmount = c.MaxAmount
	cfg.FallbackMinAmount = c.FallbackMinAmount
	cfg.TotalTolerance = c.TotalTolerance
	if c.PlaceholderName != "" {
		cfg.PlaceholderName = c.PlaceholderName
	}
	cfg.SkipSummaryRows = c.SkipSummaryRows
	cfg.MaskDates = c.MaskDates
	cfg.FoldWidth = c.FoldWidth
	return cfg
}

func (c Config) inRange(v int64) bool {
	return v >= c.MinAmount && v <= c.MaxAmount
}

// Candidate is a provisional item produced by an extractor.
type Candidate struct {
	Name     string
	Amount   int64
	Quantity int
	// CostType is set only when an upstream extractor already decided it.
	CostType constants.CostType
	// Line is the source line index for text candidates, the row index for table candidates.
	Line int
}
