package constants

// CostType classifies a line item.
type CostType string

// Stable values (stored as-is in parsed_items.cost_type).
const (
	CostTypeParts         CostType = "parts"
	CostTypeLabor         CostType = "labor"
	CostTypeStatutoryFees CostType = "statutory_fees"
	CostTypeUnknown       CostType = "unknown"
)

// ParseCostType maps a free-form string onto the enum; anything unrecognized is unknown.
func ParseCostType(s string) CostType {
	switch CostType(s) {
	case CostTypeParts, CostTypeLabor, CostTypeStatutoryFees:
		return CostType(s)
	}
	return CostTypeUnknown
}

// Strategy names the extraction path that produced an estimate's items.
type Strategy string

const (
	StrategyPreExtracted Strategy = "pre_extracted"
	StrategyTable        Strategy = "table"
	StrategyText         Strategy = "text"
	StrategyFallback     Strategy = "fallback" // placeholder item synthesized from a lone amount
	StrategyNone         Strategy = "none"     // nothing usable, items empty
)
