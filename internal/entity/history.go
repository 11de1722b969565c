package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/estimate-parser/constants"
)

// ParseRecord is a stored parse result.
type ParseRecord struct {
	ID         uuid.UUID          `json:"id"`
	SourceName string             `json:"source_name"`
	Strategy   constants.Strategy `json:"strategy"`
	RawText    string             `json:"raw_text,omitempty"`
	Estimate   Estimate           `json:"estimate"`
	CreatedAt  time.Time          `json:"created_at"`
}

// ParseSummary is the list view of a ParseRecord.
type ParseSummary struct {
	ID           uuid.UUID          `json:"id"`
	SourceName   string             `json:"source_name"`
	Strategy     constants.Strategy `json:"strategy"`
	VendorName   string             `json:"vendor_name"`
	EstimateDate Date               `json:"estimate_date"`
	TotalExclTax int64              `json:"total_excl_tax"`
	TotalInclTax int64              `json:"total_incl_tax"`
	ItemCount    int                `json:"item_count"`
	CreatedAt    time.Time          `json:"created_at"`
}

// PriceStat summarizes saved amounts for one normalized item and cost type, or
// for a keyword/area search when ItemNameNorm is empty.
type PriceStat struct {
	ItemNameNorm string             `json:"item_name_norm,omitempty"`
	CostType     constants.CostType `json:"cost_type,omitempty"`
	Keyword      string             `json:"keyword,omitempty"`
	Area         string             `json:"area,omitempty"`
	Average      float64            `json:"average"`
	Min          int64              `json:"min"`
	Max          int64              `json:"max"`
	Samples      int                `json:"samples"`
	Estimates    int                `json:"estimates"`
}

// ItemHit is one saved line item together with the estimate it came from.
type ItemHit struct {
	HistoryID     uuid.UUID          `json:"history_id"`
	VendorName    string             `json:"vendor_name"`
	VendorAddress *string            `json:"vendor_address,omitempty"`
	EstimateDate  Date               `json:"estimate_date"`
	ItemNameRaw   string             `json:"item_name_raw"`
	ItemNameNorm  string             `json:"item_name_norm"`
	CostType      constants.CostType `json:"cost_type"`
	AmountExclTax int64              `json:"amount_excl_tax"`
	Quantity      int                `json:"quantity"`
}

// SearchResult is a page of item hits. TotalEstimates counts distinct matching estimates.
type SearchResult struct {
	Items          []ItemHit `json:"items"`
	TotalEstimates int       `json:"total_estimates"`
}
