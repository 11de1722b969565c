package entity

import (
	"github.com/joseph-ayodele/estimate-parser/constants"
)

// Estimate is the reconciled result of parsing one merchant estimate.
type Estimate struct {
	VendorName    string     `json:"vendor_name"`
	VendorAddress *string    `json:"vendor_address,omitempty"`
	EstimateDate  Date       `json:"estimate_date"`
	TotalExclTax  int64      `json:"total_excl_tax"`
	TotalInclTax  int64      `json:"total_incl_tax"`
	Items         []LineItem `json:"items"`
}

// LineItem is a single priced row of an estimate. Amounts are integer minor units.
type LineItem struct {
	ItemNameRaw   string             `json:"item_name_raw"`
	ItemNameNorm  string             `json:"item_name_norm"`
	CostType      constants.CostType `json:"cost_type"`
	AmountExclTax int64              `json:"amount_excl_tax"`
	Quantity      int                `json:"quantity"`
}

// SumAmounts adds up AmountExclTax across items (per line, quantity not applied).
func SumAmounts(items []LineItem) int64 {
	var sum int64
	for _, it := range items {
		sum += it.AmountExclTax
	}
	return sum
}
