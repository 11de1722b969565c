package entity

// ExternalItem is a line item supplied by an upstream extractor (vision model, human entry).
type ExternalItem struct {
	ItemNameRaw   string `json:"item_name_raw"`
	AmountExclTax int64  `json:"amount_excl_tax"`
	Quantity      int    `json:"quantity"`
	CostType      string `json:"cost_type,omitempty"`
}

// ExternalTotals carries totals reported by the upstream extractor. Nil fields are unknown.
type ExternalTotals struct {
	TotalExclTax *int64 `json:"total_amount_excl_tax,omitempty"`
	TotalInclTax *int64 `json:"total_amount_incl_tax,omitempty"`
}

// Document is everything known about one estimate before extraction.
type Document struct {
	SourceName string `json:"source_name,omitempty"`
	RawText    string `json:"raw_text"`
	// Tables holds zero or more tables; each table is rows of cell strings.
	Tables [][][]string `json:"tables,omitempty"`

	PreExtractedItems  []ExternalItem  `json:"-"`
	PreExtractedTotals *ExternalTotals `json:"-"`

	// FormFields are key/value pairs from a form-parsing OCR service (会社名, 見積日, ...).
	FormFields map[string]string `json:"form_fields,omitempty"`

	// VendorName overrides any detected vendor when non-empty.
	VendorName string `json:"vendor_name,omitempty"`
	// Hints from the upstream extractor; used when present and VendorName is empty.
	VendorHint    string `json:"-"`
	VendorAddress string `json:"-"`
	EstimateDate  *Date  `json:"-"`
}

// HasPreExtracted reports whether an upstream item list was supplied.
func (d Document) HasPreExtracted() bool {
	return len(d.PreExtractedItems) > 0
}
