package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/estimate-parser/internal/common"
	"github.com/joseph-ayodele/estimate-parser/internal/entity"
)

// Payload is the decoded output of the upstream vision extractor.
type Payload struct {
	Items         []entity.ExternalItem `json:"items"`
	TotalExclTax  *int64                `json:"total_amount_excl_tax,omitempty"`
	TotalInclTax  *int64                `json:"total_amount_incl_tax,omitempty"`
	VendorName    string                `json:"vendor_name,omitempty"`
	VendorAddress string                `json:"vendor_address,omitempty"`
	EstimateDate  *entity.Date          `json:"estimate_date,omitempty"`
}

// DecodePayload sanitizes raw, validates it against BuildEstimateJSONSchema and decodes it.
func DecodePayload(raw []byte, logger *slog.Logger) (Payload, error) {
	clean, _, err := NormalizeAndSanitizeJSON(raw, logger)
	if err != nil {
		return Payload{}, common.NewAppError("INVALID_PAYLOAD", "pre-extracted payload is not a JSON object", fmt.Errorf("%w: %v", common.ErrInvalidInput, err))
	}
	if err := ValidateJSONAgainstSchema(BuildEstimateJSONSchema(), clean); err != nil {
		return Payload{}, common.NewAppError("INVALID_PAYLOAD", "pre-extracted payload failed validation", fmt.Errorf("%w: %v", common.ErrValidation, err))
	}
	var p Payload
	if err := json.Unmarshal(clean, &p); err != nil {
		return Payload{}, common.NewAppError("INVALID_PAYLOAD", "decode pre-extracted payload", fmt.Errorf("%w: %v", common.ErrValidation, err))
	}
	for i := range p.Items {
		if p.Items[i].Quantity < 1 {
			p.Items[i].Quantity = 1
		}
	}
	return p, nil
}

// ApplyTo copies the payload into doc's pre-extracted fields.
func (p Payload) ApplyTo(doc *entity.Document) {
	doc.PreExtractedItems = p.Items
	if p.TotalExclTax != nil || p.TotalInclTax != nil {
		doc.PreExtractedTotals = &entity.ExternalTotals{TotalExclTax: p.TotalExclTax, TotalInclTax: p.TotalInclTax}
	}
	doc.VendorHint = p.VendorName
	doc.VendorAddress = p.VendorAddress
	doc.EstimateDate = p.EstimateDate
}
