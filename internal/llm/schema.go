package llm

// BuildEstimateJSONSchema returns the JSON-Schema (draft 2020-12 subset) of the
// payload produced by the upstream vision extractor, as a generic map.
func BuildEstimateJSONSchema() map[string]any {
	item := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"item_name_raw":   map[string]any{"type": "string", "minLength": 1},
			"amount_excl_tax": amountProp(),
			"quantity":        map[string]any{"type": "integer", "minimum": 1},
			"cost_type": map[string]any{
				"type": "string",
				"enum": []string{"parts", "labor", "statutory_fees", "other"},
			},
		},
		"required": []string{"item_name_raw", "amount_excl_tax"},
	}
	props := map[string]any{
		"items":                 map[string]any{"type": "array", "items": item},
		"total_amount_excl_tax": amountProp(),
		"total_amount_incl_tax": amountProp(),
		"vendor_name":           map[string]any{"type": "string", "minLength": 1},
		"vendor_address":        map[string]any{"type": "string"},
		"estimate_date":         map[string]any{"type": "string", "pattern": `^\d{4}-\d{2}-\d{2}$`},
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             []string{"items"},
	}
}

// Amounts are integer minor units.
func amountProp() map[string]any {
	return map[string]any{"type": "integer", "minimum": 0}
}
