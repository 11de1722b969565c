package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"math"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/estimate-parser/internal/extract"
)

var (
	topLevelAllowed = map[string]struct{}{
		"items": {}, "total_amount_excl_tax": {}, "total_amount_incl_tax": {},
		"vendor_name": {}, "vendor_address": {}, "estimate_date": {},
	}
	itemAllowed = map[string]struct{}{
		"item_name_raw": {}, "amount_excl_tax": {}, "quantity": {}, "cost_type": {},
	}
	costTypeSynonyms = map[string]string{
		"part": "parts", "parts": "parts",
		"labor": "labor", "labour": "labor", "service": "labor",
		"statutory": "statutory_fees", "statutory_fee": "statutory_fees", "statutory_fees": "statutory_fees",
		"fees": "other", "other": "other",
	}
)

// NormalizeAndSanitizeJSON
// - Renames known synonyms (subtotal -> total_amount_excl_tax, name -> item_name_raw)
// - Drops null/empty optionals
// - Coerces money-ish fields ("¥3,800", 3800.0) to integers
// - Removes unknown keys (strict additionalProperties = false friendliness)
// - Drops items with no usable name or amount
func NormalizeAndSanitizeJSON(raw []byte, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	var dropped []string
	note := func(s string) { dropped = append(dropped, s) }

	rename(m, "line_items", "items", note)
	rename(m, "subtotal", "total_amount_excl_tax", note)
	rename(m, "total_excl_tax", "total_amount_excl_tax", note)
	rename(m, "total", "total_amount_incl_tax", note)
	rename(m, "total_incl_tax", "total_amount_incl_tax", note)
	rename(m, "vendor", "vendor_name", note)
	rename(m, "date", "estimate_date", note)

	for _, k := range []string{"total_amount_excl_tax", "total_amount_incl_tax"} {
		coerceInt(m, k, note)
	}

	for _, k := range []string{"vendor_name", "vendor_address"} {
		trimString(m, k, note)
	}
	if v, ok := m["estimate_date"].(string); ok {
		if d, ok := extract.ParseDateString(v); ok {
			m["estimate_date"] = d.String()
		} else {
			delete(m, "estimate_date")
			note("estimate_date(format)")
		}
	} else if _, present := m["estimate_date"]; present {
		delete(m, "estimate_date")
		note("estimate_date(type)")
	}

	if rawItems, ok := m["items"].([]any); ok {
		items := make([]any, 0, len(rawItems))
		for i, it := range rawItems {
			im, ok := it.(map[string]any)
			if !ok {
				note(fmt.Sprintf("items[%d](type)", i))
				continue
			}
			if sanitizeItem(im, i, note) {
				items = append(items, im)
			}
		}
		m["items"] = items
	} else if v, present := m["items"]; present && v == nil {
		m["items"] = []any{}
		note("items(null)")
	}

	for k := range maps.Clone(m) {
		if _, ok := topLevelAllowed[k]; !ok {
			delete(m, k)
			note(k + "(unknown)")
		}
	}

	out, err := json.Marshal(m)
	if err != nil {
		return nil, dropped, fmt.Errorf("sanitize: encode: %w", err)
	}
	if len(dropped) > 0 {
		logger.Warn("llm.payload.normalize_sanitize", "dropped", dropped)
	}
	return out, dropped, nil
}

// sanitizeItem normalizes one item in place and reports whether to keep it.
func sanitizeItem(im map[string]any, i int, note func(string)) bool {
	prefix := fmt.Sprintf("items[%d].", i)
	sub := func(s string) { note(prefix + s) }

	rename(im, "name", "item_name_raw", sub)
	rename(im, "item_name", "item_name_raw", sub)
	rename(im, "amount", "amount_excl_tax", sub)
	rename(im, "price", "amount_excl_tax", sub)
	rename(im, "qty", "quantity", sub)

	trimString(im, "item_name_raw", sub)
	coerceInt(im, "amount_excl_tax", sub)
	coerceInt(im, "quantity", sub)
	if q, ok := im["quantity"].(int64); ok && q < 1 {
		im["quantity"] = int64(1)
	}

	if v, ok := im["cost_type"].(string); ok {
		ct, known := costTypeSynonyms[strings.ToLower(strings.TrimSpace(v))]
		if !known {
			ct = "other"
		}
		im["cost_type"] = ct
	} else if _, present := im["cost_type"]; present {
		delete(im, "cost_type")
		sub("cost_type(type)")
	}

	for k := range maps.Clone(im) {
		if _, ok := itemAllowed[k]; !ok {
			delete(im, k)
			sub(k + "(unknown)")
		}
	}

	if _, ok := im["item_name_raw"]; !ok {
		note(fmt.Sprintf("items[%d](no_name)", i))
		return false
	}
	if _, ok := im["amount_excl_tax"]; !ok {
		note(fmt.Sprintf("items[%d](no_amount)", i))
		return false
	}
	return true
}

func rename(m map[string]any, from, to string, note func(string)) {
	if v, ok := m[from]; ok {
		// don't overwrite existing value if already present
		if _, exists := m[to]; !exists {
			m[to] = v
		}
		delete(m, from)
		note(from + "->" + to)
	}
}

func trimString(m map[string]any, k string, note func(string)) {
	v, present := m[k]
	if !present {
		return
	}
	s, ok := v.(string)
	if !ok {
		delete(m, k)
		note(k + "(type)")
		return
	}
	if s = strings.TrimSpace(s); s == "" {
		delete(m, k)
		note(k + "(empty)")
		return
	}
	m[k] = s
}

// coerceInt rewrites money-ish values as int64, dropping what cannot be read.
func coerceInt(m map[string]any, k string, note func(string)) {
	v, present := m[k]
	if !present {
		return
	}
	switch t := v.(type) {
	case float64:
		m[k] = int64(math.Floor(t))
	case string:
		n, ok := parseMoneyString(t)
		if !ok {
			delete(m, k)
			note(k + "(format)")
			return
		}
		m[k] = n
	case nil:
		delete(m, k)
		note(k + "(null)")
	default:
		delete(m, k)
		note(k + "(type)")
	}
}

// parseMoneyString reads "¥3,800", "3800円", " 3,800.00 " as 3800.
func parseMoneyString(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "¥￥$")
	s = strings.TrimRight(s, "円元 ")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "null") {
		return 0, false
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int64(math.Floor(f)), true
}
