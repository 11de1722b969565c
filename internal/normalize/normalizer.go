// Package normalize maps raw item names to canonical slugs and cost types.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/joseph-ayodele/estimate-parser/constants"
)

// Config holds the keyword tables. Zero values fall back to the built-in tables.
type Config struct {
	Categories        []constants.CategoryRule
	LaborKeywords     []string
	StatutoryKeywords []string // nil disables statutory classification
}

// DefaultConfig returns the built-in tables with statutory classification off.
func DefaultConfig() Config {
	return Config{
		Categories:    constants.DefaultCategories(),
		LaborKeywords: append([]string(nil), constants.LaborKeywords...),
	}
}

// Normalizer is immutable and safe for concurrent use.
type Normalizer struct {
	categories []constants.CategoryRule
	labor      []string
	statutory  []string
}

func New(cfg Config) *Normalizer {
	if len(cfg.Categories) == 0 {
		cfg.Categories = constants.DefaultCategories()
	}
	if len(cfg.LaborKeywords) == 0 {
		cfg.LaborKeywords = constants.LaborKeywords
	}
	n := &Normalizer{}
	for _, c := range cfg.Categories {
		rule := constants.CategoryRule{Slug: c.Slug}
		for _, k := range c.Keywords {
			if k = n.fold(k); k != "" {
				rule.Keywords = append(rule.Keywords, k)
			}
		}
		n.categories = append(n.categories, rule)
	}
	n.labor = n.foldAll(cfg.LaborKeywords)
	n.statutory = n.foldAll(cfg.StatutoryKeywords)
	return n
}

// Normalize returns the canonical slug for raw.
//
// Keywords are matched against both the lower-cased name and its slug form, so
// the result is a fixed point: Normalize(Normalize(x)) == Normalize(x).
func (n *Normalizer) Normalize(raw string) string {
	lowered := n.fold(raw)
	if lowered == "" {
		return constants.UnknownItem
	}
	slug := slugify(lowered)
	for _, c := range n.categories {
		for _, k := range c.Keywords {
			if strings.Contains(lowered, k) || strings.Contains(slug, k) {
				return c.Slug
			}
		}
	}
	if slug == "" {
		return constants.UnknownItem
	}
	return slug
}

// ClassifyCostType returns labor when a labor keyword matches, otherwise parts.
// Statutory keywords, when configured, take priority.
func (n *Normalizer) ClassifyCostType(raw string) constants.CostType {
	lowered := n.fold(raw)
	if containsAny(lowered, n.statutory) {
		return constants.CostTypeStatutoryFees
	}
	if containsAny(lowered, n.labor) {
		return constants.CostTypeLabor
	}
	return constants.CostTypeParts
}

// A Caser carries state, so one is built per call.
func (n *Normalizer) fold(s string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(s))
}

func (n *Normalizer) foldAll(in []string) []string {
	var out []string
	for _, s := range in {
		if f := n.fold(s); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func containsAny(s string, keys []string) bool {
	for _, k := range keys {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// slugify keeps letters, digits, marks and underscores; whitespace runs become
// a single underscore; everything else is dropped.
func slugify(s string) string {
	var b strings.Builder
	pendingSpace := false
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			pendingSpace = true
			continue
		case r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r):
		default:
			continue
		}
		if pendingSpace && b.Len() > 0 {
			b.WriteByte('_')
		}
		pendingSpace = false
		b.WriteRune(r)
	}
	return b.String()
}
