package extract

import (
	"github.com/shopspring/decimal"
)

// FilterTotals removes candidates whose amount is within tolerance of the sum of
// all the other candidates (an accidentally captured total or subtotal line).
// Every decision is made against the original set, then the set is filtered once.
func FilterTotals(cands []Candidate, tolerance decimal.Decimal) []Candidate {
	if len(cands) <= 1 {
		return cands
	}
	var total int64
	for _, c := range cands {
		total += c.Amount
	}
	drop := make([]bool, len(cands))
	for i, c := range cands {
		others := decimal.NewFromInt(total - c.Amount)
		diff := decimal.NewFromInt(c.Amount).Sub(others).Abs()
		drop[i] = diff.LessThanOrEqual(others.Mul(tolerance))
	}
	out := make([]Candidate, 0, len(cands))
	for i, c := range cands {
		if !drop[i] {
			out = append(out, c)
		}
	}
	return out
}

type mergeKey struct {
	name   string
	amount int64
}

// MergeDuplicates folds candidates with the same (name, amount) into the first
// occurrence, summing quantities. Order of first occurrences is preserved.
func MergeDuplicates(cands []Candidate) []Candidate {
	if len(cands) <= 1 {
		return cands
	}
	pos := make(map[mergeKey]int, len(cands))
	out := make([]Candidate, 0, len(cands))
	for _, c := range cands {
		k := mergeKey{c.Name, c.Amount}
		if i, ok := pos[k]; ok {
			out[i].Quantity += c.Quantity
			continue
		}
		pos[k] = len(out)
		out = append(out, c)
	}
	return out
}
