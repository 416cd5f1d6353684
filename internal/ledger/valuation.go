package ledger

// valuation is a disambiguated assessment row.
type valuation struct {
	land        int64
	improvement int64
	total       int64
	tax         float64
}

// extractValuation scans the record text for the assessed-value row. Page
// subtotals and running figures produce spurious 4-number candidates, so
// each is checked against the sum, rate, and magnitude rules; the first
// candidate passing all three wins. When none qualifies, a land-only
// 3-number fallback (land repeated as total, no improvement) is tried.
func (r *Rules) extractValuation(text string) valuation {
	for _, m := range r.valuation.FindAllStringSubmatch(text, -1) {
		v := valuation{
			land:        parseGroupedInt(m[1]),
			improvement: parseGroupedInt(m[2]),
			total:       parseGroupedInt(m[3]),
			tax:         parseMoney(m[4]),
		}
		if r.plausible(v) {
			return v
		}
	}

	for _, m := range r.landOnly.FindAllStringSubmatch(text, -1) {
		land := parseGroupedInt(m[1])
		total := parseGroupedInt(m[2])
		tax := parseMoney(m[3])
		if land != total || land <= 0 {
			continue
		}
		if total < r.maxTotal && tax < r.maxTax {
			return valuation{land: land, total: total, tax: tax}
		}
	}

	return valuation{}
}

// plausible applies the sum, rate, and magnitude checks to a candidate row.
func (r *Rules) plausible(v valuation) bool {
	if v.total <= 0 {
		return false
	}
	if abs64(v.land+v.improvement-v.total) >= r.sumTolerance {
		return false
	}
	rate := v.tax / float64(v.total)
	if rate <= r.rateMin || rate >= r.rateMax {
		return false
	}
	return v.total < r.maxTotal && v.tax < r.maxTax
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
