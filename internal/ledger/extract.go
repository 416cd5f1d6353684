package ledger

import (
	"strconv"
	"strings"
)

// extractParcel pulls the parcel code off the record's first line. All
// whitespace inside the capture is removed so "70A - 3 - - 27" and
// "70A-3--27" normalize identically.
func (r *Rules) extractParcel(firstLine string) string {
	m := r.parcel.FindStringSubmatch(firstLine)
	if m == nil {
		return ""
	}
	return strings.Join(strings.Fields(m[1]), "")
}

func (r *Rules) extractAccount(text string) string {
	if m := r.account.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

// extractDistrict matches the record text against the district variant table
// with case and spaces normalized away. First variant match wins.
func (r *Rules) extractDistrict(text string) string {
	squashed := strings.ToUpper(strings.ReplaceAll(text, " ", ""))
	for _, d := range r.districts {
		if strings.Contains(squashed, d.key) {
			return d.canonical
		}
	}
	return ""
}

func (r *Rules) extractClass(text string) int {
	if m := r.class.FindStringSubmatch(text); m != nil {
		c, _ := strconv.Atoi(m[1])
		return c
	}
	return 0
}

func (r *Rules) extractZone(text string) string {
	if m := r.zone.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

func (r *Rules) extractAcreage(text string) float64 {
	if m := r.acreage.FindStringSubmatch(text); m != nil {
		v, _ := strconv.ParseFloat(m[1], 64)
		return v
	}
	return 0
}

func (r *Rules) extractHalves(text string) (first, second float64) {
	if m := r.firstHalf.FindStringSubmatch(text); m != nil {
		first = parseMoney(m[1])
	}
	if m := r.secondHalf.FindStringSubmatch(text); m != nil {
		second = parseMoney(m[1])
	}
	return first, second
}

func (r *Rules) extractDeferred(text string) int64 {
	if m := r.deferred.FindStringSubmatch(text); m != nil {
		return parseGroupedInt(m[1])
	}
	return 0
}

// extractDescription tries the legal description alternatives in order.
func (r *Rules) extractDescription(text string) string {
	for _, re := range r.descriptions {
		if m := re.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

// parseGroupedInt parses a comma-grouped figure like "119,700".
func parseGroupedInt(s string) int64 {
	v, _ := strconv.ParseInt(strings.ReplaceAll(s, ",", ""), 10, 64)
	return v
}

// parseMoney parses a comma-grouped amount like "1,581.00".
func parseMoney(s string) float64 {
	v, _ := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	return v
}
