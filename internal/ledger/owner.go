package ledger

import (
	"strings"

	"github.com/fcva-data/taxbook-cli/internal/model"
)

// ownerBlock holds the positional owner fields and their confidence levels.
type ownerBlock struct {
	name         string
	address      string
	cityStateZip string
	confidence   *model.OwnerConfidence
}

// extractOwner maps the record's second through fifth lines to owner name,
// street address, and city/state/zip. Lines that look like field markers or
// valuation rows are rejected; survivors map positionally. Any rejection
// means the positional mapping is uncertain, so surviving fields are flagged
// low confidence rather than silently trusted.
func (r *Rules) extractOwner(lines []string) ownerBlock {
	var candidates []string
	rejected := false

	end := len(lines)
	if end > 5 {
		end = 5
	}
	for i := 1; i < end; i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		if r.matchesOwnerSkip(line) {
			rejected = true
			continue
		}
		candidates = append(candidates, line)
	}

	var b ownerBlock
	if len(candidates) == 0 {
		return b
	}

	level := func(low bool) model.Confidence {
		if low {
			return model.ConfidenceLow
		}
		return model.ConfidenceHigh
	}

	conf := &model.OwnerConfidence{}
	raw := candidates[0]
	b.name = r.cleanOwnerName(raw)
	conf.Name = level(rejected || b.name != raw)
	if len(candidates) >= 2 {
		b.address = candidates[1]
		conf.Address = level(rejected)
	}
	if len(candidates) >= 3 {
		b.cityStateZip = candidates[2]
		conf.CityStateZip = level(rejected)
	}
	b.confidence = conf

	return b
}

func (r *Rules) matchesOwnerSkip(line string) bool {
	for _, re := range r.ownerSkip {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

// cleanOwnerName strips trailing FH/SH tax figures that bleed into the name
// column on some page layouts.
func (r *Rules) cleanOwnerName(name string) string {
	for _, re := range r.ownerStrip {
		name = re.ReplaceAllString(name, "")
	}
	return strings.TrimSpace(name)
}
