package ledger

import (
	"strings"

	"github.com/fcva-data/taxbook-cli/internal/model"
)

// Parser turns extracted tax book text into property records for one year.
type Parser struct {
	rules *Rules
	year  int
}

// NewParser returns a parser bound to one book year's rules.
func NewParser(rules *Rules, year int) *Parser {
	return &Parser{rules: rules, year: year}
}

// Parse segments the book text into record groups and assembles a
// PropertyRecord from each. Groups without a parcel code or without any
// assessed value are dropped.
func (p *Parser) Parse(text string) []model.PropertyRecord {
	groups := p.rules.Segment(strings.Split(text, "\n"))

	records := make([]model.PropertyRecord, 0, len(groups))
	for _, group := range groups {
		if rec, ok := p.assemble(group); ok {
			records = append(records, rec)
		}
	}
	return records
}

// assemble merges the extractor outputs for one record group.
func (p *Parser) assemble(lines []string) (model.PropertyRecord, bool) {
	parcel := p.rules.extractParcel(lines[0])
	if parcel == "" {
		return model.PropertyRecord{}, false
	}

	text := strings.Join(lines, " ")
	val := p.rules.extractValuation(text)
	owner := p.rules.extractOwner(lines)
	first, second := p.rules.extractHalves(text)

	rec := model.PropertyRecord{
		Year:              p.year,
		ParcelCode:        parcel,
		OwnerName:         owner.name,
		OwnerAddress:      owner.address,
		OwnerCityStateZip: owner.cityStateZip,
		OwnerConfidence:   owner.confidence,
		Description:       p.rules.extractDescription(text),
		LandValue:         val.land,
		ImprovementValue:  val.improvement,
		TotalValue:        val.total,
		TaxAmount:         val.tax,
		Acreage:           p.rules.extractAcreage(text),
		PropertyClass:     p.rules.extractClass(text),
		Zone:              p.rules.extractZone(text),
		AccountNumber:     p.rules.extractAccount(text),
		District:          p.rules.extractDistrict(text),
		FirstHalfTax:      first,
		SecondHalfTax:     second,
		DeferredValue:     p.rules.extractDeferred(text),
	}

	if !rec.Viable() {
		return model.PropertyRecord{}, false
	}
	return rec, true
}
