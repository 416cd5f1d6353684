package aggregate

import (
	"math"

	"github.com/fcva-data/taxbook-cli/internal/books"
	"github.com/fcva-data/taxbook-cli/internal/model"
)

// Summarize recomputes the full YearSummary for one year's records. Partial
// records sum as zero; an empty record set yields a zero-valued placeholder
// with every percentage at 0.
func Summarize(records []model.PropertyRecord, book books.Book) *model.YearSummary {
	s := &model.YearSummary{
		Year:         book.Year,
		TaxRate:      book.TaxRate,
		Commissioner: book.Commissioner,
		SourceFile:   book.File,
		TotalRecords: len(records),
		ByDistrict:   map[string]*model.DistrictSummary{},
		ByClass:      map[int]*model.ClassSummary{},
		ByZone:       map[string]*model.ZoneSummary{},
	}

	for _, r := range records {
		s.Totals.LandValue += r.LandValue
		s.Totals.ImprovementValue += r.ImprovementValue
		s.Totals.TotalValue += r.TotalValue
		s.Totals.TaxAmount += r.TaxAmount
		s.Totals.DeferredValue += r.DeferredValue
	}

	for _, r := range records {
		name := r.District
		if name == "" {
			name = model.DistrictUnknown
		}
		d := s.ByDistrict[name]
		if d == nil {
			d = &model.DistrictSummary{ByClass: map[int]*model.ClassTally{}}
			s.ByDistrict[name] = d
		}
		d.PropertyCount++
		d.LandValue += r.LandValue
		d.ImprovementValue += r.ImprovementValue
		d.TotalValue += r.TotalValue
		d.TaxAmount += r.TaxAmount
		d.DeferredValue += r.DeferredValue
		d.TotalAcreage += r.Acreage

		t := d.ByClass[r.PropertyClass]
		if t == nil {
			t = &model.ClassTally{}
			d.ByClass[r.PropertyClass] = t
		}
		t.Count++
		t.TotalValue += r.TotalValue
		t.Tax += r.TaxAmount
	}

	for _, d := range s.ByDistrict {
		if s.Totals.TotalValue > 0 {
			d.PctOfCountyValue = round2(float64(d.TotalValue) / float64(s.Totals.TotalValue) * 100)
		}
		if s.Totals.TaxAmount > 0 {
			d.PctOfCountyTax = round2(d.TaxAmount / s.Totals.TaxAmount * 100)
		}
		if d.PropertyCount > 0 {
			d.AvgPropertyValue = int64(math.Round(float64(d.TotalValue) / float64(d.PropertyCount)))
		}
	}

	for _, r := range records {
		c := s.ByClass[r.PropertyClass]
		if c == nil {
			c = &model.ClassSummary{ClassName: model.ClassName(r.PropertyClass)}
			s.ByClass[r.PropertyClass] = c
		}
		c.Count++
		c.TotalValue += r.TotalValue
		c.Tax += r.TaxAmount
	}
	for _, c := range s.ByClass {
		if s.Totals.TotalValue > 0 {
			c.PctOfTotal = round2(float64(c.TotalValue) / float64(s.Totals.TotalValue) * 100)
		}
	}

	for _, r := range records {
		zone := r.Zone
		if zone == "" {
			zone = "Unknown"
		}
		z := s.ByZone[zone]
		if z == nil {
			z = &model.ZoneSummary{}
			s.ByZone[zone] = z
		}
		z.Count++
		z.TotalValue += r.TotalValue
	}

	return s
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
