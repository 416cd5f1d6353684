package report

import (
	"sort"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/fcva-data/taxbook-cli/internal/model"
)

// WriteWorkbook writes the summary workbook: a Totals sheet with one row per
// year, a Districts sheet, and a Classes sheet.
func WriteWorkbook(path string, summaries []*model.YearSummary) error {
	sorted := sortedByYear(summaries)

	f := xlsx.NewFile()
	if err := addTotalsSheet(f, sorted); err != nil {
		return err
	}
	if err := addDistrictsSheet(f, sorted); err != nil {
		return err
	}
	if err := addClassesSheet(f, sorted); err != nil {
		return err
	}

	return eris.Wrapf(f.Save(path), "report: save workbook %s", path)
}

func addTotalsSheet(f *xlsx.File, summaries []*model.YearSummary) error {
	sheet, err := f.AddSheet("Totals")
	if err != nil {
		return eris.Wrap(err, "report: add Totals sheet")
	}
	addHeader(sheet, "Year", "Records", "Tax Rate", "Land Value", "Improvement Value",
		"Total Value", "Deferred Value", "Tax Revenue")

	for _, s := range summaries {
		row := sheet.AddRow()
		row.AddCell().SetInt(s.Year)
		row.AddCell().SetInt(s.TotalRecords)
		row.AddCell().SetFloatWithFormat(s.TaxRate, "0.00")
		row.AddCell().SetInt64(s.Totals.LandValue)
		row.AddCell().SetInt64(s.Totals.ImprovementValue)
		row.AddCell().SetInt64(s.Totals.TotalValue)
		row.AddCell().SetInt64(s.Totals.DeferredValue)
		row.AddCell().SetFloatWithFormat(s.Totals.TaxAmount, "#,##0.00")
	}
	return nil
}

func addDistrictsSheet(f *xlsx.File, summaries []*model.YearSummary) error {
	sheet, err := f.AddSheet("Districts")
	if err != nil {
		return eris.Wrap(err, "report: add Districts sheet")
	}
	addHeader(sheet, "Year", "District", "Properties", "Land Value", "Improvement Value",
		"Total Value", "Tax Revenue", "Deferred Value", "Acreage", "% of County Value",
		"Avg Property Value")

	for _, s := range summaries {
		names := make([]string, 0, len(s.ByDistrict))
		for name := range s.ByDistrict {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			d := s.ByDistrict[name]
			row := sheet.AddRow()
			row.AddCell().SetInt(s.Year)
			row.AddCell().SetString(name)
			row.AddCell().SetInt(d.PropertyCount)
			row.AddCell().SetInt64(d.LandValue)
			row.AddCell().SetInt64(d.ImprovementValue)
			row.AddCell().SetInt64(d.TotalValue)
			row.AddCell().SetFloatWithFormat(d.TaxAmount, "#,##0.00")
			row.AddCell().SetInt64(d.DeferredValue)
			row.AddCell().SetFloatWithFormat(d.TotalAcreage, "0.00")
			row.AddCell().SetFloatWithFormat(d.PctOfCountyValue, "0.0")
			row.AddCell().SetInt64(d.AvgPropertyValue)
		}
	}
	return nil
}

func addClassesSheet(f *xlsx.File, summaries []*model.YearSummary) error {
	sheet, err := f.AddSheet("Classes")
	if err != nil {
		return eris.Wrap(err, "report: add Classes sheet")
	}
	addHeader(sheet, "Year", "Class", "Name", "Count", "Total Value", "Tax Revenue",
		"% of Total Value")

	for _, s := range summaries {
		classes := make([]int, 0, len(s.ByClass))
		for code := range s.ByClass {
			classes = append(classes, code)
		}
		sort.Ints(classes)

		for _, code := range classes {
			c := s.ByClass[code]
			row := sheet.AddRow()
			row.AddCell().SetInt(s.Year)
			row.AddCell().SetInt(code)
			row.AddCell().SetString(c.ClassName)
			row.AddCell().SetInt(c.Count)
			row.AddCell().SetInt64(c.TotalValue)
			row.AddCell().SetFloatWithFormat(c.Tax, "#,##0.00")
			row.AddCell().SetFloatWithFormat(c.PctOfTotal, "0.0")
		}
	}
	return nil
}

func addHeader(sheet *xlsx.Sheet, cols ...string) {
	row := sheet.AddRow()
	for _, c := range cols {
		row.AddCell().SetString(c)
	}
}
