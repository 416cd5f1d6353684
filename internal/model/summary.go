package model

// ValuationTotals holds county-wide sums of the valuation fields.
type ValuationTotals struct {
	LandValue        int64   `json:"land_value"`
	ImprovementValue int64   `json:"improvement_value"`
	TotalValue       int64   `json:"total_value"`
	TaxAmount        float64 `json:"tax_amount"`
	DeferredValue    int64   `json:"deferred_value"`
}

// ClassTally is the per-class breakdown nested inside a district rollup.
type ClassTally struct {
	Count      int     `json:"count"`
	TotalValue int64   `json:"total_value"`
	Tax        float64 `json:"tax"`
}

// DistrictSummary is the rollup for one magisterial district.
type DistrictSummary struct {
	PropertyCount    int                 `json:"property_count"`
	LandValue        int64               `json:"land_value"`
	ImprovementValue int64               `json:"improvement_value"`
	TotalValue       int64               `json:"total_value"`
	TaxAmount        float64             `json:"tax_amount"`
	DeferredValue    int64               `json:"deferred_value"`
	TotalAcreage     float64             `json:"total_acreage"`
	ByClass          map[int]*ClassTally `json:"by_class"`
	PctOfCountyValue float64             `json:"pct_of_county_value"`
	PctOfCountyTax   float64             `json:"pct_of_county_tax"`
	AvgPropertyValue int64               `json:"avg_property_value"`
}

// ClassSummary is the county-wide rollup for one property class.
type ClassSummary struct {
	Count      int     `json:"count"`
	TotalValue int64   `json:"total_value"`
	Tax        float64 `json:"tax"`
	ClassName  string  `json:"class_name"`
	PctOfTotal float64 `json:"pct_of_total"`
}

// ZoneSummary is the county-wide rollup for one zoning code.
type ZoneSummary struct {
	Count      int   `json:"count"`
	TotalValue int64 `json:"total_value"`
}

// YearSummary is the fully recomputed aggregate view over one year's records.
// It has no identity beyond the emitted artifact and is rebuilt from scratch
// on every run, never updated incrementally.
type YearSummary struct {
	Year         int                         `json:"year"`
	TaxRate      float64                     `json:"tax_rate"`
	Commissioner string                      `json:"commissioner"`
	SourceFile   string                      `json:"source_file"`
	TotalRecords int                         `json:"total_records"`
	Totals       ValuationTotals             `json:"totals"`
	ByDistrict   map[string]*DistrictSummary `json:"by_district"`
	ByClass      map[int]*ClassSummary       `json:"by_class"`
	ByZone       map[string]*ZoneSummary     `json:"by_zone"`
}
