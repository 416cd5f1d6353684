package model

// Confidence grades how reliable a heuristically extracted field is.
type Confidence string

const (
	ConfidenceHigh Confidence = "high"
	ConfidenceLow  Confidence = "low"
)

// OwnerConfidence carries a per-field confidence grade for the owner block.
// Owner lines are selected positionally, so a genuine owner name that happens
// to start with a marker-like token can be misclassified; consumers filter on
// these grades instead of trusting the fields blindly.
type OwnerConfidence struct {
	Name         Confidence `json:"name,omitempty"`
	Address      Confidence `json:"address,omitempty"`
	CityStateZip Confidence `json:"city_state_zip,omitempty"`
}

// PropertyRecord is one parsed property assessment from a tax book.
// Records are immutable once assembled; the corpus is append-only.
type PropertyRecord struct {
	Year              int              `json:"year"`
	ParcelCode        string           `json:"parcel_code"`
	OwnerName         string           `json:"owner_name,omitempty"`
	OwnerAddress      string           `json:"owner_address,omitempty"`
	OwnerCityStateZip string           `json:"owner_city_state_zip,omitempty"`
	Description       string           `json:"description,omitempty"`
	LandValue         int64            `json:"land_value"`
	ImprovementValue  int64            `json:"improvement_value"`
	TotalValue        int64            `json:"total_value"`
	TaxAmount         float64          `json:"tax_amount"`
	Acreage           float64          `json:"acreage,omitempty"`
	PropertyClass     int              `json:"property_class,omitempty"`
	Zone              string           `json:"zone,omitempty"`
	AccountNumber     string           `json:"account_number,omitempty"`
	District          string           `json:"district,omitempty"`
	FirstHalfTax      float64          `json:"first_half_tax"`
	SecondHalfTax     float64          `json:"second_half_tax"`
	DeferredValue     int64            `json:"deferred_value"`
	OwnerConfidence   *OwnerConfidence `json:"owner_confidence,omitempty"`
}

// Viable reports whether a record meets the retention invariant: a parcel
// code plus at least one non-zero valuation figure.
func (r *PropertyRecord) Viable() bool {
	return r.ParcelCode != "" && (r.TotalValue > 0 || r.LandValue > 0)
}
