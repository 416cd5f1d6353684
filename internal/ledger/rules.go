package ledger

import (
	"os"
	"regexp"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// RulePatterns is the serializable form of one year's parsing rules. Zero
// fields inherit from the defaults when overlaid.
type RulePatterns struct {
	RecordStart string `yaml:"record_start"`
	Parcel      string `yaml:"parcel"`
	Account     string `yaml:"account"`
	Valuation   string `yaml:"valuation"`
	LandOnly    string `yaml:"land_only"`
	Class       string `yaml:"class"`
	Zone        string `yaml:"zone"`
	Acreage     string `yaml:"acreage"`
	FirstHalf   string `yaml:"first_half"`
	SecondHalf  string `yaml:"second_half"`
	Deferred    string `yaml:"deferred"`

	Descriptions []string `yaml:"descriptions"`
	OwnerSkip    []string `yaml:"owner_skip"`
	OwnerStrip   []string `yaml:"owner_strip"`

	NoiseMarkers  []string `yaml:"noise_markers"`
	NoiseContains []string `yaml:"noise_contains"`
	NoisePrefixes []string `yaml:"noise_prefixes"`
	NoisePatterns []string `yaml:"noise_patterns"`

	Districts []DistrictVariant `yaml:"districts"`

	SumTolerance *int64   `yaml:"sum_tolerance"`
	RateMin      *float64 `yaml:"rate_min"`
	RateMax      *float64 `yaml:"rate_max"`
	MaxTotal     *int64   `yaml:"max_total"`
	MaxTax       *float64 `yaml:"max_tax"`
}

// DistrictVariant maps one spelling of a magisterial district to its
// canonical name. Variants are tried in order; first match wins.
type DistrictVariant struct {
	Match     string `yaml:"match"`
	Canonical string `yaml:"canonical"`
}

// DefaultPatterns returns the built-in rules that fit every published book
// year so far.
func DefaultPatterns() RulePatterns {
	sumTolerance := int64(100)
	rateMin := 0.001
	rateMax := 0.02
	maxTotal := int64(100_000_000)
	maxTax := 1_000_000.0

	return RulePatterns{
		RecordStart: `^(\d+[A-Z]?\s*-)`,
		Parcel:      `^(\d+[A-Z]?\s*-\s*-?\s*\d*[A-Z]?\s*-?\s*-?\s*\d*\s*-?\s*-?\s*\d*(?:-[A-Z0-9]+)?)`,
		Account:     `ACCT-?\s*(\d+)`,
		Valuation:   `([\d,]+)\s+([\d,]+)\s+([\d,]+)\s+([\d,]+\.\d{2})`,
		LandOnly:    `([\d,]+)\s+([\d,]+)\s+([\d,]+\.\d{2})`,
		Class:       `CL\s*(\d)`,
		Zone:        `ZN\s*([A-Z0-9]+)`,
		Acreage:     `(?i)([\d.]+)\s*(?:ACRES?|AC\b)`,
		FirstHalf:   `FH\s*([\d,]+\.?\d*)`,
		SecondHalf:  `SH\s*([\d,]+\.?\d*)`,
		Deferred:    `([\d,]+)\s*DEFERRED`,

		Descriptions: []string{
			`(?i)((?:LOT|L)\s*\d+[A-Z]?\s*(?:P\d+)?\s*(?:S\d+[A-Z]?)?)`,
			`(?i)(LAKE\s*HOLIDAY\s*EST[.\s]*L\d+)`,
			`(?i)(SHAWNEE\s*LAND\s*L\d+)`,
			`(?i)([\w\s]+(?:SUBDIVISION|ESTATES?|VILLAGE|ACRES?|TRACT))`,
		},
		OwnerSkip: []string{
			`^(ACCT|FH|SH|AC\s|CL\s|ZN\s|\d+\.\d+\s*CL|#\s*\d)`,
			`^[\d,]+\s+[\d,]+\s+[\d,]+`,
		},
		OwnerStrip: []string{
			`\s+FH\s+[\d,.]+.*$`,
			`\s+SH\s+[\d,.]+.*$`,
		},

		NoiseMarkers: []string{
			"COUNTY OF FREDERICK",
			"COMMISSIONER OF THE REVENUE",
			"PAGE TOTALS",
			"CLASS TOTALS",
			"FINAL TOTALS",
		},
		NoiseContains: []string{"INVALID"},
		NoisePrefixes: []string{"DATE:", "RATE ", "PAGE", "TX390BK"},
		NoisePatterns: []string{`^CLASS\s*\d`},

		Districts: []DistrictVariant{
			{Match: "BACK CREEK", Canonical: "Back Creek"},
			{Match: "BACKCREEK", Canonical: "Back Creek"},
			{Match: "GAINESBORO", Canonical: "Gainesboro"},
			{Match: "OPEQUON", Canonical: "Opequon"},
			{Match: "RED BUD", Canonical: "Red Bud"},
			{Match: "REDBUD", Canonical: "Red Bud"},
			{Match: "SHAWNEE", Canonical: "Shawnee"},
			{Match: "STONEWALL", Canonical: "Stonewall"},
			{Match: "STEPHENS CITY", Canonical: "Stephens City"},
			{Match: "STEPHENSCITY", Canonical: "Stephens City"},
			{Match: "MIDDLETOWN", Canonical: "Middletown"},
		},

		SumTolerance: &sumTolerance,
		RateMin:      &rateMin,
		RateMax:      &rateMax,
		MaxTotal:     &maxTotal,
		MaxTax:       &maxTax,
	}
}

// Rules holds one year's compiled parsing rules.
type Rules struct {
	recordStart *regexp.Regexp
	parcel      *regexp.Regexp
	account     *regexp.Regexp
	valuation   *regexp.Regexp
	landOnly    *regexp.Regexp
	class       *regexp.Regexp
	zone        *regexp.Regexp
	acreage     *regexp.Regexp
	firstHalf   *regexp.Regexp
	secondHalf  *regexp.Regexp
	deferred    *regexp.Regexp

	descriptions []*regexp.Regexp
	ownerSkip    []*regexp.Regexp
	ownerStrip   []*regexp.Regexp

	noiseMarkers  []string
	noiseContains []string
	noisePrefixes []string
	noisePatterns []*regexp.Regexp

	districts []compiledDistrict

	sumTolerance int64
	rateMin      float64
	rateMax      float64
	maxTotal     int64
	maxTax       float64
}

type compiledDistrict struct {
	key       string // uppercased, spaces removed
	canonical string
}

// Compile builds the compiled rule set from a pattern table.
func Compile(p RulePatterns) (*Rules, error) {
	r := &Rules{
		noiseMarkers:  p.NoiseMarkers,
		noiseContains: p.NoiseContains,
		noisePrefixes: p.NoisePrefixes,
	}

	for _, field := range []struct {
		name    string
		pattern string
		dst     **regexp.Regexp
	}{
		{"record_start", p.RecordStart, &r.recordStart},
		{"parcel", p.Parcel, &r.parcel},
		{"account", p.Account, &r.account},
		{"valuation", p.Valuation, &r.valuation},
		{"land_only", p.LandOnly, &r.landOnly},
		{"class", p.Class, &r.class},
		{"zone", p.Zone, &r.zone},
		{"acreage", p.Acreage, &r.acreage},
		{"first_half", p.FirstHalf, &r.firstHalf},
		{"second_half", p.SecondHalf, &r.secondHalf},
		{"deferred", p.Deferred, &r.deferred},
	} {
		if field.pattern == "" {
			return nil, eris.Errorf("ledger: rule %s is empty", field.name)
		}
		re, err := regexp.Compile(field.pattern)
		if err != nil {
			return nil, eris.Wrapf(err, "ledger: compile rule %s", field.name)
		}
		*field.dst = re
	}

	var err error
	if r.descriptions, err = compileAll("descriptions", p.Descriptions); err != nil {
		return nil, err
	}
	if r.ownerSkip, err = compileAll("owner_skip", p.OwnerSkip); err != nil {
		return nil, err
	}
	if r.ownerStrip, err = compileAll("owner_strip", p.OwnerStrip); err != nil {
		return nil, err
	}
	if r.noisePatterns, err = compileAll("noise_patterns", p.NoisePatterns); err != nil {
		return nil, err
	}

	for _, dv := range p.Districts {
		if dv.Match == "" || dv.Canonical == "" {
			return nil, eris.New("ledger: district variant needs match and canonical")
		}
		r.districts = append(r.districts, compiledDistrict{
			key:       strings.ToUpper(strings.ReplaceAll(dv.Match, " ", "")),
			canonical: dv.Canonical,
		})
	}

	if p.SumTolerance == nil || p.RateMin == nil || p.RateMax == nil || p.MaxTotal == nil || p.MaxTax == nil {
		return nil, eris.New("ledger: valuation thresholds are incomplete")
	}
	r.sumTolerance = *p.SumTolerance
	r.rateMin = *p.RateMin
	r.rateMax = *p.RateMax
	r.maxTotal = *p.MaxTotal
	r.maxTax = *p.MaxTax
	if r.rateMin <= 0 || r.rateMax <= r.rateMin {
		return nil, eris.Errorf("ledger: invalid rate band [%v, %v]", r.rateMin, r.rateMax)
	}

	return r, nil
}

func compileAll(name string, patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, pat := range patterns {
		re, err := regexp.Compile(pat)
		if err != nil {
			return nil, eris.Wrapf(err, "ledger: compile rule %s %q", name, pat)
		}
		out = append(out, re)
	}
	return out, nil
}

// MustCompile is Compile for the built-in defaults; it panics on error.
func MustCompile(p RulePatterns) *Rules {
	r, err := Compile(p)
	if err != nil {
		panic(err)
	}
	return r
}

// RuleSet resolves the rules for each book year, applying per-year overrides
// on top of shared defaults.
type RuleSet struct {
	base  RulePatterns
	years map[int]RulePatterns

	mu    sync.Mutex
	cache map[int]*Rules
}

// NewRuleSet returns a RuleSet using the built-in defaults for every year.
func NewRuleSet() *RuleSet {
	return &RuleSet{
		base:  DefaultPatterns(),
		years: map[int]RulePatterns{},
		cache: map[int]*Rules{},
	}
}

// LoadRuleSet reads rule overrides from a YAML file. The file may carry a
// "defaults" section applied to all years and a "years" map of per-year
// patches.
func LoadRuleSet(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "ledger: read rules %s", path)
	}

	var wrapper struct {
		Defaults RulePatterns         `yaml:"defaults"`
		Years    map[int]RulePatterns `yaml:"years"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrap(err, "ledger: parse rules")
	}

	rs := NewRuleSet()
	rs.base = overlay(rs.base, wrapper.Defaults)
	for year, patch := range wrapper.Years {
		rs.years[year] = patch
	}

	// Compile eagerly so a bad override fails at load, not mid-parse.
	if _, err := Compile(rs.base); err != nil {
		return nil, err
	}
	for year := range rs.years {
		if _, err := rs.ForYear(year); err != nil {
			return nil, eris.Wrapf(err, "ledger: rules for year %d", year)
		}
	}

	return rs, nil
}

// ForYear returns the compiled rules for a year.
func (rs *RuleSet) ForYear(year int) (*Rules, error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if r, ok := rs.cache[year]; ok {
		return r, nil
	}

	patterns := rs.base
	if patch, ok := rs.years[year]; ok {
		patterns = overlay(patterns, patch)
	}
	r, err := Compile(patterns)
	if err != nil {
		return nil, err
	}
	rs.cache[year] = r
	return r, nil
}

// overlay returns base with every set field of patch applied on top.
func overlay(base, patch RulePatterns) RulePatterns {
	if patch.RecordStart != "" {
		base.RecordStart = patch.RecordStart
	}
	if patch.Parcel != "" {
		base.Parcel = patch.Parcel
	}
	if patch.Account != "" {
		base.Account = patch.Account
	}
	if patch.Valuation != "" {
		base.Valuation = patch.Valuation
	}
	if patch.LandOnly != "" {
		base.LandOnly = patch.LandOnly
	}
	if patch.Class != "" {
		base.Class = patch.Class
	}
	if patch.Zone != "" {
		base.Zone = patch.Zone
	}
	if patch.Acreage != "" {
		base.Acreage = patch.Acreage
	}
	if patch.FirstHalf != "" {
		base.FirstHalf = patch.FirstHalf
	}
	if patch.SecondHalf != "" {
		base.SecondHalf = patch.SecondHalf
	}
	if patch.Deferred != "" {
		base.Deferred = patch.Deferred
	}
	if patch.Descriptions != nil {
		base.Descriptions = patch.Descriptions
	}
	if patch.OwnerSkip != nil {
		base.OwnerSkip = patch.OwnerSkip
	}
	if patch.OwnerStrip != nil {
		base.OwnerStrip = patch.OwnerStrip
	}
	if patch.NoiseMarkers != nil {
		base.NoiseMarkers = patch.NoiseMarkers
	}
	if patch.NoiseContains != nil {
		base.NoiseContains = patch.NoiseContains
	}
	if patch.NoisePrefixes != nil {
		base.NoisePrefixes = patch.NoisePrefixes
	}
	if patch.NoisePatterns != nil {
		base.NoisePatterns = patch.NoisePatterns
	}
	if patch.Districts != nil {
		base.Districts = patch.Districts
	}
	if patch.SumTolerance != nil {
		base.SumTolerance = patch.SumTolerance
	}
	if patch.RateMin != nil {
		base.RateMin = patch.RateMin
	}
	if patch.RateMax != nil {
		base.RateMax = patch.RateMax
	}
	if patch.MaxTotal != nil {
		base.MaxTotal = patch.MaxTotal
	}
	if patch.MaxTax != nil {
		base.MaxTax = patch.MaxTax
	}
	return base
}
