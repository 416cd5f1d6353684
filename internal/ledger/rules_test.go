package ledger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPatternsCompile(t *testing.T) {
	r, err := Compile(DefaultPatterns())
	require.NoError(t, err)
	assert.NotNil(t, r)
}

func TestCompileRejectsEmptyPattern(t *testing.T) {
	p := DefaultPatterns()
	p.Valuation = ""

	_, err := Compile(p)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "rule valuation")
}

func TestCompileRejectsBadRegexp(t *testing.T) {
	p := DefaultPatterns()
	p.Parcel = "(["

	_, err := Compile(p)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "rule parcel")
}

func TestCompileRejectsMissingThresholds(t *testing.T) {
	p := DefaultPatterns()
	p.SumTolerance = nil

	_, err := Compile(p)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "thresholds")
}

func TestCompileRejectsInvertedRateBand(t *testing.T) {
	p := DefaultPatterns()
	lo := 0.05
	hi := 0.01
	p.RateMin = &lo
	p.RateMax = &hi

	_, err := Compile(p)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "rate band")
}

func TestRuleSetDefaultsForEveryYear(t *testing.T) {
	rs := NewRuleSet()

	r2021, err := rs.ForYear(2021)
	require.NoError(t, err)
	r2025, err := rs.ForYear(2025)
	require.NoError(t, err)

	assert.Equal(t, LineRecordStart, r2021.Classify("70A - 3 - - 27"))
	assert.Equal(t, LineRecordStart, r2025.Classify("70A - 3 - - 27"))
}

func TestRuleSetCachesCompiledRules(t *testing.T) {
	rs := NewRuleSet()

	first, err := rs.ForYear(2023)
	require.NoError(t, err)
	second, err := rs.ForYear(2023)
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestLoadRuleSetYearOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	yaml := `
years:
  2021:
    noise_prefixes: ["DATE:", "RATE ", "PAGE", "TX390BK", "BOOK "]
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	rs, err := LoadRuleSet(path)
	require.NoError(t, err)

	r2021, err := rs.ForYear(2021)
	require.NoError(t, err)
	r2022, err := rs.ForYear(2022)
	require.NoError(t, err)

	assert.Equal(t, LineNoise, r2021.Classify("BOOK 7 CONTINUED"))
	assert.Equal(t, LineContinuation, r2022.Classify("BOOK 7 CONTINUED"))
	// Untouched rules inherit the defaults.
	assert.Equal(t, LineNoise, r2021.Classify("PAGE 3"))
}

func TestLoadRuleSetSharedDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	yaml := `
defaults:
  rate_max: 0.05
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	rs, err := LoadRuleSet(path)
	require.NoError(t, err)

	r, err := rs.ForYear(2024)
	require.NoError(t, err)

	// A 3% effective rate is acceptable under the widened band.
	v := r.extractValuation("X 50,000 50,000 100,000 3,000.00")
	assert.Equal(t, int64(100000), v.total)
}

func TestLoadRuleSetBadOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	yaml := `
years:
  2022:
    parcel: "(["
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	_, err := LoadRuleSet(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "2022")
}

func TestLoadRuleSetMissingFile(t *testing.T) {
	_, err := LoadRuleSet(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
