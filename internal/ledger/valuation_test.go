package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValuationAcceptsConsistentRow(t *testing.T) {
	r := defaultRules(t)

	v := r.extractValuation("70A - 3 - - 27 ACCT 123456 119,700 190,300 310,000 1,581.00")
	assert.Equal(t, int64(119700), v.land)
	assert.Equal(t, int64(190300), v.improvement)
	assert.Equal(t, int64(310000), v.total)
	assert.InDelta(t, 1581.00, v.tax, 0.001)
}

func TestValuationSkipsInconsistentSubtotal(t *testing.T) {
	r := defaultRules(t)

	// The first 4-number run fails the sum check; the later row wins.
	v := r.extractValuation("1 - - 1 ACCT 111222 555,000 111,111 222,222 999.99 88,000 112,000 200,000 1,020.00")
	assert.Equal(t, int64(88000), v.land)
	assert.Equal(t, int64(112000), v.improvement)
	assert.Equal(t, int64(200000), v.total)
	assert.InDelta(t, 1020.00, v.tax, 0.001)
}

func TestValuationLandOnlyFallback(t *testing.T) {
	r := defaultRules(t)

	v := r.extractValuation("3A - 2 - - 8 OPEQUON DISTRICT ACCT 333444 GREEN VALLEY FARM LLC 75,000 75,000 382.50")
	assert.Equal(t, int64(75000), v.land)
	assert.Zero(t, v.improvement)
	assert.Equal(t, int64(75000), v.total)
	assert.InDelta(t, 382.50, v.tax, 0.001)
}

func TestValuationLandOnlyRequiresRepeatedValue(t *testing.T) {
	r := defaultRules(t)

	v := r.extractValuation("3A - 2 - - 9 ACCT 333445 75,000 80,000 382.50")
	assert.Zero(t, v.total)
	assert.Zero(t, v.land)
}

func TestValuationSumToleranceBoundary(t *testing.T) {
	r := defaultRules(t)

	// 99 off is inside the tolerance.
	v := r.extractValuation("X 100,000 100,099 200,000 1,020.00")
	assert.Equal(t, int64(200000), v.total)

	// 100 off is rejected.
	v = r.extractValuation("X 100,000 100,100 200,000 1,020.00")
	assert.Zero(t, v.total)
}

func TestValuationRateBandExclusive(t *testing.T) {
	r := defaultRules(t)

	// Rate exactly 0.001 is outside the band.
	v := r.extractValuation("X 500,000 500,000 1,000,000 1,000.00")
	assert.Zero(t, v.total)

	// Rate exactly 0.02 is outside the band.
	v = r.extractValuation("X 50,000 50,000 100,000 2,000.00")
	assert.Zero(t, v.total)

	v = r.extractValuation("X 50,000 50,000 100,000 1,990.00")
	assert.Equal(t, int64(100000), v.total)
}

func TestValuationMagnitudeCeilings(t *testing.T) {
	r := defaultRules(t)

	v := r.extractValuation("X 50,000,000 50,000,000 100,000,000 200,000.00")
	assert.Zero(t, v.total)

	v = r.extractValuation("X 45,000,000 45,000,000 90,000,000 1,000,000.00")
	assert.Zero(t, v.total)
}

func TestValuationNoCandidates(t *testing.T) {
	r := defaultRules(t)

	v := r.extractValuation("5 - OWNER WITH NO VALUES")
	assert.Zero(t, v.land)
	assert.Zero(t, v.improvement)
	assert.Zero(t, v.total)
	assert.Zero(t, v.tax)
}
