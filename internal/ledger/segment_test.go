package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegmentTwoRecordsWithNoise(t *testing.T) {
	r := defaultRules(t)

	lines := []string{
		"COUNTY OF FREDERICK                    PAGE 1",
		"DATE: 01/15/2021",
		"1A - 1 - - 1     ACCT 100001    10,000   90,000   100,000   510.00",
		"     ALPHA HOLDINGS LLC",
		"",
		"2B - 2 - - 2     ACCT 100002    20,000   80,000   100,000   510.00",
		"     BETA FARMS INC",
		"PAGE TOTALS      30,000   170,000   200,000   1,020.00",
		"CLASS 1 TOTALS",
	}

	groups := r.Segment(lines)
	require.Len(t, groups, 2)
	assert.Len(t, groups[0], 2)
	assert.Len(t, groups[1], 2)
	assert.Contains(t, groups[0][0], "1A - 1")
	assert.Contains(t, groups[1][1], "BETA FARMS")
}

func TestSegmentNoiseNeverCloses(t *testing.T) {
	r := defaultRules(t)

	// A noise line between continuations must not split the record.
	lines := []string{
		"3C - 1 - - 9     ACCT 100003    10,000   90,000   100,000   510.00",
		"     GAMMA TRUST",
		"PAGE 2",
		"     444 ELM ST",
	}

	groups := r.Segment(lines)
	require.Len(t, groups, 1)
	assert.Equal(t, []string{
		"3C - 1 - - 9     ACCT 100003    10,000   90,000   100,000   510.00",
		"GAMMA TRUST",
		"444 ELM ST",
	}, groups[0])
}

func TestSegmentLeadingContinuationsDropped(t *testing.T) {
	r := defaultRules(t)

	lines := []string{
		"     ORPHANED OWNER LINE",
		"     ANOTHER ORPHAN",
		"4D - 2 - - 5     ACCT 100004",
	}

	groups := r.Segment(lines)
	require.Len(t, groups, 1)
	assert.Len(t, groups[0], 1)
}

func TestSegmentTrailingGroupFlushed(t *testing.T) {
	r := defaultRules(t)

	groups := r.Segment([]string{"5E - 1 - - 2     ACCT 100005"})
	require.Len(t, groups, 1)
	assert.Equal(t, []string{"5E - 1 - - 2     ACCT 100005"}, groups[0])
}

func TestSegmentEmptyInput(t *testing.T) {
	r := defaultRules(t)

	assert.Empty(t, r.Segment(nil))
	assert.Empty(t, r.Segment([]string{"", "PAGE 1", "   "}))
}
