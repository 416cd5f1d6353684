package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassName_Known(t *testing.T) {
	assert.Equal(t, "Residential", ClassName(1))
	assert.Equal(t, "Land Use (Deferred)", ClassName(6))
	assert.Equal(t, "Mineral", ClassName(9))
}

func TestClassName_Unknown(t *testing.T) {
	assert.Equal(t, "Class 0", ClassName(0))
	assert.Equal(t, "Class 12", ClassName(12))
}

func TestViable(t *testing.T) {
	tests := []struct {
		name   string
		record PropertyRecord
		want   bool
	}{
		{"total value only", PropertyRecord{ParcelCode: "43-19-63", TotalValue: 150000}, true},
		{"land value only", PropertyRecord{ParcelCode: "43-19-63", LandValue: 75000}, true},
		{"no parcel code", PropertyRecord{TotalValue: 150000}, false},
		{"no values", PropertyRecord{ParcelCode: "43-19-63"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.record.Viable())
		})
	}
}
