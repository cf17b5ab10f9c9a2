package growth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shmkv/shmkv/layout"
)

func TestNextSize_DoublesUnderCeiling(t *testing.T) {
	assert.Equal(t, 2048, NextSize(1024))
	assert.Equal(t, layout.GrowthDoublingCeiling*2, NextSize(layout.GrowthDoublingCeiling))
}

func TestNextSize_AddsFixedStepPastCeiling(t *testing.T) {
	over := layout.GrowthDoublingCeiling + 1
	assert.Equal(t, over+layout.GrowthAdditiveStep, NextSize(over))
}

func TestGrowUntilFits(t *testing.T) {
	got := GrowUntilFits(1024, 5000)
	assert.GreaterOrEqual(t, got, 1024+5000)
}

func TestShouldDefragment(t *testing.T) {
	tests := []struct {
		name                       string
		usedSpace, total, need     int
		want                       bool
	}{
		{"low usage, fits", 100, 1000, 400, true},
		{"low usage, does not fit", 100, 1000, 2000, false},
		{"high usage", 900, 1000, 50, false},
		{"empty region", 0, 0, 10, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldDefragment(tt.usedSpace, tt.total, tt.need))
		})
	}
}
