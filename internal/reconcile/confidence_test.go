package reconcile_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestItemAmountConfidence(t *testing.T) {
	e := newEngine()
	tests := []struct {
		name                             string
		extracted, rate, qty, reference float64
		want                             int
	}{
		{"exact match", 2360, 1000, 2, 2360, 100},
		{"mismatch over 15 percent", 3000, 1000, 2, 2360, 70},
		{"mismatch at 15 percent", 115, 100, 1, 100, 100},
		{"not above rate for multiple units", 500, 500, 3, 1500, 30},
		{"below rate for single unit", 80, 100, 1, 80, 100},
		{"whole amount with fractional rate", 200, 99.5, 2, 199, 80},
		{"all penalties combined", 10, 99.5, 3, 298.5, 10},
		{"zero extracted with rate", 0, 100, 1, 100, 0},
		{"zero extracted without rate", 0, 0, 1, 0, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.ItemAmountConfidence(tt.extracted, tt.rate, tt.qty, tt.reference)
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got, 0)
			assert.LessOrEqual(t, got, 100)
		})
	}
}
