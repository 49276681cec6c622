package mathutil

import (
	"math"
	"testing"
)

func TestIsFinite(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected bool
	}{
		{"Zero", 0, true},
		{"Regular", 584.59, true},
		{"Huge", math.MaxFloat64, true},
		{"NaN", math.NaN(), false},
		{"Positive infinity", math.Inf(1), false},
		{"Negative infinity", math.Inf(-1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsFinite(tt.input); got != tt.expected {
				t.Errorf("IsFinite(%v) = %v, expected %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestToCurrency(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected string
	}{
		{"Annuity payment", 584.5871, "584.59"},
		{"Interest only payment", 416.6666666666667, "416.67"},
		{"Exact half cent rounds away from zero", 0.125, "0.13"},
		{"Negative half cent rounds away from zero", -0.125, "-0.13"},
		{"Whole amount", 1000, "1000.00"},
		{"Binary value just below a half cent", 1.005, "1.00"},
		{"Binary value just below a half cent again", 2.675, "2.67"},
		{"Binary value just above a half cent", 2.345, "2.35"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToCurrency(tt.input).StringFixed(2); got != tt.expected {
				t.Errorf("ToCurrency(%v) = %s, expected %s", tt.input, got, tt.expected)
			}
		})
	}
}
