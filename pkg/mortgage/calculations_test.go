package mortgage

import (
	"errors"
	"math"
	"testing"

	"go.uber.org/zap"
)

func TestCalculateRepayment(t *testing.T) {
	tests := []struct {
		name          string
		principal     float64
		rate          float64
		termYears     float64
		expectedRange []float64 // [min, max] expected range
	}{
		{
			name:          "Standard 25-year mortgage",
			principal:     100000,
			rate:          5.0,
			termYears:     25,
			expectedRange: []float64{584.58, 584.60}, // Around £584.59
		},
		{
			name:          "30-year mortgage",
			principal:     240000,
			rate:          6.0,
			termYears:     30,
			expectedRange: []float64{1438, 1440}, // Around £1438.92
		},
		{
			name:          "Zero interest mortgage",
			principal:     120000,
			rate:          0.0,
			termYears:     10,
			expectedRange: []float64{1000, 1000},
		},
		{
			name:          "Fractional term",
			principal:     12000,
			rate:          0.0,
			termYears:     2.5,
			expectedRange: []float64{400, 400},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateRepayment(tt.principal, tt.rate, tt.termYears)
			if result < tt.expectedRange[0]-0.001 || result > tt.expectedRange[1]+0.001 {
				t.Errorf("CalculateRepayment() = %v, expected range [%v, %v]",
					result, tt.expectedRange[0], tt.expectedRange[1])
			}
		})
	}
}

func TestCalculateInterestOnly(t *testing.T) {
	tests := []struct {
		name      string
		principal float64
		rate      float64
		expected  float64
	}{
		{"Standard interest only", 100000, 5.0, 416.6667},
		{"Zero rate", 100000, 0, 0},
		{"Small loan", 1200, 12.0, 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateInterestOnly(tt.principal, tt.rate)
			if math.Abs(result-tt.expected) > 0.001 {
				t.Errorf("CalculateInterestOnly() = %v, expected %v", result, tt.expected)
			}
		})
	}
}

func TestCalculate(t *testing.T) {
	calc := NewCalculator(zap.NewNop())

	tests := []struct {
		name            string
		inputs          Inputs
		expectedMonthly string
		expectedTotal   string
	}{
		{
			name:            "Repayment",
			inputs:          Inputs{Principal: 100000, TermYears: 25, AnnualRate: 5, Type: TypeRepayment},
			expectedMonthly: "584.59",
			expectedTotal:   "175377.00",
		},
		{
			name:            "Interest only",
			inputs:          Inputs{Principal: 100000, TermYears: 25, AnnualRate: 5, Type: TypeInterestOnly},
			expectedMonthly: "416.67",
			expectedTotal:   "125001.00",
		},
		{
			name:            "Repayment at zero rate",
			inputs:          Inputs{Principal: 120000, TermYears: 10, AnnualRate: 0, Type: TypeRepayment},
			expectedMonthly: "1000.00",
			expectedTotal:   "120000.00",
		},
		{
			name:            "Interest only at zero rate",
			inputs:          Inputs{Principal: 120000, TermYears: 10, AnnualRate: 0, Type: TypeInterestOnly},
			expectedMonthly: "0.00",
			expectedTotal:   "0.00",
		},
		{
			name:            "Interest only just below a half penny",
			inputs:          Inputs{Principal: 1206, TermYears: 10, AnnualRate: 1, Type: TypeInterestOnly},
			expectedMonthly: "1.00",
			expectedTotal:   "120.00",
		},
		{
			name:            "Fractional term total",
			inputs:          Inputs{Principal: 12000, TermYears: 2.5, AnnualRate: 0, Type: TypeRepayment},
			expectedMonthly: "400.00",
			expectedTotal:   "12000.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := calc.Calculate(tt.inputs)
			if err != nil {
				t.Fatalf("Calculate() error = %v", err)
			}
			if got := result.MonthlyString(); got != tt.expectedMonthly {
				t.Errorf("MonthlyString() = %s, expected %s", got, tt.expectedMonthly)
			}
			if got := result.TotalString(); got != tt.expectedTotal {
				t.Errorf("TotalString() = %s, expected %s", got, tt.expectedTotal)
			}
			if result.Inputs != tt.inputs {
				t.Errorf("Result.Inputs = %+v, expected %+v", result.Inputs, tt.inputs)
			}
		})
	}
}

func TestCalculateIsRepeatable(t *testing.T) {
	calc := NewCalculator(nil)
	in := Inputs{Principal: 250000, TermYears: 30, AnnualRate: 4.25, Type: TypeRepayment}

	first, err := calc.Calculate(in)
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := calc.Calculate(in)
		if err != nil {
			t.Fatalf("Calculate() error = %v", err)
		}
		if !again.Monthly.Equal(first.Monthly) {
			t.Fatalf("run %d: monthly %s differs from %s", i, again.MonthlyString(), first.MonthlyString())
		}
	}
}

func TestCalculateErrors(t *testing.T) {
	calc := NewCalculator(zap.NewNop())

	if _, err := calc.Calculate(Inputs{Principal: 1, TermYears: 1, AnnualRate: 1, Type: "balloon"}); !errors.Is(err, ErrUnknownType) {
		t.Errorf("expected ErrUnknownType, got %v", err)
	}

	overflow := Inputs{Principal: 100000, TermYears: 1e6, AnnualRate: 50, Type: TypeRepayment}
	if _, err := calc.Calculate(overflow); !errors.Is(err, ErrNonFinite) {
		t.Errorf("expected ErrNonFinite for overflowing power, got %v", err)
	}
}

func TestParseType(t *testing.T) {
	tests := []struct {
		raw      string
		expected Type
		wantErr  bool
	}{
		{"repayment", TypeRepayment, false},
		{"interest", TypeInterestOnly, false},
		{"", "", true},
		{"Repayment", "", true},
		{"interest-only", "", true},
	}

	for _, tt := range tests {
		got, err := ParseType(tt.raw)
		if tt.wantErr {
			if !errors.Is(err, ErrUnknownType) {
				t.Errorf("ParseType(%q) expected ErrUnknownType, got %v", tt.raw, err)
			}
			continue
		}
		if err != nil || got != tt.expected {
			t.Errorf("ParseType(%q) = %q, %v; expected %q", tt.raw, got, err, tt.expected)
		}
	}
}

func TestTypeLabel(t *testing.T) {
	if TypeRepayment.Label() != "Repayment" {
		t.Errorf("unexpected repayment label %q", TypeRepayment.Label())
	}
	if TypeInterestOnly.Label() != "Interest Only" {
		t.Errorf("unexpected interest label %q", TypeInterestOnly.Label())
	}
}

func TestInputsMonths(t *testing.T) {
	if got := (Inputs{TermYears: 25}).Months(); got != 300 {
		t.Errorf("Months() = %v, expected 300", got)
	}
}

// Loan amount 175,000, interest rate 4.5%, term 360 months, as published by
// https://www.fidelitygroup.com/amortizing-loan-calculator
func TestCalculateAgainstReferenceCalculator(t *testing.T) {
	result, err := NewCalculator(zap.NewNop()).Calculate(Inputs{
		Principal:  175000,
		TermYears:  30,
		AnnualRate: 4.5,
		Type:       TypeRepayment,
	})
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}
	if result.MonthlyString() != "886.70" {
		t.Errorf("monthly = %s, expected 886.70", result.MonthlyString())
	}
	if result.TotalString() != "319212.00" {
		t.Errorf("total = %s, expected 319212.00", result.TotalString())
	}
}
