// Package mortgage computes monthly mortgage repayments.
package mortgage

import (
	"errors"
	"fmt"
	"math"

	"github.com/iwvelando/mortgage-calculator/pkg/constants"
	"github.com/iwvelando/mortgage-calculator/pkg/mathutil"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Type selects the repayment formula.
type Type string

const (
	// TypeRepayment amortizes principal and interest over the term.
	TypeRepayment Type = "repayment"
	// TypeInterestOnly pays the monthly interest only.
	TypeInterestOnly Type = "interest"
)

var (
	// ErrUnknownType is returned for a Type other than repayment or interest.
	ErrUnknownType = errors.New("unknown mortgage type")
	// ErrNonFinite is returned when a formula yields NaN or an infinity.
	ErrNonFinite = errors.New("calculation did not produce a finite amount")
)

// Types lists the supported mortgage types in display order.
var Types = []Type{TypeRepayment, TypeInterestOnly}

// Label returns the display label of the type.
func (t Type) Label() string {
	switch t {
	case TypeRepayment:
		return "Repayment"
	case TypeInterestOnly:
		return "Interest Only"
	}
	return string(t)
}

// ParseType converts a raw selector into a Type.
func ParseType(raw string) (Type, error) {
	switch Type(raw) {
	case TypeRepayment, TypeInterestOnly:
		return Type(raw), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownType, raw)
}

// Inputs holds the parsed values a calculation is based on.
type Inputs struct {
	Principal  float64 `json:"principal"`
	TermYears  float64 `json:"termYears"`
	AnnualRate float64 `json:"annualRate"` // percent
	Type       Type    `json:"type"`
}

// Months returns the number of monthly payments in the term.
func (in Inputs) Months() float64 {
	return in.TermYears * constants.MonthsPerYear
}

// Result is an immutable record of one calculation. The total is derived from
// the inputs captured here, never from later edits.
type Result struct {
	Inputs  Inputs          `json:"inputs"`
	Monthly decimal.Decimal `json:"monthly"`
}

// MonthlyString returns the monthly repayment in fixed-point notation, e.g. "584.59".
func (r Result) MonthlyString() string {
	return r.Monthly.StringFixed(constants.DecimalPlaces)
}

// Total returns the amount repaid over the whole term.
func (r Result) Total() decimal.Decimal {
	months := decimal.NewFromFloat(r.Inputs.Months())
	return r.Monthly.Mul(months).Round(constants.DecimalPlaces)
}

// TotalString returns Total in fixed-point notation.
func (r Result) TotalString() string {
	return r.Total().StringFixed(constants.DecimalPlaces)
}

// CalculateRepayment calculates the monthly payment using the standard amortization formula.
func CalculateRepayment(principal, annualInterestRate, termYears float64) float64 {
	months := Inputs{TermYears: termYears}.Months()
	if annualInterestRate == 0 {
		// For zero interest, simply divide the principal by term
		return principal / months
	}

	periodicInterestRate := annualInterestRate / (constants.PercentageMultiplier * constants.MonthsPerYear)
	power := math.Pow(1.00+periodicInterestRate, months)
	return principal * periodicInterestRate * power / (power - 1.00)
}

// CalculateInterestOnly calculates the monthly interest on an unchanged principal.
func CalculateInterestOnly(principal, annualInterestRate float64) float64 {
	return principal * annualInterestRate / (constants.PercentageMultiplier * constants.MonthsPerYear)
}

// Calculator runs calculations and logs them.
type Calculator struct {
	logger *zap.Logger
}

// NewCalculator creates a new calculator instance
func NewCalculator(logger *zap.Logger) *Calculator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Calculator{logger: logger}
}

// Calculate computes the monthly repayment for the inputs and rounds it to currency precision.
func (c *Calculator) Calculate(in Inputs) (Result, error) {
	var monthly float64
	switch in.Type {
	case TypeRepayment:
		monthly = CalculateRepayment(in.Principal, in.AnnualRate, in.TermYears)
	case TypeInterestOnly:
		monthly = CalculateInterestOnly(in.Principal, in.AnnualRate)
	default:
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownType, in.Type)
	}

	if !mathutil.IsFinite(monthly) {
		c.logger.Debug("calculation produced a non-finite amount",
			zap.String("op", "mortgage.Calculate"),
			zap.String("type", string(in.Type)),
			zap.Float64("principal", in.Principal),
			zap.Float64("rate", in.AnnualRate),
			zap.Float64("term", in.TermYears),
		)
		return Result{}, ErrNonFinite
	}

	result := Result{Inputs: in, Monthly: mathutil.ToCurrency(monthly)}
	c.logger.Debug(fmt.Sprintf("%s mortgage of %.2f over %g years at %g%%: monthly %s",
		in.Type, in.Principal, in.TermYears, in.AnnualRate, result.MonthlyString()),
		zap.String("op", "mortgage.Calculate"),
	)
	return result, nil
}
