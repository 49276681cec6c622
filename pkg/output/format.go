// Package output provides utilities for formatting and displaying calculation results.
package output

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/iwvelando/mortgage-calculator/pkg/constants"
	"github.com/iwvelando/mortgage-calculator/pkg/mortgage"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// PrettyFormat outputs a human-readable rather than machine-readable summary.
func PrettyFormat(result mortgage.Result) {
	p := message.NewPrinter(language.BritishEnglish)
	in := result.Inputs
	fmt.Printf("--- %s mortgage ---\n", in.Type.Label())
	_, _ = p.Printf("Mortgage Amount                  | %s%.2f\n", constants.CurrencySymbol, in.Principal)
	_, _ = p.Printf("Mortgage Term                    | %v years\n", in.TermYears)
	_, _ = p.Printf("Interest Rate                    | %v%%\n", in.AnnualRate)
	_, _ = p.Printf("Your Monthly Repayment           | %s%.2f\n", constants.CurrencySymbol, result.Monthly.InexactFloat64())
	_, _ = p.Printf("Total you'll repay over the term | %s%.2f\n", constants.CurrencySymbol, result.Total().InexactFloat64())
}

// CsvString renders the result as a header line and a value line.
func CsvString(result mortgage.Result) string {
	in := result.Inputs
	var b strings.Builder
	b.WriteString(`"type","amount","term","rate","monthly","total"` + "\n")
	fmt.Fprintf(&b, `"%s","%.2f","%v","%v","%s","%s"`+"\n",
		in.Type, in.Principal, in.TermYears, in.AnnualRate, result.MonthlyString(), result.TotalString())
	return b.String()
}

// CsvFormat outputs in comma-separated value format.
func CsvFormat(result mortgage.Result) {
	fmt.Print(CsvString(result))
}

type jsonResult struct {
	Type             string  `json:"type"`
	Amount           float64 `json:"amount"`
	TermYears        float64 `json:"termYears"`
	AnnualRate       float64 `json:"annualRate"`
	MonthlyRepayment string  `json:"monthlyRepayment"`
	TotalRepayment   string  `json:"totalRepayment"`
}

// JSONString renders the result as a JSON object.
func JSONString(result mortgage.Result) (string, error) {
	in := result.Inputs
	data, err := json.Marshal(jsonResult{
		Type:             string(in.Type),
		Amount:           in.Principal,
		TermYears:        in.TermYears,
		AnnualRate:       in.AnnualRate,
		MonthlyRepayment: result.MonthlyString(),
		TotalRepayment:   result.TotalString(),
	})
	if err != nil {
		return "", err
	}
	return string(data) + "\n", nil
}
