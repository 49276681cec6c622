package validation

import (
	"errors"
	"strconv"
	"strings"

	"github.com/iwvelando/mortgage-calculator/pkg/mathutil"
	"github.com/iwvelando/mortgage-calculator/pkg/mortgage"
)

// Field names one input of the calculator form.
type Field string

const (
	FieldAmount Field = "amount"
	FieldTerm   Field = "term"
	FieldRate   Field = "rate"
	FieldType   Field = "type"
)

// Fields lists every form field in display order.
var Fields = []Field{FieldAmount, FieldTerm, FieldRate, FieldType}

// ParseField converts a raw name into a Field.
func ParseField(raw string) (Field, bool) {
	for _, f := range Fields {
		if string(f) == raw {
			return f, true
		}
	}
	return "", false
}

// Messages shown under a field.
const (
	MessageRequired      = "This field is required"
	MessageInvalidAmount = "Enter a valid amount"
	MessageInvalidTerm   = "Enter a valid term"
	MessageInvalidRate   = "Enter a valid rate"
	MessageInvalidType   = "Select a mortgage type"
	MessageOutOfRange    = "Result is out of range"
)

var (
	// ErrMissingField marks an InputError raised for empty fields.
	ErrMissingField = errors.New("missing required field")
	// ErrInvalidInput marks an InputError raised for unparseable or out of range values.
	ErrInvalidInput = errors.New("invalid input")
)

// Values holds the raw, user-entered form values.
type Values struct {
	Amount string `json:"amount" yaml:"amount"`
	Term   string `json:"term" yaml:"term"`
	Rate   string `json:"rate" yaml:"rate"`
	Type   string `json:"type" yaml:"type"`
}

// Get returns the raw value of a field.
func (v Values) Get(field Field) string {
	switch field {
	case FieldAmount:
		return v.Amount
	case FieldTerm:
		return v.Term
	case FieldRate:
		return v.Rate
	case FieldType:
		return v.Type
	}
	return ""
}

// Set returns a copy of v with the field overwritten.
func (v Values) Set(field Field, value string) Values {
	switch field {
	case FieldAmount:
		v.Amount = value
	case FieldTerm:
		v.Term = value
	case FieldRate:
		v.Rate = value
	case FieldType:
		v.Type = value
	}
	return v
}

// FieldErrors maps a field to its single error message.
type FieldErrors map[Field]string

// Clone returns an independent copy.
func (e FieldErrors) Clone() FieldErrors {
	out := make(FieldErrors, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// InputError reports per-field validation failures.
type InputError struct {
	Fields FieldErrors
	kind   error
}

func (e *InputError) Error() string {
	var parts []string
	for _, f := range Fields {
		if msg, ok := e.Fields[f]; ok {
			parts = append(parts, string(f)+": "+msg)
		}
	}
	return e.kind.Error() + ": " + strings.Join(parts, "; ")
}

func (e *InputError) Unwrap() error {
	return e.kind
}

// ValidateRequired returns the required-field message for every empty field.
// The result is empty when all fields hold a value; "0" counts as a value.
func ValidateRequired(values Values) FieldErrors {
	errs := make(FieldErrors)
	for _, f := range Fields {
		if values.Get(f) == "" {
			errs[f] = MessageRequired
		}
	}
	return errs
}

// RequireAll wraps ValidateRequired into an error for callers that do not
// render per-field messages.
func RequireAll(values Values) error {
	errs := ValidateRequired(values)
	if len(errs) == 0 {
		return nil
	}
	return &InputError{Fields: errs, kind: ErrMissingField}
}

// ParseInputs converts non-empty form values into calculation inputs.
func ParseInputs(values Values) (mortgage.Inputs, error) {
	errs := make(FieldErrors)
	var in mortgage.Inputs

	amount, ok := parseNumber(values.Amount)
	if !ok || amount <= 0 {
		errs[FieldAmount] = MessageInvalidAmount
	}
	term, ok := parseNumber(values.Term)
	if !ok || term <= 0 {
		errs[FieldTerm] = MessageInvalidTerm
	}
	rate, ok := parseNumber(values.Rate)
	if !ok || rate < 0 {
		errs[FieldRate] = MessageInvalidRate
	}
	typ, err := mortgage.ParseType(values.Type)
	if err != nil {
		errs[FieldType] = MessageInvalidType
	}

	if len(errs) > 0 {
		return in, &InputError{Fields: errs, kind: ErrInvalidInput}
	}

	in = mortgage.Inputs{Principal: amount, TermYears: term, AnnualRate: rate, Type: typ}
	return in, nil
}

func parseNumber(raw string) (float64, bool) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if cleaned == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || !mathutil.IsFinite(n) {
		return 0, false
	}
	return n, true
}
