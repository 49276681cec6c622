// Package form holds the state of one mortgage calculator form: the raw
// field values, the last result and the per-field error messages.
package form

import (
	"errors"
	"sync"

	"github.com/iwvelando/mortgage-calculator/pkg/mortgage"
	"github.com/iwvelando/mortgage-calculator/pkg/validation"
	"go.uber.org/zap"
)

// Phase is the observable state of a form.
type Phase int

const (
	// Editing means no result is shown.
	Editing Phase = iota
	// ResultShown means the last successful submit's result is shown.
	ResultShown
)

func (p Phase) String() string {
	if p == ResultShown {
		return "result-shown"
	}
	return "editing"
}

// State is a point-in-time copy of a form.
type State struct {
	Values validation.Values      `json:"values"`
	Result *mortgage.Result       `json:"result,omitempty"`
	Errors validation.FieldErrors `json:"errors,omitempty"`
}

// Clone returns a deep copy of the state.
func (s State) Clone() State {
	out := State{Values: s.Values}
	if s.Result != nil {
		r := *s.Result
		out.Result = &r
	}
	if s.Errors != nil {
		out.Errors = s.Errors.Clone()
	}
	return out
}

// Phase derives the observable phase from the state.
func (s State) Phase() Phase {
	if s.Result != nil {
		return ResultShown
	}
	return Editing
}

// Form is the state controller. Errors are cleared per field: editing or
// focusing a field removes that field's message and leaves the others.
type Form struct {
	mu         sync.Mutex
	logger     *zap.Logger
	calculator *mortgage.Calculator
	values     validation.Values
	result     *mortgage.Result
	errors     validation.FieldErrors
}

// New creates an empty form.
func New(logger *zap.Logger, calculator *mortgage.Calculator) *Form {
	if logger == nil {
		logger = zap.NewNop()
	}
	if calculator == nil {
		calculator = mortgage.NewCalculator(logger)
	}
	return &Form{
		logger:     logger,
		calculator: calculator,
		errors:     make(validation.FieldErrors),
	}
}

// Restore creates a form from a previously taken snapshot.
func Restore(logger *zap.Logger, calculator *mortgage.Calculator, state State) *Form {
	f := New(logger, calculator)
	state = state.Clone()
	f.values = state.Values
	f.result = state.Result
	if state.Errors != nil {
		f.errors = state.Errors
	}
	return f
}

// Submit validates the fields and, when they are all present and valid,
// replaces the result. On failure the errors are stored and the result is
// cleared, so a result is only ever shown for the latest submit.
func (f *Form) Submit() State {
	f.mu.Lock()
	defer f.mu.Unlock()

	if errs := validation.ValidateRequired(f.values); len(errs) > 0 {
		f.errors = errs
		f.result = nil
		f.logger.Debug("form submitted with missing fields",
			zap.String("op", "form.Submit"),
			zap.Int("missing", len(errs)),
		)
		return f.stateLocked()
	}

	inputs, err := validation.ParseInputs(f.values)
	if err != nil {
		var inputErr *validation.InputError
		if errors.As(err, &inputErr) {
			f.errors = inputErr.Fields.Clone()
		}
		f.result = nil
		f.logger.Debug("form submitted with invalid fields",
			zap.String("op", "form.Submit"),
			zap.Error(err),
		)
		return f.stateLocked()
	}

	result, err := f.calculator.Calculate(inputs)
	if err != nil {
		f.errors = validation.FieldErrors{validation.FieldAmount: validation.MessageOutOfRange}
		f.result = nil
		f.logger.Debug("calculation failed",
			zap.String("op", "form.Submit"),
			zap.Error(err),
		)
		return f.stateLocked()
	}

	f.errors = make(validation.FieldErrors)
	f.result = &result
	return f.stateLocked()
}

// Change overwrites a field and clears that field's error only. A shown
// result stays until the next submit or reset.
func (f *Form) Change(field validation.Field, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.values = f.values.Set(field, value)
	delete(f.errors, field)
}

// Focus clears the error of the focused field only.
func (f *Form) Focus(field validation.Field) {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.errors, field)
}

// Reset clears every field, the result and all errors in one update.
func (f *Form) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.values = validation.Values{}
	f.result = nil
	f.errors = make(validation.FieldErrors)
}

// Snapshot returns a copy of the current state.
func (f *Form) Snapshot() State {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.stateLocked()
}

// Values returns the current raw values.
func (f *Form) Values() validation.Values {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.values
}

func (f *Form) stateLocked() State {
	return State{Values: f.values, Result: f.result, Errors: f.errors}.Clone()
}
