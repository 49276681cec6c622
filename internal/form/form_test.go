package form

import (
	"sync"
	"testing"

	"github.com/iwvelando/mortgage-calculator/pkg/mortgage"
	"github.com/iwvelando/mortgage-calculator/pkg/validation"
)

func fill(f *Form, amount, term, rate, typ string) {
	f.Change(validation.FieldAmount, amount)
	f.Change(validation.FieldTerm, term)
	f.Change(validation.FieldRate, rate)
	f.Change(validation.FieldType, typ)
}

func TestSubmitEmptyForm(t *testing.T) {
	f := New(nil, nil)
	state := f.Submit()

	if state.Result != nil {
		t.Fatalf("expected no result, got %+v", state.Result)
	}
	if state.Phase() != Editing {
		t.Errorf("expected phase editing, got %s", state.Phase())
	}
	if len(state.Errors) != len(validation.Fields) {
		t.Fatalf("expected %d errors, got %v", len(validation.Fields), state.Errors)
	}
	for _, field := range validation.Fields {
		if state.Errors[field] != validation.MessageRequired {
			t.Errorf("field %s: got %q, expected %q", field, state.Errors[field], validation.MessageRequired)
		}
	}
}

func TestSubmitCalculates(t *testing.T) {
	tests := []struct {
		name    string
		typ     string
		monthly string
		total   string
	}{
		{"Repayment", "repayment", "584.59", "175377.00"},
		{"Interest only", "interest", "416.67", "125001.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New(nil, nil)
			fill(f, "100000", "25", "5", tt.typ)

			state := f.Submit()
			if len(state.Errors) != 0 {
				t.Fatalf("unexpected errors %v", state.Errors)
			}
			if state.Phase() != ResultShown {
				t.Fatalf("expected phase result-shown, got %s", state.Phase())
			}
			if got := state.Result.MonthlyString(); got != tt.monthly {
				t.Errorf("monthly = %s, expected %s", got, tt.monthly)
			}
			if got := state.Result.TotalString(); got != tt.total {
				t.Errorf("total = %s, expected %s", got, tt.total)
			}
		})
	}
}

func TestChangeClearsOnlyThatFieldError(t *testing.T) {
	f := New(nil, nil)
	f.Submit()

	f.Change(validation.FieldAmount, "100000")
	state := f.Snapshot()

	if _, ok := state.Errors[validation.FieldAmount]; ok {
		t.Error("expected amount error to be cleared")
	}
	if len(state.Errors) != 3 {
		t.Errorf("expected 3 remaining errors, got %v", state.Errors)
	}
	if state.Values.Amount != "100000" {
		t.Errorf("amount = %q, expected 100000", state.Values.Amount)
	}
}

func TestFocusClearsOnlyThatFieldError(t *testing.T) {
	f := New(nil, nil)
	f.Submit()

	f.Focus(validation.FieldRate)
	state := f.Snapshot()

	if _, ok := state.Errors[validation.FieldRate]; ok {
		t.Error("expected rate error to be cleared")
	}
	for _, field := range []validation.Field{validation.FieldAmount, validation.FieldTerm, validation.FieldType} {
		if state.Errors[field] != validation.MessageRequired {
			t.Errorf("field %s lost its error", field)
		}
	}
	if state.Values != (validation.Values{}) {
		t.Errorf("focus changed values: %+v", state.Values)
	}
}

func TestResultIsSnapshotOfSubmittedInputs(t *testing.T) {
	f := New(nil, nil)
	fill(f, "100000", "25", "5", "repayment")
	f.Submit()

	f.Change(validation.FieldTerm, "30")
	state := f.Snapshot()

	if state.Phase() != ResultShown {
		t.Fatal("expected result to remain shown after an edit")
	}
	if state.Result.Inputs.TermYears != 25 {
		t.Errorf("result term = %v, expected 25", state.Result.Inputs.TermYears)
	}
	if got := state.Result.TotalString(); got != "175377.00" {
		t.Errorf("total = %s, expected 175377.00", got)
	}
	if state.Values.Term != "30" {
		t.Errorf("term value = %q, expected 30", state.Values.Term)
	}
}

func TestFailedSubmitClearsResult(t *testing.T) {
	f := New(nil, nil)
	fill(f, "100000", "25", "5", "repayment")
	f.Submit()

	f.Change(validation.FieldAmount, "abc")
	state := f.Submit()

	if state.Result != nil {
		t.Errorf("expected result to be cleared, got %+v", state.Result)
	}
	if state.Errors[validation.FieldAmount] != validation.MessageInvalidAmount {
		t.Errorf("amount error = %q", state.Errors[validation.FieldAmount])
	}
}

func TestSuccessfulSubmitClearsErrors(t *testing.T) {
	f := New(nil, nil)
	f.Submit()
	fill(f, "1000", "1", "0", "repayment")
	f.Focus(validation.FieldAmount)

	state := f.Submit()
	if len(state.Errors) != 0 {
		t.Errorf("expected no errors, got %v", state.Errors)
	}
	if got := state.Result.MonthlyString(); got != "83.33" {
		t.Errorf("zero rate monthly = %s, expected 83.33", got)
	}
}

func TestReset(t *testing.T) {
	f := New(nil, nil)
	fill(f, "100000", "25", "5", "repayment")
	f.Submit()
	f.Change(validation.FieldAmount, "")
	f.Submit()

	f.Reset()
	state := f.Snapshot()

	if state.Values != (validation.Values{}) {
		t.Errorf("values not cleared: %+v", state.Values)
	}
	if state.Result != nil {
		t.Error("result not cleared")
	}
	if len(state.Errors) != 0 {
		t.Errorf("errors not cleared: %v", state.Errors)
	}
	if state.Phase() != Editing {
		t.Errorf("expected editing, got %s", state.Phase())
	}
}

func TestSubmitIsIdempotent(t *testing.T) {
	f := New(nil, nil)
	fill(f, "250000", "30", "3.75", "repayment")

	first := f.Submit()
	second := f.Submit()

	if first.Result == nil || second.Result == nil {
		t.Fatal("expected results from both submits")
	}
	if !first.Result.Monthly.Equal(second.Result.Monthly) {
		t.Errorf("monthly differs: %s vs %s", first.Result.Monthly, second.Result.Monthly)
	}
}

func TestSnapshotIsIndependent(t *testing.T) {
	f := New(nil, nil)
	f.Submit()

	state := f.Snapshot()
	delete(state.Errors, validation.FieldAmount)

	if f.Snapshot().Errors[validation.FieldAmount] != validation.MessageRequired {
		t.Error("mutating a snapshot changed the form")
	}
}

func TestRestore(t *testing.T) {
	f := New(nil, nil)
	fill(f, "100000", "25", "5", "interest")
	saved := f.Submit()

	restored := Restore(nil, mortgage.NewCalculator(nil), saved)
	state := restored.Snapshot()

	if state.Values != saved.Values {
		t.Errorf("values = %+v, expected %+v", state.Values, saved.Values)
	}
	if state.Result == nil || state.Result.MonthlyString() != "416.67" {
		t.Fatalf("unexpected restored result %+v", state.Result)
	}

	saved.Result.Inputs.TermYears = 99
	if restored.Snapshot().Result.Inputs.TermYears != 25 {
		t.Error("restored form shares the result with the saved state")
	}
}

func TestPhaseString(t *testing.T) {
	if Editing.String() != "editing" {
		t.Errorf("Editing.String() = %q", Editing.String())
	}
	if ResultShown.String() != "result-shown" {
		t.Errorf("ResultShown.String() = %q", ResultShown.String())
	}
}

func TestConcurrentAccess(t *testing.T) {
	f := New(nil, nil)
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fill(f, "100000", "25", "5", "repayment")
			f.Focus(validation.FieldRate)
			f.Submit()
			_ = f.Snapshot()
		}()
	}
	wg.Wait()

	state := f.Submit()
	if state.Result == nil || state.Result.MonthlyString() != "584.59" {
		t.Errorf("unexpected result after concurrent use: %+v", state)
	}
}
