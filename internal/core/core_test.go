package core_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/filaops/core/internal/core"
)

func TestIDJSONRoundTrip(t *testing.T) {
	id := core.NewID()

	data, err := json.Marshal(id)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var got core.ID
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got != id {
		t.Errorf("round-tripped id = %v, want %v", got, id)
	}
}

func TestParseIDRejectsGarbage(t *testing.T) {
	if _, err := core.ParseID("not-a-uuid"); err == nil {
		t.Fatal("expected an error parsing a non-uuid string")
	}
}

func TestIDIsZero(t *testing.T) {
	var zero core.ID
	if !zero.IsZero() {
		t.Error("expected the zero-value ID to report IsZero")
	}
	if core.NewID().IsZero() {
		t.Error("a freshly generated ID should not be zero")
	}
}

func TestErrorIsMatchesByCode(t *testing.T) {
	a := core.NewError(core.ErrValidation, core.CodeBOMCycle, "cycle at A->B")
	sentinel := core.NewError(core.ErrValidation, core.CodeBOMCycle, "")

	if !errors.Is(a, sentinel) {
		t.Error("expected errors.Is to match two *Error values sharing a Code")
	}

	other := core.NewError(core.ErrValidation, core.CodeDuplicateSKU, "")
	if errors.Is(a, other) {
		t.Error("errors.Is should not match across different Codes")
	}
}

func TestWrapPreservesUnderlyingCauseForUnwrap(t *testing.T) {
	cause := errors.New("driver failure")
	wrapped := core.Wrap(core.ErrInternal, core.CodeLedgerCorruption, "ledger write failed", cause)

	if !errors.Is(wrapped, cause) {
		t.Error("expected errors.Is to reach the wrapped cause via Unwrap")
	}
}

func TestErrorMessageIncludesFieldWhenPresent(t *testing.T) {
	withField := core.NewFieldError(core.ErrValidation, core.CodeNegativeQuantity, "qty must be positive", "qty_ordered")
	if got := withField.Error(); got == "" {
		t.Fatal("expected a non-empty error message")
	}

	withoutField := core.NewError(core.ErrValidation, core.CodeNegativeQuantity, "qty must be positive")
	if withField.Error() == withoutField.Error() {
		t.Error("expected the field-qualified message to differ from the unqualified one")
	}
}
