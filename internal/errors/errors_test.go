package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestValidationErrorMatchesSentinel(t *testing.T) {
	err := fmt.Errorf("adding fd: %w", NewValidationError("invested", 0.0, "must be positive"))

	if !Is(err, ErrInputValidation) {
		t.Fatalf("expected validation error to match ErrInputValidation")
	}

	var ve *ValidationError
	if !As(err, &ve) {
		t.Fatalf("expected As to find *ValidationError")
	}
	if ve.Field != "invested" {
		t.Errorf("Field = %q, want invested", ve.Field)
	}
}

func TestFetchErrorUnwrap(t *testing.T) {
	base := errors.New("http 503")
	err := NewFetchError("yahoo", "AAPL", base)

	if !Is(err, base) {
		t.Errorf("FetchError should unwrap to its cause")
	}
	if got, want := err.Error(), "fetch error [yahoo] AAPL: http 503"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if got, want := NewFetchError("amfi", "", base).Error(), "fetch error [amfi]: http 503"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestStoreErrorFormatting(t *testing.T) {
	err := NewStoreError("delete", "gold", 4, ErrIndexOutOfRange)
	if got, want := err.Error(), "store error [delete] gold[4]: index out of range"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !Is(err, ErrIndexOutOfRange) {
		t.Errorf("StoreError should unwrap to ErrIndexOutOfRange")
	}

	err = NewStoreError("save", "portfolio", -1, ErrDatabaseError)
	if got, want := err.Error(), "store error [save] portfolio: database error"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(nil, "context") != nil {
		t.Errorf("Wrap(nil) should be nil")
	}
	if Wrapf(nil, "context %d", 1) != nil {
		t.Errorf("Wrapf(nil) should be nil")
	}
	if got := Wrapf(ErrUnauthorized, "push %s", "data/portfolio.json").Error(); got != "push data/portfolio.json: unauthorized" {
		t.Errorf("Wrapf() = %q", got)
	}
}
