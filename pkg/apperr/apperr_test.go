package apperr

import (
	"errors"
	"testing"
)

func TestWrapPreservesKindAndCause(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(NotFound, cause, "task %s", "t1")

	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected errors.Is to match ErrNotFound, got %v", err)
	}
	if errors.Is(err, ErrValidation) {
		t.Fatalf("did not expect match against ErrValidation")
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause to still be reachable via errors.Is")
	}
}

func TestNewFormatsMessage(t *testing.T) {
	err := New(Validation, "provider %q is blank", "")
	if err.Kind != Validation {
		t.Fatalf("expected Validation kind, got %v", err.Kind)
	}
	if err.Error() == "" {
		t.Fatalf("expected non-empty message")
	}
}
