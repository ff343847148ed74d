package types

import (
	"errors"
	"fmt"
	"testing"
)

func TestCodedErrorWrapsCause(t *testing.T) {
	cause := errors.New("boom")
	err := fmt.Errorf("close tab: %w", NewError(CodeHostFailure, "close failed", cause))

	if !HasCode(err, CodeHostFailure) {
		t.Fatalf("HasCode() = false; want true for %v", err)
	}
	if HasCode(err, CodeTabNotFound) {
		t.Fatalf("HasCode(%s) = true; want false", CodeTabNotFound)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("errors.Is(err, cause) = false; want true")
	}
	if got, want := err.Error(), "close tab: HOST_FAILURE: close failed: boom"; got != want {
		t.Fatalf("Error() = %q; want %q", got, want)
	}
}

func TestHasCodePlainError(t *testing.T) {
	if HasCode(errors.New("plain"), CodeValidation) {
		t.Fatal("HasCode() = true for plain error; want false")
	}
}
