package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestMetadataFor(t *testing.T) {
	meta := MetadataFor(CodeInsufficientStock)
	if meta.HTTPStatus != http.StatusUnprocessableEntity {
		t.Fatalf("unexpected status: %d", meta.HTTPStatus)
	}
	if !meta.DetailsAllowed {
		t.Fatal("expected details to be allowed for insufficient stock")
	}

	fallback := MetadataFor(Code("NOT_A_CODE"))
	if fallback.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("unknown codes should map to internal, got %d", fallback.HTTPStatus)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stdErrors.New("row locked")
	err := Wrap(CodeDependency, cause, "adjust stock")

	if !stdErrors.Is(err, cause) {
		t.Fatal("expected wrapped cause to be discoverable via errors.Is")
	}
	if err.Code() != CodeDependency {
		t.Fatalf("unexpected code: %s", err.Code())
	}
}

func TestAsUnwrapsThroughChain(t *testing.T) {
	inner := New(CodeConflict, "shift already open")
	wrapped := fmt.Errorf("start shift: %w", inner)

	typed := As(wrapped)
	if typed == nil {
		t.Fatal("expected typed error in chain")
	}
	if typed.Code() != CodeConflict {
		t.Fatalf("unexpected code: %s", typed.Code())
	}
	if As(stdErrors.New("plain")) != nil {
		t.Fatal("plain errors should not convert")
	}
}

func TestWithDetails(t *testing.T) {
	err := New(CodeValidation, "quantity required").WithDetails(map[string]any{"field": "quantity"})
	details, ok := err.Details().(map[string]any)
	if !ok || details["field"] != "quantity" {
		t.Fatalf("unexpected details: %v", err.Details())
	}
}
