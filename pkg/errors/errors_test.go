package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAsUnwrapsThroughWrapping(t *testing.T) {
	base := New(CodeNotFound, "pack not found")
	wrapped := fmt.Errorf("loading cart: %w", base)

	typed := As(wrapped)
	if typed == nil {
		t.Fatal("expected typed error")
	}
	if typed.Code() != CodeNotFound {
		t.Fatalf("unexpected code %s", typed.Code())
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stdErrors.New("boom")
	err := Wrap(CodeDependency, cause, "submit order")

	if !stdErrors.Is(err, cause) {
		t.Fatal("expected cause to survive unwrapping")
	}
	if err.Message() != "submit order" {
		t.Fatalf("unexpected message %q", err.Message())
	}
}

func TestMetadataForUnknownCodeFallsBackToInternal(t *testing.T) {
	meta := MetadataFor(Code("NOPE"))
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal fallback, got %d", meta.HTTPStatus)
	}
}

func TestInsufficientFundsMapsToPaymentRequired(t *testing.T) {
	meta := MetadataFor(CodeInsufficientFunds)
	if meta.HTTPStatus != http.StatusPaymentRequired {
		t.Fatalf("unexpected status %d", meta.HTTPStatus)
	}
	if !meta.Retryable {
		t.Fatal("insufficient funds should be retryable after top-up")
	}
}

func TestDumpCollectsChain(t *testing.T) {
	err := Wrap(CodeDependency, stdErrors.New("connection refused"), "fetch promotions")
	d := Dump(err)
	if d.Code != CodeDependency {
		t.Fatalf("unexpected code %s", d.Code)
	}
	if len(d.Chain) < 2 {
		t.Fatalf("expected chain to include cause, got %v", d.Chain)
	}
}
