package errors_test

import (
	"testing"

	"github.com/fonero-project/fnonetwork/errors"
)

func TestEPropagatesKind(t *testing.T) {
	const op errors.Op = "network.SetServer"
	base := errors.E(errors.Op("pool.StartInterface"), errors.IO, "dial tcp: refused")
	wrapped := errors.E(op, base)

	if !errors.Match(errors.IO, wrapped) {
		t.Fatalf("expected wrapped error to match Kind IO, got %v", wrapped)
	}
	if got := wrapped.(*errors.Error).Ops(); len(got) != 2 {
		t.Fatalf("expected 2 recorded ops, got %d: %v", len(got), got)
	}
}

func TestEPanicsWithoutArgs(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic calling errors.E with no arguments")
		}
	}()
	errors.E()
}

func TestMatchFalseForPlainError(t *testing.T) {
	if errors.Match(errors.IO, errors.Errorf("plain")) {
		t.Fatal("plain *Error with no Kind should not match")
	}
}
