package util

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestValidationError(t *testing.T) {
	t.Run("single error", func(t *testing.T) {
		err := NewValidationError("field is required")
		msg := err.Error()
		if !strings.Contains(msg, "field is required") {
			t.Errorf("Error message should contain the error: %s", msg)
		}
		if !errors.Is(err, ErrValidationFailed) {
			t.Errorf("ValidationError should unwrap to ErrValidationFailed")
		}
	})

	t.Run("multiple errors", func(t *testing.T) {
		err := NewValidationError("address is required", "interface is required")
		msg := err.Error()
		if !strings.Contains(msg, "address") || !strings.Contains(msg, "interface") {
			t.Errorf("Error message should contain all errors: %s", msg)
		}
	})
}

func TestValidationBuilder(t *testing.T) {
	t.Run("no errors", func(t *testing.T) {
		v := &ValidationBuilder{}
		v.Add(true, "this should not appear")

		if v.HasErrors() {
			t.Error("Should not have errors when all conditions are true")
		}
		if err := v.Build(); err != nil {
			t.Errorf("Build() should return nil when no errors: %v", err)
		}
	})

	t.Run("with errors", func(t *testing.T) {
		err := (&ValidationBuilder{}).
			Add(false, "first error").
			Add(true, "this passes").
			AddError("unconditional error").
			AddErrorf("formatted error: %d", 42).
			Build()

		var validationErr *ValidationError
		if !errors.As(err, &validationErr) {
			t.Fatalf("Expected *ValidationError, got %T", err)
		}
		if len(validationErr.Errors) != 3 {
			t.Errorf("Expected 3 errors, got %d", len(validationErr.Errors))
		}
	})
}

func TestTransportError(t *testing.T) {
	cause := context.DeadlineExceeded
	err := NewTransportError("/ip pool print count-only", cause)

	if !errors.Is(err, ErrTransport) {
		t.Error("TransportError should unwrap to ErrTransport")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("TransportError should unwrap to its cause")
	}
	if !strings.Contains(err.Error(), "/ip pool print count-only") {
		t.Errorf("Error message should contain the command: %s", err.Error())
	}

	bare := NewTransportError("", cause)
	if strings.Contains(bare.Error(), "executing") {
		t.Errorf("Error without command should not mention it: %s", bare.Error())
	}
}

func TestMalformedCountError(t *testing.T) {
	err := NewMalformedCountError("/ip address print count-only", "bad command name")

	if !errors.Is(err, ErrMalformedCount) {
		t.Error("MalformedCountError should unwrap to ErrMalformedCount")
	}
	if errors.Is(err, ErrTransport) {
		t.Error("MalformedCountError must not look like a transport failure")
	}
	if !strings.Contains(err.Error(), "bad command name") {
		t.Errorf("Error message should contain the offending line: %s", err.Error())
	}
}

func TestSentinelErrors(t *testing.T) {
	sentinels := []error{
		ErrNotConnected,
		ErrDeviceLocked,
		ErrNotFound,
		ErrInvalidConfig,
		ErrValidationFailed,
		ErrTransport,
		ErrMalformedCount,
	}

	for i, err1 := range sentinels {
		for j, err2 := range sentinels {
			if i != j && errors.Is(err1, err2) {
				t.Errorf("Sentinel errors should be distinct: %v == %v", err1, err2)
			}
		}
	}
}
