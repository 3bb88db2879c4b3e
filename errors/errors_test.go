package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseComplete,
				Kind:   KindLengthMismatch,
				Op:     "tag-recv",
				Detail: "length mismatch: 80 (got) != 100 (expected)",
			},
			contains: []string{"[complete]", "length_mismatch", "tag-recv", "80 (got)", "100 (expected)"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseIssue,
				Kind:  KindClosed,
			},
			contains: []string{"[issue]", "closed"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase: PhaseComplete,
				Kind:  KindTransfer,
				Op:    "stream-send",
				Cause: errors.New("endpoint reset by peer"),
			},
			contains: []string{"[complete]", "transfer", "stream-send", "caused by", "endpoint reset by peer"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Transfer("tag-send", cause)

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}

	if !errors.Is(errors.Unwrap(error(err)), cause) {
		t.Error("errors.Unwrap did not return cause")
	}

	// errors.Is walks the chain through the wrapper
	if !errors.Is(err, cause) {
		t.Error("errors.Is did not reach cause through wrapper")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseComplete,
		Kind:  KindLengthMismatch,
		Op:    "tag-recv",
	}

	// Same phase and kind
	if !err.Is(&Error{Phase: PhaseComplete, Kind: KindLengthMismatch}) {
		t.Error("Is should match same phase and kind")
	}

	// Different phase
	if err.Is(&Error{Phase: PhaseIssue, Kind: KindLengthMismatch}) {
		t.Error("Is should not match different phase")
	}

	// Different kind
	if err.Is(&Error{Phase: PhaseComplete, Kind: KindTransfer}) {
		t.Error("Is should not match different kind")
	}

	// Non-Error target
	if err.Is(errors.New("plain")) {
		t.Error("Is should not match a plain error")
	}
}

func TestError_As(t *testing.T) {
	var target *Error
	err := error(LengthMismatch(100, 80))

	if !errors.As(err, &target) {
		t.Fatal("errors.As failed")
	}
	if target.Expected != 100 || target.Received != 80 {
		t.Errorf("counts not preserved: expected=%d received=%d", target.Expected, target.Received)
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("wire fault")
	err := New(PhaseComplete, KindTransfer).
		Op("stream-recv").
		Tag(7).
		Counts(4096, 128).
		Cause(cause).
		Detail("short read after %d bytes", 128).
		Build()

	if err.Phase != PhaseComplete || err.Kind != KindTransfer {
		t.Errorf("phase/kind not set: %v/%v", err.Phase, err.Kind)
	}
	if err.Op != "stream-recv" {
		t.Errorf("op = %q", err.Op)
	}
	if err.Tag != 7 {
		t.Errorf("tag = %d", err.Tag)
	}
	if err.Expected != 4096 || err.Received != 128 {
		t.Errorf("counts = %d/%d", err.Expected, err.Received)
	}
	if err.Detail != "short read after 128 bytes" {
		t.Errorf("detail = %q", err.Detail)
	}
	if !errors.Is(err, cause) {
		t.Error("cause not chained")
	}
}

func TestLengthMismatch(t *testing.T) {
	err := LengthMismatch(100, 80)

	if err.Kind != KindLengthMismatch {
		t.Errorf("kind = %v", err.Kind)
	}
	if err.Expected != 100 || err.Received != 80 {
		t.Errorf("counts = %d/%d", err.Expected, err.Received)
	}

	want := "length mismatch: 80 (got) != 100 (expected)"
	if !strings.Contains(err.Error(), want) {
		t.Errorf("message %q missing %q", err.Error(), want)
	}
}

func TestTransfer_PreservesCauseMessage(t *testing.T) {
	cause := errors.New("transport fault: ib0 link down")
	err := Transfer("tag-send", cause)

	if !strings.Contains(err.Error(), cause.Error()) {
		t.Errorf("cause message altered: %q", err.Error())
	}
	if err.Kind != KindTransfer {
		t.Errorf("kind = %v", err.Kind)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		kind Kind
	}{
		{"closed", Closed(PhaseIssue, "endpoint"), KindClosed},
		{"canceled", Canceled("tag-recv"), KindCanceled},
		{"invalid input", InvalidInput(PhaseIssue, "nil buffer"), KindInvalidInput},
		{"not found", NotFound(PhaseCancel, "request"), KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Kind != tt.kind {
				t.Errorf("kind = %v, want %v", tt.err.Kind, tt.kind)
			}
			if tt.err.Error() == "" {
				t.Error("empty message")
			}
		})
	}
}
