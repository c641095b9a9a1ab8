package failure

import (
	"errors"
	"fmt"
	"os"
	"testing"
)

func TestErrorMessage(t *testing.T) {
	err := New(KindSourceUnavailable, StageRead, "open words.txt", os.ErrNotExist)

	want := "read: source unavailable: open words.txt: file does not exist"
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}
}

func TestErrorsIsSentinel(t *testing.T) {
	err := fmt.Errorf("run: %w", New(KindWriteFailure, StageWrite, "", os.ErrPermission))

	if !errors.Is(err, ErrWriteFailure) {
		t.Error("expected errors.Is to match ErrWriteFailure")
	}
	if errors.Is(err, ErrConflict) {
		t.Error("did not expect errors.Is to match ErrConflict")
	}
	if !errors.Is(err, os.ErrPermission) {
		t.Error("expected wrapped cause to stay reachable")
	}
}

func TestKindAndStageOf(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", InvalidSpec("min-length %d exceeds max-length %d", 9, 3))

	if KindOf(err) != KindInvalidSpec {
		t.Errorf("expected KindInvalidSpec, got %v", KindOf(err))
	}
	if StageOf(err) != StageConfig {
		t.Errorf("expected stage config, got %q", StageOf(err))
	}
	if KindOf(errors.New("plain")) != KindUnknown {
		t.Error("expected KindUnknown for an unclassified error")
	}
}
