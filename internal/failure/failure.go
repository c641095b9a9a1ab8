// Package failure defines the typed errors surfaced by a sieve run.
//
// Every error carries the Kind of failure and the Stage that produced it,
// so callers can map failures to exit codes and still print a readable
// diagnostic.
package failure

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidSpec
	KindSourceUnavailable
	KindWriteFailure
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindInvalidSpec:
		return "invalid spec"
	case KindSourceUnavailable:
		return "source unavailable"
	case KindWriteFailure:
		return "write failure"
	case KindConflict:
		return "conflict requires confirmation"
	default:
		return "unknown"
	}
}

// Stage names the part of the run that failed.
type Stage string

const (
	StageConfig    Stage = "config"
	StageRead      Stage = "read"
	StageFilter    Stage = "filter"
	StagePartition Stage = "partition"
	StageWrite     Stage = "write"
)

// Sentinels for errors.Is. An *Error matches the sentinel of its Kind.
var (
	ErrInvalidSpec       = errors.New("invalid spec")
	ErrSourceUnavailable = errors.New("source unavailable")
	ErrWriteFailure      = errors.New("write failure")
	ErrConflict          = errors.New("conflict requires confirmation")
)

// Error is a classified failure.
type Error struct {
	Kind   Kind
	Stage  Stage
	Detail string
	Err    error
}

// New returns an *Error. err may be nil.
func New(kind Kind, stage Stage, detail string, err error) *Error {
	return &Error{Kind: kind, Stage: stage, Detail: detail, Err: err}
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Stage, e.Kind)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel corresponding to e.Kind.
func (e *Error) Is(target error) bool {
	return target != nil && target == sentinel(e.Kind)
}

func sentinel(k Kind) error {
	switch k {
	case KindInvalidSpec:
		return ErrInvalidSpec
	case KindSourceUnavailable:
		return ErrSourceUnavailable
	case KindWriteFailure:
		return ErrWriteFailure
	case KindConflict:
		return ErrConflict
	default:
		return nil
	}
}

// InvalidSpec is shorthand for a config-stage KindInvalidSpec error.
func InvalidSpec(format string, args ...any) *Error {
	return New(KindInvalidSpec, StageConfig, fmt.Sprintf(format, args...), nil)
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnknown
}

// StageOf returns the Stage of the first *Error in err's chain, or "".
func StageOf(err error) Stage {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Stage
	}
	return ""
}
