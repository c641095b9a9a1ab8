package model

import (
	"fmt"
	"regexp"
	"strings"
)

// Bound is an optional inclusive range. An unset side never rejects.
type Bound[T int | float64] struct {
	Min    T
	Max    T
	HasMin bool
	HasMax bool
}

// Active reports whether either side of the bound is set.
func (b Bound[T]) Active() bool { return b.HasMin || b.HasMax }

// Contains reports whether v lies within the configured sides.
func (b Bound[T]) Contains(v T) bool {
	if b.HasMin && v < b.Min {
		return false
	}
	if b.HasMax && v > b.Max {
		return false
	}
	return true
}

// Valid reports whether min <= max when both are set.
func (b Bound[T]) Valid() bool {
	return !(b.HasMin && b.HasMax) || b.Min <= b.Max
}

// WhitespacePolicy decides how lines containing whitespace are treated.
type WhitespacePolicy int

const (
	WhitespaceAny WhitespacePolicy = iota
	WhitespaceRequire
	WhitespaceForbid
)

func (w WhitespacePolicy) String() string {
	switch w {
	case WhitespaceRequire:
		return "require"
	case WhitespaceForbid:
		return "forbid"
	default:
		return "any"
	}
}

// ParseWhitespacePolicy parses "any", "require" or "forbid".
func ParseWhitespacePolicy(s string) (WhitespacePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "any":
		return WhitespaceAny, nil
	case "require":
		return WhitespaceRequire, nil
	case "forbid":
		return WhitespaceForbid, nil
	default:
		return WhitespaceAny, fmt.Errorf("unknown whitespace policy %q (want any, require or forbid)", s)
	}
}

// OutputKind selects how surviving lines are partitioned.
type OutputKind int

const (
	OutputSingle OutputKind = iota
	OutputSizeSplit
	OutputPercentSplit
)

func (k OutputKind) String() string {
	switch k {
	case OutputSizeSplit:
		return "size-split"
	case OutputPercentSplit:
		return "percent-split"
	default:
		return "single"
	}
}

// OutputMode is the destination of a run. Path "" in single mode means stdout.
type OutputMode struct {
	Kind        OutputKind
	Path        string
	MaxBytes    int64
	Percentages []float64
}

// FilterSpec is the validated configuration of one run. It is built once
// and treated as read-only afterwards.
type FilterSpec struct {
	Length  Bound[int]
	Entropy Bound[float64]
	Digits  Bound[int]
	Lower   Bound[int]
	Upper   Bound[int]
	Special Bound[int]

	// Include and Exclude are compiled with CaseInsensitive already applied.
	Include         *regexp.Regexp
	Exclude         *regexp.Regexp
	CaseInsensitive bool

	Whitespace WhitespacePolicy

	Sort      bool
	Dedup     bool
	Randomize bool
	Seed      uint64
	HasSeed   bool

	Output OutputMode
}

// Buffered reports whether the spec forces full materialization of the
// surviving lines: sorting, shuffling and percentage splits all need the
// complete set before the first line can be written.
func (s FilterSpec) Buffered() bool {
	return s.Sort || s.Randomize || s.Output.Kind == OutputPercentSplit
}
