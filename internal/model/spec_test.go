package model

import "testing"

func TestBoundContains(t *testing.T) {
	tests := []struct {
		name  string
		bound Bound[int]
		v     int
		want  bool
	}{
		{"unset", Bound[int]{}, 100, true},
		{"min edge", Bound[int]{Min: 6, HasMin: true}, 6, true},
		{"below min", Bound[int]{Min: 6, HasMin: true}, 5, false},
		{"max edge", Bound[int]{Max: 8, HasMax: true}, 8, true},
		{"above max", Bound[int]{Max: 8, HasMax: true}, 9, false},
		{"zero max", Bound[int]{Max: 0, HasMax: true}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.bound.Contains(tt.v); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestBoundValid(t *testing.T) {
	if !(Bound[float64]{Min: 1.5, Max: 1.5, HasMin: true, HasMax: true}).Valid() {
		t.Error("expected equal bounds to be valid")
	}
	if (Bound[int]{Min: 3, Max: 2, HasMin: true, HasMax: true}).Valid() {
		t.Error("expected min > max to be invalid")
	}
	if !(Bound[int]{Min: 3, HasMin: true}).Valid() {
		t.Error("expected one-sided bound to be valid")
	}
}

func TestParseWhitespacePolicy(t *testing.T) {
	for in, want := range map[string]WhitespacePolicy{
		"":        WhitespaceAny,
		"any":     WhitespaceAny,
		"Require": WhitespaceRequire,
		"forbid":  WhitespaceForbid,
	} {
		got, err := ParseWhitespacePolicy(in)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", in, err)
		}
		if got != want {
			t.Errorf("%q: expected %v, got %v", in, want, got)
		}
	}

	if _, err := ParseWhitespacePolicy("sometimes"); err == nil {
		t.Error("expected error for unknown policy")
	}
}

func TestBuffered(t *testing.T) {
	if (FilterSpec{Dedup: true}).Buffered() {
		t.Error("dedup alone should stream")
	}
	if !(FilterSpec{Sort: true}).Buffered() {
		t.Error("sort should buffer")
	}
	if !(FilterSpec{Randomize: true}).Buffered() {
		t.Error("randomize should buffer")
	}
	if !(FilterSpec{Output: OutputMode{Kind: OutputPercentSplit}}).Buffered() {
		t.Error("percent split should buffer")
	}
	if (FilterSpec{Output: OutputMode{Kind: OutputSizeSplit}}).Buffered() {
		t.Error("size split should stream")
	}
}
