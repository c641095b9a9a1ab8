package filter

import (
	"maps"
	"math"
	"slices"
	"unicode"
	"unicode/utf8"
)

// Profile is the per-line character census shared by the length,
// class and whitespace predicates.
type Profile struct {
	Runes      int
	Digits     int
	Lower      int
	Upper      int
	Special    int
	Whitespace bool
}

// Measure scans line once. Special counts every rune that is neither a
// letter nor a digit, whitespace included.
func Measure(line string) Profile {
	var p Profile
	for _, r := range line {
		p.Runes++
		switch {
		case unicode.IsDigit(r):
			p.Digits++
		case unicode.IsLower(r):
			p.Lower++
		case unicode.IsUpper(r):
			p.Upper++
		case unicode.IsLetter(r):
			// Letters without case (CJK, Arabic...) are alphanumeric but
			// belong to no counted class.
		default:
			p.Special++
			if unicode.IsSpace(r) {
				p.Whitespace = true
			}
		}
	}
	return p
}

// Entropy returns the Shannon entropy in bits per character of line's
// rune frequency distribution. The empty string has entropy 0.
func Entropy(line string) float64 {
	if line == "" {
		return 0
	}

	var ascii [utf8.RuneSelf]int
	var wide map[rune]int
	n := 0
	for _, r := range line {
		n++
		if r < utf8.RuneSelf {
			ascii[r]++
			continue
		}
		if wide == nil {
			wide = make(map[rune]int)
		}
		wide[r]++
	}

	total := float64(n)
	var h float64
	add := func(c int) {
		if c == 0 {
			return
		}
		p := float64(c) / total
		h -= p * math.Log2(p)
	}
	for _, c := range ascii {
		add(c)
	}
	// Float addition is order dependent; sum in rune order.
	for _, r := range slices.Sorted(maps.Keys(wide)) {
		add(wide[r])
	}
	// -0 for single-symbol strings.
	if h == 0 {
		return 0
	}
	return h
}
