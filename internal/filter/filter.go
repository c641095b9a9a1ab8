// Package filter decides, line by line, which words survive a FilterSpec.
//
// A spec is compiled once into an Evaluator holding one closure per active
// predicate. Evaluation is pure: no logging, no shared state, so the same
// Evaluator may be applied any number of times with identical results.
package filter

import (
	"github.com/atikulmunna/sieve/internal/model"
)

// Predicate names, as reported in rejection counters.
const (
	PredLength     = "length"
	PredDigits     = "digits"
	PredLower      = "lower"
	PredUpper      = "upper"
	PredSpecial    = "special"
	PredWhitespace = "whitespace"
	PredEntropy    = "entropy"
	PredInclude    = "include"
	PredExclude    = "exclude"
)

// Predicate is one boolean test over a line and its profile.
type Predicate struct {
	Name string
	Test func(line string, p *Profile) bool
}

// Evaluator applies the active predicates of a spec with AND semantics.
type Evaluator struct {
	preds       []Predicate
	needProfile bool
}

// New compiles spec into an Evaluator. Inactive predicates are omitted, so
// a spec with nothing configured yields the identity filter.
func New(spec model.FilterSpec) *Evaluator {
	e := &Evaluator{}

	// Cheap census checks first, regex and entropy last.
	if spec.Length.Active() {
		b := spec.Length
		e.addProfiled(PredLength, func(_ string, p *Profile) bool { return b.Contains(p.Runes) })
	}
	classes := []struct {
		name  string
		bound model.Bound[int]
		count func(*Profile) int
	}{
		{PredDigits, spec.Digits, func(p *Profile) int { return p.Digits }},
		{PredLower, spec.Lower, func(p *Profile) int { return p.Lower }},
		{PredUpper, spec.Upper, func(p *Profile) int { return p.Upper }},
		{PredSpecial, spec.Special, func(p *Profile) int { return p.Special }},
	}
	for _, c := range classes {
		if !c.bound.Active() {
			continue
		}
		b, count := c.bound, c.count
		e.addProfiled(c.name, func(_ string, p *Profile) bool { return b.Contains(count(p)) })
	}

	switch spec.Whitespace {
	case model.WhitespaceRequire:
		e.addProfiled(PredWhitespace, func(_ string, p *Profile) bool { return p.Whitespace })
	case model.WhitespaceForbid:
		e.addProfiled(PredWhitespace, func(_ string, p *Profile) bool { return !p.Whitespace })
	}

	if spec.Include != nil {
		re := spec.Include
		e.add(PredInclude, func(line string, _ *Profile) bool { return re.MatchString(line) })
	}
	if spec.Exclude != nil {
		re := spec.Exclude
		e.add(PredExclude, func(line string, _ *Profile) bool { return !re.MatchString(line) })
	}

	if spec.Entropy.Active() {
		b := spec.Entropy
		e.add(PredEntropy, func(line string, _ *Profile) bool { return b.Contains(Entropy(line)) })
	}

	return e
}

func (e *Evaluator) add(name string, test func(string, *Profile) bool) {
	e.preds = append(e.preds, Predicate{Name: name, Test: test})
}

func (e *Evaluator) addProfiled(name string, test func(string, *Profile) bool) {
	e.needProfile = true
	e.add(name, test)
}

// Evaluate reports whether line passes every active predicate.
func (e *Evaluator) Evaluate(line string) bool {
	_, ok := e.Check(line)
	return ok
}

// Check is Evaluate that also names the first predicate that rejected the
// line. The name is "" when the line passes.
func (e *Evaluator) Check(line string) (string, bool) {
	var p Profile
	if e.needProfile {
		p = Measure(line)
	}
	for _, pred := range e.preds {
		if !pred.Test(line, &p) {
			return pred.Name, false
		}
	}
	return "", true
}

// Active returns the names of the compiled predicates in evaluation order.
func (e *Evaluator) Active() []string {
	names := make([]string, len(e.preds))
	for i, p := range e.preds {
		names[i] = p.Name
	}
	return names
}

// Evaluate is a convenience for one-off checks. Callers filtering many
// lines should compile an Evaluator with New instead.
func Evaluate(line string, spec model.FilterSpec) bool {
	return New(spec).Evaluate(line)
}
