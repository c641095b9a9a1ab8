// Package config builds a validated FilterSpec from flags, environment
// variables and config files, all resolved through viper.
package config

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/docker/go-units"
	"github.com/spf13/viper"

	"github.com/atikulmunna/sieve/internal/failure"
	"github.com/atikulmunna/sieve/internal/model"
	"github.com/atikulmunna/sieve/internal/pattern"
)

// Viper keys. Flag names match keys; env vars are SIEVE_ plus the key
// upper-cased with dashes as underscores.
const (
	KeyMinLength  = "min-length"
	KeyMaxLength  = "max-length"
	KeyMinEntropy = "min-entropy"
	KeyMaxEntropy = "max-entropy"
	KeyMinDigits  = "min-digits"
	KeyMaxDigits  = "max-digits"
	KeyMinLower   = "min-lower"
	KeyMaxLower   = "max-lower"
	KeyMinUpper   = "min-upper"
	KeyMaxUpper   = "max-upper"
	KeyMinSpecial = "min-special"
	KeyMaxSpecial = "max-special"
	KeyInclude    = "include"
	KeyExclude    = "exclude"
	KeyBasicRegex = "basic-regex"
	KeyIgnoreCase = "ignore-case"
	KeyWhitespace = "whitespace"
	KeySort       = "sort"
	KeyDedup      = "dedup"
	KeyRandomize  = "randomize"
	KeySeed       = "seed"
	KeyOutput     = "output"
	KeySplitSize  = "split-size"
	KeySplitPct   = "split-pct"
)

// PercentTolerance is how far a percentage list may stray from 100.
const PercentTolerance = 0.01

// Build reads every filter setting from v and validates it. All failures
// are failure.KindInvalidSpec.
func Build(v *viper.Viper) (model.FilterSpec, error) {
	var spec model.FilterSpec
	var err error

	intBounds := []struct {
		dst      *model.Bound[int]
		min, max string
	}{
		{&spec.Length, KeyMinLength, KeyMaxLength},
		{&spec.Digits, KeyMinDigits, KeyMaxDigits},
		{&spec.Lower, KeyMinLower, KeyMaxLower},
		{&spec.Upper, KeyMinUpper, KeyMaxUpper},
		{&spec.Special, KeyMinSpecial, KeyMaxSpecial},
	}
	for _, b := range intBounds {
		if *b.dst, err = intBound(v, b.min, b.max); err != nil {
			return spec, err
		}
	}
	if spec.Entropy, err = floatBound(v, KeyMinEntropy, KeyMaxEntropy); err != nil {
		return spec, err
	}

	spec.CaseInsensitive = v.GetBool(KeyIgnoreCase)
	syntax := pattern.Extended
	if v.GetBool(KeyBasicRegex) {
		syntax = pattern.Basic
	}
	if spec.Include, err = compile(v, KeyInclude, syntax, spec.CaseInsensitive); err != nil {
		return spec, err
	}
	if spec.Exclude, err = compile(v, KeyExclude, syntax, spec.CaseInsensitive); err != nil {
		return spec, err
	}

	if spec.Whitespace, err = model.ParseWhitespacePolicy(v.GetString(KeyWhitespace)); err != nil {
		return spec, failure.InvalidSpec("--%s: %v", KeyWhitespace, err)
	}

	spec.Sort = v.GetBool(KeySort)
	spec.Dedup = v.GetBool(KeyDedup)
	spec.Randomize = v.GetBool(KeyRandomize)
	if v.IsSet(KeySeed) {
		seed, err := strconv.ParseUint(v.GetString(KeySeed), 10, 64)
		if err != nil {
			return spec, failure.InvalidSpec("--%s: %v", KeySeed, err)
		}
		spec.Seed, spec.HasSeed = seed, true
	}

	if spec.Output, err = outputMode(v); err != nil {
		return spec, err
	}
	return spec, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func intBound(v *viper.Viper, minKey, maxKey string) (model.Bound[int], error) {
	var b model.Bound[int]
	var err error
	if b.Min, b.HasMin, err = nonNegInt(v, minKey); err != nil {
		return b, err
	}
	if b.Max, b.HasMax, err = nonNegInt(v, maxKey); err != nil {
		return b, err
	}
	if !b.Valid() {
		return b, failure.InvalidSpec("--%s %d exceeds --%s %d", minKey, b.Min, maxKey, b.Max)
	}
	return b, nil
}

func nonNegInt(v *viper.Viper, key string) (int, bool, error) {
	if !v.IsSet(key) {
		return 0, false, nil
	}
	raw := strings.TrimSpace(v.GetString(key))
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, failure.InvalidSpec("--%s: %q is not an integer", key, raw)
	}
	if n < 0 {
		return 0, false, failure.InvalidSpec("--%s: must be non-negative, got %d", key, n)
	}
	return n, true, nil
}

func floatBound(v *viper.Viper, minKey, maxKey string) (model.Bound[float64], error) {
	var b model.Bound[float64]
	var err error
	if b.Min, b.HasMin, err = nonNegFloat(v, minKey); err != nil {
		return b, err
	}
	if b.Max, b.HasMax, err = nonNegFloat(v, maxKey); err != nil {
		return b, err
	}
	if !b.Valid() {
		return b, failure.InvalidSpec("--%s %g exceeds --%s %g", minKey, b.Min, maxKey, b.Max)
	}
	return b, nil
}

func nonNegFloat(v *viper.Viper, key string) (float64, bool, error) {
	if !v.IsSet(key) {
		return 0, false, nil
	}
	raw := strings.TrimSpace(v.GetString(key))
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false, failure.InvalidSpec("--%s: %q is not a number", key, raw)
	}
	if f < 0 {
		return 0, false, failure.InvalidSpec("--%s: must be non-negative, got %g", key, f)
	}
	return f, true, nil
}

func compile(v *viper.Viper, key string, syntax pattern.Syntax, ignoreCase bool) (*regexp.Regexp, error) {
	expr := v.GetString(key)
	if expr == "" {
		return nil, nil
	}
	re, err := pattern.Compile(expr, syntax, ignoreCase)
	if err != nil {
		return nil, failure.InvalidSpec("--%s: %v", key, err)
	}
	return re, nil
}

func outputMode(v *viper.Viper) (model.OutputMode, error) {
	mode := model.OutputMode{Path: v.GetString(KeyOutput)}
	size := strings.TrimSpace(v.GetString(KeySplitSize))
	pcts := v.GetStringSlice(KeySplitPct)

	if size != "" && len(pcts) > 0 {
		return mode, failure.InvalidSpec("--%s and --%s are mutually exclusive", KeySplitSize, KeySplitPct)
	}
	if (size != "" || len(pcts) > 0) && mode.Path == "" {
		return mode, failure.InvalidSpec("split output requires --%s", KeyOutput)
	}

	switch {
	case size != "":
		n, err := units.RAMInBytes(size)
		if err != nil {
			return mode, failure.InvalidSpec("--%s: %v", KeySplitSize, err)
		}
		if n <= 0 {
			return mode, failure.InvalidSpec("--%s: must be positive, got %d", KeySplitSize, n)
		}
		mode.Kind, mode.MaxBytes = model.OutputSizeSplit, n

	case len(pcts) > 0:
		list, err := ParsePercentages(pcts)
		if err != nil {
			return mode, err
		}
		mode.Kind, mode.Percentages = model.OutputPercentSplit, list
	}
	return mode, nil
}

// ParsePercentages parses a percentage list. Entries may themselves be
// comma separated. Each must be non-negative and the sum must be within
// PercentTolerance of 100.
func ParsePercentages(raw []string) ([]float64, error) {
	var out []float64
	var sum float64
	for _, item := range raw {
		for _, field := range strings.Split(item, ",") {
			field = strings.TrimSuffix(strings.TrimSpace(field), "%")
			if field == "" {
				continue
			}
			p, err := strconv.ParseFloat(field, 64)
			if err != nil || math.IsNaN(p) || math.IsInf(p, 0) {
				return nil, failure.InvalidSpec("--%s: %q is not a number", KeySplitPct, field)
			}
			if p < 0 {
				return nil, failure.InvalidSpec("--%s: percentages must be non-negative, got %g", KeySplitPct, p)
			}
			out = append(out, p)
			sum += p
		}
	}
	if len(out) == 0 {
		return nil, failure.InvalidSpec("--%s: no percentages given", KeySplitPct)
	}
	if math.Abs(sum-100) > PercentTolerance {
		return nil, failure.InvalidSpec("--%s: percentages sum to %g, want 100", KeySplitPct, sum)
	}
	return out, nil
}
