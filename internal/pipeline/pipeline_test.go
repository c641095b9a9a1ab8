package pipeline

import (
	"errors"
	"iter"
	"math/rand/v2"
	"regexp"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atikulmunna/sieve/internal/failure"
	"github.com/atikulmunna/sieve/internal/filter"
	"github.com/atikulmunna/sieve/internal/model"
)

// sliceSource is a single-pass LineSource over fixed lines.
type sliceSource struct {
	lines []string
	reads int
	err   error
}

func (s *sliceSource) Lines() iter.Seq[string] {
	return func(yield func(string) bool) {
		s.reads++
		if s.reads > 1 {
			return
		}
		for _, l := range s.lines {
			if !yield(l) {
				return
			}
		}
	}
}

func (s *sliceSource) Err() error { return s.err }

func drain(t *testing.T, l Lines) []string {
	t.Helper()
	var out []string
	for line := range l.All() {
		out = append(out, line)
	}
	require.NoError(t, l.Err())
	return out
}

func TestStreamingPathIsLazy(t *testing.T) {
	src := &sliceSource{lines: []string{"a", "b"}}

	l, err := Build(src, model.FilterSpec{}, nil)
	require.NoError(t, err)

	_, isStream := l.(*Stream)
	assert.True(t, isStream, "expected a *Stream without order-breaking stages")
	assert.Equal(t, 0, src.reads, "stream must not read before iteration")
	assert.Equal(t, []string{"a", "b"}, drain(t, l))
}

func TestFilterScenarioPreservesOrder(t *testing.T) {
	src := &sliceSource{lines: []string{"Pass1!", "password", "P@ssw0rd123", "abc"}}
	spec := model.FilterSpec{
		Length:  model.Bound[int]{Min: 6, HasMin: true},
		Digits:  model.Bound[int]{Min: 1, HasMin: true},
		Special: model.Bound[int]{Min: 1, HasMin: true},
	}
	stats := model.NewRunStats()

	l, err := Build(src, spec, stats)
	require.NoError(t, err)

	assert.Equal(t, []string{"Pass1!", "P@ssw0rd123"}, drain(t, l))
	assert.EqualValues(t, 4, stats.Read)
	assert.EqualValues(t, 2, stats.Kept)
	assert.EqualValues(t, 1, stats.Rejected[filter.PredLength])
	assert.EqualValues(t, 1, stats.Rejected[filter.PredDigits])
}

func TestDedupKeepsFirstSeenOrder(t *testing.T) {
	src := &sliceSource{lines: []string{"b", "a", "b", "c", "a"}}
	stats := model.NewRunStats()

	l, err := Build(src, model.FilterSpec{Dedup: true}, stats)
	require.NoError(t, err)

	assert.IsType(t, &Stream{}, l)
	assert.Equal(t, []string{"b", "a", "c"}, drain(t, l))
	assert.EqualValues(t, 2, stats.Duplicates)
	assert.EqualValues(t, 3, stats.Emitted())
}

func TestSortBuffers(t *testing.T) {
	src := &sliceSource{lines: []string{"pear", "apple", "fig", "apple"}}

	l, err := Build(src, model.FilterSpec{Sort: true}, nil)
	require.NoError(t, err)

	assert.IsType(t, &Buffer{}, l)
	assert.Equal(t, []string{"apple", "apple", "fig", "pear"}, drain(t, l))
}

func TestSortDedup(t *testing.T) {
	src := &sliceSource{lines: []string{"pear", "apple", "fig", "apple", "pear"}}
	stats := model.NewRunStats()

	l, err := Build(src, model.FilterSpec{Sort: true, Dedup: true}, stats)
	require.NoError(t, err)

	assert.Equal(t, []string{"apple", "fig", "pear"}, drain(t, l))
	assert.EqualValues(t, 2, stats.Duplicates)
}

func TestDedupSortCommute(t *testing.T) {
	input := []string{"d", "b", "a", "d", "c", "b", "a"}

	sortedThenDeduped := slices.Compact(slices.Sorted(slices.Values(input)))

	l, err := Build(&sliceSource{lines: input}, model.FilterSpec{Dedup: true}, nil)
	require.NoError(t, err)
	dedupedThenSorted := drain(t, l)
	slices.Sort(dedupedThenSorted)

	assert.Equal(t, sortedThenDeduped, dedupedThenSorted)
}

func TestRandomizeIsPermutation(t *testing.T) {
	input := make([]string, 200)
	for i := range input {
		input[i] = string(rune('A'+i%26)) + string(rune('a'+i/26))
	}

	spec := model.FilterSpec{Sort: true, Randomize: true, Seed: 42, HasSeed: true}
	l, err := Build(&sliceSource{lines: input}, spec, nil)
	require.NoError(t, err)
	got := drain(t, l)

	assert.ElementsMatch(t, input, got)
	assert.False(t, slices.IsSorted(got), "randomize must override the sort order")

	// Same seed, same permutation.
	again, err := Build(&sliceSource{lines: input}, spec, nil)
	require.NoError(t, err)
	assert.Equal(t, got, drain(t, again))
}

func TestShuffleUniformity(t *testing.T) {
	// Each of the 6 permutations of three lines should appear about 1/6 of the time.
	counts := make(map[string]int)
	r := rand.New(rand.NewPCG(1, 2))
	const trials = 60000
	for i := 0; i < trials; i++ {
		b := NewBuffer([]string{"a", "b", "c"})
		b.Shuffle(r)
		key := ""
		for l := range b.All() {
			key += l
		}
		counts[key]++
	}

	require.Len(t, counts, 6)
	for perm, n := range counts {
		assert.InDelta(t, trials/6, n, trials/60, "permutation %s", perm)
	}
}

func TestPercentSplitForcesBuffer(t *testing.T) {
	spec := model.FilterSpec{Output: model.OutputMode{Kind: model.OutputPercentSplit, Percentages: []float64{50, 50}}}

	l, err := Build(&sliceSource{lines: []string{"x", "y"}}, spec, nil)
	require.NoError(t, err)

	buf, ok := l.(*Buffer)
	require.True(t, ok)
	assert.Equal(t, 2, buf.Len())
}

func TestRegexAndEntropyInPipeline(t *testing.T) {
	spec := model.FilterSpec{
		Include: regexp.MustCompile(`^[a-z]`),
		Entropy: model.Bound[float64]{Min: 1, HasMin: true},
	}
	l, err := Build(&sliceSource{lines: []string{"aaaa", "abab", "Abcd", "zyx"}}, spec, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"abab", "zyx"}, drain(t, l))
}

func TestSourceErrorPropagates(t *testing.T) {
	readErr := failure.New(failure.KindSourceUnavailable, failure.StageRead, "words.txt", errors.New("disk gone"))

	// Streaming: surfaced after iteration.
	l, err := Build(&sliceSource{lines: []string{"a"}, err: readErr}, model.FilterSpec{}, nil)
	require.NoError(t, err)
	for range l.All() {
	}
	assert.ErrorIs(t, l.Err(), failure.ErrSourceUnavailable)

	// Buffered: surfaced by Build before any output.
	_, err = Build(&sliceSource{lines: []string{"a"}, err: readErr}, model.FilterSpec{Sort: true}, nil)
	assert.ErrorIs(t, err, failure.ErrSourceUnavailable)
}

func TestStreamIsSinglePass(t *testing.T) {
	l, err := Build(&sliceSource{lines: []string{"a"}}, model.FilterSpec{}, nil)
	require.NoError(t, err)
	drain(t, l)

	for range l.All() {
		t.Fatal("expected no lines on second pass")
	}
	assert.ErrorIs(t, l.Err(), ErrConsumed)
}

func TestCollectKeepsBuffer(t *testing.T) {
	b := NewBuffer([]string{"x"})
	got, err := Collect(b)
	require.NoError(t, err)
	assert.Same(t, b, got)
}
