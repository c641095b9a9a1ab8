// Package pipeline runs the filter stages between a line source and the
// output partitioner.
//
// The result of Build is one of two concrete types, and the type is the
// memory contract:
//
//   - *Stream filters lazily, one line at a time. Memory is O(longest line),
//     or O(distinct survivors) when dedup is on.
//   - *Buffer holds every surviving line. Sort, randomize and percentage
//     splits need it, and their memory is O(total survivors).
//
// Stage order is fixed: filter, dedup, sort, randomize.
package pipeline

import (
	"errors"
	"iter"
	"math/rand/v2"
	"slices"

	"github.com/atikulmunna/sieve/internal/failure"
	"github.com/atikulmunna/sieve/internal/filter"
	"github.com/atikulmunna/sieve/internal/model"
)

// LineSource is a single-pass producer of raw lines.
type LineSource interface {
	Lines() iter.Seq[string]
	Err() error
}

// Lines is the output of the pipeline: a *Stream or a *Buffer.
type Lines interface {
	All() iter.Seq[string]
	Err() error
	lines()
}

// ErrConsumed is reported when a Stream is ranged over a second time.
var ErrConsumed = errors.New("stream already consumed")

// Build wires src through the filter stages of spec. stats may be nil.
// When spec requires materialization the whole source is read here and a
// *Buffer is returned; otherwise nothing is read until the *Stream is
// ranged over.
func Build(src LineSource, spec model.FilterSpec, stats *model.RunStats) (Lines, error) {
	if stats == nil {
		stats = model.NewRunStats()
	}

	// With sort on, duplicates are dropped after sorting by compaction,
	// which needs no membership set. The output is the same.
	dedupInStream := spec.Dedup && !spec.Sort
	s := NewStream(src, filter.New(spec), dedupInStream, stats)
	if !spec.Buffered() {
		return s, nil
	}

	buf, err := Collect(s)
	if err != nil {
		return nil, err
	}
	if spec.Sort {
		buf.sort(spec.Dedup, stats)
	}
	if spec.Randomize {
		buf.Shuffle(newRand(spec))
	}
	return buf, nil
}

func newRand(spec model.FilterSpec) *rand.Rand {
	seed := spec.Seed
	if !spec.HasSeed {
		seed = rand.Uint64()
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// ---------------------------------------------------------------------------
// Stream
// ---------------------------------------------------------------------------

// Stream is the lazily filtered sequence of a source.
type Stream struct {
	src      LineSource
	eval     *filter.Evaluator
	seen     map[string]struct{}
	stats    *model.RunStats
	consumed bool
	err      error
}

// NewStream filters src with eval, dropping repeats when dedup is set.
// First-seen order is preserved.
func NewStream(src LineSource, eval *filter.Evaluator, dedup bool, stats *model.RunStats) *Stream {
	s := &Stream{src: src, eval: eval, stats: stats}
	if dedup {
		s.seen = make(map[string]struct{})
	}
	return s
}

func (*Stream) lines() {}

// All yields surviving lines. It may be ranged over once.
func (s *Stream) All() iter.Seq[string] {
	return func(yield func(string) bool) {
		if s.consumed {
			s.err = failure.New(failure.KindSourceUnavailable, failure.StageFilter, "", ErrConsumed)
			return
		}
		s.consumed = true

		for line := range s.src.Lines() {
			s.stats.Read++
			if name, ok := s.eval.Check(line); !ok {
				s.stats.Reject(name)
				continue
			}
			s.stats.Kept++

			if s.seen != nil {
				if _, dup := s.seen[line]; dup {
					s.stats.Duplicates++
					continue
				}
				s.seen[line] = struct{}{}
			}

			if !yield(line) {
				return
			}
		}
		if err := s.src.Err(); err != nil {
			s.err = err
		}
	}
}

// Err returns the read error that ended the stream, if any.
func (s *Stream) Err() error { return s.err }

// ---------------------------------------------------------------------------
// Buffer
// ---------------------------------------------------------------------------

// Buffer is a fully materialized sequence of surviving lines.
type Buffer struct {
	items []string
}

// NewBuffer wraps lines without copying.
func NewBuffer(lines []string) *Buffer { return &Buffer{items: lines} }

// Collect drains l into a Buffer. A Buffer is returned unchanged.
func Collect(l Lines) (*Buffer, error) {
	if b, ok := l.(*Buffer); ok {
		return b, nil
	}
	var items []string
	for line := range l.All() {
		items = append(items, line)
	}
	if err := l.Err(); err != nil {
		return nil, err
	}
	return &Buffer{items: items}, nil
}

func (*Buffer) lines() {}

// All yields the buffered lines in order. A Buffer may be ranged over any
// number of times.
func (b *Buffer) All() iter.Seq[string] { return slices.Values(b.items) }

// Err is always nil: a Buffer has already been read in full.
func (b *Buffer) Err() error { return nil }

// Len is the number of buffered lines.
func (b *Buffer) Len() int { return len(b.items) }

// Slice returns the lines in [from, to).
func (b *Buffer) Slice(from, to int) []string { return b.items[from:to] }

// sort orders lines lexicographically by byte value, compacting repeats
// when dedup is set.
func (b *Buffer) sort(dedup bool, stats *model.RunStats) {
	slices.Sort(b.items)
	if dedup {
		before := len(b.items)
		b.items = slices.Compact(b.items)
		stats.Duplicates += int64(before - len(b.items))
	}
}

// Shuffle applies a uniform random permutation.
func (b *Buffer) Shuffle(r *rand.Rand) {
	r.Shuffle(len(b.items), func(i, j int) {
		b.items[i], b.items[j] = b.items[j], b.items[i]
	})
}
