// Package partition materializes pipeline output as one or more artifacts.
package partition

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/atikulmunna/sieve/internal/failure"
	"github.com/atikulmunna/sieve/internal/model"
	"github.com/atikulmunna/sieve/internal/pipeline"
)

// StdoutName is the artifact name reported for standard output.
const StdoutName = "<stdout>"

// Confirmer decides whether existing files may be overwritten.
type Confirmer interface {
	Confirm(existing []string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(existing []string) (bool, error)

func (f ConfirmFunc) Confirm(existing []string) (bool, error) { return f(existing) }

// Partitioner writes surviving lines to artifacts.
type Partitioner struct {
	stdout  io.Writer
	confirm Confirmer

	// Create opens a new artifact file. Defaults to os.Create.
	Create func(name string) (io.WriteCloser, error)
	// Remove deletes a stale part file after overwrite is confirmed.
	// Defaults to os.Remove.
	Remove func(name string) error
}

// New returns a Partitioner writing single-mode output without a path to
// stdout and consulting confirm before touching existing files. A nil
// confirm refuses every overwrite.
func New(stdout io.Writer, confirm Confirmer) *Partitioner {
	if confirm == nil {
		confirm = ConfirmFunc(func([]string) (bool, error) { return false, nil })
	}
	return &Partitioner{
		stdout:  stdout,
		confirm: confirm,
		Create: func(name string) (io.WriteCloser, error) {
			return os.Create(name)
		},
		Remove: os.Remove,
	}
}

// Write materializes lines according to mode. The returned artifacts are
// the ones completed before any failure; on error they are still valid
// and left on disk.
func (p *Partitioner) Write(lines pipeline.Lines, mode model.OutputMode) ([]model.Artifact, error) {
	switch mode.Kind {
	case model.OutputSizeSplit:
		return p.SplitSize(lines, mode.Path, mode.MaxBytes)
	case model.OutputPercentSplit:
		buf, err := pipeline.Collect(lines)
		if err != nil {
			return nil, err
		}
		return p.SplitPercent(buf, mode.Path, mode.Percentages)
	default:
		return p.Single(lines, mode.Path)
	}
}

// Single writes every line to path, or to stdout when path is "".
func (p *Partitioner) Single(lines pipeline.Lines, path string) ([]model.Artifact, error) {
	var out *artifact
	if path == "" {
		out = &artifact{name: StdoutName, w: bufio.NewWriter(p.stdout)}
	} else {
		if err := p.checkConflicts(existing(path)); err != nil {
			return nil, err
		}
		var err error
		if out, err = p.open(path); err != nil {
			return nil, err
		}
	}

	for line := range lines.All() {
		if err := out.write(line); err != nil {
			out.abort()
			return nil, err
		}
	}
	if err := lines.Err(); err != nil {
		out.abort()
		return nil, err
	}
	if err := out.finish(); err != nil {
		return nil, err
	}
	return []model.Artifact{out.report()}, nil
}

// SplitSize writes lines to successive parts of at most maxBytes bytes,
// newlines included. A line longer than maxBytes gets a part of its own;
// lines are never cut. At least one part is always produced.
func (p *Partitioner) SplitSize(lines pipeline.Lines, path string, maxBytes int64) ([]model.Artifact, error) {
	if err := p.checkConflicts(globParts(path)); err != nil {
		return nil, err
	}

	var done []model.Artifact
	var cur *artifact
	next := func() error {
		if cur != nil {
			if err := cur.finish(); err != nil {
				return err
			}
			done = append(done, cur.report())
		}
		var err error
		cur, err = p.open(PartName(path, len(done)+1, 2))
		return err
	}

	if err := next(); err != nil {
		return done, err
	}
	for line := range lines.All() {
		size := int64(len(line)) + 1
		if cur.bytes > 0 && cur.bytes+size > maxBytes {
			if err := next(); err != nil {
				return done, err
			}
		}
		if err := cur.write(line); err != nil {
			cur.abort()
			return done, err
		}
	}
	if err := lines.Err(); err != nil {
		cur.abort()
		return done, err
	}
	if err := cur.finish(); err != nil {
		return done, err
	}
	return append(done, cur.report()), nil
}

// SplitPercent distributes the buffered lines over len(pcts) parts using
// Allocate. Parts allotted zero lines are still created.
func (p *Partitioner) SplitPercent(buf *pipeline.Buffer, path string, pcts []float64) ([]model.Artifact, error) {
	if err := p.checkConflicts(globParts(path)); err != nil {
		return nil, err
	}

	total := buf.Len()
	counts := Allocate(total, pcts)
	width := indexWidth(len(pcts))

	var done []model.Artifact
	from := 0
	for i, n := range counts {
		out, err := p.open(PartName(path, i+1, width))
		if err != nil {
			return done, err
		}
		for _, line := range buf.Slice(from, from+n) {
			if err := out.write(line); err != nil {
				out.abort()
				return done, err
			}
		}
		if err := out.finish(); err != nil {
			return done, err
		}
		from += n

		a := out.report()
		a.Requested = pcts[i]
		a.Percent = ActualPercent(n, total)
		a.HasPercent = true
		done = append(done, a)
	}
	return done, nil
}

// ---------------------------------------------------------------------------
// Conflicts
// ---------------------------------------------------------------------------

// checkConflicts asks the Confirmer about names that already exist. Once
// confirmed, existing part files are removed so a shorter run leaves no
// stale parts behind.
func (p *Partitioner) checkConflicts(names []string, err error) error {
	if err != nil {
		return failure.New(failure.KindWriteFailure, failure.StagePartition, "checking existing outputs", err)
	}
	if len(names) == 0 {
		return nil
	}

	ok, err := p.confirm.Confirm(names)
	if err != nil {
		return failure.New(failure.KindConflict, failure.StagePartition, fmt.Sprintf("%d existing output(s)", len(names)), err)
	}
	if !ok {
		return failure.New(failure.KindConflict, failure.StagePartition, fmt.Sprintf("refusing to overwrite %v", names), nil)
	}

	for _, n := range names {
		if err := p.Remove(n); err != nil && !errors.Is(err, os.ErrNotExist) {
			return failure.New(failure.KindWriteFailure, failure.StagePartition, n, err)
		}
	}
	return nil
}

func existing(path string) ([]string, error) {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return []string{path}, nil
	case errors.Is(err, os.ErrNotExist):
		return nil, nil
	default:
		return nil, err
	}
}

// globParts lists existing files named like parts of path. The glob is
// wider than PartName, so matches whose index is not all digits are
// dropped.
func globParts(path string) ([]string, error) {
	matches, err := doublestar.FilepathGlob(partGlob(path), doublestar.WithFilesOnly())
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(matches, func(m string) bool {
		return !isPartOf(m, path)
	}), nil
}

// Targets lists the existing files a run in mode would replace or remove.
func Targets(mode model.OutputMode) ([]string, error) {
	switch {
	case mode.Path == "":
		return nil, nil
	case mode.Kind == model.OutputSingle:
		return existing(mode.Path)
	default:
		return globParts(mode.Path)
	}
}

// Overlaps reports whether any of sources is a file that mode would
// replace. Stdin never overlaps.
func Overlaps(sources []string, mode model.OutputMode) (bool, error) {
	targets, err := Targets(mode)
	if err != nil || len(targets) == 0 {
		return false, err
	}
	for _, src := range sources {
		si, err := os.Stat(src)
		if err != nil {
			continue
		}
		for _, t := range targets {
			if ti, err := os.Stat(t); err == nil && os.SameFile(si, ti) {
				return true, nil
			}
		}
	}
	return false, nil
}

// ---------------------------------------------------------------------------
// Artifact writer
// ---------------------------------------------------------------------------

type artifact struct {
	name  string
	c     io.Closer
	w     *bufio.Writer
	lines int64
	bytes int64
}

func (p *Partitioner) open(name string) (*artifact, error) {
	f, err := p.Create(name)
	if err != nil {
		return nil, failure.New(failure.KindWriteFailure, failure.StageWrite, name, err)
	}
	return &artifact{name: name, c: f, w: bufio.NewWriter(f)}, nil
}

func (a *artifact) write(line string) error {
	if _, err := a.w.WriteString(line); err != nil {
		return failure.New(failure.KindWriteFailure, failure.StageWrite, a.name, err)
	}
	if err := a.w.WriteByte('\n'); err != nil {
		return failure.New(failure.KindWriteFailure, failure.StageWrite, a.name, err)
	}
	a.lines++
	a.bytes += int64(len(line)) + 1
	return nil
}

// finish flushes and closes. Only a finished artifact is reported.
func (a *artifact) finish() error {
	if err := a.w.Flush(); err != nil {
		a.abort()
		return failure.New(failure.KindWriteFailure, failure.StageWrite, a.name, err)
	}
	if a.c != nil {
		if err := a.c.Close(); err != nil {
			return failure.New(failure.KindWriteFailure, failure.StageWrite, a.name, err)
		}
	}
	return nil
}

// abort releases the file without reporting it. Whatever reached disk stays.
func (a *artifact) abort() {
	_ = a.w.Flush()
	if a.c != nil {
		_ = a.c.Close()
	}
}

func (a *artifact) report() model.Artifact {
	return model.Artifact{Name: a.name, Lines: a.lines, Bytes: a.bytes}
}
