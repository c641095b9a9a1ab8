// Package source reads wordlist lines from files, globs or standard input.
package source

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/atikulmunna/sieve/internal/failure"
)

// Stdin is the sentinel input name for standard input.
const Stdin = "-"

const readBufferSize = 1 << 20

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// Source is a single-pass sequence of lines drawn from one or more inputs.
// Inputs are read in order as one logical stream.
type Source struct {
	paths    []string
	stdin    io.Reader
	consumed bool
	err      error
}

// Open resolves input to a Source. An empty input or "-" selects stdin.
// Any other input is a file path or a doublestar glob; every matched file
// is checked for readability here, before any line is produced.
func Open(input string, stdin io.Reader) (*Source, error) {
	if input == "" || input == Stdin {
		if stdin == nil {
			return nil, failure.New(failure.KindSourceUnavailable, failure.StageRead, "standard input", errors.New("not available"))
		}
		return &Source{stdin: stdin}, nil
	}

	paths, err := expand(input)
	if err != nil {
		return nil, err
	}
	for _, p := range paths {
		if err := checkReadable(p); err != nil {
			return nil, err
		}
	}
	return &Source{paths: paths}, nil
}

// Names returns the resolved input names, "-" for stdin.
func (s *Source) Names() []string {
	if s.stdin != nil {
		return []string{Stdin}
	}
	return s.paths
}

// Lines yields each line with its trailing newline (and any carriage
// return) removed. The sequence can be ranged over only once; a second
// attempt yields nothing and sets Err.
func (s *Source) Lines() iter.Seq[string] {
	return func(yield func(string) bool) {
		if s.consumed {
			s.err = failure.New(failure.KindSourceUnavailable, failure.StageRead, strings.Join(s.Names(), ", "), errors.New("already consumed"))
			return
		}
		s.consumed = true

		if s.stdin != nil {
			_, s.err = readAll(Stdin, s.stdin, yield)
			return
		}
		for _, p := range s.paths {
			if !s.readFile(p, yield) {
				return
			}
		}
	}
}

// Err returns the first read error, if any.
func (s *Source) Err() error { return s.err }

// readFile streams one file. It returns false when iteration must stop.
func (s *Source) readFile(path string, yield func(string) bool) bool {
	f, err := os.Open(path)
	if err != nil {
		s.err = failure.New(failure.KindSourceUnavailable, failure.StageRead, path, err)
		return false
	}
	defer f.Close()

	stopped, err := readAll(path, f, yield)
	s.err = err
	return err == nil && !stopped
}

// readAll decodes r and feeds its lines to yield. stopped reports that
// yield asked for no more lines.
func readAll(name string, r io.Reader, yield func(string) bool) (stopped bool, err error) {
	br := bufio.NewReaderSize(r, readBufferSize)
	dec, closeDec, err := decoder(br)
	if err != nil {
		return false, failure.New(failure.KindSourceUnavailable, failure.StageRead, name, err)
	}
	defer closeDec()
	if dec != br {
		br = bufio.NewReaderSize(dec, readBufferSize)
	}

	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			line = strings.TrimSuffix(line, "\n")
			line = strings.TrimSuffix(line, "\r")
			if !yield(line) {
				return true, nil
			}
		}
		if err == io.EOF {
			return false, nil
		}
		if err != nil {
			return false, failure.New(failure.KindSourceUnavailable, failure.StageRead, name, err)
		}
	}
}

// decoder sniffs the stream header and wraps br in a gzip or zstd reader
// when the magic bytes match.
func decoder(br *bufio.Reader) (io.Reader, func(), error) {
	head, _ := br.Peek(len(zstdMagic))

	switch {
	case bytes.HasPrefix(head, gzipMagic):
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, nil, fmt.Errorf("gzip: %w", err)
		}
		return zr, func() { zr.Close() }, nil

	case bytes.HasPrefix(head, zstdMagic):
		zr, err := zstd.NewReader(br)
		if err != nil {
			return nil, nil, fmt.Errorf("zstd: %w", err)
		}
		return zr, zr.Close, nil

	default:
		return br, func() {}, nil
	}
}

// ---------------------------------------------------------------------------
// Input resolution
// ---------------------------------------------------------------------------

// expand turns input into a list of paths. Plain paths are returned as-is
// so a missing file surfaces as a readability error naming it.
func expand(input string) ([]string, error) {
	if !strings.ContainsAny(input, "*?[{") {
		return []string{input}, nil
	}

	matches, err := doublestar.FilepathGlob(input, doublestar.WithFilesOnly(), doublestar.WithFailOnIOErrors())
	if err != nil {
		return nil, failure.New(failure.KindSourceUnavailable, failure.StageRead, input, err)
	}
	if len(matches) == 0 {
		return nil, failure.New(failure.KindSourceUnavailable, failure.StageRead, input, errors.New("no files matched"))
	}
	slices.Sort(matches)
	return matches, nil
}

// checkReadable verifies path is a regular file that can be opened.
func checkReadable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return failure.New(failure.KindSourceUnavailable, failure.StageRead, path, err)
	}
	if !info.Mode().IsRegular() {
		return failure.New(failure.KindSourceUnavailable, failure.StageRead, path, errors.New("not a regular file"))
	}
	f, err := os.Open(path)
	if err != nil {
		return failure.New(failure.KindSourceUnavailable, failure.StageRead, path, err)
	}
	return f.Close()
}
