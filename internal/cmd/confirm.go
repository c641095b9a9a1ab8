package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/atikulmunna/sieve/internal/partition"
)

var errNoPrompt = errors.New("cannot prompt without a terminal on stdin, rerun with --force")

// newConfirmer picks the overwrite policy: --force always confirms; an
// interactive terminal gets a y/N prompt; anything else refuses. Stdin is
// never prompted when it is also the line source.
func newConfirmer(force bool, stdin io.Reader, prompt io.Writer, stdinIsSource bool) partition.Confirmer {
	if force {
		return partition.ConfirmFunc(func([]string) (bool, error) { return true, nil })
	}
	if f, ok := stdin.(*os.File); ok && !stdinIsSource && term.IsTerminal(int(f.Fd())) {
		return &promptConfirmer{in: bufio.NewReader(stdin), out: prompt}
	}
	return partition.ConfirmFunc(func([]string) (bool, error) { return false, errNoPrompt })
}

// promptConfirmer asks on a terminal before overwriting.
type promptConfirmer struct {
	in  *bufio.Reader
	out io.Writer
}

func (p *promptConfirmer) Confirm(existing []string) (bool, error) {
	fmt.Fprintf(p.out, "%d existing file(s) would be overwritten:\n", len(existing))
	for _, name := range existing {
		fmt.Fprintf(p.out, "   • %s\n", name)
	}
	fmt.Fprint(p.out, "Overwrite? [y/N] ")

	answer, err := p.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
