package cmd

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/atikulmunna/sieve/internal/filter"
)

var entropyCmd = &cobra.Command{
	Use:   "entropy <word>...",
	Short: "Show length, character classes and entropy of words",
	Long: `Print the measurements the filter uses for each word: length in
characters, digit/lower/upper/special counts and Shannon entropy in bits
per character. Useful for choosing --min-entropy and class bounds.

Examples:
  sieve entropy password 'Tr0ub4dor&3' "correct horse battery staple"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return renderMeasurements(cmd.OutOrStdout(), args)
	},
}

func init() {
	rootCmd.AddCommand(entropyCmd)
}

func renderMeasurements(w io.Writer, words []string) error {
	lg := lipgloss.NewRenderer(w)
	cell := lg.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lg.NewStyle().Faint(true)).
		Headers("word", "length", "digits", "lower", "upper", "special", "entropy").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return cell.Bold(true)
			}
			if col > 0 {
				return cell.Align(lipgloss.Right)
			}
			return cell
		})
	for _, word := range words {
		p := filter.Measure(word)
		t.Row(word,
			fmt.Sprint(p.Runes), fmt.Sprint(p.Digits), fmt.Sprint(p.Lower),
			fmt.Sprint(p.Upper), fmt.Sprint(p.Special),
			fmt.Sprintf("%.4f", filter.Entropy(word)))
	}

	_, err := fmt.Fprintln(w, t.String())
	return err
}
