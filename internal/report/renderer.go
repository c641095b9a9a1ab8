package report

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/docker/go-units"

	"github.com/atikulmunna/sieve/internal/model"
)

// Renderer writes a Report to an output stream.
type Renderer interface {
	Render(r Report) error
}

// ---------------------------------------------------------------------------
// Text Renderer (terminal table)
// ---------------------------------------------------------------------------

// TextRenderer prints a styled artifact table and a filter summary.
type TextRenderer struct {
	w  io.Writer
	lg *lipgloss.Renderer
}

// NewTextRenderer returns a Renderer that adapts its colors to w.
func NewTextRenderer(w io.Writer) *TextRenderer {
	return &TextRenderer{w: w, lg: lipgloss.NewRenderer(w)}
}

func (r *TextRenderer) Render(rep Report) error {
	header := r.lg.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	cell := r.lg.NewStyle().Padding(0, 1)
	okStyle := r.lg.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	failStyle := r.lg.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	faint := r.lg.NewStyle().Faint(true)

	withPct := slices.ContainsFunc(rep.Artifacts, func(a model.Artifact) bool { return a.HasPercent })

	headers := []string{"artifact", "lines", "bytes"}
	if withPct {
		headers = append(headers, "requested", "actual")
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(faint).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header.Padding(0, 1)
			}
			if col > 0 {
				return cell.Align(lipgloss.Right)
			}
			return cell
		})
	for _, a := range rep.Artifacts {
		row := []string{a.Name, fmt.Sprint(a.Lines), units.BytesSize(float64(a.Bytes))}
		if withPct {
			row = append(row, fmt.Sprintf("%.1f%%", a.Requested), fmt.Sprintf("%.1f%%", a.Percent))
		}
		t.Row(row...)
	}

	var b strings.Builder
	if len(rep.Artifacts) > 0 {
		b.WriteString(t.String())
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "read %d, kept %d", rep.Stats.Read, rep.Stats.Kept)
	if rep.Stats.Duplicates > 0 {
		fmt.Fprintf(&b, ", %d duplicates dropped", rep.Stats.Duplicates)
	}
	fmt.Fprintf(&b, ", wrote %d line(s) to %d artifact(s) %s\n",
		rep.Stats.Emitted(), len(rep.Artifacts), faint.Render("in "+rep.Elapsed))

	if rejected := rejectionSummary(rep.Stats.Rejected); rejected != "" {
		b.WriteString(faint.Render("rejected by "+rejected) + "\n")
	}

	if rep.OK {
		b.WriteString(okStyle.Render("✓ done") + "\n")
	} else {
		b.WriteString(failStyle.Render("✗ failed") + " " + rep.Error + "\n")
	}

	_, err := io.WriteString(r.w, b.String())
	return err
}

// rejectionSummary lists per-predicate rejections, largest first.
func rejectionSummary(counts map[string]int64) string {
	names := make([]string, 0, len(counts))
	for n := range counts {
		names = append(names, n)
	}
	slices.SortFunc(names, func(a, b string) int {
		if counts[a] != counts[b] {
			if counts[a] > counts[b] {
				return -1
			}
			return 1
		}
		return strings.Compare(a, b)
	})

	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = fmt.Sprintf("%s: %d", n, counts[n])
	}
	return strings.Join(parts, ", ")
}

// ---------------------------------------------------------------------------
// JSON Renderer (structured output for piping)
// ---------------------------------------------------------------------------

// JSONRenderer prints the report as a single JSON object.
type JSONRenderer struct {
	enc *json.Encoder
}

// NewJSONRenderer returns a Renderer that writes indented JSON to w.
func NewJSONRenderer(w io.Writer) *JSONRenderer {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return &JSONRenderer{enc: enc}
}

func (r *JSONRenderer) Render(rep Report) error {
	return r.enc.Encode(rep)
}
