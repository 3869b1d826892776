package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/secmon-lab/scantrend/pkg/domain/model"
	"github.com/secmon-lab/scantrend/pkg/usecase"
)

const maxRenderedMismatches = 5

var (
	colorAccent  = lipgloss.Color("#874BFD")
	colorSuccess = lipgloss.Color("#00FF99")
	colorSubtle  = lipgloss.Color("#64748B")
	colorWarning = lipgloss.Color("#F59E0B")

	titleStyle   = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	labelStyle   = lipgloss.NewStyle().Foreground(colorSubtle).Bold(true).Width(12)
	valueStyle   = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	subtleStyle  = lipgloss.NewStyle().Foreground(colorSubtle)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarning)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent).
			Padding(0, 1)
)

func field(label string, value any) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), valueStyle.Render(fmt.Sprint(value)))
}

func renderCounts(categories []model.Category, counts model.Counts) string {
	parts := make([]string, 0, len(categories))
	for _, c := range categories {
		parts = append(parts, fmt.Sprintf("%s %d", c, counts.Get(c)))
	}
	return subtleStyle.Render(strings.Join(parts, " · "))
}

func renderScanner(sc model.ScannerSummary) string {
	lines := []string{
		titleStyle.Render(sc.Name.String()),
		field("findings", sc.Total),
		field("reports", fmt.Sprintf("%d/%d", sc.Reports, sc.Rows)),
	}
	if len(sc.Categories) > 0 {
		lines = append(lines, renderCounts(sc.Categories, sc.Totals))
	}
	if sc.HasDeclared {
		lines = append(lines, field("declared", sc.Declared))
	}
	for i, m := range sc.Mismatches {
		if i == maxRenderedMismatches {
			lines = append(lines, warningStyle.Render(fmt.Sprintf("...and %d more", len(sc.Mismatches)-maxRenderedMismatches)))
			break
		}
		lines = append(lines, warningStyle.Render(fmt.Sprintf("%s declared %d, counted %d", m.Commit.Short(), m.Declared, m.Sum)))
	}
	if sc.Diagnostics > 0 {
		lines = append(lines, warningStyle.Render(fmt.Sprintf("%d diagnostics", sc.Diagnostics)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// renderSummary prints the result of a pipeline run
func renderSummary(w io.Writer, summary *model.RunSummary) error {
	head := []string{
		titleStyle.Render("Scan trend dataset"),
		field("run", summary.RunID),
		field("commits", summary.Commits),
		field("periods", summary.Periods),
		field("columns", summary.Columns),
		field("diagnostics", summary.Diagnostics),
	}

	sections := []string{lipgloss.JoinVertical(lipgloss.Left, head...)}
	for _, sc := range summary.Scanners {
		sections = append(sections, renderScanner(sc))
	}

	if len(summary.Outputs) > 0 {
		outputs := []string{titleStyle.Render("Outputs")}
		for _, o := range summary.Outputs {
			outputs = append(outputs, subtleStyle.Render(o))
		}
		sections = append(sections, lipgloss.JoinVertical(lipgloss.Left, outputs...))
	}

	if !summary.Reconciles() {
		sections = append(sections, warningStyle.Render("declared totals do not match category sums"))
	}

	_, err := fmt.Fprintln(w, cardStyle.Render(strings.Join(sections, "\n\n")))
	return err
}

// renderBaseline prints the normalized view of one report
func renderBaseline(w io.Writer, b *usecase.Baseline) error {
	n := b.Normalized
	lines := []string{
		titleStyle.Render(b.File),
		field("kind", b.Kind),
		field("findings", n.Counts.Sum()),
	}
	for _, c := range b.Categories {
		lines = append(lines, field(c.String(), n.Counts.Get(c)))
	}
	if n.Declared != nil {
		lines = append(lines, field("declared", *n.Declared))
		if !b.Reconciles() {
			lines = append(lines, warningStyle.Render("declared total does not match category sum"))
		}
	}
	for _, warn := range n.Warnings {
		lines = append(lines, warningStyle.Render(warn))
	}

	_, err := fmt.Fprintln(w, cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)))
	return err
}
