package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/bastiangx/compmodel/pkg/model"
	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#286983", Dark: "#9ccfd8"})
	nameStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	dimStyle    = lipgloss.NewStyle().Faint(true)
	changeStyle = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.AdaptiveColor{Light: "#d7827e", Dark: "#ebbcba"})
)

// renderView writes the flattened view, at most limit lines when limit > 0.
// Columns are padded to the widest cell in the printed slice.
func renderView(w io.Writer, m *model.Model, limit int) {
	rows := m.Flatten()
	total := len(rows)
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}

	cells := make([][]string, len(rows))
	widths := make([]int, m.ColumnCount())
	for i, r := range rows {
		if r.Header {
			continue
		}
		cells[i] = m.Texts(r.Index)
		for c, text := range cells[i] {
			widths[c] = max(widths[c], lipgloss.Width(text))
		}
	}

	nameColumn := m.TranslateColumn(model.NameColumn)
	for i, r := range rows {
		if r.Header {
			fmt.Fprintln(w, headerStyle.Render(r.Title))
			continue
		}
		var b strings.Builder
		b.WriteString("  ")
		for c, text := range cells[i] {
			if widths[c] == 0 {
				continue
			}
			style := dimStyle
			if c == nameColumn {
				style = nameStyle
			}
			b.WriteString(style.Width(widths[c] + 1).Render(text))
		}
		fmt.Fprintln(w, strings.TrimRight(b.String(), " "))
	}
	if len(rows) < total {
		fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("... %d more", total-len(rows))))
	}
}

func renderChange(w io.Writer, prefix string, change model.ChangeType, visible int) {
	fmt.Fprintf(w, "%s %s\n", changeStyle.Render(fmt.Sprintf("[%s]", change)),
		dimStyle.Render(fmt.Sprintf("prefix=%q visible=%d", prefix, visible)))
}

func renderEvents(w io.Writer, events []model.Event) {
	for _, e := range events {
		fmt.Fprintln(w, dimStyle.Render("  ~ "+e.String()))
	}
}

func renderStats(w io.Writer, stats map[string]int) {
	for _, k := range []string{"items", "matching", "visible", "groups", "displayedGroup"} {
		fmt.Fprintf(w, "%-16s %d\n", k, stats[k])
	}
}
