package manifest

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

func writeText(w io.Writer, m *Manifest) error {
	if len(m.Routes) == 0 {
		_, err := fmt.Fprintln(w, "no routes")
		return err
	}

	rows := make([][]string, 0, len(m.Routes))
	for _, r := range m.Routes {
		rows = append(rows, []string{r.URL, methods(r), r.Router, r.File})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		StyleFunc(func(row, _ int) lipgloss.Style {
			return lipgloss.NewStyle().Align(lipgloss.Left).Padding(0, 1)
		}).
		Headers("URL", "Methods", "Router", "File").
		Rows(rows...)

	if _, err := fmt.Fprintln(w, t.Render()); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d routes, %d sub-routers (* async)\n", len(m.Routes), len(m.SubRouters))
	return err
}
