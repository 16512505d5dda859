package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/smdgraph/pkg/io"
	"github.com/matzehuels/smdgraph/pkg/kg"
)

// statsCommand creates the stats command.
func (c *CLI) statsCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize the loaded graph",
		Long:  `Count nodes per kind and edges per type, and report records the loader skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := c.newRunner(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer runner.Close()

			stats := kg.Summarize(runner.Graph())
			report := runner.Report()
			if asJSON {
				return io.WriteJSON(cmd.OutOrStdout(), struct {
					kg.Stats
					Source  string       `json:"source"`
					Skipped []io.Skipped `json:"skipped,omitempty"`
				}{stats, report.Source, report.Skipped})
			}

			printKeyValue("Source", report.Source)
			printNewline()
			fmt.Println(kindTable(stats))
			printNewline()
			fmt.Println(typeTable(stats))
			printNewline()
			if stats.Isolated > 0 {
				printDetail("%d catalog node(s) have no edges", stats.Isolated)
			}
			if stats.Uncatalogued > 0 {
				printDetail("%d edge endpoint(s) are missing from the node catalog", stats.Uncatalogued)
			}
			if stats.NoContext > 0 {
				printWarning("%d ASSOCIATED_WITH edge(s) have no context and are never walked", stats.NoContext)
			}
			if n := len(report.Skipped); n > 0 {
				printWarning("%d record(s) skipped while loading", n)
				for _, s := range report.Skipped {
					printDetail("%s", s)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the summary as JSON")

	return cmd
}

func newTable(headers ...string) *table.Table {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col > 0 {
				return cellStyle.Foreground(colorCyan).Align(lipgloss.Right)
			}
			return cellStyle
		})
}

// kindTable renders node counts per kind in S, M, D order.
func kindTable(s kg.Stats) string {
	t := newTable("Kind", "Nodes")
	for _, k := range []kg.Kind{kg.KindSymptom, kg.KindMechanism, kg.KindDisease, kg.KindUnknown} {
		n := s.Kinds[k.String()]
		if n == 0 && k == kg.KindUnknown {
			continue
		}
		t.Row(k.String(), fmt.Sprint(n))
	}
	t.Row("Total", fmt.Sprint(s.Nodes))
	return t.Render()
}

// typeTable renders edge counts per type, known types first.
func typeTable(s kg.Stats) string {
	t := newTable("Edge type", "Edges")
	for _, et := range s.SortedTypes() {
		label := string(et)
		if !et.Known() {
			label += " (unknown)"
		}
		t.Row(label, fmt.Sprint(s.Types[et]))
	}
	t.Row("Total", fmt.Sprint(s.Edges))
	return t.Render()
}
