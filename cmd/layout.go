package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"cardgrid/internal/chart"
	"cardgrid/internal/grid"
	"cardgrid/internal/slug"
)

var layoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Print the grid layout for a container width",
	Long: `Layout computes the layout pass the dashboard would apply at the given
container width and lists the cards it would place, in order.`,
	Example: `  cardgrid layout --width 1024
  cardgrid layout --width 480 --charts ./devices.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		width, _ := cmd.Flags().GetFloat64("width")
		charts, err := loadCharts()
		if err != nil {
			return err
		}
		return printLayout(cmd.OutOrStdout(), width, charts)
	},
}

func init() {
	rootCmd.AddCommand(layoutCmd)
	layoutCmd.Flags().Float64("width", 1200, "Container width in pixels")
}

func printLayout(w io.Writer, width float64, charts chart.Set) error {
	if width < 0 {
		return fmt.Errorf("width must not be negative, got %v", width)
	}
	pass := grid.Plan(width)
	fmt.Fprintf(w, "width:   %s px\n", strconv.FormatFloat(pass.Width, 'f', -1, 64))
	fmt.Fprintf(w, "columns: %d\n", pass.Columns)
	fmt.Fprintf(w, "gap:     %d px\n", pass.Gap)
	fmt.Fprintf(w, "basis:   %s\n\n", pass.Basis)

	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeader([]string{"#", "key", "slug", "slices", "total", "legend", "clickable"})
	for i, e := range charts {
		spec := chart.Build(e.Config)
		slices := strconv.Itoa(len(spec.Values))
		if spec.NoData {
			slices = "no data"
		}
		table.Append([]string{
			strconv.Itoa(i + 1),
			e.Key,
			slug.Slugify(e.Config.Name),
			slices,
			spec.TotalText(),
			strconv.FormatBool(spec.ShowLegend()),
			strconv.FormatBool(spec.Interactive() && spec.TargetLink != ""),
		})
	}
	table.Render()
	fmt.Fprintf(w, "(%d card%s)\n", len(charts), plural(len(charts)))
	return nil
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
