package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"cardgrid/internal/chart"
	"cardgrid/internal/dashboard"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a standalone HTML snapshot of the dashboard",
	Long: `Export writes a single HTML page containing every card. The page
paints its charts in the browser and keeps the responsive grid, but has
no server behind it.`,
	Example: `  cardgrid export --out ./snapshots --title "Devices"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")
		title, _ := cmd.Flags().GetString("title")

		charts, err := loadCharts()
		if err != nil {
			return err
		}
		return runExport(cmd.OutOrStdout(), out, title, viper.GetString("plotly_url"), charts)
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().String("out", ".", "Output directory")
	exportCmd.Flags().String("title", "Dashboard", "Page title")
}

func runExport(w io.Writer, outDir, title, plotlyURL string, charts chart.Set) error {
	g, err := dashboard.NewSnapshotGenerator(outDir, plotlyURL)
	if err != nil {
		return fmt.Errorf("failed to create snapshot generator: %w", err)
	}
	path, err := g.Generate(title, charts)
	if err != nil {
		return fmt.Errorf("failed to export snapshot: %w", err)
	}
	fmt.Fprintln(w, path)
	return nil
}
