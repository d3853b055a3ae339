package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"cardgrid/internal/chart"
	"cardgrid/internal/navigation"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Print where a slice click would navigate",
	Example: `  cardgrid resolve --chart device_status --index 1
  cardgrid resolve --chart device_status --index 0 --label "Needs attention"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		key, _ := cmd.Flags().GetString("chart")
		index, _ := cmd.Flags().GetInt("index")
		label, _ := cmd.Flags().GetString("label")

		charts, err := loadCharts()
		if err != nil {
			return err
		}
		return printResolve(cmd.OutOrStdout(), charts, key, index, label)
	},
}

func init() {
	rootCmd.AddCommand(resolveCmd)
	resolveCmd.Flags().String("chart", "", "Chart key")
	resolveCmd.Flags().Int("index", 0, "Clicked slice index")
	resolveCmd.Flags().String("label", "", "Clicked slice label (defaults to the configured label)")
	_ = resolveCmd.MarkFlagRequired("chart")
}

func printResolve(w io.Writer, charts chart.Set, key string, index int, label string) error {
	cfg, ok := charts.Lookup(key)
	if !ok {
		return fmt.Errorf("unknown chart %q", key)
	}
	spec := chart.Build(cfg)
	if label == "" && index >= 0 && index < len(spec.Labels) {
		label = spec.Labels[index]
	}

	dest, ok := navigation.Resolve(spec, navigation.ClickEvent{SliceIndex: index, Label: label})
	if !ok {
		fmt.Fprintf(w, "chart %s does not navigate\n", key)
		return nil
	}
	fmt.Fprintln(w, dest)
	return nil
}
