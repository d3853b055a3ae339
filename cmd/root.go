package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"cardgrid/internal/chart"
	logpkg "cardgrid/internal/log"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cardgrid",
	Short: "A responsive dashboard of donut-chart cards",
	Long: `cardgrid renders a dashboard of donut-chart cards from a declarative
chart configuration. Each card shows a metric as a proportion chart with
its total in the center, an optional quick-action link and
click-to-filter navigation. Cards flow into a responsive grid that adapts
its column count to the page width.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.cardgrid.yaml)")
	rootCmd.PersistentFlags().String("charts", "charts.yaml", "Chart configuration file (YAML or JSON)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format (text, json)")

	_ = viper.BindPFlag("charts", rootCmd.PersistentFlags().Lookup("charts"))
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))

	viper.SetDefault("charts", "charts.yaml")
	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_format", "text")
}

// initConfig reads in .env, config file and ENV variables, then sets up logging.
func initConfig() {
	// A missing .env is the common case.
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".cardgrid")
	}

	viper.SetEnvPrefix("cardgrid")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	readErr := viper.ReadInConfig()

	configureLogging()

	if readErr == nil {
		logpkg.Global().Debug("using config file", "path", viper.ConfigFileUsed())
	}
}

// loadCharts reads the chart configuration named by the charts setting.
func loadCharts() (chart.Set, error) {
	path := viper.GetString("charts")
	set, err := chart.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load charts: %w", err)
	}
	logpkg.Global().Debug("charts loaded", "path", path, "count", len(set))
	return set, nil
}
