package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"cardgrid/internal/dashboard"
	logpkg "cardgrid/internal/log"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the card dashboard",
	Long: `Serve the card dashboard over HTTP.

Each open page gets its own session over a WebSocket connection: the
server assembles every card, paints every chart and lays out the grid,
then re-lays it out whenever the page is resized. Slice clicks navigate
to the chart's target link.`,
	Example: `  # Serve charts.yaml on the default port (3000)
  cardgrid serve

  # Serve another file on a custom port
  cardgrid serve --charts ./dashboards/devices.yaml --port 8080

  # Collapse resize bursts over a longer window
  cardgrid serve --debounce 250ms`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 3000, "Dashboard server port")
	serveCmd.Flags().String("title", "Dashboard", "Page title")
	serveCmd.Flags().String("container-id", dashboard.DefaultContainerID, "Id of the grid container element")
	serveCmd.Flags().String("plotly-url", dashboard.DefaultPlotlyURL, "Charting library script URL")
	serveCmd.Flags().Duration("debounce", dashboard.DefaultDebounce, "Quiet period before a resize triggers a layout pass")
	serveCmd.Flags().Bool("open", false, "Open the dashboard in the default browser")

	_ = viper.BindPFlag("port", serveCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("title", serveCmd.Flags().Lookup("title"))
	_ = viper.BindPFlag("container_id", serveCmd.Flags().Lookup("container-id"))
	_ = viper.BindPFlag("plotly_url", serveCmd.Flags().Lookup("plotly-url"))
	_ = viper.BindPFlag("debounce", serveCmd.Flags().Lookup("debounce"))
}

func serverConfig() dashboard.Config {
	return dashboard.Config{
		Port:        viper.GetInt("port"),
		Title:       viper.GetString("title"),
		ContainerID: viper.GetString("container_id"),
		PlotlyURL:   viper.GetString("plotly_url"),
		Debounce:    viper.GetDuration("debounce"),
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	charts, err := loadCharts()
	if err != nil {
		return err
	}

	cfg := serverConfig()
	srv, err := dashboard.NewServer(cfg, charts, logpkg.Global())
	if err != nil {
		return fmt.Errorf("failed to create dashboard server: %w", err)
	}

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- srv.Start(ctx)
	}()

	autoOpen, _ := cmd.Flags().GetBool("open")
	if autoOpen {
		url := fmt.Sprintf("http://localhost:%d", cfg.Port)
		if err := openBrowser(url); err != nil {
			logpkg.Global().Warn("failed to open browser, open the dashboard manually", "url", url, "error", err)
		}
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
		logpkg.Global().Info("shutting down dashboard")
		cancel()
	case err := <-serverDone:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("dashboard server error: %w", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		logpkg.Global().Warn("error during dashboard shutdown", "error", err)
	}

	logpkg.Global().Info("dashboard stopped")
	return nil
}

// openBrowser attempts to open the given URL in the default browser
func openBrowser(url string) error {
	var cmd string
	var args []string

	switch {
	case isCommandAvailable("xdg-open"):
		cmd = "xdg-open"
		args = []string{url}
	case isCommandAvailable("open"):
		cmd = "open"
		args = []string{url}
	case isCommandAvailable("cmd"):
		cmd = "cmd"
		args = []string{"/c", "start", url}
	default:
		return fmt.Errorf("no suitable command found to open browser")
	}

	return exec.Command(cmd, args...).Start()
}

func isCommandAvailable(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
