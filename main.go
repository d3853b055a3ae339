package main

import (
	"embed"
	"fmt"
	"os"

	"cardgrid/cmd"
	"cardgrid/internal/dashboard"
)

//go:embed web
var webFiles embed.FS

// Build-time variables
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

func main() {
	cmd.SetVersionInfo(version, commit, buildTime)

	dashboard.SetWebFiles(webFiles)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
