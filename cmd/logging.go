package cmd

import (
	"os"

	"github.com/spf13/viper"

	logpkg "cardgrid/internal/log"
)

// configureLogging installs the global logger from the log_level and
// log_format settings.
func configureLogging() {
	levelStr := viper.GetString("log_level")
	lvl, levelErr := logpkg.ParseLevel(levelStr)

	format := logpkg.Format(viper.GetString("log_format"))
	logger, err := logpkg.New(format, lvl, os.Stderr)
	if err != nil {
		logger = logpkg.NewSimple(lvl).WithWriter(os.Stderr)
		logger.Warn("invalid log format requested, using text", "requested", format, "error", err)
	}
	if levelErr != nil {
		logger.Warn("invalid log level requested, using info", "requested", levelStr, "error", levelErr)
	}
	logpkg.SetGlobal(logger)
}
