package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lowvis/magnifier/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "magnifier",
	Short: "Mirror one display onto another at variable zoom",
	Long: "A screen magnifier for low-vision use: continuously mirrors a region of the\n" +
		"source display onto a second display, steering the magnified viewport toward\n" +
		"the text caret, pointer or focused UI element.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version.Version, version.Commit, version.BuildDate)
	rootCmd.PersistentFlags().String("config", "", "Config file path (default: <user config dir>/magnifier/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-file", "", "Log file path (default: stderr)")
}
