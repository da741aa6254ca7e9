package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lowvis/magnifier/internal/config"
	"github.com/lowvis/magnifier/internal/engine"
	"github.com/lowvis/magnifier/internal/logging"
	"github.com/lowvis/magnifier/internal/platform"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the magnifier",
	Long: "Start the capture/track/present loop: capture the source monitor, steer the\n" +
		"viewport from caret/pointer/focus signals, and present the magnified view on\n" +
		"the destination monitor until interrupted.",
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().Float32("zoom", 0, "Initial zoom factor 1.0-12.0 (default: from config)")
	runCmd.Flags().String("mode", "", "Tracking mode: auto, caret, mouse, focus, manual (default: from config)")
	runCmd.Flags().Bool("invert", false, "Invert colors")
	runCmd.Flags().String("source", "", "Source monitor ID (default: from config, else primary)")
	runCmd.Flags().String("dest", "", "Destination monitor ID (default: from config, else first non-primary)")
	runCmd.Flags().Bool("mcp", false, "Expose the MCP control server while running")
	runCmd.Flags().String("mcp-transport", "stdio", "MCP transport: stdio or streamable-http")
	runCmd.Flags().Int("mcp-port", 8931, "MCP port for streamable-http transport")
}

func runRun(cmd *cobra.Command, args []string) error {
	configPath, _ := rootCmd.PersistentFlags().GetString("config")
	logLevel, _ := rootCmd.PersistentFlags().GetString("log-level")
	logFile, _ := rootCmd.PersistentFlags().GetString("log-file")

	log, f, err := logging.New(logFile, logLevel)
	if err != nil {
		return err
	}
	if f != nil {
		defer f.Close()
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	applyRunFlags(cmd, cfg)

	provider, err := platform.NewProvider()
	if err != nil {
		return err
	}

	eng, err := engine.New(provider, cfg, log)
	if err != nil {
		return fmt.Errorf("initialize magnifier: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if useMCP, _ := cmd.Flags().GetBool("mcp"); useMCP {
		transport, _ := cmd.Flags().GetString("mcp-transport")
		port, _ := cmd.Flags().GetInt("mcp-port")
		srv := newControlServer(eng)
		go func() {
			if err := srv.serve(transport, port); err != nil {
				log.Error("mcp server stopped", "error", err)
			}
		}()
	}

	return eng.Run(ctx)
}

// applyRunFlags overlays explicitly-set command flags onto the loaded
// config before the engine reads it.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("zoom") {
		cfg.Zoom, _ = cmd.Flags().GetFloat32("zoom")
	}
	if cmd.Flags().Changed("mode") {
		cfg.TrackingMode, _ = cmd.Flags().GetString("mode")
	}
	if cmd.Flags().Changed("invert") {
		cfg.InvertColors, _ = cmd.Flags().GetBool("invert")
	}
	if cmd.Flags().Changed("source") {
		cfg.SourceMonitor, _ = cmd.Flags().GetString("source")
	}
	if cmd.Flags().Changed("dest") {
		cfg.DestMonitor, _ = cmd.Flags().GetString("dest")
	}
}
