package cmd

import (
	"testing"

	"github.com/spf13/cobra"

	"github.com/lowvis/magnifier/internal/config"
)

func newFlagSetCommand() *cobra.Command {
	c := &cobra.Command{Use: "test"}
	c.Flags().Float32("zoom", 0, "")
	c.Flags().String("mode", "", "")
	c.Flags().Bool("invert", false, "")
	c.Flags().String("source", "", "")
	c.Flags().String("dest", "", "")
	return c
}

func TestApplyRunFlagsOverlaysChangedOnly(t *testing.T) {
	c := newFlagSetCommand()
	if err := c.Flags().Set("zoom", "4.5"); err != nil {
		t.Fatal(err)
	}
	if err := c.Flags().Set("source", `\\.\DISPLAY2`); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.TrackingMode = "Mouse"
	cfg.DestMonitor = `\\.\DISPLAY1`
	applyRunFlags(c, cfg)

	if cfg.Zoom != 4.5 {
		t.Errorf("zoom = %v, want 4.5", cfg.Zoom)
	}
	if cfg.SourceMonitor != `\\.\DISPLAY2` {
		t.Errorf("source = %q", cfg.SourceMonitor)
	}
	if cfg.TrackingMode != "Mouse" {
		t.Errorf("unset --mode overwrote config: %q", cfg.TrackingMode)
	}
	if cfg.DestMonitor != `\\.\DISPLAY1` {
		t.Errorf("unset --dest overwrote config: %q", cfg.DestMonitor)
	}
}

func TestApplyRunFlagsNoFlagsNoChanges(t *testing.T) {
	c := newFlagSetCommand()
	cfg := config.Default()
	before := *cfg
	applyRunFlags(c, cfg)
	if *cfg != before {
		t.Errorf("config changed with no flags set: %+v", cfg)
	}
}
