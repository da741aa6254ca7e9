package cmd

import (
	"github.com/spf13/cobra"

	"github.com/lowvis/magnifier/internal/monitor"
	"github.com/lowvis/magnifier/internal/output"
	"github.com/lowvis/magnifier/internal/platform"
)

var monitorsCmd = &cobra.Command{
	Use:   "monitors",
	Short: "List attached monitors",
	Long:  "List the attached monitors with their device IDs, bounds, DPI scale and primary flag.\nUse the IDs with --source/--dest or in the config file.",
	RunE:  runMonitors,
}

func init() {
	rootCmd.AddCommand(monitorsCmd)
	monitorsCmd.Flags().String("format", "yaml", "Output format: yaml or json")
}

// monitorEntry is the serialized form of one display.
type monitorEntry struct {
	ID      string  `yaml:"id"      json:"id"`
	Name    string  `yaml:"name"    json:"name"`
	Bounds  string  `yaml:"bounds"  json:"bounds"`
	Scale   float64 `yaml:"scale"   json:"scale"`
	DPI     int     `yaml:"dpi"     json:"dpi"`
	Primary bool    `yaml:"primary" json:"primary"`
}

func runMonitors(cmd *cobra.Command, args []string) error {
	formatStr, _ := cmd.Flags().GetString("format")
	format, err := output.Parse(formatStr)
	if err != nil {
		return err
	}

	provider, err := platform.NewProvider()
	if err != nil {
		return err
	}
	manager, err := monitor.NewManager(provider.Monitors)
	if err != nil {
		return err
	}

	entries := make([]monitorEntry, 0, len(manager.All()))
	for _, d := range manager.All() {
		entries = append(entries, monitorEntry{
			ID:      d.ID,
			Name:    d.Name,
			Bounds:  d.Bounds.String(),
			Scale:   d.Scale,
			DPI:     d.DPI,
			Primary: d.Primary,
		})
	}
	return output.Print(entries, format)
}
