package main

import (
	"fmt"
	"os"

	"github.com/san-kum/blocksim/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	configFile string
	preset     string
	logLevel   string
	dataDir    string

	cfg *config.Config
)

func main() {
	rootCmd := &cobra.Command{
		Use:               "blocksim",
		Short:             "fixed-step block diagram simulator",
		SilenceUsage:      true,
		PersistentPreRunE: loadConfig,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use a named configuration preset")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (overrides config)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "data directory (overrides config)")

	rootCmd.AddCommand(
		newRunCmd(),
		newValidateCmd(),
		newBlocksCmd(),
		newListCmd(),
		newPlotCmd(),
		newExportCmd(),
		newSweepCmd(),
		newPresetsCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig resolves settings from the preset, then the config file, then
// flags, and configures the standard logger.
func loadConfig(cmd *cobra.Command, args []string) error {
	resolved, err := config.Resolve(preset, configFile)
	if err != nil {
		return err
	}
	cfg = resolved
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	return cfg.ConfigureLogger(logrus.StandardLogger())
}

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "list configuration presets",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Printf("%-8s log=%s/%s progress=%d plot=%dx%d\n",
					name, p.LogLevel, p.LogFormat, p.ProgressEvery, p.PlotWidth, p.PlotHeight)
			}
		},
	}
}
