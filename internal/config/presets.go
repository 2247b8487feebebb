package config

import "slices"

var Presets = map[string]*Config{
	"default": DefaultConfig(),
	"debug": {
		LogLevel: "debug", LogFormat: "text", DataDir: DefaultDataDir,
		ProgressEvery: 1, PlotHeight: DefaultPlotHeight, PlotWidth: DefaultPlotWidth,
	},
	"quiet": {
		LogLevel: "warn", LogFormat: "text", DataDir: DefaultDataDir,
		ProgressEvery: 0, PlotHeight: DefaultPlotHeight, PlotWidth: DefaultPlotWidth,
	},
	"ci": {
		LogLevel: "info", LogFormat: "json", DataDir: DefaultDataDir,
		ProgressEvery: 0, PlotHeight: 10, PlotWidth: 60,
	},
	"wide": {
		LogLevel: DefaultLogLevel, LogFormat: DefaultLogFormat, DataDir: DefaultDataDir,
		ProgressEvery: DefaultProgressEvery, PlotHeight: 25, PlotWidth: 160,
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := *p
	return &cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
