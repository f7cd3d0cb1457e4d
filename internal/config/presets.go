package config

import "sort"

var Presets = map[string]*Config{
	"gdls-thermal": {
		Material: "gdls", Energy: DefaultEnergy, Direction: [3]float64{0, 0, 1},
		Temperature: DefaultTemperature, Events: 10000, Workers: DefaultWorkers, ScaleGammas: true,
		Mode: ModeConfig{CaptureMode: CaptureNatural, CascadeMode: CascadeAll, Verbose: 0},
	},
	"gdls-discrete": {
		Material: "gdls", Energy: DefaultEnergy, Direction: [3]float64{0, 0, 1},
		Temperature: DefaultTemperature, Events: 10000, Workers: DefaultWorkers, ScaleGammas: true,
		Mode: ModeConfig{CaptureMode: CaptureNatural, CascadeMode: CascadeDiscrete, Verbose: 0},
	},
	"gd-natural": {
		Material: "natgd", Energy: DefaultEnergy, Direction: [3]float64{0, 0, 1},
		Temperature: DefaultTemperature, Events: 10000, Workers: DefaultWorkers, ScaleGammas: true,
		Mode: ModeConfig{CaptureMode: CaptureNatural, CascadeMode: CascadeAll, Verbose: 0},
	},
	"gd155-enriched": {
		Material: "natgd", Energy: DefaultEnergy, Direction: [3]float64{0, 0, 1},
		Temperature: DefaultTemperature, Events: 10000, Workers: DefaultWorkers, ScaleGammas: true,
		Mode: ModeConfig{CaptureMode: CaptureEnriched155, CascadeMode: CascadeAll, Verbose: 0},
	},
	"gd157-enriched": {
		Material: "natgd", Energy: DefaultEnergy, Direction: [3]float64{0, 0, 1},
		Temperature: DefaultTemperature, Events: 10000, Workers: DefaultWorkers, ScaleGammas: true,
		Mode: ModeConfig{CaptureMode: CaptureEnriched157, CascadeMode: CascadeAll, Verbose: 0},
	},
	"water-thermal": {
		Material: "water", Energy: DefaultEnergy, Direction: [3]float64{0, 0, 1},
		Temperature: DefaultTemperature, Events: 10000, Workers: DefaultWorkers, ScaleGammas: true,
		Mode: ModeConfig{CaptureMode: CaptureNatural, CascadeMode: CascadeAll, Verbose: 0},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *cfg
	return &c
}

// ListPresets returns the preset names in sorted order.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
