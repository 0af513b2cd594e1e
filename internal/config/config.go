// Package config loads the numeric knobs the APU core would otherwise
// hardcode: timer resolutions, the master-cycles-per-sample ratio, and the
// IPL ROM enable default on cold reset. Grounded on a pack repo's direct use
// of gopkg.in/yaml.v3 for a similarly-shaped table (doismellburning's
// deviceid.go decodes tocalls.yaml the same way).
package config

import (
	"io"

	"gopkg.in/yaml.v3"
)

// Config holds the values spec.md fixes as named constants for the
// reference hardware. A caller who doesn't need to override anything should
// use Default(); a caller experimenting with the DSP's rate or an unusual
// timer layout can source one from YAML via Load.
type Config struct {
	// SampleRate is the output sample rate in Hz the Dsp mixes at (32000 on
	// the reference hardware, fixed regardless of region or CPU speed).
	SampleRate int `yaml:"sample_rate"`

	// MasterCyclesPerSample is how many master cycles the render loop asks
	// the Smp to run per requested output sample (64 on the reference
	// hardware).
	MasterCyclesPerSample int `yaml:"master_cycles_per_sample"`

	// TimerResolutions holds the master-cycles-per-internal-tick for
	// timers 0, 1 and 2 (256, 256, 32 on the reference hardware).
	TimerResolutions [3]int `yaml:"timer_resolutions"`

	// IPLROMEnabledAtReset is the IPL ROM enable flag's value a cold reset
	// starts with (true on the reference hardware).
	IPLROMEnabledAtReset bool `yaml:"ipl_rom_enabled_at_reset"`
}

// Default returns the reference hardware's values.
func Default() *Config {
	return &Config{
		SampleRate:            32000,
		MasterCyclesPerSample: 64,
		TimerResolutions:      [3]int{256, 256, 32},
		IPLROMEnabledAtReset:  true,
	}
}

// rawConfig mirrors Config with pointer fields so Load can tell "absent from
// the document" apart from "explicitly set to the zero value" — a plain
// bool can't make that distinction, and IPLROMEnabledAtReset defaults to
// true, where the zero value would otherwise silently flip it off.
type rawConfig struct {
	SampleRate            *int    `yaml:"sample_rate"`
	MasterCyclesPerSample *int    `yaml:"master_cycles_per_sample"`
	TimerResolutions      *[3]int `yaml:"timer_resolutions"`
	IPLROMEnabledAtReset  *bool   `yaml:"ipl_rom_enabled_at_reset"`
}

// Load decodes a YAML document from r, filling any field absent from the
// document with the hardware default.
func Load(r io.Reader) (*Config, error) {
	var raw rawConfig
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		return nil, err
	}

	cfg := Default()
	if raw.SampleRate != nil {
		cfg.SampleRate = *raw.SampleRate
	}
	if raw.MasterCyclesPerSample != nil {
		cfg.MasterCyclesPerSample = *raw.MasterCyclesPerSample
	}
	if raw.TimerResolutions != nil {
		cfg.TimerResolutions = *raw.TimerResolutions
	}
	if raw.IPLROMEnabledAtReset != nil {
		cfg.IPLROMEnabledAtReset = *raw.IPLROMEnabledAtReset
	}

	return cfg, nil
}
