// Package config holds the demo shell's JSON-backed settings: window size,
// audio parameters, and ROM search paths. The core engine (internal/console)
// never consults this package — it only ever takes raw ROM bytes.
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// WindowConfig controls the demo window's size and upscaling.
type WindowConfig struct {
	Scale      int  `json:"scale"`
	Fullscreen bool `json:"fullscreen"`
}

// AudioConfig controls the demo's audio output.
type AudioConfig struct {
	Enabled    bool `json:"enabled"`
	SampleRate int  `json:"sample_rate"`
	Mute       bool `json:"mute"`
}

// PathsConfig lists where the demo shell looks for ROM files.
type PathsConfig struct {
	ROMDir string `json:"rom_dir"`
}

// Config is the demo shell's full settings file.
type Config struct {
	Window WindowConfig `json:"window"`
	Audio  AudioConfig  `json:"audio"`
	Paths  PathsConfig  `json:"paths"`
}

// Default returns the demo shell's built-in settings, used whenever no
// config file is given or the given path doesn't exist.
func Default() Config {
	return Config{
		Window: WindowConfig{Scale: 3, Fullscreen: false},
		Audio:  AudioConfig{Enabled: true, SampleRate: 44100, Mute: false},
		Paths:  PathsConfig{ROMDir: "./roms"},
	}
}

// Load reads a JSON config file, falling back to Default() if path is empty
// or the file doesn't exist.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}
