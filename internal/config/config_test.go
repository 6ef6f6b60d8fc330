package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_EmptyPathReturnsDefault(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\"): %v", err)
	}
	if cfg != Default() {
		t.Fatalf("Load(\"\") = %+v, want Default()", cfg)
	}
}

func TestLoad_MissingFileReturnsDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.json"))
	if err != nil {
		t.Fatalf("Load on missing file: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("Load on missing file = %+v, want Default()", cfg)
	}
}

func TestLoad_OverridesDefaultsFromJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	const body = `{"window":{"scale":5},"audio":{"mute":true}}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Window.Scale != 5 {
		t.Fatalf("Window.Scale = %d, want 5", cfg.Window.Scale)
	}
	if !cfg.Audio.Mute {
		t.Fatalf("Audio.Mute = false, want true")
	}
	if cfg.Audio.SampleRate != 44100 {
		t.Fatalf("Audio.SampleRate = %d, want default 44100 to survive a partial override", cfg.Audio.SampleRate)
	}
}

func TestLoad_InvalidJSONReturnsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected an error for malformed JSON")
	}
}
