package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Zoom != 2.0 || cfg.TrackingMode != "Auto" || !cfg.BlockCursor {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.Path() != path {
		t.Errorf("path = %q, want %q", cfg.Path(), path)
	}
}

func TestSaveLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	cfg.Zoom = 4.25
	cfg.TrackingMode = "Mouse"
	cfg.SourceMonitor = `\\.\DISPLAY1`
	cfg.DestMonitor = `\\.\DISPLAY2`
	cfg.InvertColors = true
	if err := cfg.Save(); err != nil {
		t.Fatal(err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Zoom != 4.25 || got.TrackingMode != "Mouse" || !got.InvertColors {
		t.Errorf("reloaded = %+v", got)
	}
	if got.SourceMonitor != `\\.\DISPLAY1` || got.DestMonitor != `\\.\DISPLAY2` {
		t.Errorf("monitors = %q/%q", got.SourceMonitor, got.DestMonitor)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("zoom: [not a number"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("malformed config should fail to load")
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("zoom: 3.5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Zoom != 3.5 {
		t.Errorf("zoom = %v, want 3.5", cfg.Zoom)
	}
	if cfg.TrackingMode != "Auto" {
		t.Errorf("unset field lost its default: %q", cfg.TrackingMode)
	}
}
