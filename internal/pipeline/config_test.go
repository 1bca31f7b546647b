package pipeline

import (
	"testing"

	"mtg-scanner/internal/recognize"
	"mtg-scanner/internal/segment"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.HashSeparationThreshold != 4.0 {
		t.Errorf("threshold: got %f, want 4.0", cfg.HashSeparationThreshold)
	}
	if cfg.HashSize != 32 {
		t.Errorf("hash size: got %d, want 32", cfg.HashSize)
	}
	if cfg.GrayThreshold != 70 {
		t.Errorf("gray threshold: got %f, want 70", cfg.GrayThreshold)
	}
	if cfg.RGBThreshold != 110 {
		t.Errorf("rgb threshold: got %f, want 110", cfg.RGBThreshold)
	}
	if cfg.CLAHEClipLimit != 2.0 || cfg.CLAHETileSize != 8 {
		t.Errorf("CLAHE: got %f/%d, want 2.0/8", cfg.CLAHEClipLimit, cfg.CLAHETileSize)
	}
	if cfg.MaxDimension != 1000 {
		t.Errorf("max dimension: got %d, want 1000", cfg.MaxDimension)
	}
	if cfg.FormFactorMin != 0.25 || cfg.FormFactorMax != 0.33 {
		t.Errorf("form factor range: got (%f, %f), want (0.25, 0.33)",
			cfg.FormFactorMin, cfg.FormFactorMax)
	}
	if cfg.CornerDiffMax != 0.35 {
		t.Errorf("corner diff ceiling: got %f, want 0.35", cfg.CornerDiffMax)
	}
	if cfg.CropSlope != 0.22 {
		t.Errorf("crop slope: got %f, want 0.22", cfg.CropSlope)
	}
	if cfg.MaxCards != 5 {
		t.Errorf("max cards: got %d, want 5", cfg.MaxCards)
	}

	wantModes := []segment.Mode{segment.ModeAdaptive, segment.ModeRGB}
	if len(cfg.Modes) != len(wantModes) {
		t.Fatalf("mode count: got %d, want %d", len(cfg.Modes), len(wantModes))
	}
	for i, m := range wantModes {
		if cfg.Modes[i] != m {
			t.Errorf("mode %d: got %s, want %s", i, cfg.Modes[i], m)
		}
	}
}

func TestConfigSetters(t *testing.T) {
	base := DefaultConfig()

	custom := base.
		WithThreshold(6.0).
		WithHashSize(16).
		WithModes(segment.ModeAll).
		WithNameMode(recognize.NameFull).
		WithRotationMode(recognize.RotationGlobalArgmax).
		WithVerbose(true)

	if custom.HashSeparationThreshold != 6.0 || custom.HashSize != 16 {
		t.Error("setters did not apply")
	}
	if len(custom.Modes) != 1 || custom.Modes[0] != segment.ModeAll {
		t.Error("mode setter did not apply")
	}
	if custom.NameMode != recognize.NameFull || custom.RotationMode != recognize.RotationGlobalArgmax {
		t.Error("recognition mode setters did not apply")
	}
	if !custom.Verbose {
		t.Error("verbose setter did not apply")
	}

	// Setters return copies; the base config is unchanged
	if base.HashSeparationThreshold != 4.0 || base.Verbose {
		t.Error("base config was mutated")
	}
}

func TestRecognizeConfigDerivation(t *testing.T) {
	cfg := DefaultConfig().WithThreshold(5.5)
	rc := cfg.recognizeConfig()

	if rc.Threshold != 5.5 || rc.HashSize != cfg.HashSize {
		t.Errorf("derived config: got %+v", rc)
	}
}
