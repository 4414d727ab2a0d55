package config

import (
	"os"
	"path/filepath"
	"testing"

	"panelmap/internal/errors"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()

	if err := validateConfig(cfg); err != nil {
		t.Fatalf("default configuration failed validation: %v", err)
	}

	wantLabels := []string{"PBS", "FTY 720", "anti-CD20"}
	got := cfg.Labels()
	if len(got) != len(wantLabels) {
		t.Fatalf("Expected %d treatment labels, got %d", len(wantLabels), len(got))
	}
	for i, label := range wantLabels {
		if got[i] != label {
			t.Errorf("Expected treatment %d to be %q, got %q", i, label, got[i])
		}
	}

	colors := cfg.TreatmentColors()
	if colors["FTY 720"] != "#1B9E77" {
		t.Errorf("Expected FTY 720 color #1B9E77, got %q", colors["FTY 720"])
	}

	if cfg.TreatmentColumn != "treatment" {
		t.Errorf("Expected treatment_column 'treatment', got %q", cfg.TreatmentColumn)
	}
	if cfg.HeatmapScale.Mid != "#F7F7F7" {
		t.Errorf("Expected heatmap midpoint #F7F7F7, got %q", cfg.HeatmapScale.Mid)
	}
	if cfg.MethodColors["PC"] != "#000000" {
		t.Errorf("Expected PC method color #000000, got %q", cfg.MethodColors["PC"])
	}
	if cfg.OrganColors["scdLN"] != "#A6761D" {
		t.Errorf("Expected scdLN organ color #A6761D, got %q", cfg.OrganColors["scdLN"])
	}
}

func TestLoadExplicitFileMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err == nil {
		t.Fatal("Expected error for missing explicit config file, got nil")
	}
	if code := errors.GetCode(err); code != errors.CodeConfigInvalid {
		t.Errorf("Expected code %s, got %s", errors.CodeConfigInvalid, code)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "panelmap.yaml")
	content := []byte(`
output_dir: results
treatments:
  - label: Vehicle
    color: "#111111"
  - label: Drug
    color: "#222222"
`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("failed to write fixture config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.OutputDir != "results" {
		t.Errorf("Expected output_dir 'results', got %q", cfg.OutputDir)
	}
	labels := cfg.Labels()
	if len(labels) != 2 || labels[0] != "Vehicle" || labels[1] != "Drug" {
		t.Errorf("Expected treatments [Vehicle Drug], got %v", labels)
	}
	// Untouched keys keep their defaults.
	if cfg.LogLevel != "info" {
		t.Errorf("Expected default log_level 'info', got %q", cfg.LogLevel)
	}
	if cfg.HeatmapScale.Low != "#2166AC" {
		t.Errorf("Expected default heatmap low #2166AC, got %q", cfg.HeatmapScale.Low)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("PANELMAP_LOG_LEVEL", "debug")
	t.Setenv("PANELMAP_OUTPUT_DIR", "env-out")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("Expected env log_level 'debug', got %q", cfg.LogLevel)
	}
	if cfg.OutputDir != "env-out" {
		t.Errorf("Expected env output_dir 'env-out', got %q", cfg.OutputDir)
	}
}

func TestValidateConfigRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no treatments", func(c *Config) { c.Treatments = nil }},
		{"empty label", func(c *Config) { c.Treatments[0].Label = "" }},
		{"duplicate label", func(c *Config) { c.Treatments[1].Label = c.Treatments[0].Label }},
		{"bad treatment color", func(c *Config) { c.Treatments[0].Color = "red" }},
		{"bad scale color", func(c *Config) { c.HeatmapScale.High = "#XYZXYZ" }},
		{"bad method color", func(c *Config) { c.MethodColors["PC"] = "#12345" }},
		{"empty treatment column", func(c *Config) { c.TreatmentColumn = "" }},
		{"empty metadata vocabulary", func(c *Config) { c.MetadataColumns = nil }},
		{"empty output dir", func(c *Config) { c.OutputDir = "" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			if err := validateConfig(cfg); err == nil {
				t.Errorf("Expected validation error for %s, got nil", tc.name)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "panelmap.yaml")

	original := Default()
	original.OutputDir = "saved-out"
	if err := Save(original, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load of saved config failed: %v", err)
	}
	if loaded.OutputDir != "saved-out" {
		t.Errorf("Expected output_dir 'saved-out', got %q", loaded.OutputDir)
	}
	if len(loaded.Treatments) != len(original.Treatments) {
		t.Errorf("Expected %d treatments, got %d", len(original.Treatments), len(loaded.Treatments))
	}
}
