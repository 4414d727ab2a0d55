package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"panelmap/internal/errors"
)

// Treatment pairs a treatment label with its display color. The order of
// entries is the display order of column groups in the heatmap.
type Treatment struct {
	Label string `mapstructure:"label" yaml:"label"`
	Color string `mapstructure:"color" yaml:"color"`
}

// HeatmapScale holds the three anchor colors of the diverging cell scale,
// mapped to standardized values -2 / 0 / +2.
type HeatmapScale struct {
	Low  string `mapstructure:"low" yaml:"low"`
	Mid  string `mapstructure:"mid" yaml:"mid"`
	High string `mapstructure:"high" yaml:"high"`
}

// Config represents the complete application configuration
type Config struct {
	Treatments      []Treatment       `mapstructure:"treatments" yaml:"treatments"`
	TreatmentColumn string            `mapstructure:"treatment_column" yaml:"treatment_column"`
	MetadataColumns []string          `mapstructure:"metadata_columns" yaml:"metadata_columns"`
	HeatmapScale    HeatmapScale      `mapstructure:"heatmap_scale" yaml:"heatmap_scale"`
	MethodColors    map[string]string `mapstructure:"method_colors" yaml:"method_colors"`
	OrganColors     map[string]string `mapstructure:"organ_colors" yaml:"organ_colors"`
	OutputDir       string            `mapstructure:"output_dir" yaml:"output_dir"`
	LogLevel        string            `mapstructure:"log_level" yaml:"log_level"`
}

// Labels returns the treatment labels in display order.
func (c *Config) Labels() []string {
	labels := make([]string, len(c.Treatments))
	for i, t := range c.Treatments {
		labels[i] = t.Label
	}
	return labels
}

// TreatmentColors returns the label -> color assignment.
func (c *Config) TreatmentColors() map[string]string {
	colors := make(map[string]string, len(c.Treatments))
	for _, t := range c.Treatments {
		colors[t.Label] = t.Color
	}
	return colors
}

// Load reads configuration from file, environment and defaults, and
// validates it. Precedence: env (PANELMAP_ prefix) > config file > defaults.
// An empty cfgFile falls back to panelmap.yaml in the working directory,
// which is optional; an explicit cfgFile must exist.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PANELMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrap(errors.ConfigInvalid(err.Error()), "failed to read configuration file")
		}
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("panelmap")
		v.SetConfigType("yaml")
		// optional read
		_ = v.ReadInConfig()
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, errors.Wrap(err, "failed to parse configuration")
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// Default returns the built-in configuration without consulting file or
// environment. Used by `config init` and as the baseline for tests.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	config := &Config{}
	// decoding the defaults cannot fail
	_ = v.Unmarshal(config)
	return config
}

// Save writes the configuration to path as YAML.
func Save(c *Config, path string) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "failed to marshal configuration")
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return errors.Wrap(err, "failed to write configuration file")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("treatments", []map[string]interface{}{
		{"label": "PBS", "color": "#8C8C8C"},
		{"label": "FTY 720", "color": "#1B9E77"},
		{"label": "anti-CD20", "color": "#7570B3"},
	})
	v.SetDefault("treatment_column", "treatment")
	v.SetDefault("metadata_columns", []string{
		"experiment", "experiment_id", "mouse", "mouse_id",
		"organ", "group", "condition", "treatment",
	})
	v.SetDefault("heatmap_scale.low", "#2166AC")
	v.SetDefault("heatmap_scale.mid", "#F7F7F7")
	v.SetDefault("heatmap_scale.high", "#B2182B")
	v.SetDefault("method_colors", map[string]string{
		"PC":                    "#000000",
		"Ex Vivo Restimulation": "#E7298A",
		"Homogenate":            "#66A61E",
		"Flow Cytometry":        "#D95F02",
		"Clinical Score":        "#E6AB02",
		"other":                 "#999999",
	})
	v.SetDefault("organ_colors", map[string]string{
		"scdLN":  "#A6761D",
		"SC":     "#1F78B4",
		"Spleen": "#B15928",
		"other":  "#CCCCCC",
	})
	v.SetDefault("output_dir", "output")
	v.SetDefault("log_level", "info")
}

func validateConfig(config *Config) error {
	if len(config.Treatments) == 0 {
		return errors.ConfigInvalid("at least one treatment label is required")
	}
	seen := make(map[string]bool, len(config.Treatments))
	for i, t := range config.Treatments {
		if t.Label == "" {
			return errors.ConfigInvalid(fmt.Sprintf("treatment %d has an empty label", i))
		}
		if seen[t.Label] {
			return errors.ConfigInvalid(fmt.Sprintf("duplicate treatment label %q", t.Label))
		}
		seen[t.Label] = true
		if err := validateColor(fmt.Sprintf("treatments[%d].color", i), t.Color); err != nil {
			return err
		}
	}
	if config.TreatmentColumn == "" {
		return errors.ConfigInvalid("treatment_column is required")
	}
	if len(config.MetadataColumns) == 0 {
		return errors.ConfigInvalid("metadata_columns must not be empty")
	}
	for _, pair := range []struct {
		name  string
		value string
	}{
		{"heatmap_scale.low", config.HeatmapScale.Low},
		{"heatmap_scale.mid", config.HeatmapScale.Mid},
		{"heatmap_scale.high", config.HeatmapScale.High},
	} {
		if err := validateColor(pair.name, pair.value); err != nil {
			return err
		}
	}
	for name, color := range config.MethodColors {
		if err := validateColor("method_colors."+name, color); err != nil {
			return err
		}
	}
	for name, color := range config.OrganColors {
		if err := validateColor("organ_colors."+name, color); err != nil {
			return err
		}
	}
	if config.OutputDir == "" {
		return errors.ConfigInvalid("output_dir is required")
	}
	return nil
}

func validateColor(name, value string) error {
	if len(value) != 7 || value[0] != '#' {
		return errors.ConfigInvalid(fmt.Sprintf("%s: %q is not a #RRGGBB color", name, value))
	}
	for _, r := range value[1:] {
		isDigit := r >= '0' && r <= '9'
		isLower := r >= 'a' && r <= 'f'
		isUpper := r >= 'A' && r <= 'F'
		if !isDigit && !isLower && !isUpper {
			return errors.ConfigInvalid(fmt.Sprintf("%s: %q is not a #RRGGBB color", name, value))
		}
	}
	return nil
}
