// internal/config/config.go
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"sharpcheck/internal/models"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config represents the configuration for sharpcheck
type Config struct {
	// General settings
	Version     string `yaml:"version" toml:"version" json:"version"`
	ProjectName string `yaml:"project_name,omitempty" toml:"project_name,omitempty" json:"project_name,omitempty"`

	// Analysis settings
	Analysis AnalysisConfig `yaml:"analysis" toml:"analysis" json:"analysis"`

	// Output settings
	Output OutputConfig `yaml:"output" toml:"output" json:"output"`
}

// AnalysisConfig controls which passes run and their thresholds. It is read-only during a run.
type AnalysisConfig struct {
	HighComplexityThreshold int `yaml:"cf_high_complexity_threshold" toml:"cf_high_complexity_threshold" json:"cf_high_complexity_threshold"`
	DeepNestingThreshold    int `yaml:"cf_deep_nesting_threshold" toml:"cf_deep_nesting_threshold" json:"cf_deep_nesting_threshold"`

	// Absent keys mean enabled
	EnableRulesets map[string]bool `yaml:"enable_rulesets,omitempty" toml:"enable_rulesets,omitempty" json:"enable_rulesets,omitempty"`
	EnablePasses   map[string]bool `yaml:"enable_passes,omitempty" toml:"enable_passes,omitempty" json:"enable_passes,omitempty"`

	// Per-code severity overrides, "off" drops the diagnostic
	RuleSeverities map[string]models.Severity `yaml:"rule_severities,omitempty" toml:"rule_severities,omitempty" json:"rule_severities,omitempty"`

	Workspace WorkspaceConfig `yaml:"workspace" toml:"workspace" json:"workspace"`

	// Parallel analysis
	MaxWorkers int `yaml:"max_workers" toml:"max_workers" json:"max_workers"`

	// Assembly paths read by the pe_loading pass
	References []string `yaml:"references,omitempty" toml:"references,omitempty" json:"references,omitempty"`

	MaxParams         int  `yaml:"max_params" toml:"max_params" json:"max_params"`
	MaxMethodLines    int  `yaml:"max_method_lines" toml:"max_method_lines" json:"max_method_lines"`
	ReportMissingDocs bool `yaml:"report_missing_docs" toml:"report_missing_docs" json:"report_missing_docs"`
}

type WorkspaceConfig struct {
	FollowRefs bool     `yaml:"follow_refs" toml:"follow_refs" json:"follow_refs"`
	Include    []string `yaml:"include,omitempty" toml:"include,omitempty" json:"include,omitempty"`
	Exclude    []string `yaml:"exclude,omitempty" toml:"exclude,omitempty" json:"exclude,omitempty"`
}

type OutputConfig struct {
	// Default output format
	Format string `yaml:"format" toml:"format" json:"format"`

	// Colorized output
	Colors bool `yaml:"colors" toml:"colors" json:"colors"`

	// Verbosity level
	Verbose bool `yaml:"verbose" toml:"verbose" json:"verbose"`

	// Show suggestions
	ShowSuggestions bool `yaml:"show_suggestions" toml:"show_suggestions" json:"show_suggestions"`

	// Output file path (optional)
	OutputFile string `yaml:"output_file,omitempty" toml:"output_file,omitempty" json:"output_file,omitempty"`

	// Lowest severity that makes the CLI exit non-zero: error, warning or none
	FailOn string `yaml:"fail_on" toml:"fail_on" json:"fail_on"`
}

var validFormats = []string{"console", "json", "msgpack"}

func DefaultConfig() *Config {
	return &Config{
		Version:  "1.0",
		Analysis: DefaultAnalysisConfig(),
		Output: OutputConfig{
			Format:          "console",
			Colors:          true,
			Verbose:         false,
			ShowSuggestions: true,
			FailOn:          "error",
		},
	}
}

// DefaultAnalysisConfig returns the analysis defaults used when no file is given.
func DefaultAnalysisConfig() AnalysisConfig {
	return AnalysisConfig{
		HighComplexityThreshold: 10,
		DeepNestingThreshold:    4,
		EnableRulesets:          map[string]bool{},
		EnablePasses:            map[string]bool{},
		RuleSeverities:          map[string]models.Severity{},
		Workspace: WorkspaceConfig{
			FollowRefs: true,
		},
		MaxWorkers:     runtime.NumCPU(),
		MaxParams:      7,
		MaxMethodLines: 50,
	}
}

// LoadConfig loads configuration from file or returns default
func LoadConfig(configPath string) (*Config, error) {
	// If no config path provided, look for default config files
	if configPath == "" {
		configPath = findConfigFile()
	}

	// If still no config found, return default
	if configPath == "" {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	config := DefaultConfig() // Start with defaults
	if err := decode(configPath, data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

func decode(path string, data []byte, config *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		_, err := toml.Decode(string(data), config)
		return err
	case ".json":
		return json.Unmarshal(data, config)
	default:
		return yaml.Unmarshal(data, config)
	}
}

func encode(path string, config *Config) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(config); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case ".json":
		return json.MarshalIndent(config, "", "  ")
	default:
		return yaml.Marshal(config)
	}
}

// findConfigFile looks for config files in common locations
func findConfigFile() string {
	possiblePaths := []string{
		".sharpcheck.yml",
		".sharpcheck.yaml",
		".sharpcheck.toml",
		"sharpcheck.yml",
		"sharpcheck.yaml",
		"sharpcheck.toml",
		".config/sharpcheck.yml",
		".config/sharpcheck.yaml",
		".config/sharpcheck.toml",
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	formatValid := false
	for _, format := range validFormats {
		if c.Output.Format == format {
			formatValid = true
			break
		}
	}
	if !formatValid {
		return fmt.Errorf("invalid output format: %s (valid: %v)", c.Output.Format, validFormats)
	}

	switch c.Output.FailOn {
	case "error", "warning", "none":
	default:
		return fmt.Errorf("invalid fail_on value: %s (valid: error, warning, none)", c.Output.FailOn)
	}

	a := c.Analysis
	if a.MaxWorkers < 1 {
		return fmt.Errorf("max_workers must be at least 1")
	}
	if a.HighComplexityThreshold < 1 {
		return fmt.Errorf("cf_high_complexity_threshold must be at least 1")
	}
	if a.DeepNestingThreshold < 1 {
		return fmt.Errorf("cf_deep_nesting_threshold must be at least 1")
	}
	if a.MaxParams < 1 || a.MaxMethodLines < 1 {
		return fmt.Errorf("max_params and max_method_lines must be at least 1")
	}
	for code := range a.RuleSeverities {
		if _, ok := models.Lookup(models.DiagnosticCode(code)); !ok {
			return fmt.Errorf("rule_severities: unknown diagnostic code %s", code)
		}
	}

	return nil
}

// SaveConfig saves configuration to file; the extension picks yaml, toml or json.
func (c *Config) SaveConfig(configPath string) error {
	data, err := encode(configPath, c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GenerateConfig creates a sample configuration file
func GenerateConfig(configPath string) error {
	config := DefaultConfig()
	return config.SaveConfig(configPath)
}

// IsPassEnabled reports whether the pass id is enabled; absent means enabled.
func (a *AnalysisConfig) IsPassEnabled(id string) bool {
	enabled, ok := a.EnablePasses[id]
	return !ok || enabled
}

// IsRulesetEnabled reports whether the ruleset id is enabled; absent means enabled.
func (a *AnalysisConfig) IsRulesetEnabled(id string) bool {
	enabled, ok := a.EnableRulesets[id]
	return !ok || enabled
}

// SeverityOverride returns the configured severity for code, if any.
func (a *AnalysisConfig) SeverityOverride(code models.DiagnosticCode) (models.Severity, bool) {
	sev, ok := a.RuleSeverities[string(code)]
	return sev, ok
}

// FailOnSeverity maps fail_on to a severity; ok is false for "none".
func (o *OutputConfig) FailOnSeverity() (models.Severity, bool) {
	switch o.FailOn {
	case "warning":
		return models.SeverityWarning, true
	case "none":
		return models.SeverityOff, false
	default:
		return models.SeverityError, true
	}
}
