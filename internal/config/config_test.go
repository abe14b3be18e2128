package config

import (
	"os"
	"path/filepath"
	"testing"

	"sharpcheck/internal/models"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	a := cfg.Analysis
	if a.HighComplexityThreshold != 10 || a.DeepNestingThreshold != 4 {
		t.Errorf("thresholds = %d/%d, want 10/4", a.HighComplexityThreshold, a.DeepNestingThreshold)
	}
	if !a.Workspace.FollowRefs {
		t.Errorf("follow_refs should default to true")
	}
	if !a.IsPassEnabled("indexing") || !a.IsRulesetEnabled("naming") {
		t.Errorf("unlisted ids should be enabled")
	}
}

func TestLoadConfigYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".sharpcheck.yml")
	content := `analysis:
  cf_high_complexity_threshold: 15
  enable_passes:
    indexing: false
  rule_severities:
    BSW01001: error
    BSW02002: "off"
  workspace:
    include: ["src/**/*.cs"]
output:
  format: json
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	a := cfg.Analysis
	if a.HighComplexityThreshold != 15 {
		t.Errorf("threshold = %d, want 15", a.HighComplexityThreshold)
	}
	if a.DeepNestingThreshold != 4 {
		t.Errorf("unset fields should keep defaults, nesting = %d", a.DeepNestingThreshold)
	}
	if a.IsPassEnabled("indexing") {
		t.Errorf("indexing should be disabled")
	}
	if !a.IsPassEnabled("metrics") {
		t.Errorf("metrics should stay enabled")
	}
	if sev, ok := a.SeverityOverride(models.CodeHighComplexity); !ok || sev != models.SeverityError {
		t.Errorf("BSW01001 override = %v, %v", sev, ok)
	}
	if sev, ok := a.SeverityOverride(models.CodePascalCase); !ok || sev != models.SeverityOff {
		t.Errorf("BSW02002 override = %v, %v", sev, ok)
	}
	if len(a.Workspace.Include) != 1 || !a.Workspace.FollowRefs {
		t.Errorf("workspace = %+v", a.Workspace)
	}
	if cfg.Output.Format != "json" {
		t.Errorf("format = %s", cfg.Output.Format)
	}
}

func TestLoadConfigTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sharpcheck.toml")
	content := `[analysis]
cf_deep_nesting_threshold = 6

[analysis.enable_rulesets]
naming = false

[analysis.workspace]
follow_refs = false
exclude = ["**/Generated/**"]
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Analysis.DeepNestingThreshold != 6 {
		t.Errorf("nesting threshold = %d, want 6", cfg.Analysis.DeepNestingThreshold)
	}
	if cfg.Analysis.IsRulesetEnabled("naming") {
		t.Errorf("naming should be disabled")
	}
	if cfg.Analysis.Workspace.FollowRefs || len(cfg.Analysis.Workspace.Exclude) != 1 {
		t.Errorf("workspace = %+v", cfg.Analysis.Workspace)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad format", func(c *Config) { c.Output.Format = "html" }},
		{"bad fail_on", func(c *Config) { c.Output.FailOn = "sometimes" }},
		{"no workers", func(c *Config) { c.Analysis.MaxWorkers = 0 }},
		{"zero threshold", func(c *Config) { c.Analysis.HighComplexityThreshold = 0 }},
		{"unknown code", func(c *Config) { c.Analysis.RuleSeverities["NOPE"] = models.SeverityError }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("expected validation error")
			}
		})
	}
}

func TestSaveAndReload(t *testing.T) {
	for _, name := range []string{"out.yml", "out.toml", "out.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)
			cfg := DefaultConfig()
			cfg.Analysis.MaxParams = 3
			cfg.Analysis.RuleSeverities["BSW01003"] = models.SeverityInfo
			if err := cfg.SaveConfig(path); err != nil {
				t.Fatalf("SaveConfig: %v", err)
			}
			back, err := LoadConfig(path)
			if err != nil {
				t.Fatalf("LoadConfig: %v", err)
			}
			if back.Analysis.MaxParams != 3 {
				t.Errorf("max_params = %d, want 3", back.Analysis.MaxParams)
			}
			if sev, ok := back.Analysis.SeverityOverride(models.CodeTooManyParams); !ok || sev != models.SeverityInfo {
				t.Errorf("override lost: %v %v", sev, ok)
			}
		})
	}
}
