package analyzer

import (
	"sharpcheck/internal/analyzer/detectors"
	"sharpcheck/internal/analyzer/framework"
	"sharpcheck/internal/config"
)

// defaultEntries lists every pass and ruleset in registration order.
func defaultEntries() []framework.Entry {
	return []framework.Entry{
		framework.PassEntry(detectors.NewIndexingPass()),
		framework.PassEntry(detectors.NewPELoadingPass()),
		framework.PassEntry(detectors.NewMetricsPass()),
		framework.RuleSetEntry(detectors.NewNamingRuleSet()),
		framework.RuleSetEntry(detectors.NewSemanticRuleSet()),
		framework.PassEntry(detectors.NewControlFlowPass()),
		framework.PassEntry(detectors.NewDependenciesPass()),
		framework.RuleSetEntry(detectors.NewControlFlowSmellsRuleSet()),
		framework.PassEntry(detectors.NewSymbolsPass()),
		framework.PassEntry(detectors.NewBindingPass()),
		framework.PassEntry(detectors.NewTypesPass()),
		framework.PassEntry(detectors.NewOverloadPass()),
		framework.PassEntry(detectors.NewGenericsPass()),
		framework.PassEntry(detectors.NewFlowPass()),
		framework.PassEntry(detectors.NewNullabilityPass()),
		framework.PassEntry(detectors.NewAttributesPass()),
		framework.PassEntry(detectors.NewAccessPass()),
		framework.PassEntry(detectors.NewExtensionsPass()),
		framework.PassEntry(detectors.NewReportingPass()),
	}
}

// DefaultRegistry returns the full validated registry. It panics if the
// registrations are inconsistent, which is a programming error.
func DefaultRegistry() *framework.Registry {
	reg, err := framework.NewRegistry(defaultEntries()...)
	if err != nil {
		panic(err)
	}
	return reg
}

// RegistryFromConfig drops the passes and rulesets disabled in cfg.
// Unlisted ids stay enabled.
func RegistryFromConfig(cfg *config.AnalysisConfig) *framework.Registry {
	return DefaultRegistry().Filter(func(e framework.Entry) bool {
		if e.IsPass() {
			return cfg.IsPassEnabled(e.ID())
		}
		return cfg.IsRulesetEnabled(e.ID())
	})
}
