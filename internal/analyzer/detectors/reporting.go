package detectors

import (
	"sharpcheck/internal/analyzer/framework"
	"sharpcheck/internal/artifacts"
	"sharpcheck/internal/models"
	"sharpcheck/internal/syntax"
)

// ReportingPass finalizes the diagnostics of a file: configured severity
// overrides, then deduplication and a stable sort.
type ReportingPass struct{}

func NewReportingPass() *ReportingPass {
	return &ReportingPass{}
}

func (p *ReportingPass) ID() string                { return "reporting" }
func (p *ReportingPass) Reads() []artifacts.Kind  { return nil }
func (p *ReportingPass) Writes() []artifacts.Kind { return nil }

func (p *ReportingPass) Run(_ *syntax.CompilationUnit, s *framework.Session) {
	ApplySeverityOverrides(s.Diagnostics, s.Config().RuleSeverities)
	s.Diagnostics.Dedup()
	s.Diagnostics.Sort()
}

// ApplySeverityOverrides rewrites severities per code; "off" drops the diagnostic.
func ApplySeverityOverrides(diags *models.DiagnosticCollection, overrides map[string]models.Severity) {
	if len(overrides) == 0 {
		return
	}
	diags.Filter(func(d *models.Diagnostic) bool {
		sev, ok := overrides[string(d.Code)]
		if !ok {
			return true
		}
		if sev == models.SeverityOff {
			return false
		}
		d.Severity = sev
		return true
	})
}
