// Package framework defines analysis sessions, passes, rulesets and the registry that orders them.
package framework

import (
	"sharpcheck/internal/artifacts"
	"sharpcheck/internal/config"
	actx "sharpcheck/internal/context"
	"sharpcheck/internal/models"
	"sharpcheck/internal/syntax"
)

// Session is the state of analyzing one file: its context, artifacts and diagnostics.
// A session is used by one goroutine at a time.
type Session struct {
	Ctx         *actx.AnalysisContext
	Artifacts   *artifacts.Store
	Diagnostics *models.DiagnosticCollection
	Spans       syntax.SpanTable
}

// NewSession creates an empty session for ctx. spans may be nil.
func NewSession(ctx *actx.AnalysisContext, spans syntax.SpanTable) *Session {
	if spans == nil {
		spans = syntax.SpanTable{}
	}
	return &Session{
		Ctx:         ctx,
		Artifacts:   artifacts.NewStore(),
		Diagnostics: models.NewDiagnosticCollection(),
		Spans:       spans,
	}
}

// Config returns the analysis configuration of the session's context.
func (s *Session) Config() *config.AnalysisConfig {
	return &s.Ctx.Config
}

// File returns the path of the analyzed file.
func (s *Session) File() string {
	return s.Ctx.File
}

// Location converts a node span into a source location.
func (s *Session) Location(span syntax.Span) models.SourceLocation {
	return s.Ctx.LocationFromRange(span.Start, span.End)
}

// Report adds a diagnostic at span. An empty format uses the catalog message.
func (s *Session) Report(code models.DiagnosticCode, span syntax.Span, format string, args ...any) {
	s.Diagnostics.Report(code, s.Location(span), format, args...)
}

// ReportAt adds a fully built diagnostic, filling in the location from span.
func (s *Session) ReportAt(d models.Diagnostic, span syntax.Span) {
	d.Location = s.Location(span)
	if d.Message == "" {
		d.Message = d.Code.DefaultMessage()
	}
	s.Diagnostics.Add(d)
}
