package detectors

import (
	"log/slog"

	"sharpcheck/internal/analyzer/framework"
	"sharpcheck/internal/artifacts"
	"sharpcheck/internal/metadata"
	"sharpcheck/internal/syntax"
)

// TypeSource lists the public types of an assembly.
type TypeSource interface {
	Types(path string) ([]metadata.TypeName, error)
}

// PELoadingPass reads the assemblies listed in `references` and publishes
// their type names. Unreadable assemblies are logged and skipped.
type PELoadingPass struct {
	source TypeSource
}

func NewPELoadingPass() *PELoadingPass {
	return &PELoadingPass{source: metadata.Shared()}
}

// NewPELoadingPassWithSource uses source instead of the shared assembly reader.
func NewPELoadingPassWithSource(source TypeSource) *PELoadingPass {
	return &PELoadingPass{source: source}
}

func (p *PELoadingPass) ID() string                { return "pe_loading" }
func (p *PELoadingPass) Reads() []artifacts.Kind  { return nil }
func (p *PELoadingPass) Writes() []artifacts.Kind { return []artifacts.Kind{artifacts.KindExternalSymbols} }

func (p *PELoadingPass) Run(_ *syntax.CompilationUnit, s *framework.Session) {
	external := artifacts.NewExternalSymbols()
	for _, ref := range s.Config().References {
		types, err := p.source.Types(ref)
		if err != nil {
			slog.Warn("skipping assembly reference", "file", s.File(), "reference", ref, "error", err)
			continue
		}
		for _, t := range types {
			external.AddType(t.Namespace, t.Name)
		}
		external.Sources = append(external.Sources, ref)
	}
	s.Artifacts.Insert(external)
}
