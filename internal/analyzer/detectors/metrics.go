package detectors

import (
	"strings"

	"sharpcheck/internal/analyzer/framework"
	"sharpcheck/internal/artifacts"
	"sharpcheck/internal/syntax"
)

// MetricsPass counts declarations, statements and lines of one unit into an AstAnalysis.
type MetricsPass struct{}

func NewMetricsPass() *MetricsPass {
	return &MetricsPass{}
}

func (p *MetricsPass) ID() string                { return "metrics" }
func (p *MetricsPass) Reads() []artifacts.Kind  { return nil }
func (p *MetricsPass) Writes() []artifacts.Kind { return []artifacts.Kind{artifacts.KindAstAnalysis} }

func (p *MetricsPass) Run(cu *syntax.CompilationUnit, s *framework.Session) {
	m := CollectMetrics(cu)
	m.LinesOfCode = CountLinesOfCode(s.Ctx.Source)
	s.Artifacts.Insert(&m)
}

// CollectMetrics computes every counter except LinesOfCode.
func CollectMetrics(cu *syntax.CompilationUnit) artifacts.AstAnalysis {
	var m artifacts.AstAnalysis
	syntax.Inspect(cu, func(n syntax.Node) bool {
		switch d := n.(type) {
		case *syntax.TypeDecl:
			switch d.Kind {
			case syntax.KindClass:
				m.TotalClasses++
			case syntax.KindInterface:
				m.TotalInterfaces++
			case syntax.KindStruct:
				m.TotalStructs++
			case syntax.KindEnum:
				m.TotalEnums++
			case syntax.KindRecord, syntax.KindRecordStruct:
				m.TotalRecords++
			}
			if d.Doc != "" {
				m.DocumentedClasses++
			}
		case *syntax.DelegateDecl:
			m.TotalDelegates++
		case *syntax.LocalFuncStmt:
			// local functions are part of their enclosing member
			countStatements(&m, d.Func)
			return false
		case *syntax.MethodDecl:
			m.TotalMethods++
			if d.Doc != "" {
				m.DocumentedMethods++
			}
		case *syntax.ConstructorDecl:
			m.TotalConstructors++
		case *syntax.PropertyDecl:
			m.TotalProperties++
		case *syntax.FieldDecl:
			m.TotalFields += len(d.Vars)
		case *syntax.EventDecl:
			m.TotalEvents++
		}
		countStatement(&m, n)
		for _, body := range memberBodies(n) {
			complexity, nesting := measureFlow(body)
			m.CyclomaticComplexity += complexity
			m.MaxNestingDepth = max(m.MaxNestingDepth, nesting)
		}
		return true
	})
	return m
}

func countStatements(m *artifacts.AstAnalysis, root syntax.Node) {
	syntax.Inspect(root, func(n syntax.Node) bool {
		countStatement(m, n)
		return true
	})
}

func countStatement(m *artifacts.AstAnalysis, n syntax.Node) {
	switch n.(type) {
	case *syntax.IfStmt:
		m.TotalIfStatements++
	case *syntax.ForStmt, *syntax.ForeachStmt:
		m.TotalForLoops++
	case *syntax.WhileStmt, *syntax.DoStmt:
		m.TotalWhileLoops++
	case *syntax.SwitchStmt:
		m.TotalSwitchStatements++
	case *syntax.TryStmt:
		m.TotalTryStatements++
	case *syntax.UsingStmt:
		m.TotalUsingStatements++
	}
}

// CountLinesOfCode counts lines that hold something besides whitespace and comments.
func CountLinesOfCode(source string) int {
	count := 0
	inBlock := false
	for _, line := range strings.Split(source, "\n") {
		if hasCode(strings.TrimSpace(line), &inBlock) {
			count++
		}
	}
	return count
}

// hasCode scans one trimmed line, tracking whether a /* */ comment is open across lines.
func hasCode(line string, inBlock *bool) bool {
	code := false
	for len(line) > 0 {
		if *inBlock {
			end := strings.Index(line, "*/")
			if end < 0 {
				return code
			}
			line = strings.TrimSpace(line[end+2:])
			*inBlock = false
			continue
		}
		if strings.HasPrefix(line, "//") {
			return code
		}
		if strings.HasPrefix(line, "/*") {
			*inBlock = true
			line = line[2:]
			continue
		}
		code = true
		next := strings.Index(line, "/*")
		if next < 0 || strings.Contains(line[:next], "\"") {
			return true
		}
		line = line[next:]
	}
	return code
}
