package artifacts

// AstAnalysis holds per-file (or merged) structural counters.
type AstAnalysis struct {
	TotalClasses          int `json:"total_classes" msgpack:"total_classes"`
	TotalInterfaces       int `json:"total_interfaces" msgpack:"total_interfaces"`
	TotalStructs          int `json:"total_structs" msgpack:"total_structs"`
	TotalEnums            int `json:"total_enums" msgpack:"total_enums"`
	TotalRecords          int `json:"total_records" msgpack:"total_records"`
	TotalDelegates        int `json:"total_delegates" msgpack:"total_delegates"`
	TotalMethods          int `json:"total_methods" msgpack:"total_methods"`
	TotalProperties       int `json:"total_properties" msgpack:"total_properties"`
	TotalFields           int `json:"total_fields" msgpack:"total_fields"`
	TotalEvents           int `json:"total_events" msgpack:"total_events"`
	TotalConstructors     int `json:"total_constructors" msgpack:"total_constructors"`
	TotalIfStatements     int `json:"total_if_statements" msgpack:"total_if_statements"`
	TotalForLoops         int `json:"total_for_loops" msgpack:"total_for_loops"`
	TotalWhileLoops       int `json:"total_while_loops" msgpack:"total_while_loops"`
	TotalSwitchStatements int `json:"total_switch_statements" msgpack:"total_switch_statements"`
	TotalTryStatements    int `json:"total_try_statements" msgpack:"total_try_statements"`
	TotalUsingStatements  int `json:"total_using_statements" msgpack:"total_using_statements"`
	CyclomaticComplexity  int `json:"cyclomatic_complexity" msgpack:"cyclomatic_complexity"`
	LinesOfCode           int `json:"lines_of_code" msgpack:"lines_of_code"`
	MaxNestingDepth       int `json:"max_nesting_depth" msgpack:"max_nesting_depth"`
	DocumentedMethods     int `json:"documented_methods" msgpack:"documented_methods"`
	DocumentedClasses     int `json:"documented_classes" msgpack:"documented_classes"`
}

func (*AstAnalysis) Kind() Kind { return KindAstAnalysis }
func (*AstAnalysis) artifact()  {}

// Combine sums every counter except MaxNestingDepth, which takes the maximum.
// The zero value is the identity.
func (a AstAnalysis) Combine(b AstAnalysis) AstAnalysis {
	return AstAnalysis{
		TotalClasses:          a.TotalClasses + b.TotalClasses,
		TotalInterfaces:       a.TotalInterfaces + b.TotalInterfaces,
		TotalStructs:          a.TotalStructs + b.TotalStructs,
		TotalEnums:            a.TotalEnums + b.TotalEnums,
		TotalRecords:          a.TotalRecords + b.TotalRecords,
		TotalDelegates:        a.TotalDelegates + b.TotalDelegates,
		TotalMethods:          a.TotalMethods + b.TotalMethods,
		TotalProperties:       a.TotalProperties + b.TotalProperties,
		TotalFields:           a.TotalFields + b.TotalFields,
		TotalEvents:           a.TotalEvents + b.TotalEvents,
		TotalConstructors:     a.TotalConstructors + b.TotalConstructors,
		TotalIfStatements:     a.TotalIfStatements + b.TotalIfStatements,
		TotalForLoops:         a.TotalForLoops + b.TotalForLoops,
		TotalWhileLoops:       a.TotalWhileLoops + b.TotalWhileLoops,
		TotalSwitchStatements: a.TotalSwitchStatements + b.TotalSwitchStatements,
		TotalTryStatements:    a.TotalTryStatements + b.TotalTryStatements,
		TotalUsingStatements:  a.TotalUsingStatements + b.TotalUsingStatements,
		CyclomaticComplexity:  a.CyclomaticComplexity + b.CyclomaticComplexity,
		LinesOfCode:           a.LinesOfCode + b.LinesOfCode,
		MaxNestingDepth:       max(a.MaxNestingDepth, b.MaxNestingDepth),
		DocumentedMethods:     a.DocumentedMethods + b.DocumentedMethods,
		DocumentedClasses:     a.DocumentedClasses + b.DocumentedClasses,
	}
}

// MethodFlow is the control-flow summary of one method body.
type MethodFlow struct {
	Complexity int `json:"complexity" msgpack:"complexity"`
	MaxNesting int `json:"max_nesting" msgpack:"max_nesting"`
	// Start and End bound the member declaration in the source.
	Start int `json:"-" msgpack:"-"`
	End   int `json:"-" msgpack:"-"`
}

// ControlFlowIndex maps a method FQN such as "Ns.Outer.Inner::M" to its flow summary.
type ControlFlowIndex struct {
	Methods map[string]MethodFlow
}

func NewControlFlowIndex() *ControlFlowIndex {
	return &ControlFlowIndex{Methods: make(map[string]MethodFlow)}
}

func (*ControlFlowIndex) Kind() Kind { return KindControlFlowIndex }
func (*ControlFlowIndex) artifact()  {}

// Set records flow for key. Overloads share an FQN; the higher values are kept.
func (c *ControlFlowIndex) Set(key string, flow MethodFlow) {
	if prev, ok := c.Methods[key]; ok {
		flow.Complexity = max(flow.Complexity, prev.Complexity)
		flow.MaxNesting = max(flow.MaxNesting, prev.MaxNesting)
		flow.Start, flow.End = prev.Start, prev.End
	}
	c.Methods[key] = flow
}
