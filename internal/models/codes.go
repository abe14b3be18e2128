package models

import "sort"

// DiagnosticCode is a stable identifier: BSE for errors, BSW for warnings.
type DiagnosticCode string

// Category groups diagnostic codes for reporting.
type Category string

const (
	CategorySemantic        Category = "semantic"
	CategoryType            Category = "type"
	CategoryMaintainability Category = "maintainability"
	CategoryStyle           Category = "style"
	CategoryPerformance     Category = "performance"
	CategorySecurity        Category = "security"
	CategoryFlow            Category = "flow"
)

// Constructor errors
const (
	CodeAsyncConstructor      DiagnosticCode = "BSE01001"
	CodeConstructorReturnType DiagnosticCode = "BSE01002"
	CodeConstructorVirtual    DiagnosticCode = "BSE01003"
	CodeConstructorStaticMix  DiagnosticCode = "BSE01004"
	CodeConstructorName       DiagnosticCode = "BSE01005"
	CodeDuplicateConstructor  DiagnosticCode = "BSE01006"
	CodeInvalidBaseCall       DiagnosticCode = "BSE01007"
	CodeCircularConstructor   DiagnosticCode = "BSE01008"
	CodeConstructorOverride   DiagnosticCode = "BSE01009"
	CodeInterfaceConstructor  DiagnosticCode = "BSE01010"
)

// Method errors
const (
	CodeAbstractWithBody       DiagnosticCode = "BSE02001"
	CodeMissingBody            DiagnosticCode = "BSE02002"
	CodeVirtualInSealed        DiagnosticCode = "BSE02003"
	CodeOverrideSignature      DiagnosticCode = "BSE02004"
	CodeVirtualStatic          DiagnosticCode = "BSE02005"
	CodeStaticOverride         DiagnosticCode = "BSE02006"
	CodeNoOverrideTarget       DiagnosticCode = "BSE02007"
	CodeInterfaceMethodBody    DiagnosticCode = "BSE02008"
	CodeAsyncReturnType        DiagnosticCode = "BSE02009"
	CodeDuplicateParameter     DiagnosticCode = "BSE02010"
	CodeDuplicateMethod        DiagnosticCode = "BSE02011"
	CodeExtensionOutsideStatic DiagnosticCode = "BSE02012"
)

// Type errors
const (
	CodeTypeNotFound          DiagnosticCode = "BSE03001"
	CodeNotInstantiable       DiagnosticCode = "BSE03002"
	CodeTypeArgMismatch       DiagnosticCode = "BSE03003"
	CodeConstraintUnsatisfied DiagnosticCode = "BSE03004"
	CodeCircularType          DiagnosticCode = "BSE03005"
	CodeInterfaceFromClass    DiagnosticCode = "BSE03006"
	CodeClassFromInterface    DiagnosticCode = "BSE03007"
	CodeStructInherits        DiagnosticCode = "BSE03008"
	CodeTypeVisibility        DiagnosticCode = "BSE03009"
	CodeDuplicateTypeParam    DiagnosticCode = "BSE03010"
)

// Access modifier errors
const (
	CodeNotAccessible         DiagnosticCode = "BSE04001"
	CodePrivateInInterface    DiagnosticCode = "BSE04002"
	CodeProtectedInStruct     DiagnosticCode = "BSE04003"
	CodeInconsistentAccess    DiagnosticCode = "BSE04004"
	CodeStaticCtorModifiers   DiagnosticCode = "BSE04005"
	CodePrivateAbstract       DiagnosticCode = "BSE04006"
	CodePrivateVirtual        DiagnosticCode = "BSE04007"
	CodeOverrideVisibility    DiagnosticCode = "BSE04008"
	CodeSealedNotOverride     DiagnosticCode = "BSE04009"
	CodeAbstractInNonAbstract DiagnosticCode = "BSE04010"
)

// Maintainability warnings
const (
	CodeHighComplexity DiagnosticCode = "BSW01001"
	CodeMethodTooLong  DiagnosticCode = "BSW01002"
	CodeTooManyParams  DiagnosticCode = "BSW01003"
	CodeMissingDocs    DiagnosticCode = "BSW01004"
	CodeDeepNesting    DiagnosticCode = "BSW01005"
	CodeLargeClass     DiagnosticCode = "BSW01006"
	CodeHighCoupling   DiagnosticCode = "BSW01007"
	CodeLowCohesion    DiagnosticCode = "BSW01008"
	CodeGodClass       DiagnosticCode = "BSW01009"
	CodeFeatureEnvy    DiagnosticCode = "BSW01010"
)

// Style warnings
const (
	CodeNamingConvention DiagnosticCode = "BSW02001"
	CodePascalCase       DiagnosticCode = "BSW02002"
	CodeCamelCase        DiagnosticCode = "BSW02003"
	CodeUpperCase        DiagnosticCode = "BSW02004"
	CodeUnusedVariable   DiagnosticCode = "BSW02005"
	CodeUnusedParameter  DiagnosticCode = "BSW02006"
	CodeRedundantAssign  DiagnosticCode = "BSW02007"
	CodeMagicNumber      DiagnosticCode = "BSW02008"
	CodeDuplicateString  DiagnosticCode = "BSW02009"
	CodeEmptyBlock       DiagnosticCode = "BSW02010"
)

// Performance warnings
const (
	CodeBoxing           DiagnosticCode = "BSW03001"
	CodeStringConcatLoop DiagnosticCode = "BSW03002"
	CodeLinqConcern      DiagnosticCode = "BSW03003"
	CodeAllocationInLoop DiagnosticCode = "BSW03004"
	CodeSyncInAsync      DiagnosticCode = "BSW03005"
	CodeExceptionFlow    DiagnosticCode = "BSW03006"
	CodeCollectionUsage  DiagnosticCode = "BSW03007"
	CodeClosureInLoop    DiagnosticCode = "BSW03008"
	CodeLargeObject      DiagnosticCode = "BSW03009"
	CodeQueryInLoop      DiagnosticCode = "BSW03010"
)

// Security warnings
const (
	CodeSQLInjection      DiagnosticCode = "BSW04001"
	CodeXSS               DiagnosticCode = "BSW04002"
	CodeHardcodedSecret   DiagnosticCode = "BSW04003"
	CodeWeakCrypto        DiagnosticCode = "BSW04004"
	CodePathTraversal     DiagnosticCode = "BSW04005"
	CodeInsecureRandom    DiagnosticCode = "BSW04006"
	CodeMissingValidation DiagnosticCode = "BSW04007"
	CodeSensitiveLog      DiagnosticCode = "BSW04008"
	CodeUnsafeDeserialize DiagnosticCode = "BSW04009"
	CodeMissingAuth       DiagnosticCode = "BSW04010"
)

// Flow warnings
const (
	CodeUnreachable       DiagnosticCode = "BSW05001"
	CodeNullToNonNullable DiagnosticCode = "BSW05002"
	CodeDuplicateAttr     DiagnosticCode = "BSW05003"
)

// CodeInfo is the catalog entry for a diagnostic code.
type CodeInfo struct {
	Severity Severity
	Category Category
	Message  string
}

var catalog = map[DiagnosticCode]CodeInfo{
	CodeAsyncConstructor:      {SeverityError, CategorySemantic, "Constructors cannot be declared async"},
	CodeConstructorReturnType: {SeverityError, CategorySemantic, "Constructors cannot have an explicit return type"},
	CodeConstructorVirtual:    {SeverityError, CategorySemantic, "Constructors cannot be virtual or abstract"},
	CodeConstructorStaticMix:  {SeverityError, CategorySemantic, "Constructor cannot be both static and instance"},
	CodeConstructorName:       {SeverityError, CategorySemantic, "Constructor name must match the containing class name"},
	CodeDuplicateConstructor:  {SeverityError, CategorySemantic, "Multiple constructors with the same signature"},
	CodeInvalidBaseCall:       {SeverityError, CategorySemantic, "Invalid base constructor call"},
	CodeCircularConstructor:   {SeverityError, CategorySemantic, "Circular constructor dependency detected"},
	CodeConstructorOverride:   {SeverityError, CategorySemantic, "Constructors cannot override other constructors"},
	CodeInterfaceConstructor:  {SeverityError, CategorySemantic, "Interfaces cannot contain constructors"},

	CodeAbstractWithBody:       {SeverityError, CategorySemantic, "Abstract methods cannot have a body"},
	CodeMissingBody:            {SeverityError, CategorySemantic, "Non-abstract methods must have a body"},
	CodeVirtualInSealed:        {SeverityError, CategorySemantic, "Virtual methods cannot be declared in sealed classes"},
	CodeOverrideSignature:      {SeverityError, CategorySemantic, "Override method signature does not match base method"},
	CodeVirtualStatic:          {SeverityError, CategorySemantic, "Methods cannot be both virtual and static"},
	CodeStaticOverride:         {SeverityError, CategorySemantic, "Static methods cannot override other methods"},
	CodeNoOverrideTarget:       {SeverityError, CategorySemantic, "No suitable method found to override"},
	CodeInterfaceMethodBody:    {SeverityError, CategorySemantic, "Interface methods cannot have a body"},
	CodeAsyncReturnType:        {SeverityError, CategorySemantic, "Async methods must return Task or Task<T>"},
	CodeDuplicateParameter:     {SeverityError, CategorySemantic, "Method parameter names must be unique"},
	CodeDuplicateMethod:        {SeverityError, CategorySemantic, "Multiple methods with the same signature"},
	CodeExtensionOutsideStatic: {SeverityError, CategorySemantic, "Extension methods must be declared in a non-nested static class"},

	CodeTypeNotFound:          {SeverityError, CategoryType, "Type could not be found"},
	CodeNotInstantiable:       {SeverityError, CategoryType, "Cannot create an instance of this type"},
	CodeTypeArgMismatch:       {SeverityError, CategoryType, "Type argument does not match constraint"},
	CodeConstraintUnsatisfied: {SeverityError, CategoryType, "Generic constraints are not satisfied"},
	CodeCircularType:          {SeverityError, CategoryType, "Circular type dependency detected"},
	CodeInterfaceFromClass:    {SeverityError, CategoryType, "Interfaces cannot inherit from classes"},
	CodeClassFromInterface:    {SeverityError, CategoryType, "Classes cannot inherit from interfaces (use : instead)"},
	CodeStructInherits:        {SeverityError, CategoryType, "Structs cannot inherit from other types"},
	CodeTypeVisibility:        {SeverityError, CategoryType, "Inconsistent type visibility"},
	CodeDuplicateTypeParam:    {SeverityError, CategoryType, "Generic type parameter names must be unique"},

	CodeNotAccessible:         {SeverityError, CategorySemantic, "Member is not accessible in this context"},
	CodePrivateInInterface:    {SeverityError, CategorySemantic, "Interface members cannot be private"},
	CodeProtectedInStruct:     {SeverityError, CategorySemantic, "Struct members cannot be protected"},
	CodeInconsistentAccess:    {SeverityError, CategorySemantic, "Inconsistent accessibility between types"},
	CodeStaticCtorModifiers:   {SeverityError, CategorySemantic, "Static constructors cannot have access modifiers"},
	CodePrivateAbstract:       {SeverityError, CategorySemantic, "Abstract members cannot be private"},
	CodePrivateVirtual:        {SeverityError, CategorySemantic, "Virtual members cannot be private"},
	CodeOverrideVisibility:    {SeverityError, CategorySemantic, "Override member visibility does not match base"},
	CodeSealedNotOverride:     {SeverityError, CategorySemantic, "Sealed modifier can only be used on overriding members"},
	CodeAbstractInNonAbstract: {SeverityError, CategorySemantic, "Abstract members cannot exist in non-abstract classes"},

	CodeHighComplexity: {SeverityWarning, CategoryMaintainability, "Method has high cyclomatic complexity"},
	CodeMethodTooLong:  {SeverityWarning, CategoryMaintainability, "Method is too long"},
	CodeTooManyParams:  {SeverityWarning, CategoryMaintainability, "Method has too many parameters"},
	CodeMissingDocs:    {SeverityWarning, CategoryMaintainability, "Missing XML documentation"},
	CodeDeepNesting:    {SeverityWarning, CategoryMaintainability, "Deep nesting detected"},
	CodeLargeClass:     {SeverityWarning, CategoryMaintainability, "Class is too large"},
	CodeHighCoupling:   {SeverityWarning, CategoryMaintainability, "High coupling detected"},
	CodeLowCohesion:    {SeverityWarning, CategoryMaintainability, "Low cohesion detected"},
	CodeGodClass:       {SeverityWarning, CategoryMaintainability, "God class anti-pattern detected"},
	CodeFeatureEnvy:    {SeverityWarning, CategoryMaintainability, "Feature envy anti-pattern detected"},

	CodeNamingConvention: {SeverityWarning, CategoryStyle, "Naming convention violation"},
	CodePascalCase:       {SeverityWarning, CategoryStyle, "PascalCase naming expected"},
	CodeCamelCase:        {SeverityWarning, CategoryStyle, "camelCase naming expected"},
	CodeUpperCase:        {SeverityWarning, CategoryStyle, "UPPER_CASE naming expected"},
	CodeUnusedVariable:   {SeverityWarning, CategoryStyle, "Variable is declared but never used"},
	CodeUnusedParameter:  {SeverityWarning, CategoryStyle, "Parameter is declared but never used"},
	CodeRedundantAssign:  {SeverityWarning, CategoryStyle, "Redundant assignment detected"},
	CodeMagicNumber:      {SeverityWarning, CategoryStyle, "Magic number should be a named constant"},
	CodeDuplicateString:  {SeverityWarning, CategoryStyle, "String literal duplication"},
	CodeEmptyBlock:       {SeverityWarning, CategoryStyle, "Empty block statement"},

	CodeBoxing:           {SeverityWarning, CategoryPerformance, "Boxing/unboxing operation detected"},
	CodeStringConcatLoop: {SeverityWarning, CategoryPerformance, "String concatenation in loop"},
	CodeLinqConcern:      {SeverityWarning, CategoryPerformance, "LINQ performance concern"},
	CodeAllocationInLoop: {SeverityWarning, CategoryPerformance, "Unnecessary object allocation"},
	CodeSyncInAsync:      {SeverityWarning, CategoryPerformance, "Synchronous call in async method"},
	CodeExceptionFlow:    {SeverityWarning, CategoryPerformance, "Using exceptions for control flow"},
	CodeCollectionUsage:  {SeverityWarning, CategoryPerformance, "Inefficient collection usage"},
	CodeClosureInLoop:    {SeverityWarning, CategoryPerformance, "Closure allocation in loop"},
	CodeLargeObject:      {SeverityWarning, CategoryPerformance, "Large object heap allocation"},
	CodeQueryInLoop:      {SeverityWarning, CategoryPerformance, "Database query in loop"},

	CodeSQLInjection:      {SeverityWarning, CategorySecurity, "Potential SQL injection vulnerability"},
	CodeXSS:               {SeverityWarning, CategorySecurity, "Potential XSS vulnerability"},
	CodeHardcodedSecret:   {SeverityWarning, CategorySecurity, "Hardcoded credential detected"},
	CodeWeakCrypto:        {SeverityWarning, CategorySecurity, "Weak cryptographic algorithm"},
	CodePathTraversal:     {SeverityWarning, CategorySecurity, "Potential path traversal vulnerability"},
	CodeInsecureRandom:    {SeverityWarning, CategorySecurity, "Insecure random number generation"},
	CodeMissingValidation: {SeverityWarning, CategorySecurity, "Missing input validation"},
	CodeSensitiveLog:      {SeverityWarning, CategorySecurity, "Sensitive data in log statement"},
	CodeUnsafeDeserialize: {SeverityWarning, CategorySecurity, "Unsafe deserialization"},
	CodeMissingAuth:       {SeverityWarning, CategorySecurity, "Missing authentication check"},

	CodeUnreachable:       {SeverityWarning, CategoryFlow, "Unreachable code detected"},
	CodeNullToNonNullable: {SeverityWarning, CategoryFlow, "Null assigned to a non-nullable reference"},
	CodeDuplicateAttr:     {SeverityWarning, CategoryFlow, "Attribute applied more than once"},
}

// Lookup returns the catalog entry for code.
func Lookup(code DiagnosticCode) (CodeInfo, bool) {
	info, ok := catalog[code]
	return info, ok
}

// Severity returns the default severity of the code; unknown codes are warnings.
func (c DiagnosticCode) Severity() Severity {
	if info, ok := catalog[c]; ok {
		return info.Severity
	}
	return SeverityWarning
}

func (c DiagnosticCode) Category() Category {
	return catalog[c].Category
}

// DefaultMessage returns the catalog message, or the code itself when unknown.
func (c DiagnosticCode) DefaultMessage() string {
	if info, ok := catalog[c]; ok {
		return info.Message
	}
	return string(c)
}

// AllCodes returns every catalog code in ascending order.
func AllCodes() []DiagnosticCode {
	codes := make([]DiagnosticCode, 0, len(catalog))
	for c := range catalog {
		codes = append(codes, c)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}
