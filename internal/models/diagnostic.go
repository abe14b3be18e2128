package models

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

type Severity int

const (
	// SeverityOff is only meaningful as a configured override; it drops the diagnostic.
	SeverityOff Severity = iota - 1
	SeverityInfo
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityOff:
		return "off"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// ParseSeverity accepts the names produced by String, case-insensitively.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off", "none":
		return SeverityOff, nil
	case "info", "hint":
		return SeverityInfo, nil
	case "warning", "warn":
		return SeverityWarning, nil
	case "error":
		return SeverityError, nil
	}
	return SeverityOff, fmt.Errorf("unknown severity %q", s)
}

func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Severity) UnmarshalText(text []byte) error {
	v, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

func (s Severity) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.EncodeString(s.String())
}

func (s *Severity) DecodeMsgpack(dec *msgpack.Decoder) error {
	str, err := dec.DecodeString()
	if err != nil {
		return err
	}
	return s.UnmarshalText([]byte(str))
}

// SourceLocation is a 1-based position in a source file.
type SourceLocation struct {
	File   string `json:"file" msgpack:"file"`
	Line   int    `json:"line" msgpack:"line"`
	Column int    `json:"column" msgpack:"column"`
	Length int    `json:"length" msgpack:"length"`
}

func (l SourceLocation) String() string {
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

type Diagnostic struct {
	Code       DiagnosticCode `json:"code" msgpack:"code"`
	Severity   Severity       `json:"severity" msgpack:"severity"`
	Message    string         `json:"message" msgpack:"message"`
	Location   SourceLocation `json:"location" msgpack:"location"`
	Symbol     string         `json:"symbol,omitempty" msgpack:"symbol,omitempty"`
	Suggestion string         `json:"suggestion,omitempty" msgpack:"suggestion,omitempty"`
}

// NewDiagnostic builds a diagnostic with the code's default severity.
// An empty message falls back to the catalog message.
func NewDiagnostic(code DiagnosticCode, loc SourceLocation, message string) Diagnostic {
	if message == "" {
		message = code.DefaultMessage()
	}
	return Diagnostic{
		Code:     code,
		Severity: code.Severity(),
		Message:  message,
		Location: loc,
	}
}

// DiagnosticCollection is an ordered list of diagnostics for one file or a merged workspace.
type DiagnosticCollection struct {
	items []Diagnostic
}

func NewDiagnosticCollection() *DiagnosticCollection {
	return &DiagnosticCollection{items: make([]Diagnostic, 0)}
}

func (c *DiagnosticCollection) Add(d Diagnostic) {
	c.items = append(c.items, d)
}

// Report adds a diagnostic for code at loc using the catalog severity.
func (c *DiagnosticCollection) Report(code DiagnosticCode, loc SourceLocation, format string, args ...any) {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	c.Add(NewDiagnostic(code, loc, msg))
}

func (c *DiagnosticCollection) Extend(other *DiagnosticCollection) {
	if other == nil {
		return
	}
	c.items = append(c.items, other.items...)
}

// Items returns the diagnostics in insertion (or last sorted) order.
func (c *DiagnosticCollection) Items() []Diagnostic {
	return c.items
}

func (c *DiagnosticCollection) Len() int {
	return len(c.items)
}

// Filter keeps the diagnostics for which keep returns true.
func (c *DiagnosticCollection) Filter(keep func(*Diagnostic) bool) {
	out := c.items[:0]
	for i := range c.items {
		if keep(&c.items[i]) {
			out = append(out, c.items[i])
		}
	}
	c.items = out
}

// Sort orders diagnostics by file, line, column and code.
func (c *DiagnosticCollection) Sort() {
	sort.SliceStable(c.items, func(i, j int) bool {
		a, b := c.items[i], c.items[j]
		if a.Location.File != b.Location.File {
			return a.Location.File < b.Location.File
		}
		if a.Location.Line != b.Location.Line {
			return a.Location.Line < b.Location.Line
		}
		if a.Location.Column != b.Location.Column {
			return a.Location.Column < b.Location.Column
		}
		return a.Code < b.Code
	})
}

// Dedup removes diagnostics with the same code, location and message, keeping the first.
func (c *DiagnosticCollection) Dedup() {
	type key struct {
		code DiagnosticCode
		loc  SourceLocation
		msg  string
	}
	seen := make(map[key]bool, len(c.items))
	c.Filter(func(d *Diagnostic) bool {
		k := key{d.Code, d.Location, d.Message}
		if seen[k] {
			return false
		}
		seen[k] = true
		return true
	})
}

// CountBySeverity tallies diagnostics by severity name.
func (c *DiagnosticCollection) CountBySeverity() map[string]int {
	counts := make(map[string]int)
	for _, d := range c.items {
		counts[d.Severity.String()]++
	}
	return counts
}

// HasAtLeast reports whether any diagnostic is at or above min.
func (c *DiagnosticCollection) HasAtLeast(min Severity) bool {
	for _, d := range c.items {
		if d.Severity >= min {
			return true
		}
	}
	return false
}

// Score rates the collection on a 0-100 scale, 100 meaning no findings.
func (c *DiagnosticCollection) Score() int {
	penalty := 0
	for _, d := range c.items {
		base := 0
		switch d.Severity {
		case SeverityInfo:
			base = 1
		case SeverityWarning:
			base = 5
		case SeverityError:
			base = 15
		}

		// maintainability and type problems weigh more than style
		switch d.Code.Category() {
		case CategoryMaintainability:
			base = int(float64(base) * 1.2)
		case CategoryPerformance, CategoryType:
			base = int(float64(base) * 1.5)
		}
		penalty += base
	}
	return max(100-penalty, 0)
}
