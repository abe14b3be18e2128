package models

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/vmihailenco/msgpack/v5"
)

func TestCatalogSeverities(t *testing.T) {
	for _, code := range AllCodes() {
		want := SeverityWarning
		if strings.HasPrefix(string(code), "BSE") {
			want = SeverityError
		}
		if got := code.Severity(); got != want {
			t.Errorf("%s severity = %s, want %s", code, got, want)
		}
		if code.DefaultMessage() == string(code) {
			t.Errorf("%s has no catalog message", code)
		}
	}
	if DiagnosticCode("XYZ").Severity() != SeverityWarning {
		t.Errorf("unknown codes should default to warning")
	}
}

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		in   string
		want Severity
		err  bool
	}{
		{"error", SeverityError, false},
		{"Warning", SeverityWarning, false},
		{"warn", SeverityWarning, false},
		{"info", SeverityInfo, false},
		{"off", SeverityOff, false},
		{"loud", SeverityOff, true},
	}
	for _, tt := range tests {
		got, err := ParseSeverity(tt.in)
		if (err != nil) != tt.err {
			t.Errorf("ParseSeverity(%q) error = %v, want error %v", tt.in, err, tt.err)
			continue
		}
		if !tt.err && got != tt.want {
			t.Errorf("ParseSeverity(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestSeverityEncoding(t *testing.T) {
	d := NewDiagnostic(CodeHighComplexity, SourceLocation{File: "a.cs", Line: 3, Column: 5}, "")
	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("json.Marshal: %v", err)
	}
	if !strings.Contains(string(data), `"severity":"warning"`) {
		t.Errorf("severity should encode as a name: %s", data)
	}

	packed, err := msgpack.Marshal(d)
	if err != nil {
		t.Fatalf("msgpack.Marshal: %v", err)
	}
	var back Diagnostic
	if err := msgpack.Unmarshal(packed, &back); err != nil {
		t.Fatalf("msgpack.Unmarshal: %v", err)
	}
	if back.Severity != SeverityWarning || back.Location.Line != 3 {
		t.Errorf("msgpack decoded %+v", back)
	}
}

func TestDiagnosticCollection(t *testing.T) {
	c := NewDiagnosticCollection()
	c.Report(CodeUnreachable, SourceLocation{File: "b.cs", Line: 2, Column: 1}, "")
	c.Report(CodeConstructorName, SourceLocation{File: "a.cs", Line: 9, Column: 4}, "constructor %s does not match %s", "Foo", "Bar")
	c.Report(CodeEmptyBlock, SourceLocation{File: "a.cs", Line: 9, Column: 4}, "")
	c.Report(CodeEmptyBlock, SourceLocation{File: "a.cs", Line: 9, Column: 4}, "")

	c.Dedup()
	if c.Len() != 3 {
		t.Fatalf("Dedup left %d diagnostics, want 3", c.Len())
	}
	c.Sort()
	items := c.Items()
	if items[0].Code != CodeConstructorName || items[1].Code != CodeEmptyBlock || items[2].Location.File != "b.cs" {
		t.Errorf("unexpected order: %v", items)
	}
	if items[0].Message != "constructor Foo does not match Bar" {
		t.Errorf("formatted message = %q", items[0].Message)
	}

	counts := c.CountBySeverity()
	if counts["error"] != 1 || counts["warning"] != 2 {
		t.Errorf("counts = %v", counts)
	}
	if !c.HasAtLeast(SeverityError) {
		t.Errorf("HasAtLeast(error) should be true")
	}
	if score := c.Score(); score <= 0 || score >= 100 {
		t.Errorf("Score() = %d, want strictly between 0 and 100", score)
	}
	if NewDiagnosticCollection().Score() != 100 {
		t.Errorf("empty collection should score 100")
	}
}
