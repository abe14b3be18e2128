package parser

import (
	"errors"
	"strings"
	"testing"

	"sharpcheck/internal/syntax"
)

const sampleSource = `using System;
using System.Collections.Generic;
using IO = System.IO;

namespace Shop.Orders
{
    /// <summary>An order line.</summary>
    public sealed class OrderLine
    {
        private readonly List<int> _qty = new List<int>();
        public const int MaxLines = 100;

        public OrderLine(string sku) : base()
        {
            Sku = sku;
        }

        public string Sku { get; private set; }
        public int Count => _qty.Count;

        /// <summary>Sums quantities.</summary>
        public int Total()
        {
            var sum = 0;
            foreach (var q in _qty)
            {
                if (q > 0 && q < MaxLines)
                {
                    sum += q;
                }
                else if (q == 0)
                {
                    continue;
                }
            }
            return sum;
        }

        public static bool TryParse(string s, out OrderLine? line)
        {
            line = s is null ? null : new OrderLine(s);
            return line != null;
        }

        public T Pick<T>(Func<int, T> pick) where T : class => pick(_qty[0]);

        public event EventHandler? Changed;

        private class Inner
        {
            void Run() { }
        }
    }

    public interface IRepo<T>
    {
        T Get(int id);
    }

    public enum Status { Open = 1, Closed }
}

public record Money(decimal Amount, string Currency);
`

func TestParseDeclarations(t *testing.T) {
	cu, err := Parse(sampleSource)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(cu.Usings) != 3 {
		t.Fatalf("expected 3 usings, got %d", len(cu.Usings))
	}
	if cu.Usings[2].Alias != "IO" || cu.Usings[2].Name != "System.IO" {
		t.Errorf("alias using parsed as %+v", cu.Usings[2])
	}
	if len(cu.Members) != 2 {
		t.Fatalf("expected namespace and record at top level, got %d members", len(cu.Members))
	}
	ns, ok := cu.Members[0].(*syntax.NamespaceDecl)
	if !ok || ns.Name != "Shop.Orders" {
		t.Fatalf("first member should be namespace Shop.Orders, got %#v", cu.Members[0])
	}
	if len(ns.Members) != 3 {
		t.Fatalf("expected 3 namespace members, got %d", len(ns.Members))
	}

	line := ns.Members[0].(*syntax.TypeDecl)
	if line.Name != "OrderLine" || line.Kind != syntax.KindClass {
		t.Errorf("unexpected type %s %s", line.Kind, line.Name)
	}
	if !line.Modifiers.Has(syntax.ModSealed) || !line.Modifiers.Has(syntax.ModPublic) {
		t.Errorf("expected public sealed modifiers, got %s", line.Modifiers)
	}
	if !strings.Contains(line.Doc, "An order line.") {
		t.Errorf("type doc not captured: %q", line.Doc)
	}

	var methods, ctors, props, fields, events, nested int
	for _, m := range line.Members {
		switch d := m.(type) {
		case *syntax.MethodDecl:
			methods++
			if d.Name == "Total" && !strings.Contains(d.Doc, "Sums quantities.") {
				t.Errorf("method doc not captured: %q", d.Doc)
			}
			if d.Name == "Pick" && (len(d.TypeParams) != 1 || d.ExprBody == nil || len(d.Constraints) != 1) {
				t.Errorf("generic expression-bodied method parsed as %+v", d)
			}
		case *syntax.ConstructorDecl:
			ctors++
			if d.Initializer == nil || !d.Initializer.Base {
				t.Errorf("constructor initializer not parsed")
			}
		case *syntax.PropertyDecl:
			props++
		case *syntax.FieldDecl:
			fields++
		case *syntax.EventDecl:
			events++
		case *syntax.TypeDecl:
			nested++
		}
	}
	if methods != 3 || ctors != 1 || props != 2 || fields != 2 || events != 1 || nested != 1 {
		t.Errorf("member counts: methods=%d ctors=%d props=%d fields=%d events=%d nested=%d",
			methods, ctors, props, fields, events, nested)
	}

	repo := ns.Members[1].(*syntax.TypeDecl)
	if repo.Kind != syntax.KindInterface || len(repo.TypeParams) != 1 {
		t.Errorf("interface parsed as %s with %d type params", repo.Kind, len(repo.TypeParams))
	}
	if get := repo.Members[0].(*syntax.MethodDecl); get.HasBody() {
		t.Errorf("interface method should have no body")
	}

	status := ns.Members[2].(*syntax.TypeDecl)
	if status.Kind != syntax.KindEnum || len(status.EnumMembers) != 2 {
		t.Errorf("enum parsed as %s with %d members", status.Kind, len(status.EnumMembers))
	}

	money := cu.Members[1].(*syntax.TypeDecl)
	if money.Kind != syntax.KindRecord || len(money.PrimaryParams) != 2 {
		t.Errorf("record parsed as %s with %d primary params", money.Kind, len(money.PrimaryParams))
	}
}

func TestParseStatements(t *testing.T) {
	src := `class C {
    async Task<int> M(int[] xs, Dictionary<string, List<int>> map) {
        int total = 0, seen = 0;
        for (int i = 0; i < xs.Length; i++) { total += xs[i]; }
        while (total > 10) total--;
        do { seen++; } while (seen < 3);
        switch (total) {
            case 0:
            case 1:
                break;
            case int n when n > 100:
                return n;
            default:
                break;
        }
        using (var r = Open()) { r.Read(); }
        using var w = Open();
        try { await Task.Delay(1); }
        catch (IOException ex) when (ex.HResult != 0) { throw; }
        finally { seen = 0; }
        foreach (var (k, v) in map) { }
        var shifted = total >> 2;
        total >>= 1;
        Func<int, int> twice = x => x * 2;
        var label = total switch { 0 => "none", > 10 => "many", _ => "some" };
        int Local(int a) => a + 1;
        return Local(total);
    }
}`
	cu, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	m := cu.Members[0].(*syntax.TypeDecl).Members[0].(*syntax.MethodDecl)
	if !m.Modifiers.Has(syntax.ModAsync) {
		t.Errorf("async modifier missing")
	}

	counts := map[string]int{}
	syntax.Inspect(m.Body, func(n syntax.Node) bool {
		switch x := n.(type) {
		case *syntax.ForStmt:
			counts["for"]++
		case *syntax.WhileStmt:
			counts["while"]++
		case *syntax.DoStmt:
			counts["do"]++
		case *syntax.SwitchStmt:
			counts["switch"]++
		case *syntax.UsingStmt:
			counts["using"]++
		case *syntax.TryStmt:
			counts["try"]++
		case *syntax.CatchClause:
			counts["catch"]++
			if x.Filter == nil {
				t.Errorf("catch filter not parsed")
			}
		case *syntax.ForeachStmt:
			counts["foreach"]++
		case *syntax.LocalFuncStmt:
			counts["localfunc"]++
		case *syntax.LambdaExpr:
			counts["lambda"]++
		case *syntax.SwitchExpr:
			counts["switchexpr"]++
			if len(x.Arms) != 3 {
				t.Errorf("switch expression arms = %d, want 3", len(x.Arms))
			}
		case *syntax.BinaryExpr:
			if x.Op == ">>" {
				counts["shift"]++
			}
		case *syntax.AssignExpr:
			if x.Op == ">>=" {
				counts["shiftassign"]++
			}
		case *syntax.AwaitExpr:
			counts["await"]++
		}
		return true
	})

	want := map[string]int{
		"for": 1, "while": 1, "do": 1, "switch": 1, "using": 2, "try": 1, "catch": 1,
		"foreach": 1, "localfunc": 1, "lambda": 1, "switchexpr": 1, "shift": 1, "shiftassign": 1, "await": 1,
	}
	for k, v := range want {
		if counts[k] != v {
			t.Errorf("%s count = %d, want %d", k, counts[k], v)
		}
	}
}

func TestParseExpressions(t *testing.T) {
	tests := []struct {
		name string
		expr string
		check func(t *testing.T, e syntax.Expr)
	}{
		{
			name: "precedence",
			expr: "a + b * c",
			check: func(t *testing.T, e syntax.Expr) {
				bin := e.(*syntax.BinaryExpr)
				if bin.Op != "+" {
					t.Fatalf("root op = %s, want +", bin.Op)
				}
				if inner, ok := bin.Y.(*syntax.BinaryExpr); !ok || inner.Op != "*" {
					t.Errorf("right operand should be a product")
				}
			},
		},
		{
			name: "cast",
			expr: "(int)x",
			check: func(t *testing.T, e syntax.Expr) {
				if c, ok := e.(*syntax.CastExpr); !ok || c.Type.Name != "int" {
					t.Errorf("expected cast to int, got %T", e)
				}
			},
		},
		{
			name: "parenthesized",
			expr: "(x) + 1",
			check: func(t *testing.T, e syntax.Expr) {
				bin, ok := e.(*syntax.BinaryExpr)
				if !ok {
					t.Fatalf("expected binary, got %T", e)
				}
				if _, ok := bin.X.(*syntax.ParenExpr); !ok {
					t.Errorf("left operand should be parenthesized, got %T", bin.X)
				}
			},
		},
		{
			name: "generic call",
			expr: "Make<List<int>>(1)",
			check: func(t *testing.T, e syntax.Expr) {
				call := e.(*syntax.Invocation)
				id := call.Fun.(*syntax.Ident)
				if id.Name != "Make" || len(id.TypeArgs) != 1 || id.TypeArgs[0].Name != "List" {
					t.Errorf("generic call parsed as %+v", id)
				}
			},
		},
		{
			name: "less than is not generic",
			expr: "a < b && c > d",
			check: func(t *testing.T, e syntax.Expr) {
				if bin := e.(*syntax.BinaryExpr); bin.Op != "&&" {
					t.Errorf("root op = %s, want &&", bin.Op)
				}
			},
		},
		{
			name: "is pattern with designation",
			expr: "o is string s",
			check: func(t *testing.T, e syntax.Expr) {
				is := e.(*syntax.IsExpr)
				if is.Type == nil || is.Type.Name != "string" || is.VarName != "s" {
					t.Errorf("is expression parsed as %+v", is)
				}
			},
		},
		{
			name: "null coalescing chain",
			expr: "a ?? b ?? c",
			check: func(t *testing.T, e syntax.Expr) {
				bin := e.(*syntax.BinaryExpr)
				if _, ok := bin.Y.(*syntax.BinaryExpr); !ok {
					t.Errorf("?? should associate to the right")
				}
			},
		},
		{
			name: "object creation with initializer",
			expr: "new Point { X = 1, Y = 2 }",
			check: func(t *testing.T, e syntax.Expr) {
				n := e.(*syntax.NewExpr)
				if n.Type.Name != "Point" || len(n.Init) != 2 {
					t.Errorf("new expression parsed as %+v", n)
				}
			},
		},
		{
			name: "array creation",
			expr: "new int[10]",
			check: func(t *testing.T, e syntax.Expr) {
				n := e.(*syntax.NewExpr)
				if n.Type.Rank != 1 || len(n.ArraySize) != 1 {
					t.Errorf("array creation parsed as %+v", n)
				}
			},
		},
		{
			name: "conditional access",
			expr: "a?.b?[0]",
			check: func(t *testing.T, e syntax.Expr) {
				el := e.(*syntax.ElementAccess)
				if !el.NullCond {
					t.Errorf("element access should be null-conditional")
				}
				if ma := el.X.(*syntax.MemberAccess); !ma.NullCond || ma.Name != "b" {
					t.Errorf("member access parsed as %+v", ma)
				}
			},
		},
		{
			name: "switch declaration patterns",
			expr: "o switch { string s => 2, int i when i > 0 => i, Color.Red => 1, _ => 0 }",
			check: func(t *testing.T, e syntax.Expr) {
				sw := e.(*syntax.SwitchExpr)
				if len(sw.Arms) != 4 {
					t.Fatalf("arms = %d, want 4", len(sw.Arms))
				}
				for i, want := range []struct{ typ, name string }{{"string", "s"}, {"int", "i"}} {
					d, ok := sw.Arms[i].Pattern.(*syntax.DeclExpr)
					if !ok || d.Type == nil || d.Type.Name != want.typ || d.Name != want.name {
						t.Errorf("arm %d pattern = %#v, want %s %s", i, sw.Arms[i].Pattern, want.typ, want.name)
					}
				}
				if sw.Arms[0].When != nil || sw.Arms[1].When == nil {
					t.Errorf("only the int arm has a when clause")
				}
				if _, ok := sw.Arms[2].Pattern.(*syntax.DeclExpr); ok {
					t.Errorf("Color.Red is a constant pattern")
				}
			},
		},
		{
			name: "coalesce throw",
			expr: "s ?? throw new ArgumentNullException(nameof(s))",
			check: func(t *testing.T, e syntax.Expr) {
				bin, ok := e.(*syntax.BinaryExpr)
				if !ok || bin.Op != "??" {
					t.Fatalf("expected ?? expression, got %T", e)
				}
				th, ok := bin.Y.(*syntax.ThrowExpr)
				if !ok {
					t.Fatalf("right operand = %T, want throw", bin.Y)
				}
				if _, ok := th.X.(*syntax.NewExpr); !ok {
					t.Errorf("thrown value = %T, want object creation", th.X)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := "class C { object F = " + tt.expr + "; }"
			cu, err := Parse(src)
			if err != nil {
				t.Fatalf("Parse(%q) returned error: %v", tt.expr, err)
			}
			field := cu.Members[0].(*syntax.TypeDecl).Members[0].(*syntax.FieldDecl)
			tt.check(t, field.Vars[0].Init)
		})
	}
}

func TestParseFileScopedNamespace(t *testing.T) {
	src := `namespace App.Core;

class A { }
class B { }
`
	cu, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if cu.FileScopedNamespace == nil || cu.FileScopedNamespace.Name != "App.Core" {
		t.Fatalf("file-scoped namespace not recorded")
	}
	if len(cu.FileScopedNamespace.Members) != 2 || len(cu.Members) != 0 {
		t.Errorf("types should belong to the file-scoped namespace")
	}
}

func TestParseNullableDirective(t *testing.T) {
	cu, err := Parse("#nullable enable\nclass C { string? Name; }\n")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if !cu.NullableEnabled {
		t.Errorf("NullableEnabled should be set")
	}
	f := cu.Members[0].(*syntax.TypeDecl).Members[0].(*syntax.FieldDecl)
	if !f.Type.Nullable {
		t.Errorf("string? should be nullable")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line int
	}{
		{"missing brace", "class C {\n void M() {\n", 3},
		{"garbage member", "class C {\n  123\n}", 2},
		{"unterminated string", "class C { string s = \"abc; }", 1},
		{"try without catch", "class C { void M() {\n try { } \n} }", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.src)
			if err == nil {
				t.Fatalf("expected an error")
			}
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("expected *ParseError, got %T", err)
			}
			if pe.Line != tt.line {
				t.Errorf("error line = %d, want %d (%v)", pe.Line, tt.line, err)
			}
		})
	}
}

func TestBuildSpanTable(t *testing.T) {
	src := "namespace N {\n  class C {\n    int f;\n    void M() { }\n    C() { }\n  }\n}\n"
	_, spans, err := ParseWithSpans(src)
	if err != nil {
		t.Fatalf("ParseWithSpans returned error: %v", err)
	}
	for key, text := range map[string]string{
		"namespace:N": "N",
		"class:N.C":   "C",
		"field:N.C::f":  "f",
		"method:N.C::M": "M",
		"ctor:N.C::C":   "C",
	} {
		s, ok := spans[key]
		if !ok {
			t.Errorf("span %q missing", key)
			continue
		}
		if got := src[s.Start:s.End]; got != text {
			t.Errorf("span %q covers %q, want %q", key, got, text)
		}
	}
}
