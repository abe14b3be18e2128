package context

import "testing"

func TestLineStarts(t *testing.T) {
	ctx := New("a.cs", "ab\ncd\n\nef")
	want := []int{0, 3, 6, 7}
	if len(ctx.LineStarts) != len(want) {
		t.Fatalf("LineStarts = %v, want %v", ctx.LineStarts, want)
	}
	for i, v := range want {
		if ctx.LineStarts[i] != v {
			t.Errorf("LineStarts[%d] = %d, want %d", i, ctx.LineStarts[i], v)
		}
	}
	if empty := New("e.cs", ""); len(empty.LineStarts) != 1 || empty.LineStarts[0] != 0 {
		t.Errorf("empty source LineStarts = %v, want [0]", empty.LineStarts)
	}
}

func TestLocationFromSpan(t *testing.T) {
	tests := []struct {
		name       string
		src        string
		start, len int
		line, col  int
		wantLen    int
	}{
		{"leading spaces", "  foo ", 2, 3, 1, 3, 3},
		{"second line", "ab\ncd", 3, 2, 2, 1, 2},
		{"line start exact hit", "ab\ncd\nef", 6, 1, 3, 1, 1},
		{"newline char belongs to its line", "ab\ncd", 2, 1, 1, 3, 1},
		{"start past end clamps", "abc", 10, 5, 1, 4, 0},
		{"length clamps", "abc", 1, 99, 1, 2, 2},
		{"negative start clamps", "abc", -4, 1, 1, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := New("f.cs", tt.src)
			loc := ctx.LocationFromSpan(tt.start, tt.len)
			if loc.Line != tt.line || loc.Column != tt.col || loc.Length != tt.wantLen {
				t.Errorf("LocationFromSpan(%d, %d) = %d:%d len %d, want %d:%d len %d",
					tt.start, tt.len, loc.Line, loc.Column, loc.Length, tt.line, tt.col, tt.wantLen)
			}
			if loc.File != "f.cs" {
				t.Errorf("file = %q", loc.File)
			}
		})
	}
}

func TestLocationFromRange(t *testing.T) {
	ctx := New("f.cs", "hello\nworld")
	loc := ctx.LocationFromRange(6, 11)
	if loc.Line != 2 || loc.Column != 1 || loc.Length != 5 {
		t.Errorf("LocationFromRange(6, 11) = %+v", loc)
	}
	if inv := ctx.LocationFromRange(8, 2); inv.Length != 0 || inv.Line != 2 || inv.Column != 3 {
		t.Errorf("inverted range = %+v, want line 2 col 3 len 0", inv)
	}
}

func TestLineText(t *testing.T) {
	ctx := New("f.cs", "first\r\nsecond\nthird")
	tests := map[int]string{0: "", 1: "first", 2: "second", 3: "third", 4: ""}
	for line, want := range tests {
		if got := ctx.LineText(line); got != want {
			t.Errorf("LineText(%d) = %q, want %q", line, got, want)
		}
	}
	if ctx.LinesBetween(0, 14) != 3 {
		t.Errorf("LinesBetween(0, 14) = %d, want 3", ctx.LinesBetween(0, 14))
	}
}
