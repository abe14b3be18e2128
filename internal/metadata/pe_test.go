package metadata

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// buildMetadata assembles a metadata root with a #~ stream holding one Module
// row and the given TypeDef rows, and a #Strings heap.
func buildMetadata(t *testing.T, defs []struct {
	flags    uint32
	ns, name string
}) []byte {
	t.Helper()

	heap := []byte{0}
	intern := func(s string) uint16 {
		if s == "" {
			return 0
		}
		idx := uint16(len(heap))
		heap = append(heap, s...)
		heap = append(heap, 0)
		return idx
	}

	le16 := func(b []byte, v uint16) []byte { return binary.LittleEndian.AppendUint16(b, v) }
	le32 := func(b []byte, v uint32) []byte { return binary.LittleEndian.AppendUint32(b, v) }

	var tables []byte
	tables = le32(tables, 0)
	tables = append(tables, 2, 0, 0, 1) // version 2.0, narrow heaps, reserved
	valid := uint64(1<<tableModule | 1<<tableTypeDef)
	tables = binary.LittleEndian.AppendUint64(tables, valid)
	tables = binary.LittleEndian.AppendUint64(tables, 0)
	tables = le32(tables, 1)
	tables = le32(tables, uint32(len(defs)))

	// Module: generation, name, mvid, encid, encbaseid
	tables = le16(tables, 0)
	tables = le16(tables, intern("test.dll"))
	tables = le16(tables, 1)
	tables = le16(tables, 0)
	tables = le16(tables, 0)

	for _, d := range defs {
		tables = le32(tables, d.flags)
		tables = le16(tables, intern(d.name))
		tables = le16(tables, intern(d.ns))
		tables = le16(tables, 0) // extends
		tables = le16(tables, 1) // field list
		tables = le16(tables, 1) // method list
	}
	for len(heap)%4 != 0 {
		heap = append(heap, 0)
	}

	version := []byte("v4.0.30319\x00\x00")
	headerLen := 16 + len(version) + 4 + (8 + 4) + (8 + 12)
	var root []byte
	root = append(root, "BSJB"...)
	root = le16(root, 1)
	root = le16(root, 1)
	root = le32(root, 0)
	root = le32(root, uint32(len(version)))
	root = append(root, version...)
	root = le16(root, 0)
	root = le16(root, 2)

	root = le32(root, uint32(headerLen))
	root = le32(root, uint32(len(tables)))
	root = append(root, "#~\x00\x00"...)
	root = le32(root, uint32(headerLen+len(tables)))
	root = le32(root, uint32(len(heap)))
	root = append(root, "#Strings\x00\x00\x00\x00"...)

	if len(root) != headerLen {
		t.Fatalf("header length %d, want %d", len(root), headerLen)
	}
	root = append(root, tables...)
	return append(root, heap...)
}

func TestDecodeMetadata(t *testing.T) {
	root := buildMetadata(t, []struct {
		flags    uint32
		ns, name string
	}{
		{0, "", "<Module>"},
		{visPublic, "Acme.Collections", "Bag`1"},
		{visPublic, "Acme", "Widget"},
		{0, "Acme", "Hidden"},
		{0x2, "", "Nested"},
	})

	types, err := DecodeMetadata(root)
	if err != nil {
		t.Fatalf("DecodeMetadata failed: %v", err)
	}
	want := []string{"Acme.Collections.Bag", "Acme.Widget"}
	if len(types) != len(want) {
		t.Fatalf("got %v, want %v", types, want)
	}
	for i, w := range want {
		if types[i].String() != w {
			t.Errorf("types[%d] = %s, want %s", i, types[i], w)
		}
	}
}

func TestDecodeMetadataRejectsGarbage(t *testing.T) {
	for _, data := range [][]byte{nil, []byte("not metadata at all"), []byte("BSJB\x01\x00\x01\x00\x00\x00\x00\x00\xff\xff\x00\x00")} {
		if _, err := DecodeMetadata(data); !errors.Is(err, ErrMalformed) {
			t.Errorf("DecodeMetadata(%q) error = %v, want ErrMalformed", data, err)
		}
	}
}

func TestStripArity(t *testing.T) {
	tests := map[string]string{
		"List`1":       "List",
		"Dictionary`2": "Dictionary",
		"Plain":        "Plain",
	}
	for in, want := range tests {
		if got := stripArity(in); got != want {
			t.Errorf("stripArity(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSectionContains(t *testing.T) {
	tests := []struct {
		name            string
		va, extent, rva uint32
		want            bool
	}{
		{"inside", 0x2000, 0x1000, 0x2400, true},
		{"first byte", 0x2000, 0x1000, 0x2000, true},
		{"end is exclusive", 0x2000, 0x1000, 0x3000, false},
		{"before", 0x2000, 0x1000, 0x1fff, false},
		{"extent past 4GiB", 0xfffff000, 0x2000, 0xfffff800, true},
		{"empty section", 0x2000, 0, 0x2000, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sectionContains(tt.va, tt.extent, tt.rva); got != tt.want {
				t.Errorf("sectionContains(0x%x, 0x%x, 0x%x) = %v, want %v", tt.va, tt.extent, tt.rva, got, tt.want)
			}
		})
	}
}

func TestReaderCachesFailures(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.dll")
	if err := os.WriteFile(path, []byte("MZ not really"), 0o644); err != nil {
		t.Fatal(err)
	}

	calls := 0
	r := NewReader()
	read := r.read
	r.read = func(p string) ([]TypeName, error) {
		calls++
		return read(p)
	}

	for range 3 {
		if _, err := r.Types(path); err == nil {
			t.Fatal("expected an error for a non-PE file")
		}
	}
	if calls != 1 {
		t.Errorf("read called %d times, want 1", calls)
	}
}
