// Package metadata reads the public type names defined by CLI assemblies.
package metadata

import (
	"bytes"
	"debug/pe"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"fortio.org/safecast"
)

var (
	// ErrNotManaged is returned for PE files without a CLI header.
	ErrNotManaged = errors.New("not a managed assembly")
	// ErrMalformed is returned when the metadata cannot be decoded.
	ErrMalformed = errors.New("malformed metadata")
)

// TypeName is one type defined by an assembly.
type TypeName struct {
	Namespace string
	Name      string
}

func (t TypeName) String() string {
	if t.Namespace == "" {
		return t.Name
	}
	return t.Namespace + "." + t.Name
}

const (
	clrDirectory = 14

	tableModule    = 0x00
	tableTypeRef   = 0x01
	tableTypeDef   = 0x02
	tableField     = 0x04
	tableMethodDef = 0x06
	tableModuleRef = 0x1A
	tableTypeSpec  = 0x1B
	tableAsmRef    = 0x23

	visibilityMask = 0x7
	visPublic      = 0x1
)

// ReadTypes opens the assembly at path and returns its public top-level types.
func ReadTypes(path string) ([]TypeName, error) {
	f, err := pe.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	types, err := readAssembly(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return types, nil
}

func readAssembly(f *pe.File) ([]TypeName, error) {
	var dir pe.DataDirectory
	switch oh := f.OptionalHeader.(type) {
	case *pe.OptionalHeader32:
		if oh.NumberOfRvaAndSizes <= clrDirectory {
			return nil, ErrNotManaged
		}
		dir = oh.DataDirectory[clrDirectory]
	case *pe.OptionalHeader64:
		if oh.NumberOfRvaAndSizes <= clrDirectory {
			return nil, ErrNotManaged
		}
		dir = oh.DataDirectory[clrDirectory]
	default:
		return nil, ErrNotManaged
	}
	if dir.VirtualAddress == 0 {
		return nil, ErrNotManaged
	}

	cli, err := readRVA(f, dir.VirtualAddress, dir.Size)
	if err != nil {
		return nil, err
	}
	if len(cli) < 16 {
		return nil, fmt.Errorf("%w: short CLI header", ErrMalformed)
	}
	// cb, runtime version, then the metadata directory
	mdRVA := binary.LittleEndian.Uint32(cli[8:])
	mdSize := binary.LittleEndian.Uint32(cli[12:])
	root, err := readRVA(f, mdRVA, mdSize)
	if err != nil {
		return nil, err
	}
	return DecodeMetadata(root)
}

// readRVA returns size bytes starting at the relative virtual address rva.
func readRVA(f *pe.File, rva, size uint32) ([]byte, error) {
	for _, s := range f.Sections {
		if !sectionContains(s.VirtualAddress, max(s.VirtualSize, s.Size), rva) {
			continue
		}
		data, err := s.Data()
		if err != nil {
			return nil, fmt.Errorf("section %s: %w", s.Name, err)
		}
		start, err := safecast.Conv[int](rva - s.VirtualAddress)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		n, err := safecast.Conv[int](size)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		if start+n > len(data) {
			return nil, fmt.Errorf("%w: rva 0x%x out of section %s", ErrMalformed, rva, s.Name)
		}
		return data[start : start+n], nil
	}
	return nil, fmt.Errorf("%w: rva 0x%x not mapped", ErrMalformed, rva)
}

// sectionContains reports whether rva falls in the section mapped at va with
// the given extent. The offset is compared so va+extent cannot wrap.
func sectionContains(va, extent, rva uint32) bool {
	return rva >= va && rva-va < extent
}

// DecodeMetadata decodes a metadata root (starting with the BSJB signature)
// and returns the public top-level types of its TypeDef table.
func DecodeMetadata(root []byte) ([]TypeName, error) {
	streams, err := parseStreams(root)
	if err != nil {
		return nil, err
	}
	tables, ok := streams["#~"]
	if !ok {
		tables, ok = streams["#-"]
	}
	if !ok {
		return nil, fmt.Errorf("%w: no tables stream", ErrMalformed)
	}
	return decodeTypeDefs(tables, streams["#Strings"])
}

func parseStreams(root []byte) (map[string][]byte, error) {
	if len(root) < 16 || string(root[:4]) != "BSJB" {
		return nil, fmt.Errorf("%w: missing BSJB signature", ErrMalformed)
	}
	versionLen, err := safecast.Conv[int](binary.LittleEndian.Uint32(root[12:]))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	pos := 16 + versionLen
	if pos+4 > len(root) {
		return nil, fmt.Errorf("%w: truncated metadata root", ErrMalformed)
	}
	count := int(binary.LittleEndian.Uint16(root[pos+2:]))
	pos += 4

	streams := make(map[string][]byte, count)
	for range count {
		if pos+8 > len(root) {
			return nil, fmt.Errorf("%w: truncated stream header", ErrMalformed)
		}
		offset, err1 := safecast.Conv[int](binary.LittleEndian.Uint32(root[pos:]))
		size, err2 := safecast.Conv[int](binary.LittleEndian.Uint32(root[pos+4:]))
		if err := errors.Join(err1, err2); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		pos += 8
		end := bytes.IndexByte(root[pos:], 0)
		if end < 0 {
			return nil, fmt.Errorf("%w: unterminated stream name", ErrMalformed)
		}
		name := string(root[pos : pos+end])
		// names are padded to a four byte boundary
		pos += (end + 4) &^ 3
		if offset+size > len(root) {
			return nil, fmt.Errorf("%w: stream %s out of range", ErrMalformed, name)
		}
		streams[name] = root[offset : offset+size]
	}
	return streams, nil
}

// tableReader decodes rows of the tables stream.
type tableReader struct {
	data []byte
	pos  int
	rows [64]int

	wideStrings bool
	wideGUID    bool
}

func (r *tableReader) uint(size int) (uint32, error) {
	if r.pos+size > len(r.data) {
		return 0, fmt.Errorf("%w: truncated table", ErrMalformed)
	}
	var v uint32
	if size == 4 {
		v = binary.LittleEndian.Uint32(r.data[r.pos:])
	} else {
		v = uint32(binary.LittleEndian.Uint16(r.data[r.pos:]))
	}
	r.pos += size
	return v, nil
}

func heapSize(wide bool) int {
	if wide {
		return 4
	}
	return 2
}

func (r *tableReader) indexSize(table int) int {
	if r.rows[table] >= 1<<16 {
		return 4
	}
	return 2
}

// codedSize is the width of a coded index over tables using tagBits tag bits.
func (r *tableReader) codedSize(tagBits int, tables ...int) int {
	for _, t := range tables {
		if r.rows[t] >= 1<<(16-tagBits) {
			return 4
		}
	}
	return 2
}

func decodeTypeDefs(tables, stringsHeap []byte) ([]TypeName, error) {
	if len(tables) < 24 {
		return nil, fmt.Errorf("%w: short tables header", ErrMalformed)
	}
	heapSizes := tables[6]
	valid := binary.LittleEndian.Uint64(tables[8:])
	r := &tableReader{
		data:        tables,
		pos:         24,
		wideStrings: heapSizes&0x01 != 0,
		wideGUID:    heapSizes&0x02 != 0,
	}
	for i := range 64 {
		if valid&(1<<i) == 0 {
			continue
		}
		n, err := r.uint(4)
		if err != nil {
			return nil, err
		}
		if r.rows[i], err = safecast.Conv[int](n); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
	}
	if heapSizes&0x40 != 0 {
		r.pos += 4
	}

	str := heapSize(r.wideStrings)
	guid := heapSize(r.wideGUID)
	moduleRow := 2 + str + 3*guid
	typeRefRow := r.codedSize(2, tableModule, tableModuleRef, tableAsmRef, tableTypeRef) + 2*str
	r.pos += r.rows[tableModule]*moduleRow + r.rows[tableTypeRef]*typeRefRow

	extends := r.codedSize(2, tableTypeDef, tableTypeRef, tableTypeSpec)
	fieldIdx := r.indexSize(tableField)
	methodIdx := r.indexSize(tableMethodDef)

	var out []TypeName
	for range r.rows[tableTypeDef] {
		flags, err := r.uint(4)
		if err != nil {
			return nil, err
		}
		nameIdx, err := r.uint(str)
		if err != nil {
			return nil, err
		}
		nsIdx, err := r.uint(str)
		if err != nil {
			return nil, err
		}
		r.pos += extends + fieldIdx + methodIdx

		if flags&visibilityMask != visPublic {
			continue
		}
		name, err := heapString(stringsHeap, nameIdx)
		if err != nil {
			return nil, err
		}
		ns, err := heapString(stringsHeap, nsIdx)
		if err != nil {
			return nil, err
		}
		out = append(out, TypeName{Namespace: ns, Name: stripArity(name)})
	}
	return out, nil
}

func heapString(heap []byte, idx uint32) (string, error) {
	start, err := safecast.Conv[int](idx)
	if err != nil || start > len(heap) {
		return "", fmt.Errorf("%w: string index %d out of range", ErrMalformed, idx)
	}
	end := bytes.IndexByte(heap[start:], 0)
	if end < 0 {
		return "", fmt.Errorf("%w: unterminated string at %d", ErrMalformed, idx)
	}
	return string(heap[start : start+end]), nil
}

// stripArity turns "List`1" into "List".
func stripArity(name string) string {
	if i := strings.IndexByte(name, '`'); i > 0 {
		return name[:i]
	}
	return name
}
