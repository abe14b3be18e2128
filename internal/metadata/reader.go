package metadata

import (
	"path/filepath"
	"sync"
)

// Reader reads assemblies and caches the result per path. It is safe for
// concurrent use.
type Reader struct {
	mu    sync.Mutex
	cache map[string]result
	read  func(path string) ([]TypeName, error)
}

type result struct {
	types []TypeName
	err   error
}

func NewReader() *Reader {
	return &Reader{cache: make(map[string]result), read: ReadTypes}
}

var shared = NewReader()

// Shared returns the process-wide reader.
func Shared() *Reader {
	return shared
}

// Types returns the public types of the assembly at path. Failures are cached too.
func (r *Reader) Types(path string) ([]TypeName, error) {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.cache[path]; ok {
		return res.types, res.err
	}
	types, err := r.read(path)
	r.cache[path] = result{types: types, err: err}
	return types, err
}
