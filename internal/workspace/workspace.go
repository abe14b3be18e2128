// Package workspace loads solutions, projects and loose source files into a
// model the analysis pipeline can iterate over.
package workspace

import (
	"fmt"
	"path/filepath"
	"sort"
)

type FileKind string

const (
	KindSource FileKind = "source"
	KindOther  FileKind = "other"
)

// ProjectFile is one file that belongs to a project.
type ProjectFile struct {
	Path     string   `json:"path"`
	Kind     FileKind `json:"kind"`
	Language string   `json:"language,omitempty"`
}

// Project is a loaded .csproj, or a synthetic project for loose files.
type Project struct {
	Name string `json:"name"`
	// Path is the project file; empty for synthetic projects.
	Path  string        `json:"path,omitempty"`
	Dir   string        `json:"dir"`
	Files []ProjectFile `json:"files"`
	// Errors are non-fatal loader warnings.
	Errors []string `json:"errors,omitempty"`
	// References are assembly paths from <Reference><HintPath>.
	References  []string `json:"references,omitempty"`
	ProjectRefs []string `json:"project_refs,omitempty"`
}

type Solution struct {
	Path     string   `json:"path"`
	Projects []string `json:"projects"`
	Errors   []string `json:"errors,omitempty"`
}

type Workspace struct {
	Root     string     `json:"root"`
	Projects []*Project `json:"projects"`
	Solution *Solution  `json:"solution,omitempty"`
}

// SourceFile is a source path together with the directory of its project.
type SourceFile struct {
	Path       string
	ProjectDir string
}

// LoadError reports a workspace input that could not be loaded at all.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

func (p *Project) addSource(path string) {
	p.Files = append(p.Files, ProjectFile{Path: path, Kind: KindSource, Language: "csharp"})
}

// SourceFiles returns every source file of the workspace sorted by path.
// A file listed by several projects is kept once, with the first project's directory.
func (w *Workspace) SourceFiles() []SourceFile {
	seen := make(map[string]bool)
	var out []SourceFile
	for _, p := range w.Projects {
		for _, f := range p.Files {
			if f.Kind != KindSource || seen[f.Path] {
				continue
			}
			seen[f.Path] = true
			out = append(out, SourceFile{Path: f.Path, ProjectDir: p.Dir})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Warnings collects solution and project loader errors, sorted and deduplicated.
func (w *Workspace) Warnings() []string {
	var all []string
	if w.Solution != nil {
		all = append(all, w.Solution.Errors...)
	}
	for _, p := range w.Projects {
		all = append(all, p.Errors...)
	}
	return sortedUnique(all)
}

// References returns the assembly references of all projects, sorted and deduplicated.
func (w *Workspace) References() []string {
	var all []string
	for _, p := range w.Projects {
		all = append(all, p.References...)
	}
	return sortedUnique(all)
}

// Dirs returns the project directories plus the root, for watching.
func (w *Workspace) Dirs() []string {
	all := []string{w.Root}
	for _, p := range w.Projects {
		all = append(all, p.Dir)
	}
	return sortedUnique(all)
}

func sortedUnique(in []string) []string {
	sort.Strings(in)
	out := in[:0]
	for i, s := range in {
		if i == 0 || s != in[i-1] {
			out = append(out, s)
		}
	}
	return out
}

func absClean(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}
