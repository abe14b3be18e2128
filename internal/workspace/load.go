package workspace

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// skipDirs are never descended into when collecting files.
var skipDirs = map[string]bool{
	"bin":          true,
	"obj":          true,
	".git":         true,
	".vs":          true,
	"node_modules": true,
}

// SkipDir reports whether a directory name is ignored by the loader and the watcher.
func SkipDir(name string) bool {
	return skipDirs[name]
}

// Load builds a workspace from a .sln, a .csproj, a directory or a single .cs file.
// followRefs also loads projects reached through <ProjectReference>.
func Load(path string, followRefs bool) (*Workspace, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	abs := absClean(path)
	l := &loader{followRefs: followRefs, loaded: make(map[string]bool)}

	if info.IsDir() {
		return l.loadDir(abs)
	}
	switch strings.ToLower(filepath.Ext(abs)) {
	case ".sln":
		return l.loadSolution(abs)
	case ".csproj":
		ws := &Workspace{Root: filepath.Dir(abs)}
		if err := l.addProject(ws, abs); err != nil {
			return nil, err
		}
		return ws, nil
	case ".cs":
		p := &Project{Name: strings.TrimSuffix(filepath.Base(abs), filepath.Ext(abs)), Dir: filepath.Dir(abs)}
		p.addSource(abs)
		return &Workspace{Root: p.Dir, Projects: []*Project{p}}, nil
	default:
		return nil, &LoadError{Path: path, Err: errors.New("unsupported input, want .sln, .csproj, .cs or a directory")}
	}
}

// LoadAll loads several inputs into one workspace rooted at the first input.
func LoadAll(paths []string, followRefs bool) (*Workspace, error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}
	var merged *Workspace
	for _, path := range paths {
		ws, err := Load(path, followRefs)
		if err != nil {
			return nil, err
		}
		if merged == nil {
			merged = ws
			continue
		}
		merged.Projects = append(merged.Projects, ws.Projects...)
		if merged.Solution == nil {
			merged.Solution = ws.Solution
		}
	}
	return merged, nil
}

type loader struct {
	followRefs bool
	loaded     map[string]bool
}

// addProject reads a project file and, when following references, the projects it references.
func (l *loader) addProject(ws *Workspace, path string) error {
	if l.loaded[path] {
		return nil
	}
	l.loaded[path] = true

	p, err := readProject(path)
	if err != nil {
		return err
	}
	ws.Projects = append(ws.Projects, p)
	slog.Debug("loaded project", "project", p.Name, "files", len(p.Files))

	if !l.followRefs {
		return nil
	}
	for _, ref := range p.ProjectRefs {
		if _, err := os.Stat(ref); err != nil {
			continue
		}
		if err := l.addProject(ws, ref); err != nil {
			p.Errors = append(p.Errors, fmt.Sprintf("ProjectReference %s: %v", ref, err))
		}
	}
	return nil
}

// loadDir loads every project below dir, or one synthetic project of all .cs files when there are none.
func (l *loader) loadDir(dir string) (*Workspace, error) {
	ws := &Workspace{Root: dir}
	var projects, sources []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && SkipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".csproj":
			projects = append(projects, path)
		case ".cs":
			sources = append(sources, path)
		}
		return nil
	})
	if err != nil {
		return nil, &LoadError{Path: dir, Err: err}
	}

	if len(projects) == 0 {
		p := &Project{Name: filepath.Base(dir), Dir: dir}
		for _, src := range sources {
			p.addSource(src)
		}
		ws.Projects = []*Project{p}
		return ws, nil
	}
	for _, path := range projects {
		if err := l.addProject(ws, path); err != nil {
			return nil, err
		}
	}
	return ws, nil
}

// Project("{FAE04EC0-301F-11D3-BF4B-00C04F79EFBC}") = "Name", "Name\Name.csproj", "{GUID}"
var slnProject = regexp.MustCompile(`^Project\("\{[^}]*\}"\)\s*=\s*"([^"]*)"\s*,\s*"([^"]*)"`)

func (l *loader) loadSolution(path string) (*Workspace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer f.Close()

	root := filepath.Dir(path)
	ws := &Workspace{Root: root, Solution: &Solution{Path: path}}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		m := slnProject.FindStringSubmatch(strings.TrimSpace(scanner.Text()))
		if m == nil {
			continue
		}
		rel := strings.ReplaceAll(m[2], `\`, "/")
		// solution folders and non-C# projects
		if !strings.EqualFold(filepath.Ext(rel), ".csproj") {
			continue
		}
		projPath := filepath.Join(root, filepath.FromSlash(rel))
		ws.Solution.Projects = append(ws.Solution.Projects, projPath)
		if err := l.addProject(ws, projPath); err != nil {
			ws.Solution.Errors = append(ws.Solution.Errors, fmt.Sprintf("project %s: %v", m[1], err))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return ws, nil
}
