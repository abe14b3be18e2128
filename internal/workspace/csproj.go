package workspace

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// msbuildProject is the subset of an SDK-style project file the loader understands.
type msbuildProject struct {
	XMLName        xml.Name        `xml:"Project"`
	PropertyGroups []propertyGroup `xml:"PropertyGroup"`
	ItemGroups     []itemGroup     `xml:"ItemGroup"`
}

type propertyGroup struct {
	Condition                 string `xml:"Condition,attr"`
	AssemblyName              string `xml:"AssemblyName"`
	EnableDefaultCompileItems string `xml:"EnableDefaultCompileItems"`
}

type itemGroup struct {
	Condition         string          `xml:"Condition,attr"`
	Compile           []compileItem   `xml:"Compile"`
	ProjectReferences []referenceItem `xml:"ProjectReference"`
	References        []referenceItem `xml:"Reference"`
}

type compileItem struct {
	Include   string `xml:"Include,attr"`
	Update    string `xml:"Update,attr"`
	Remove    string `xml:"Remove,attr"`
	Condition string `xml:"Condition,attr"`
}

type referenceItem struct {
	Include   string `xml:"Include,attr"`
	Condition string `xml:"Condition,attr"`
	HintPath  string `xml:"HintPath"`
}

// defaultExcludes are removed from the file set after explicit items are applied.
var defaultExcludes = []string{"bin/**", "obj/**", ".git/**"}

func readProject(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	var doc msbuildProject
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, &LoadError{Path: path, Err: fmt.Errorf("parse project XML: %w", err)}
	}

	dir := filepath.Dir(path)
	p := &Project{
		Name: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Path: path,
		Dir:  dir,
	}
	warn := func(format string, args ...any) {
		p.Errors = append(p.Errors, fmt.Sprintf("%s: ", p.Name)+fmt.Sprintf(format, args...))
	}

	defaultItems := true
	for _, pg := range doc.PropertyGroups {
		if pg.Condition != "" {
			warn("MSBuild Condition not evaluated on <PropertyGroup>: %s", pg.Condition)
		}
		if pg.AssemblyName != "" && !strings.Contains(pg.AssemblyName, "$(") {
			p.Name = pg.AssemblyName
		}
		if strings.EqualFold(strings.TrimSpace(pg.EnableDefaultCompileItems), "false") {
			defaultItems = false
		}
	}

	var includes, removes []string
	for _, ig := range doc.ItemGroups {
		if ig.Condition != "" {
			warn("MSBuild Condition not evaluated on <ItemGroup>: %s", ig.Condition)
		}
		for _, c := range ig.Compile {
			if c.Condition != "" {
				warn("MSBuild Condition not evaluated on <Compile>: %s", c.Condition)
			}
			for _, inc := range []string{c.Include, c.Update} {
				for _, pat := range splitItems(inc) {
					if strings.Contains(pat, "$(") {
						warn("MSBuild macro not expanded on <Compile>: %s", pat)
						continue
					}
					includes = append(includes, pat)
				}
			}
			for _, pat := range splitItems(c.Remove) {
				if strings.Contains(pat, "$(") {
					warn("MSBuild macro not expanded on <Compile Remove>: %s", pat)
					continue
				}
				removes = append(removes, pat)
			}
		}
		for _, r := range ig.ProjectReferences {
			if r.Condition != "" {
				warn("MSBuild Condition not evaluated on <ProjectReference>: %s", r.Condition)
			}
			rel := normalizeItem(r.Include)
			if rel == "" {
				continue
			}
			if strings.Contains(rel, "$(") {
				warn("MSBuild macro not expanded on <ProjectReference>: %s", rel)
				continue
			}
			ref := filepath.Join(dir, filepath.FromSlash(rel))
			if _, err := os.Stat(ref); err != nil {
				warn("unresolved ProjectReference: %s", ref)
			}
			p.ProjectRefs = append(p.ProjectRefs, ref)
		}
		for _, r := range ig.References {
			hint := normalizeItem(r.HintPath)
			if hint == "" || strings.Contains(hint, "$(") {
				continue
			}
			p.References = append(p.References, filepath.Join(dir, filepath.FromSlash(hint)))
		}
	}

	files, err := projectFiles(dir)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	selected := make(map[string]bool)
	if defaultItems {
		includes = append([]string{"**/*.cs"}, includes...)
	}
	for _, pat := range includes {
		matched, err := matchFiles(files, pat)
		if err != nil {
			warn("invalid Compile pattern %q: %v", pat, err)
			continue
		}
		for _, f := range matched {
			selected[f] = true
		}
	}
	for _, pat := range append(removes, defaultExcludes...) {
		removeMatching(selected, pat)
	}

	rels := make([]string, 0, len(selected))
	for f := range selected {
		rels = append(rels, f)
	}
	sort.Strings(rels)
	for _, rel := range rels {
		abs := filepath.Join(dir, filepath.FromSlash(rel))
		if strings.EqualFold(filepath.Ext(rel), ".cs") {
			p.addSource(abs)
		} else {
			p.Files = append(p.Files, ProjectFile{Path: abs, Kind: KindOther})
		}
	}
	return p, nil
}

// projectFiles lists every file below dir as a slash-separated relative path.
// Skipped directories are still listed so explicit includes can reach them and
// the default excludes can remove them.
func projectFiles(dir string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" || d.Name() == "node_modules" {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	return out, err
}

// matchFiles returns the files matching an item pattern, compared case-insensitively.
func matchFiles(files []string, pattern string) ([]string, error) {
	pat := strings.ToLower(pattern)
	if !doublestar.ValidatePattern(pat) {
		return nil, doublestar.ErrBadPattern
	}
	var out []string
	for _, f := range files {
		if doublestar.MatchUnvalidated(pat, strings.ToLower(f)) {
			out = append(out, f)
		}
	}
	return out, nil
}

// removeMatching drops selected files matching pattern. A plain file name
// removes by base name; a path without wildcards removes by path suffix.
func removeMatching(selected map[string]bool, pattern string) {
	pat := strings.ToLower(pattern)
	wild := strings.ContainsAny(pat, "*?[{")
	for f := range selected {
		lf := strings.ToLower(f)
		switch {
		case wild:
			if doublestar.MatchUnvalidated(pat, lf) {
				delete(selected, f)
			}
		case !strings.Contains(pat, "/"):
			if lf == pat || strings.ToLower(filepath.Base(filepath.FromSlash(f))) == pat {
				delete(selected, f)
			}
		default:
			if lf == pat || strings.HasSuffix(lf, "/"+pat) {
				delete(selected, f)
			}
		}
	}
}

// splitItems splits a semicolon separated item list and normalizes each entry.
func splitItems(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ";") {
		if item := normalizeItem(part); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func normalizeItem(s string) string {
	s = strings.Trim(strings.TrimSpace(s), `"'`)
	s = strings.ReplaceAll(s, `\`, "/")
	return strings.TrimPrefix(s, "./")
}
