package watcher

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"sharpcheck/internal/config"
)

func TestIsProjectFile(t *testing.T) {
	tests := map[string]bool{
		"Program.cs":  true,
		"App.csproj":  true,
		"All.SLN":     true,
		"notes.txt":   false,
		"Program.cs~": false,
		"build.csx":   false,
	}
	for path, want := range tests {
		if got := isProjectFile(path); got != want {
			t.Errorf("isProjectFile(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestShouldSkipDir(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Analysis.Workspace.Exclude = []string{"generated/**", "*.Designer.cs"}
	fw := &FileWatcher{config: cfg}

	tests := map[string]bool{
		"/src/App/bin":        true,
		"/src/App/obj":        true,
		"/src/.git":           true,
		"/src/App/generated":  true,
		"/src/App/Models":     false,
		"/src/App/generatedX": false,
	}
	for path, want := range tests {
		if got := fw.shouldSkipDir(path); got != want {
			t.Errorf("shouldSkipDir(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestDebouncerBatchesEvents(t *testing.T) {
	d := newDebouncer(20 * time.Millisecond)
	var mu sync.Mutex
	var batches [][]string
	done := make(chan struct{}, 1)
	handler := func(files []string) error {
		mu.Lock()
		batches = append(batches, files)
		mu.Unlock()
		done <- struct{}{}
		return nil
	}

	d.add(FileChangeEvent{Path: "b.cs"}, handler)
	d.add(FileChangeEvent{Path: "a.cs"}, handler)
	d.add(FileChangeEvent{Path: "b.cs"}, handler)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler not called")
	}
	mu.Lock()
	defer mu.Unlock()
	if len(batches) != 1 || len(batches[0]) != 2 || batches[0][0] != "a.cs" || batches[0][1] != "b.cs" {
		t.Errorf("batches = %v, want one sorted batch of a.cs and b.cs", batches)
	}
}

func TestDebouncerStop(t *testing.T) {
	d := newDebouncer(10 * time.Millisecond)
	called := make(chan struct{}, 1)
	d.add(FileChangeEvent{Path: "a.cs"}, func([]string) error {
		called <- struct{}{}
		return nil
	})
	d.stop()
	select {
	case <-called:
		t.Error("handler called after stop")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWatchReportsSourceChanges(t *testing.T) {
	dir := t.TempDir()
	fw, err := NewFileWatcherWithDelay(config.DefaultConfig(), 50*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	defer fw.Close()

	changed := make(chan []string, 4)
	if err := fw.Watch([]string{dir}, func(files []string) error {
		changed <- files
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	source := filepath.Join(dir, "Program.cs")
	if err := os.WriteFile(source, []byte("class P { }"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case files := <-changed:
		if len(files) != 1 || files[0] != source {
			t.Errorf("changed = %v, want only %s", files, source)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}
}
