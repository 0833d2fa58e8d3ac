package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

type recorder struct {
	mu      sync.Mutex
	changed []string
	removed []string
}

func (r *recorder) onChange(path string) {
	r.mu.Lock()
	r.changed = append(r.changed, path)
	r.mu.Unlock()
}

func (r *recorder) onRemove(path string) {
	r.mu.Lock()
	r.removed = append(r.removed, path)
	r.mu.Unlock()
}

func (r *recorder) snapshot() (changed, removed []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.changed...), append([]string(nil), r.removed...)
}

func startWatcher(t *testing.T, files []string, r *recorder) *Watcher {
	t.Helper()
	w := NewWatcher(files, r.onChange, r.onRemove, WithDebounce(50*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(w.Stop)
	return w
}

func TestWatcher_DebouncesWritesToTrackedFile(t *testing.T) {
	dir := t.TempDir()
	tracked := filepath.Join(dir, "doc.xml")
	if err := writeFile(tracked, "<doc/>"); err != nil {
		t.Fatal(err)
	}
	r := &recorder{}
	startWatcher(t, []string{tracked}, r)

	for i := 0; i < 3; i++ {
		if err := writeFile(tracked, "<doc>v</doc>"); err != nil {
			t.Fatal(err)
		}
	}
	if err := writeFile(filepath.Join(dir, "other.xml"), "<doc/>"); err != nil {
		t.Fatal(err)
	}
	time.Sleep(400 * time.Millisecond)

	changed, _ := r.snapshot()
	if len(changed) != 1 || changed[0] != tracked {
		t.Errorf("expected one debounced change of %s, got %v", tracked, changed)
	}
}

func TestWatcher_RemoveCallback(t *testing.T) {
	dir := t.TempDir()
	tracked := filepath.Join(dir, "doc.xml")
	if err := writeFile(tracked, "<doc/>"); err != nil {
		t.Fatal(err)
	}
	r := &recorder{}
	startWatcher(t, []string{tracked}, r)

	if err := os.Remove(tracked); err != nil {
		t.Fatal(err)
	}
	time.Sleep(300 * time.Millisecond)

	_, removed := r.snapshot()
	if len(removed) != 1 || removed[0] != tracked {
		t.Errorf("expected removal of %s, got %v", tracked, removed)
	}
}

func TestWatcher_SetFiles(t *testing.T) {
	dirA, dirB := t.TempDir(), t.TempDir()
	a := filepath.Join(dirA, "a.xml")
	b := filepath.Join(dirB, "b.xml")
	for _, p := range []string{a, b} {
		if err := writeFile(p, "<doc/>"); err != nil {
			t.Fatal(err)
		}
	}
	r := &recorder{}
	w := startWatcher(t, []string{a}, r)

	w.SetFiles([]string{b})
	if got := w.Files(); len(got) != 1 || got[0] != b {
		t.Fatalf("Files() = %v", got)
	}
	if err := writeFile(a, "<doc>a</doc>"); err != nil {
		t.Fatal(err)
	}
	if err := writeFile(b, "<doc>b</doc>"); err != nil {
		t.Fatal(err)
	}
	time.Sleep(400 * time.Millisecond)

	changed, _ := r.snapshot()
	if len(changed) != 1 || changed[0] != b {
		t.Errorf("expected only %s to change, got %v", b, changed)
	}
}

func TestWatcher_SetFilesBeforeStart(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "later.xml")
	r := &recorder{}
	w := NewWatcher(nil, r.onChange, r.onRemove, WithDebounce(50*time.Millisecond))
	w.SetFiles([]string{p, p})
	if got := w.Files(); len(got) != 1 {
		t.Fatalf("Files() = %v", got)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := writeFile(p, "<doc/>"); err != nil {
		t.Fatal(err)
	}
	time.Sleep(400 * time.Millisecond)
	if changed, _ := r.snapshot(); len(changed) != 1 {
		t.Errorf("expected creation to be reported, got %v", changed)
	}
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	w := NewWatcher([]string{filepath.Join(t.TempDir(), "x.xml")}, nil, nil)
	w.Stop()
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	w.Stop()
	w.Stop()
}

func TestWatcher_RelativePathsAreAbsolute(t *testing.T) {
	w := NewWatcher([]string{"rel/doc.xml"}, nil, nil)
	got := w.Files()
	if len(got) != 1 || !filepath.IsAbs(got[0]) {
		t.Errorf("Files() = %v", got)
	}
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0600)
}
