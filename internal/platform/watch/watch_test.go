package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"focuslog/internal/platform/logging"
)

func TestClassify(t *testing.T) {
	t.Parallel()
	vault := t.TempDir()
	w := &Watcher{vaultPath: vault, stateDir: filepath.Join(vault, ".focuslog")}

	cases := []struct {
		path string
		kind Kind
		ok   bool
	}{
		{filepath.Join(vault, "sessions", "2026-03-10", "a.md"), SessionsChanged, true},
		{filepath.Join(vault, ".focuslog", "active-session.json"), ActiveChanged, true},
		{filepath.Join(vault, ".focuslog", "apps.yaml"), AppsChanged, true},
		{filepath.Join(vault, ".focuslog", "tags.yaml"), TagsChanged, true},
		{filepath.Join(vault, ".focuslog", "focuslog.db"), 0, false},
		{filepath.Join(vault, "notes", "apps.yaml"), 0, false},
		{filepath.Join(vault, "sessions"), 0, false},
	}
	for _, tc := range cases {
		kind, ok := w.classify(tc.path)
		if ok != tc.ok || (ok && kind != tc.kind) {
			t.Fatalf("classify %s: want %v/%t, got %v/%t", tc.path, tc.kind, tc.ok, kind, ok)
		}
	}
}

func TestWatcherCoalescesWrites(t *testing.T) {
	if testing.Short() {
		t.Skip("filesystem notifications")
	}
	vault := t.TempDir()
	stateDir := filepath.Join(vault, ".focuslog")
	w, err := New(vault, stateDir, logging.Discard())
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer w.Stop()
	if err := w.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	appsPath := filepath.Join(stateDir, "apps.yaml")
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(appsPath, []byte("apps: []\n"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	select {
	case event := <-w.Events():
		if event.Kind != AppsChanged {
			t.Fatalf("expected apps event, got %v", event.Kind)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("no event within 3s")
	}

	select {
	case event := <-w.Events():
		t.Fatalf("writes should coalesce, got extra %v", event.Kind)
	case <-time.After(4 * defaultDebounce):
	}
}

func TestKindString(t *testing.T) {
	t.Parallel()
	if SessionsChanged.String() != "sessions" || TagsChanged.String() != "tags" || Kind(42).String() != "unknown" {
		t.Fatalf("unexpected kind names")
	}
}
