package out_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	insightout "focuslog/internal/modules/insight/adapter/out"
)

func TestFileManifestStoreLoadMissingReturnsEmpty(t *testing.T) {
	t.Parallel()
	store := insightout.NewFileManifestStore(t.TempDir())
	manifests, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load manifests: %v", err)
	}
	if len(manifests) != 0 {
		t.Fatalf("expected empty manifests, got %d", len(manifests))
	}
}

func TestFileManifestStoreResolvesRelativeBinary(t *testing.T) {
	t.Parallel()
	base := t.TempDir()
	writeManifest(t, base, `[
  {
    "name": "coach",
    "version": "1.0.0",
    "binary": "plugins/coach/coach-plugin",
    "sha256": "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
    "enabled": true,
    "capabilities": ["insight"]
  }
]`)
	manifests, err := insightout.NewFileManifestStore(base).Load(context.Background())
	if err != nil {
		t.Fatalf("load manifests: %v", err)
	}
	if len(manifests) != 1 {
		t.Fatalf("expected one manifest, got %d", len(manifests))
	}
	if want := filepath.Join(base, "plugins", "coach", "coach-plugin"); manifests[0].Binary != want {
		t.Fatalf("expected %s, got %s", want, manifests[0].Binary)
	}
}

func TestFileManifestStoreRejectsUnknownField(t *testing.T) {
	t.Parallel()
	base := t.TempDir()
	writeManifest(t, base, `[{"name":"coach","version":"1.0.0","binary":"/tmp/coach","sha256":"aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa","enabled":true,"capabilities":["insight"],"unknown_field":true}]`)
	if _, err := insightout.NewFileManifestStore(base).Load(context.Background()); err == nil {
		t.Fatalf("expected unknown field error")
	}
}

func writeManifest(t *testing.T, base, raw string) {
	t.Helper()
	pluginsDir := filepath.Join(base, "plugins")
	if err := os.MkdirAll(pluginsDir, 0o755); err != nil {
		t.Fatalf("mkdir plugins: %v", err)
	}
	if err := os.WriteFile(filepath.Join(pluginsDir, "plugins.json"), []byte(raw), 0o644); err != nil {
		t.Fatalf("write plugins.json: %v", err)
	}
}
