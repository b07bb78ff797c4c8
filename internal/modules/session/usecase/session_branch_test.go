package usecase_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	sessionout "focuslog/internal/modules/session/adapter/out"
	sessiondto "focuslog/internal/modules/session/dto"
	"focuslog/internal/modules/session/service"
	"focuslog/internal/modules/session/usecase"
	apperrors "focuslog/internal/platform/errors"
)

func TestWithoutOptionalCollaborators(t *testing.T) {
	t.Parallel()
	vault := t.TempDir()
	clk := &fakeClock{values: []time.Time{at(8, 0), at(8, 30)}}
	svc := service.NewSessionService(clk, &fakeID{prefix: "s"}, sessionout.NewVaultSessionStore(vault, nil), nil, nil)
	uc := usecase.NewInteractor(svc, nil, sessionout.NewFileActiveSessionStore(filepath.Join(vault, ".focuslog")), nil)
	ctx := context.Background()

	if _, err := uc.Start(ctx, sessiondto.StartInput{TaskName: "Read", AppID: "unchecked", Tags: []string{"books"}}); err != nil {
		t.Fatalf("start without apps registry: %v", err)
	}
	out, err := uc.Stop(ctx, sessiondto.StopInput{})
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	if out.AppID != "unchecked" {
		t.Fatalf("app reference should be stored as given, got %q", out.AppID)
	}
	listed, err := uc.List(ctx, sessiondto.ListInput{Tag: "books"})
	if err != nil || len(listed) != 1 {
		t.Fatalf("list without index should scan notes: %+v %v", listed, err)
	}
	if tags, err := uc.ListTags(ctx); err != nil || len(tags) != 0 {
		t.Fatalf("expected empty tag registry without store, got %v %v", tags, err)
	}
	if _, err := uc.Reindex(ctx); err == nil {
		t.Fatalf("reindex must fail without an index")
	}
}

func TestNilActiveStore(t *testing.T) {
	t.Parallel()
	clk := &fakeClock{values: []time.Time{at(8, 0)}}
	svc := service.NewSessionService(clk, &fakeID{prefix: "s"}, sessionout.NewVaultSessionStore(t.TempDir(), nil), nil, nil)
	uc := usecase.NewInteractor(svc, nil, nil, nil)
	if _, err := uc.GetActive(context.Background()); !errors.Is(err, apperrors.ErrNoActiveSession) {
		t.Fatalf("expected no active session, got %v", err)
	}
	if _, err := uc.Start(context.Background(), sessiondto.StartInput{}); err == nil {
		t.Fatalf("start must fail without an active store")
	}
}

func TestBrokenNotesAreSkipped(t *testing.T) {
	t.Parallel()
	vault := t.TempDir()
	clk := &fakeClock{values: []time.Time{at(8, 0)}}
	svc := service.NewSessionService(clk, &fakeID{prefix: "s"}, sessionout.NewVaultSessionStore(vault, nil), nil, nil)
	uc := usecase.NewInteractor(svc, nil, nil, nil)
	ctx := context.Background()

	if _, err := uc.Record(ctx, sessiondto.RecordInput{TaskName: "Good", StartedAt: at(7, 0), EndedAt: at(7, 30)}); err != nil {
		t.Fatalf("record: %v", err)
	}
	dir := filepath.Join(vault, "sessions", "2026", "03", "10")
	if err := os.WriteFile(filepath.Join(dir, "zzz-handwritten.md"), []byte("just a note\n"), 0o644); err != nil {
		t.Fatalf("write stray note: %v", err)
	}
	snapshot, err := uc.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(snapshot) != 1 || snapshot[0].TaskName != "Good" {
		t.Fatalf("expected only the valid session, got %+v", snapshot)
	}
	cleared, err := uc.Clear(ctx)
	if err != nil || cleared.Removed != 1 {
		t.Fatalf("clear: %+v %v", cleared, err)
	}
	if _, err := os.Stat(filepath.Join(dir, "zzz-handwritten.md")); err != nil {
		t.Fatalf("clear must leave foreign notes alone: %v", err)
	}
}
