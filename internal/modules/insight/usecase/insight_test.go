package usecase_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	analyticsdto "focuslog/internal/modules/analytics/dto"
	analyticsin "focuslog/internal/modules/analytics/port/in"
	appsdto "focuslog/internal/modules/apps/dto"
	appsin "focuslog/internal/modules/apps/port/in"
	"focuslog/internal/modules/insight/domain"
	"focuslog/internal/modules/insight/dto"
	insightin "focuslog/internal/modules/insight/port/in"
	insightout "focuslog/internal/modules/insight/port/out"
	"focuslog/internal/modules/insight/service"
	"focuslog/internal/modules/insight/usecase"
	sessiondto "focuslog/internal/modules/session/dto"
	sessionin "focuslog/internal/modules/session/port/in"
	apperrors "focuslog/internal/platform/errors"
)

const validCompletion = "```json\n{\"summary\":\"Focused week.\",\"peak_productivity\":\"Mornings at 9 AM.\",\"suggestions\":[\"Batch email\",\"Protect 9 AM\"],\"motivation\":\"Nice work!\"}\n```"

type fakeSessions struct {
	sessionin.Usecase
	items []sessiondto.SessionOutput
}

func (f fakeSessions) Snapshot(context.Context) ([]sessiondto.SessionOutput, error) {
	return f.items, nil
}

type fakeApps struct {
	appsin.Usecase
	items []appsdto.AppOutput
}

func (f fakeApps) List(context.Context) ([]appsdto.AppOutput, error) {
	return f.items, nil
}

type fakeAnalytics struct {
	analyticsin.Usecase
	report analyticsdto.ReportOutput
	ranges []string
}

func (f *fakeAnalytics) Report(_ context.Context, input analyticsdto.ReportInput) (analyticsdto.ReportOutput, error) {
	f.ranges = append(f.ranges, input.Range)
	return f.report, nil
}

type scriptedProvider struct {
	mu      sync.Mutex
	name    string
	text    string
	err     error
	prompts []string
}

func (p *scriptedProvider) Name() string { return p.name }

func (p *scriptedProvider) Complete(_ context.Context, prompt string) (domain.Completion, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prompts = append(p.prompts, prompt)
	if p.err != nil {
		return domain.Completion{}, p.err
	}
	return domain.Completion{Text: p.text, Sources: []domain.Source{{URI: "https://example.com", Title: "Example"}, {Title: "no uri"}}}, nil
}

func (p *scriptedProvider) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.prompts)
}

type fakeManifests struct{ items []domain.Manifest }

func (f fakeManifests) Load(context.Context) ([]domain.Manifest, error) { return f.items, nil }

type fakeHost struct {
	text      string
	completes int
}

func (h *fakeHost) CheckLifecycle(context.Context, domain.Manifest) error { return nil }

func (h *fakeHost) GetMetadata(_ context.Context, m domain.Manifest) (domain.Metadata, error) {
	return domain.Metadata{Name: m.Name, Version: m.Version, Capabilities: m.Capabilities}, nil
}

func (h *fakeHost) Complete(context.Context, domain.Manifest, string) (domain.Completion, error) {
	h.completes++
	return domain.Completion{Text: h.text}, nil
}

func sampleSessions() []sessiondto.SessionOutput {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	return []sessiondto.SessionOutput{
		{ID: "s1", TaskName: "Write", StartedAt: start, EndedAt: start.Add(30 * time.Minute), Tags: []string{"deep-work"}, AppID: "ide"},
		{ID: "s2", TaskName: "Email", StartedAt: start.Add(time.Hour), EndedAt: start.Add(70 * time.Minute)},
	}
}

func newInsight(t *testing.T, provider *scriptedProvider, plugins *service.PluginRegistry, sessions []sessiondto.SessionOutput) (insightin.Usecase, *fakeAnalytics) {
	t.Helper()
	analytics := &fakeAnalytics{report: analyticsdto.ReportOutput{
		TotalMinutes:  40,
		AverageLength: "20m 0s",
		PeakHour:      "9 AM",
		ByTask:        []analyticsdto.NamedMinutes{{Name: "Write", Minutes: 30}, {Name: "Email", Minutes: 10}},
		Apps:          []analyticsdto.AppUsageOutput{{Name: "IDE", DailyGoalMinutes: 60, TotalMinutes: 30, ProgressPercent: 50}},
	}}
	svc := service.NewInsightService(
		fakeSessions{items: sessions},
		fakeApps{items: []appsdto.AppOutput{{ID: "ide", Name: "IDE", DailyGoalMinutes: 60}}},
		analytics,
		[]insightout.Provider{provider},
		plugins,
		service.Options{DefaultProvider: provider.name, CacheTTL: time.Minute},
	)
	return usecase.NewInteractor(svc, plugins), analytics
}

func TestGenerateParsesAndCachesByPrompt(t *testing.T) {
	t.Parallel()
	provider := &scriptedProvider{name: "fake", text: validCompletion}
	uc, analytics := newInsight(t, provider, nil, sampleSessions())
	ctx := context.Background()

	first, err := uc.Generate(ctx, dto.GenerateInput{})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if first.Provider != "fake" || first.Cached {
		t.Fatalf("unexpected first result: %+v", first)
	}
	if first.Summary != "Focused week." || len(first.Suggestions) != 2 {
		t.Fatalf("unexpected insight: %+v", first)
	}
	if len(first.Sources) != 1 {
		t.Fatalf("sources without uri must be dropped, got %+v", first.Sources)
	}
	if len(analytics.ranges) != 1 || analytics.ranges[0] != "all" {
		t.Fatalf("stats must cover every session, got ranges %v", analytics.ranges)
	}
	prompt := provider.prompts[0]
	for _, fragment := range []string{`Task: "Write"`, "App: IDE", "- IDE: 60 minutes per day", "Time by task: Write: 30 min; Email: 10 min", "IDE: 30/60 min (50%)"} {
		if !strings.Contains(prompt, fragment) {
			t.Fatalf("prompt missing %q:\n%s", fragment, prompt)
		}
	}

	second, err := uc.Generate(ctx, dto.GenerateInput{Provider: "fake"})
	if err != nil {
		t.Fatalf("second generate: %v", err)
	}
	if !second.Cached || provider.calls() != 1 {
		t.Fatalf("expected cache hit, cached=%v calls=%d", second.Cached, provider.calls())
	}

	if _, err := uc.Generate(ctx, dto.GenerateInput{Refresh: true}); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if provider.calls() != 2 {
		t.Fatalf("refresh must bypass cache, calls=%d", provider.calls())
	}
}

func TestGenerateWithoutSessions(t *testing.T) {
	t.Parallel()
	provider := &scriptedProvider{name: "fake", text: validCompletion}
	uc, _ := newInsight(t, provider, nil, nil)
	if _, err := uc.Generate(context.Background(), dto.GenerateInput{}); !errors.Is(err, apperrors.ErrNoSessions) {
		t.Fatalf("expected ErrNoSessions, got %v", err)
	}
	if provider.calls() != 0 {
		t.Fatalf("provider must not be called without sessions")
	}
}

func TestGenerateFailuresAreInsightUnavailable(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	failing := &scriptedProvider{name: "fake", err: errors.New("connection refused")}
	uc, _ := newInsight(t, failing, nil, sampleSessions())
	if _, err := uc.Generate(ctx, dto.GenerateInput{}); !errors.Is(err, apperrors.ErrInsightUnavailable) {
		t.Fatalf("expected ErrInsightUnavailable, got %v", err)
	}

	garbled := &scriptedProvider{name: "fake", text: "I cannot help with that."}
	uc, _ = newInsight(t, garbled, nil, sampleSessions())
	_, err := uc.Generate(ctx, dto.GenerateInput{})
	if !errors.Is(err, apperrors.ErrInsightUnavailable) || !errors.Is(err, domain.ErrMalformedInsight) {
		t.Fatalf("expected unavailable wrapping malformed, got %v", err)
	}
	if _, err := uc.Generate(ctx, dto.GenerateInput{}); err == nil || garbled.calls() != 2 {
		t.Fatalf("failures must not be cached, calls=%d", garbled.calls())
	}
}

func TestGenerateUnknownProvider(t *testing.T) {
	t.Parallel()
	uc, _ := newInsight(t, &scriptedProvider{name: "fake", text: validCompletion}, nil, sampleSessions())
	_, err := uc.Generate(context.Background(), dto.GenerateInput{Provider: "nope"})
	if !errors.Is(err, apperrors.ErrInvalidInput) || !errors.Is(err, domain.ErrUnknownProvider) {
		t.Fatalf("expected unknown provider, got %v", err)
	}
}

func TestGenerateThroughPlugin(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	binary := filepath.Join(dir, "coach")
	if err := os.WriteFile(binary, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatalf("write binary: %v", err)
	}
	sum := sha256.Sum256([]byte("#!/bin/sh\n"))
	manifests := fakeManifests{items: []domain.Manifest{
		{Name: "coach", Version: "1.0.0", Binary: binary, SHA256: hex.EncodeToString(sum[:]), Enabled: true, Capabilities: []domain.Capability{domain.CapabilityInsight}},
		{Name: "off", Version: "1.0.0", Binary: binary, SHA256: hex.EncodeToString(sum[:]), Enabled: false, Capabilities: []domain.Capability{domain.CapabilityInsight}},
		{Name: "tampered", Version: "1.0.0", Binary: binary, SHA256: strings.Repeat("0", 64), Enabled: true, Capabilities: []domain.Capability{domain.CapabilityInsight}},
	}}
	host := &fakeHost{text: validCompletion}
	plugins := service.NewPluginRegistry(manifests, host)
	uc, _ := newInsight(t, &scriptedProvider{name: "fake", text: validCompletion}, plugins, sampleSessions())
	ctx := context.Background()

	out, err := uc.Generate(ctx, dto.GenerateInput{Provider: "coach"})
	if err != nil {
		t.Fatalf("generate via plugin: %v", err)
	}
	if out.Provider != "coach" || host.completes != 1 {
		t.Fatalf("expected plugin completion, got %+v (calls=%d)", out, host.completes)
	}

	if _, err := uc.Generate(ctx, dto.GenerateInput{Provider: "off"}); !errors.Is(err, domain.ErrPluginDisabled) || !errors.Is(err, apperrors.ErrInsightUnavailable) {
		t.Fatalf("expected disabled plugin error, got %v", err)
	}
	if _, err := uc.Generate(ctx, dto.GenerateInput{Provider: "tampered"}); !errors.Is(err, domain.ErrChecksumMismatch) {
		t.Fatalf("expected checksum mismatch, got %v", err)
	}

	providers, err := uc.Providers(ctx)
	if err != nil {
		t.Fatalf("providers: %v", err)
	}
	if len(providers) != 4 || providers[0].Name != "fake" || !providers[0].Default || providers[1].Kind != "plugin" {
		t.Fatalf("unexpected providers: %+v", providers)
	}

	results, err := uc.Doctor(ctx)
	if err != nil {
		t.Fatalf("doctor: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected three doctor results, got %d", len(results))
	}
	if !results[0].LifecycleOK || results[0].Error != "" {
		t.Fatalf("coach should be healthy: %+v", results[0])
	}
	if results[1].LifecycleOK {
		t.Fatalf("disabled plugin must not be started: %+v", results[1])
	}
	if results[2].ChecksumValid || results[2].Error == "" {
		t.Fatalf("tampered plugin must fail checksum: %+v", results[2])
	}
}
