package domain_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"focuslog/internal/modules/insight/domain"
)

func TestParseCompletionExtractsFencedJSON(t *testing.T) {
	t.Parallel()
	text := "Here you go:\n```json\n{\"summary\":\"Steady week.\",\"peak_productivity\":\"Mornings.\",\"suggestions\":[\"Block focus time\",\"Batch email\"],\"motivation\":\"Keep going!\"}\n```\n"
	result, err := domain.ParseCompletion(domain.Completion{
		Text: text,
		Sources: []domain.Source{
			{URI: "https://example.com/focus", Title: "Focus"},
			{URI: "", Title: "empty chunk"},
		},
	})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if result.Insight.Summary != "Steady week." || len(result.Insight.Suggestions) != 2 {
		t.Fatalf("unexpected insight: %+v", result.Insight)
	}
	if len(result.Sources) != 1 || result.Sources[0].Title != "Focus" {
		t.Fatalf("sources without uri must be dropped: %+v", result.Sources)
	}
}

func TestParseCompletionRejectsMalformed(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"no fence":            `{"summary":"a","peak_productivity":"b","suggestions":[],"motivation":"c"}`,
		"invalid json":        "```json\n{not json}\n```",
		"missing summary":     "```json\n{\"peak_productivity\":\"b\",\"suggestions\":[],\"motivation\":\"c\"}\n```",
		"suggestions object":  "```json\n{\"summary\":\"a\",\"peak_productivity\":\"b\",\"suggestions\":{},\"motivation\":\"c\"}\n```",
		"suggestions missing": "```json\n{\"summary\":\"a\",\"peak_productivity\":\"b\",\"motivation\":\"c\"}\n```",
	}
	for name, text := range cases {
		if _, err := domain.ParseCompletion(domain.Completion{Text: text}); !errors.Is(err, domain.ErrMalformedInsight) {
			t.Fatalf("%s: expected ErrMalformedInsight, got %v", name, err)
		}
	}
}

func TestParseCompletionAcceptsEmptySuggestionList(t *testing.T) {
	t.Parallel()
	text := "```json\n{\"summary\":\"a\",\"peak_productivity\":\"b\",\"suggestions\":[],\"motivation\":\"c\"}\n```"
	result, err := domain.ParseCompletion(domain.Completion{Text: text})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if result.Insight.Suggestions == nil || len(result.Insight.Suggestions) != 0 {
		t.Fatalf("expected empty suggestion list, got %#v", result.Insight.Suggestions)
	}
}

func TestFormatSessionsMatchesPromptLineFormat(t *testing.T) {
	t.Parallel()
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	sessions := []domain.PromptSession{
		{TaskName: "Write", Start: start, End: start.Add(10 * time.Minute), Tags: []string{"deep-work", "draft"}, AppID: "ide", Notes: "chapter 2"},
		{TaskName: "Email", Start: start, End: start.Add(90 * time.Second), AppID: "gone"},
		{TaskName: "Break\nline", Start: start, End: start.Add(time.Minute)},
	}
	apps := []domain.PromptApp{{ID: "ide", Name: "IDE", DailyGoalMinutes: 60}}

	lines := strings.Split(domain.FormatSessions(sessions, apps), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected one line per session, got %d: %q", len(lines), lines)
	}
	want := `- Task: "Write", Start: 2026-03-10T09:00:00.000Z, End: 2026-03-10T09:10:00.000Z, Duration: 10 minutes, Tags: [deep-work, draft], App: IDE, Notes: "chapter 2"`
	if lines[0] != want {
		t.Fatalf("unexpected line\nwant %s\ngot  %s", want, lines[0])
	}
	if !strings.Contains(lines[1], "Duration: 2 minutes, Tags: None, App: Unknown App, Notes: None") {
		t.Fatalf("unexpected defaults: %s", lines[1])
	}
	if !strings.Contains(lines[2], `Task: "Break line"`) || !strings.Contains(lines[2], "App: None") {
		t.Fatalf("control characters must be stripped: %s", lines[2])
	}
}

func TestFormatSessionsKeepsQuotesVerbatim(t *testing.T) {
	t.Parallel()
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	got := domain.FormatSessions([]domain.PromptSession{
		{TaskName: `Fix C:\tmp`, Start: start, End: start.Add(time.Minute), Notes: `said "ship it"`},
	}, nil)
	if !strings.Contains(got, `Task: "Fix C:\tmp"`) || !strings.Contains(got, `Notes: "said "ship it""`) {
		t.Fatalf("values must be interpolated as typed: %s", got)
	}
}

func TestFormatAppGoals(t *testing.T) {
	t.Parallel()
	if got := domain.FormatAppGoals(nil); got != "No specific app time goals have been set." {
		t.Fatalf("unexpected empty goals text: %q", got)
	}
	got := domain.FormatAppGoals([]domain.PromptApp{{Name: "Figma", DailyGoalMinutes: 60}})
	if !strings.HasSuffix(got, "- Figma: 60 minutes per day") {
		t.Fatalf("unexpected goals text: %q", got)
	}
}

func TestBuildPromptIsDeterministic(t *testing.T) {
	t.Parallel()
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	req := domain.PromptRequest{
		Sessions: []domain.PromptSession{{TaskName: "Write", Start: start, End: start.Add(time.Hour)}},
		Stats:    domain.PromptStats{TotalWorkTime: "1h 0m 0s", AverageSession: "60m 0s", PeakHour: "9 AM", TopTasks: []string{"Write: 60 min"}},
	}
	first := domain.BuildPrompt(req)
	if first != domain.BuildPrompt(req) {
		t.Fatalf("prompt must be deterministic")
	}
	for _, fragment := range []string{"Here is my work session data:", "No specific app time goals", "Most sessions start at: 9 AM", "Time by task: Write: 60 min", "\"suggestions\""} {
		if !strings.Contains(first, fragment) {
			t.Fatalf("prompt missing %q", fragment)
		}
	}
}

func TestManifestValidate(t *testing.T) {
	t.Parallel()
	valid := domain.Manifest{
		Name:         "coach",
		Version:      "1.0.0",
		Binary:       "/bin/coach",
		SHA256:       strings.Repeat("a", 64),
		Enabled:      true,
		Capabilities: []domain.Capability{domain.CapabilityInsight},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid manifest rejected: %v", err)
	}
	if !valid.HasCapability(domain.CapabilityInsight) {
		t.Fatalf("capability lookup failed")
	}
	bad := valid
	bad.SHA256 = "ABC"
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected checksum format error")
	}
	dup := valid
	dup.Capabilities = []domain.Capability{domain.CapabilityInsight, domain.CapabilityInsight}
	if err := dup.Validate(); err == nil {
		t.Fatalf("expected duplicate capability error")
	}
	unknown := valid
	unknown.Capabilities = []domain.Capability{"fullscreen_tty"}
	if err := unknown.Validate(); err == nil {
		t.Fatalf("expected unknown capability error")
	}
}
