package domain_test

import (
	"reflect"
	"testing"
	"time"

	"focuslog/internal/modules/session/domain"
)

func TestNormalizeTaskNameAndTags(t *testing.T) {
	t.Parallel()
	if got := domain.NormalizeTaskName("   "); got != "Untitled Task" {
		t.Fatalf("expected placeholder, got %q", got)
	}
	if got := domain.NormalizeTaskName("  Write report "); got != "Write report" {
		t.Fatalf("expected trimmed name, got %q", got)
	}
	got := domain.NormalizeTags([]string{" deep-work", "", "admin", "deep-work ", "  "})
	if !reflect.DeepEqual(got, []string{"deep-work", "admin"}) {
		t.Fatalf("unexpected tags: %v", got)
	}
	if got := domain.SplitTags("a, b", "c,,a"); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("unexpected split: %v", got)
	}
}

func TestCompleteClampsEndBeforeStart(t *testing.T) {
	t.Parallel()
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	active := domain.ActiveSession{SessionID: "s1", TaskName: "x", StartedAt: start, Tags: []string{"a"}}
	s := active.Complete(start.Add(-time.Minute))
	if !s.EndedAt.Equal(start) || s.Duration() != 0 {
		t.Fatalf("expected zero-length session, got %+v", s)
	}
	s.Tags[0] = "mutated"
	if active.Tags[0] != "a" {
		t.Fatalf("completing must copy tags")
	}
}

func TestFilterMatch(t *testing.T) {
	t.Parallel()
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	s := domain.Session{ID: "s1", StartedAt: start, Tags: []string{"focus"}, AppID: "ide"}
	cases := []struct {
		filter domain.Filter
		want   bool
	}{
		{domain.Filter{}, true},
		{domain.Filter{Tag: "focus"}, true},
		{domain.Filter{Tag: "other"}, false},
		{domain.Filter{AppID: "ide"}, true},
		{domain.Filter{AppID: "mail"}, false},
		{domain.Filter{Since: start}, true},
		{domain.Filter{Until: start}, false},
		{domain.Filter{Since: start.Add(-time.Hour), Until: start.Add(time.Hour)}, true},
	}
	for i, tc := range cases {
		if got := tc.filter.Match(s); got != tc.want {
			t.Fatalf("case %d: want %v, got %v", i, tc.want, got)
		}
	}
}

func TestRegisterTagsKeepsRegistrySorted(t *testing.T) {
	t.Parallel()
	registry, changed := domain.RegisterTags([]string{"beta"}, "gamma", " alpha ", "beta")
	if !changed || !reflect.DeepEqual(registry, []string{"alpha", "beta", "gamma"}) {
		t.Fatalf("unexpected registry %v changed=%v", registry, changed)
	}
	if _, changed := domain.RegisterTags(registry, "alpha", ""); changed {
		t.Fatalf("known or blank tags must not change the registry")
	}
	if got := domain.SuggestTags(registry, "G"); !reflect.DeepEqual(got, []string{"gamma"}) {
		t.Fatalf("unexpected suggestions %v", got)
	}
}
