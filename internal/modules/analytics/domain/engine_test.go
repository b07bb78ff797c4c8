package domain_test

import (
	"reflect"
	"testing"
	"time"

	"focuslog/internal/modules/analytics/domain"
)

var base = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func session(task string, start time.Time, d time.Duration, tags ...string) domain.Session {
	return domain.Session{
		ID:        task + start.Format("150405"),
		TaskName:  task,
		StartTime: start,
		EndTime:   start.Add(d),
		Tags:      tags,
	}
}

func onApp(s domain.Session, appID string) domain.Session {
	s.AppID = appID
	return s
}

func TestEmptyInputsYieldDefaults(t *testing.T) {
	t.Parallel()
	if got := domain.TotalWorkTime(nil); got != (domain.WorkTime{}) {
		t.Fatalf("expected zero work time, got %+v", got)
	}
	if got := domain.AverageSessionLength(nil); got != "0m 0s" {
		t.Fatalf("expected 0m 0s, got %q", got)
	}
	if got := domain.PeakProductivityHour(nil, time.UTC); got != "N/A" {
		t.Fatalf("expected N/A, got %q", got)
	}
	if got := domain.DurationByTask(nil); len(got) != 0 {
		t.Fatalf("expected no tasks, got %+v", got)
	}
	if got := domain.DurationByTag(nil); len(got) != 0 {
		t.Fatalf("expected no tags, got %+v", got)
	}
	if got := domain.AppUsageReport(nil, nil); len(got) != 0 {
		t.Fatalf("expected no app rows, got %+v", got)
	}
}

func TestThreeSessionBreakdown(t *testing.T) {
	t.Parallel()
	sessions := []domain.Session{
		session("Write", base, 10*time.Minute, "deep-work"),
		session("Write", base.Add(time.Hour), 5*time.Minute),
		session("Email", base.Add(2*time.Hour), 2*time.Minute, "admin"),
	}

	tasks := domain.DurationByTask(sessions)
	wantTasks := []domain.NamedDuration{{Name: "Write", Minutes: 15}, {Name: "Email", Minutes: 2}}
	if !reflect.DeepEqual(tasks, wantTasks) {
		t.Fatalf("tasks: want %+v, got %+v", wantTasks, tasks)
	}

	tags := domain.DurationByTag(sessions)
	wantTags := []domain.NamedDuration{{Name: "deep-work", Minutes: 10}, {Name: "admin", Minutes: 2}}
	if !reflect.DeepEqual(tags, wantTags) {
		t.Fatalf("tags: want %+v, got %+v", wantTags, tags)
	}

	if got := domain.TotalWorkTime(sessions); got != (domain.WorkTime{Hours: 0, Minutes: 17, Seconds: 0}) {
		t.Fatalf("total: got %+v", got)
	}
}

func TestTotalWorkTimeFloorsToWholeSeconds(t *testing.T) {
	t.Parallel()
	sessions := []domain.Session{
		session("a", base, time.Hour+2*time.Minute+5*time.Second+999*time.Millisecond),
		session("b", base, 400*time.Millisecond),
	}
	got := domain.TotalWorkTime(sessions)
	if got != (domain.WorkTime{Hours: 1, Minutes: 2, Seconds: 6}) {
		t.Fatalf("expected 1h 2m 6s, got %+v", got)
	}
	if got.TotalSeconds() != 3726 {
		t.Fatalf("expected 3726 seconds, got %d", got.TotalSeconds())
	}
}

func TestAverageSessionLength(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name     string
		sessions []domain.Session
		want     string
	}{
		{
			name:     "even split",
			sessions: []domain.Session{session("a", base, 90*time.Second), session("b", base, 30*time.Second)},
			want:     "1m 0s",
		},
		{
			name: "sub-second remainder floors",
			sessions: []domain.Session{
				session("a", base, 1000*time.Millisecond),
				session("b", base, 1000*time.Millisecond),
				session("c", base, 1999*time.Millisecond),
			},
			want: "0m 1s",
		},
		{
			name:     "no hour component",
			sessions: []domain.Session{session("a", base, 125*time.Minute)},
			want:     "125m 0s",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := domain.AverageSessionLength(tc.sessions); got != tc.want {
				t.Fatalf("want %q, got %q", tc.want, got)
			}
		})
	}
}

func TestPeakProductivityHourPrefersEarliestHourOnTie(t *testing.T) {
	t.Parallel()
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	sessions := []domain.Session{
		session("late", day.Add(14*time.Hour), time.Minute),
		session("early", day.Add(9*time.Hour), time.Minute),
	}
	if got := domain.PeakProductivityHour(sessions, time.UTC); got != "9 AM" {
		t.Fatalf("expected 9 AM, got %q", got)
	}

	sessions = append(sessions, session("late again", day.Add(14*time.Hour+30*time.Minute), time.Minute))
	if got := domain.PeakProductivityHour(sessions, time.UTC); got != "2 PM" {
		t.Fatalf("expected 2 PM, got %q", got)
	}
}

func TestPeakProductivityHourUsesLocation(t *testing.T) {
	t.Parallel()
	start := time.Date(2026, 3, 10, 23, 30, 0, 0, time.UTC)
	plusTwo := time.FixedZone("UTC+2", 2*60*60)
	sessions := []domain.Session{session("night", start, time.Minute)}
	if got := domain.PeakProductivityHour(sessions, plusTwo); got != "1 AM" {
		t.Fatalf("expected 1 AM in UTC+2, got %q", got)
	}
	if got := domain.PeakProductivityHour(sessions, nil); got != "11 PM" {
		t.Fatalf("expected nil location to fall back to UTC, got %q", got)
	}
}

func TestFormatHour(t *testing.T) {
	t.Parallel()
	want := map[int]string{0: "12 AM", 1: "1 AM", 11: "11 AM", 12: "12 PM", 13: "1 PM", 23: "11 PM"}
	for hour, label := range want {
		if got := domain.FormatHour(hour); got != label {
			t.Fatalf("hour %d: want %q, got %q", hour, label, got)
		}
	}
}

func TestTaskAndTagTiesKeepFirstEncounterOrder(t *testing.T) {
	t.Parallel()
	sessions := []domain.Session{
		session("Beta", base, 5*time.Minute, "y"),
		session("Alpha", base, 5*time.Minute, "x"),
		session("Gamma", base, 7*time.Minute),
	}
	tasks := domain.DurationByTask(sessions)
	want := []domain.NamedDuration{{Name: "Gamma", Minutes: 7}, {Name: "Beta", Minutes: 5}, {Name: "Alpha", Minutes: 5}}
	if !reflect.DeepEqual(tasks, want) {
		t.Fatalf("want %+v, got %+v", want, tasks)
	}
	tags := domain.DurationByTag(sessions)
	wantTags := []domain.NamedDuration{{Name: "y", Minutes: 5}, {Name: "x", Minutes: 5}}
	if !reflect.DeepEqual(tags, wantTags) {
		t.Fatalf("want %+v, got %+v", wantTags, tags)
	}
}

func TestMultiTagSessionCreditsEveryTag(t *testing.T) {
	t.Parallel()
	sessions := []domain.Session{session("Review", base, 10*time.Minute, "a", "b")}
	got := domain.DurationByTag(sessions)
	want := []domain.NamedDuration{{Name: "a", Minutes: 10}, {Name: "b", Minutes: 10}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("want %+v, got %+v", want, got)
	}
}

func TestZeroLengthSessionStillListsTask(t *testing.T) {
	t.Parallel()
	sessions := []domain.Session{session("Blink", base, 0, "quick")}
	tasks := domain.DurationByTask(sessions)
	if len(tasks) != 1 || tasks[0] != (domain.NamedDuration{Name: "Blink", Minutes: 0}) {
		t.Fatalf("expected zero-minute task row, got %+v", tasks)
	}
	if got := domain.AverageSessionLength(sessions); got != "0m 0s" {
		t.Fatalf("expected 0m 0s, got %q", got)
	}
}

func TestNegativeDurationIsClampedToZero(t *testing.T) {
	t.Parallel()
	broken := session("Broken", base, -10*time.Minute, "x")
	ok := session("Fine", base, 3*time.Minute, "x")
	sessions := []domain.Session{broken, ok}

	if got := domain.TotalWorkTime(sessions); got != (domain.WorkTime{Minutes: 3}) {
		t.Fatalf("expected only the valid session to count, got %+v", got)
	}
	tags := domain.DurationByTag(sessions)
	if len(tags) != 1 || tags[0].Minutes != 3 {
		t.Fatalf("expected tag x with 3 minutes, got %+v", tags)
	}
}

func TestPerSessionRoundingDiffersFromAppRounding(t *testing.T) {
	t.Parallel()
	apps := []domain.TrackedApp{{ID: "ide", Name: "IDE", DailyGoalMinutes: 0}}
	sessions := []domain.Session{
		onApp(session("Code", base, 90*time.Second), "ide"),
		onApp(session("Code", base.Add(time.Hour), 90*time.Second), "ide"),
	}
	tasks := domain.DurationByTask(sessions)
	if tasks[0].Minutes != 4 {
		t.Fatalf("expected per-session rounding to give 4 minutes, got %d", tasks[0].Minutes)
	}
	usage := domain.AppUsageReport(sessions, apps)
	if usage[0].TotalMinutes != 3 {
		t.Fatalf("expected summed-then-rounded app usage of 3 minutes, got %d", usage[0].TotalMinutes)
	}
}

func TestAppUsageProgress(t *testing.T) {
	t.Parallel()
	apps := []domain.TrackedApp{
		{ID: "figma", Name: "Figma", DailyGoalMinutes: 60},
		{ID: "mail", Name: "Mail", DailyGoalMinutes: 0},
		{ID: "notes", Name: "Notes", DailyGoalMinutes: 7},
		{ID: "idle", Name: "Idle", DailyGoalMinutes: 30},
	}
	sessions := []domain.Session{
		onApp(session("Design", base, 90*time.Minute), "figma"),
		onApp(session("Inbox", base, 20*time.Minute), "mail"),
		onApp(session("Jot", base, time.Minute), "notes"),
		onApp(session("Ghost", base, 500*time.Minute), "removed-app"),
	}
	usage := domain.AppUsageReport(sessions, apps)
	if len(usage) != len(apps) {
		t.Fatalf("expected one row per tracked app, got %d", len(usage))
	}
	byID := map[string]domain.AppUsage{}
	for _, row := range usage {
		byID[row.App.ID] = row
		if row.ProgressPercent < 0 || row.ProgressPercent > 100 {
			t.Fatalf("progress out of range for %s: %d", row.App.ID, row.ProgressPercent)
		}
	}
	if got := byID["figma"]; got.TotalMinutes != 90 || got.ProgressPercent != 100 || !got.GoalReached() {
		t.Fatalf("figma: expected 90 min capped at 100%%, got %+v", got)
	}
	if got := byID["mail"]; got.TotalMinutes != 20 || got.ProgressPercent != 0 || got.GoalReached() {
		t.Fatalf("mail: goal 0 must give 0%%, got %+v", got)
	}
	if got := byID["notes"]; got.ProgressPercent != 14 {
		t.Fatalf("notes: expected 1/7 rounded to 14%%, got %+v", got)
	}
	if got := byID["idle"]; got.TotalMinutes != 0 || got.ProgressPercent != 0 {
		t.Fatalf("idle: expected zero usage row, got %+v", got)
	}
	if usage[0].App.ID != "figma" || usage[1].App.ID != "mail" {
		t.Fatalf("expected descending order by minutes, got %+v", usage)
	}
	if usage[2].App.ID != "notes" || usage[3].App.ID != "idle" {
		t.Fatalf("expected notes then idle, got %+v", usage)
	}
}

func TestSingleAppOverGoal(t *testing.T) {
	t.Parallel()
	apps := []domain.TrackedApp{{ID: "figma", Name: "Figma", DailyGoalMinutes: 60}}
	sessions := []domain.Session{onApp(session("Design", base, 90*time.Minute), "figma")}
	got := domain.AppUsageReport(sessions, apps)
	want := []domain.AppUsage{{App: apps[0], TotalMinutes: 90, ProgressPercent: 100}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("want %+v, got %+v", want, got)
	}
}

func TestAppUsageTiesKeepInputOrder(t *testing.T) {
	t.Parallel()
	apps := []domain.TrackedApp{{ID: "b", Name: "B"}, {ID: "a", Name: "A"}}
	got := domain.AppUsageReport(nil, apps)
	if got[0].App.ID != "b" || got[1].App.ID != "a" {
		t.Fatalf("expected input order for equal usage, got %+v", got)
	}
}

func TestLookupApp(t *testing.T) {
	t.Parallel()
	apps := []domain.TrackedApp{{ID: "figma", Name: "Figma"}}
	if app, ok := domain.LookupApp(apps, "figma"); !ok || app.Name != "Figma" {
		t.Fatalf("expected figma, got %+v ok=%v", app, ok)
	}
	if _, ok := domain.LookupApp(apps, "gone"); ok {
		t.Fatalf("dangling id must not resolve")
	}
	if _, ok := domain.LookupApp(apps, ""); ok {
		t.Fatalf("empty id must not resolve")
	}
}

func TestAggregationIsIdempotentAndDoesNotMutateInput(t *testing.T) {
	t.Parallel()
	sessions := []domain.Session{
		session("Write", base, 10*time.Minute, "deep-work", "writing"),
		session("Email", base.Add(3*time.Hour), 2*time.Minute, "admin"),
	}
	apps := []domain.TrackedApp{{ID: "x", Name: "X", DailyGoalMinutes: 15}}
	snapshot := make([]domain.Session, len(sessions))
	copy(snapshot, sessions)

	first := domain.BuildReport(domain.RangeAll, sessions, sessions, apps, time.UTC)
	second := domain.BuildReport(domain.RangeAll, sessions, sessions, apps, time.UTC)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical reports, got %+v and %+v", first, second)
	}
	if !reflect.DeepEqual(snapshot, sessions) {
		t.Fatalf("input sessions were mutated")
	}
}

func TestDuplicateTagsAreCreditedPerOccurrence(t *testing.T) {
	t.Parallel()
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	sessions := []domain.Session{onApp(session("Write", start, 10*time.Minute, "a", "a"), "ide")}

	tags := domain.DurationByTag(sessions)
	if len(tags) != 1 || tags[0] != (domain.NamedDuration{Name: "a", Minutes: 20}) {
		t.Fatalf("duplicate tag should be credited twice, got %+v", tags)
	}
	usage := domain.AppUsageReport(sessions, []domain.TrackedApp{{ID: "ide", Name: "IDE", DailyGoalMinutes: 20}})
	if len(usage) != 1 || usage[0].TotalMinutes != 10 || usage[0].ProgressPercent != 50 {
		t.Fatalf("tags must not affect app usage, got %+v", usage)
	}
}
