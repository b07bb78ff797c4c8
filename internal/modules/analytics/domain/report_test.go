package domain_test

import (
	"testing"
	"time"

	"focuslog/internal/modules/analytics/domain"
)

func TestParseRange(t *testing.T) {
	t.Parallel()
	for raw, want := range map[string]domain.Range{"": domain.RangeAll, "ALL": domain.RangeAll, " today ": domain.RangeToday, "week": domain.RangeWeek, "month": domain.RangeMonth} {
		got, err := domain.ParseRange(raw)
		if err != nil || got != want {
			t.Fatalf("parse %q: want %q, got %q err=%v", raw, want, got, err)
		}
	}
	if _, err := domain.ParseRange("year"); err == nil {
		t.Fatalf("unknown range must fail")
	}
}

func TestRangeBoundsFollowLocalCalendar(t *testing.T) {
	t.Parallel()
	loc := time.FixedZone("UTC-5", -5*60*60)
	// Wednesday 2026-03-11 02:00 UTC is still Tuesday evening in UTC-5.
	now := time.Date(2026, 3, 11, 2, 0, 0, 0, time.UTC)

	since, until, ok := domain.RangeToday.Bounds(now, loc)
	if !ok || !since.Equal(time.Date(2026, 3, 10, 0, 0, 0, 0, loc)) || !until.Equal(time.Date(2026, 3, 11, 0, 0, 0, 0, loc)) {
		t.Fatalf("today bounds wrong: %v - %v", since, until)
	}
	since, _, _ = domain.RangeWeek.Bounds(now, loc)
	if !since.Equal(time.Date(2026, 3, 9, 0, 0, 0, 0, loc)) {
		t.Fatalf("week should start Monday 2026-03-09, got %v", since)
	}
	since, until, _ = domain.RangeMonth.Bounds(now, loc)
	if since.Month() != time.March || until.Month() != time.April {
		t.Fatalf("month bounds wrong: %v - %v", since, until)
	}
	if _, _, ok := domain.RangeAll.Bounds(now, loc); ok {
		t.Fatalf("all has no bounds")
	}
}

func TestRangeFilterAndReport(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)
	yesterday := session("Old", now.Add(-24*time.Hour), 30*time.Minute, "old")
	today := onApp(session("New", time.Date(2026, 3, 10, 8, 15, 0, 0, time.UTC), 45*time.Minute, "new"), "ide")
	all := []domain.Session{yesterday, today}

	todays := domain.RangeToday.Filter(all, now, time.UTC)
	if len(todays) != 1 || todays[0].TaskName != "New" {
		t.Fatalf("expected only today's session, got %+v", todays)
	}
	if got := domain.RangeAll.Filter(all, now, time.UTC); len(got) != 2 {
		t.Fatalf("all must keep every session, got %d", len(got))
	}

	apps := []domain.TrackedApp{{ID: "ide", Name: "IDE", DailyGoalMinutes: 90}}
	report := domain.BuildReport(domain.RangeAll, all, todays, apps, time.UTC)
	if report.SessionCount != 2 {
		t.Fatalf("expected 2 sessions, got %d", report.SessionCount)
	}
	if report.TotalWorkTime != (domain.WorkTime{Hours: 1, Minutes: 15}) {
		t.Fatalf("expected 1h15m, got %+v", report.TotalWorkTime)
	}
	if report.PeakHour != "8 AM" {
		t.Fatalf("expected 8 AM peak (earliest tied hour), got %q", report.PeakHour)
	}
	if report.AverageLength != "37m 30s" {
		t.Fatalf("expected 37m 30s average, got %q", report.AverageLength)
	}
	if len(report.Apps) != 1 || report.Apps[0].ProgressPercent != 50 {
		t.Fatalf("expected 50%% progress, got %+v", report.Apps)
	}
}
