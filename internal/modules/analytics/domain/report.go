package domain

import (
	"fmt"
	"strings"
	"time"
)

// Report bundles every statistic shown on the report screen.
type Report struct {
	Range         Range
	SessionCount  int
	TotalWorkTime WorkTime
	AverageLength string
	PeakHour      string
	ByTask        []NamedDuration
	ByTag         []NamedDuration
	Apps          []AppUsage
}

// BuildReport computes statistics over sessions. appSessions feeds the app usage
// section separately because goals are daily while the rest may span any range.
func BuildReport(r Range, sessions, appSessions []Session, apps []TrackedApp, loc *time.Location) Report {
	return Report{
		Range:         r,
		SessionCount:  len(sessions),
		TotalWorkTime: TotalWorkTime(sessions),
		AverageLength: AverageSessionLength(sessions),
		PeakHour:      PeakProductivityHour(sessions, loc),
		ByTask:        DurationByTask(sessions),
		ByTag:         DurationByTag(sessions),
		Apps:          AppUsageReport(appSessions, apps),
	}
}

type Range string

const (
	RangeAll   Range = "all"
	RangeToday Range = "today"
	RangeWeek  Range = "week"
	RangeMonth Range = "month"
)

func ParseRange(raw string) (Range, error) {
	switch r := Range(strings.ToLower(strings.TrimSpace(raw))); r {
	case "":
		return RangeAll, nil
	case RangeAll, RangeToday, RangeWeek, RangeMonth:
		return r, nil
	default:
		return "", fmt.Errorf("unknown range %q: want all, today, week or month", raw)
	}
}

// Bounds returns the half-open window [since, until) containing now, computed on
// calendar boundaries in loc. Weeks start on Monday. RangeAll reports ok=false.
func (r Range) Bounds(now time.Time, loc *time.Location) (time.Time, time.Time, bool) {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	switch r {
	case RangeToday:
		return day, day.AddDate(0, 0, 1), true
	case RangeWeek:
		offset := (int(day.Weekday()) + 6) % 7
		start := day.AddDate(0, 0, -offset)
		return start, start.AddDate(0, 0, 7), true
	case RangeMonth:
		start := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
		return start, start.AddDate(0, 1, 0), true
	default:
		return time.Time{}, time.Time{}, false
	}
}

// Filter keeps the sessions that started inside the range.
func (r Range) Filter(sessions []Session, now time.Time, loc *time.Location) []Session {
	since, until, ok := r.Bounds(now, loc)
	if !ok {
		return sessions
	}
	out := make([]Session, 0, len(sessions))
	for _, s := range sessions {
		if s.StartTime.Before(since) || !s.StartTime.Before(until) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// ExportDocument is everything an exporter may render: the computed report plus the
// raw sessions it was computed from.
type ExportDocument struct {
	Report      Report
	Sessions    []Session
	Apps        []TrackedApp
	GeneratedAt time.Time
	Location    *time.Location
}

// AppName resolves a session's app for display; dangling references render as "Unknown App".
func (d ExportDocument) AppName(appID string) string {
	if appID == "" {
		return ""
	}
	if app, ok := LookupApp(d.Apps, appID); ok {
		return app.Name
	}
	return "Unknown App"
}
