// Package domain holds the pure aggregation functions behind every focuslog report.
//
// Nothing here performs I/O or reads ambient state: callers pass snapshots of
// sessions and tracked apps, and the same input always yields the same output.
package domain

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Session is a completed, immutable work session as seen by the engine.
type Session struct {
	ID        string
	TaskName  string
	StartTime time.Time
	EndTime   time.Time
	Tags      []string
	AppID     string
	Notes     string
}

// Duration is EndTime-StartTime, clamped to zero for records whose end precedes their start.
func (s Session) Duration() time.Duration {
	d := s.EndTime.Sub(s.StartTime)
	if d < 0 {
		return 0
	}
	return d
}

func (s Session) durationMillis() int64 {
	return s.Duration().Milliseconds()
}

// roundedMinutes rounds a single session's duration to whole minutes.
func (s Session) roundedMinutes() int {
	return int(math.Round(float64(s.durationMillis()) / 60000))
}

// TrackedApp is an application the user tracks time against. A zero goal means no goal.
type TrackedApp struct {
	ID               string
	Name             string
	DailyGoalMinutes int
}

type WorkTime struct {
	Hours   int
	Minutes int
	Seconds int
}

func (w WorkTime) TotalSeconds() int {
	return w.Hours*3600 + w.Minutes*60 + w.Seconds
}

func (w WorkTime) String() string {
	return fmt.Sprintf("%dh %dm %ds", w.Hours, w.Minutes, w.Seconds)
}

// NamedDuration is one row of a task or tag breakdown.
type NamedDuration struct {
	Name    string
	Minutes int
}

type AppUsage struct {
	App             TrackedApp
	TotalMinutes    int
	ProgressPercent int
}

// GoalReached reports whether the app has a goal and usage met it.
func (u AppUsage) GoalReached() bool {
	return u.App.DailyGoalMinutes > 0 && u.ProgressPercent >= 100
}

const (
	emptyAverage = "0m 0s"
	noPeakHour   = "N/A"
)

// TotalWorkTime sums every session and splits the whole seconds into h/m/s.
func TotalWorkTime(sessions []Session) WorkTime {
	var totalMs int64
	for _, s := range sessions {
		totalMs += s.durationMillis()
	}
	totalSeconds := int(totalMs / 1000)
	return WorkTime{
		Hours:   totalSeconds / 3600,
		Minutes: (totalSeconds % 3600) / 60,
		Seconds: totalSeconds % 60,
	}
}

// AverageSessionLength renders the mean session length as "Xm Ys".
// Long averages stay in minutes, e.g. "125m 0s".
func AverageSessionLength(sessions []Session) string {
	if len(sessions) == 0 {
		return emptyAverage
	}
	var totalMs int64
	for _, s := range sessions {
		totalMs += s.durationMillis()
	}
	avgSeconds := totalMs / int64(len(sessions)) / 1000
	return fmt.Sprintf("%dm %ds", avgSeconds/60, avgSeconds%60)
}

// PeakProductivityHour returns the hour of day, in loc, in which the most sessions started.
// Hours are scanned 0 through 23 so the earliest hour wins a tie.
func PeakProductivityHour(sessions []Session, loc *time.Location) string {
	if len(sessions) == 0 {
		return noPeakHour
	}
	if loc == nil {
		loc = time.UTC
	}
	var counts [24]int
	for _, s := range sessions {
		counts[s.StartTime.In(loc).Hour()]++
	}
	peak := 0
	for hour := 1; hour < len(counts); hour++ {
		if counts[hour] > counts[peak] {
			peak = hour
		}
	}
	return FormatHour(peak)
}

// FormatHour renders 0..23 on a 12-hour clock: 0 is "12 AM", 12 is "12 PM".
func FormatHour(hour int) string {
	suffix := "AM"
	if hour >= 12 {
		suffix = "PM"
	}
	display := hour % 12
	if display == 0 {
		display = 12
	}
	return fmt.Sprintf("%d %s", display, suffix)
}

// DurationByTask groups sessions by exact task name.
// Each session is rounded to whole minutes before it is added to its task.
func DurationByTask(sessions []Session) []NamedDuration {
	acc := newAccumulator()
	for _, s := range sessions {
		acc.add(s.TaskName, s.roundedMinutes())
	}
	return acc.sorted()
}

// DurationByTag credits each session's rounded minutes to every tag it carries.
// Untagged sessions contribute nothing, so tag totals can exceed or fall short of task totals.
func DurationByTag(sessions []Session) []NamedDuration {
	acc := newAccumulator()
	for _, s := range sessions {
		minutes := s.roundedMinutes()
		for _, tag := range s.Tags {
			acc.add(tag, minutes)
		}
	}
	return acc.sorted()
}

// AppUsageReport reports usage and goal progress for every tracked app, including unused ones.
// Unlike the task and tag breakdowns, raw minutes are summed per app and rounded once.
// Sessions pointing at an unknown app are ignored.
func AppUsageReport(sessions []Session, apps []TrackedApp) []AppUsage {
	rawMinutes := make(map[string]float64, len(apps))
	for _, app := range apps {
		rawMinutes[app.ID] = 0
	}
	for _, s := range sessions {
		if s.AppID == "" {
			continue
		}
		if _, tracked := rawMinutes[s.AppID]; !tracked {
			continue
		}
		rawMinutes[s.AppID] += float64(s.durationMillis()) / 60000
	}

	out := make([]AppUsage, 0, len(apps))
	for _, app := range apps {
		total := int(math.Round(rawMinutes[app.ID]))
		out = append(out, AppUsage{
			App:             app,
			TotalMinutes:    total,
			ProgressPercent: progressPercent(total, app.DailyGoalMinutes),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalMinutes > out[j].TotalMinutes
	})
	return out
}

func progressPercent(totalMinutes, goalMinutes int) int {
	if goalMinutes <= 0 {
		return 0
	}
	pct := int(math.Round(float64(totalMinutes) / float64(goalMinutes) * 100))
	if pct > 100 {
		return 100
	}
	if pct < 0 {
		return 0
	}
	return pct
}

// LookupApp finds a tracked app by id. A dangling reference is reported as ok=false.
func LookupApp(apps []TrackedApp, id string) (TrackedApp, bool) {
	if id == "" {
		return TrackedApp{}, false
	}
	for _, app := range apps {
		if app.ID == id {
			return app, true
		}
	}
	return TrackedApp{}, false
}

// accumulator keeps first-encounter order so stable sorting preserves it among ties.
type accumulator struct {
	index map[string]int
	rows  []NamedDuration
}

func newAccumulator() *accumulator {
	return &accumulator{index: map[string]int{}}
}

func (a *accumulator) add(name string, minutes int) {
	if i, ok := a.index[name]; ok {
		a.rows[i].Minutes += minutes
		return
	}
	a.index[name] = len(a.rows)
	a.rows = append(a.rows, NamedDuration{Name: name, Minutes: minutes})
}

func (a *accumulator) sorted() []NamedDuration {
	out := make([]NamedDuration, len(a.rows))
	copy(out, a.rows)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Minutes > out[j].Minutes
	})
	return out
}
