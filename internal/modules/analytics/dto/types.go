package dto

import "time"

type ReportInput struct {
	// Range is all, today, week or month. App goals are always evaluated for today.
	Range string
}

type NamedMinutes struct {
	Name    string `json:"name"`
	Minutes int    `json:"minutes"`
}

type AppUsageOutput struct {
	AppID            string `json:"app_id"`
	Name             string `json:"name"`
	DailyGoalMinutes int    `json:"daily_goal_minutes"`
	TotalMinutes     int    `json:"total_minutes"`
	ProgressPercent  int    `json:"progress_percent"`
	GoalReached      bool   `json:"goal_reached"`
}

type ReportOutput struct {
	Range         string           `json:"range"`
	GeneratedAt   time.Time        `json:"generated_at"`
	SessionCount  int              `json:"session_count"`
	TotalHours    int              `json:"total_hours"`
	TotalMinutes  int              `json:"total_minutes"`
	TotalSeconds  int              `json:"total_seconds"`
	AverageLength string           `json:"average_session"`
	PeakHour      string           `json:"peak_hour"`
	ByTask        []NamedMinutes   `json:"by_task"`
	ByTag         []NamedMinutes   `json:"by_tag"`
	Apps          []AppUsageOutput `json:"apps"`
}

type ExportInput struct {
	Format string
	Path   string
	Range  string
}

type ExportOutput struct {
	Format string
	Path   string
}

type CheckGoalsInput struct {
	// AppID limits the check to one app; empty checks every tracked app.
	AppID string
}

type GoalAlert struct {
	AppID            string
	Name             string
	TotalMinutes     int
	DailyGoalMinutes int
}

type CheckGoalsOutput struct {
	Reached  []GoalAlert
	Notified []GoalAlert
}
