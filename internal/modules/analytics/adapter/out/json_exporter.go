package out

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"focuslog/internal/modules/analytics/domain"
	analyticsout "focuslog/internal/modules/analytics/port/out"
)

type jsonNamed struct {
	Name    string `json:"name"`
	Minutes int    `json:"minutes"`
}

type jsonApp struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	DailyGoalMinutes int    `json:"daily_goal_minutes"`
	TotalMinutes     int    `json:"total_minutes"`
	ProgressPercent  int    `json:"progress_percent"`
}

type jsonSession struct {
	ID        string   `json:"id"`
	Task      string   `json:"task"`
	StartedAt string   `json:"started_at"`
	EndedAt   string   `json:"ended_at"`
	Seconds   int64    `json:"duration_seconds"`
	Tags      []string `json:"tags"`
	AppID     string   `json:"app_id,omitempty"`
	Notes     string   `json:"notes,omitempty"`
}

type jsonReport struct {
	Range        string        `json:"range"`
	GeneratedAt  string        `json:"generated_at"`
	SessionCount int           `json:"session_count"`
	TotalSeconds int           `json:"total_seconds"`
	TotalWork    string        `json:"total_work_time"`
	Average      string        `json:"average_session"`
	PeakHour     string        `json:"peak_hour"`
	ByTask       []jsonNamed   `json:"by_task"`
	ByTag        []jsonNamed   `json:"by_tag"`
	Apps         []jsonApp     `json:"apps"`
	Sessions     []jsonSession `json:"sessions"`
}

type JSONExporter struct{}

func NewJSONExporter() analyticsout.Exporter {
	return JSONExporter{}
}

func (JSONExporter) Format() string { return "json" }

func (JSONExporter) Export(_ context.Context, doc domain.ExportDocument, path string) error {
	report := doc.Report
	payload := jsonReport{
		Range:        string(report.Range),
		GeneratedAt:  doc.GeneratedAt.UTC().Format(time.RFC3339),
		SessionCount: report.SessionCount,
		TotalSeconds: report.TotalWorkTime.TotalSeconds(),
		TotalWork:    report.TotalWorkTime.String(),
		Average:      report.AverageLength,
		PeakHour:     report.PeakHour,
		ByTask:       named(report.ByTask),
		ByTag:        named(report.ByTag),
		Apps:         make([]jsonApp, 0, len(report.Apps)),
		Sessions:     make([]jsonSession, 0, len(doc.Sessions)),
	}
	for _, usage := range report.Apps {
		payload.Apps = append(payload.Apps, jsonApp{
			ID:               usage.App.ID,
			Name:             usage.App.Name,
			DailyGoalMinutes: usage.App.DailyGoalMinutes,
			TotalMinutes:     usage.TotalMinutes,
			ProgressPercent:  usage.ProgressPercent,
		})
	}
	for _, s := range doc.Sessions {
		tags := s.Tags
		if tags == nil {
			tags = []string{}
		}
		payload.Sessions = append(payload.Sessions, jsonSession{
			ID:        s.ID,
			Task:      s.TaskName,
			StartedAt: s.StartTime.UTC().Format(time.RFC3339Nano),
			EndedAt:   s.EndTime.UTC().Format(time.RFC3339Nano),
			Seconds:   int64(s.Duration() / time.Second),
			Tags:      tags,
			AppID:     s.AppID,
			Notes:     s.Notes,
		})
	}
	raw, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	if err := os.WriteFile(path, append(raw, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func named(rows []domain.NamedDuration) []jsonNamed {
	out := make([]jsonNamed, 0, len(rows))
	for _, row := range rows {
		out = append(out, jsonNamed{Name: row.Name, Minutes: row.Minutes})
	}
	return out
}
