package out

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"focuslog/internal/modules/analytics/domain"
	analyticsout "focuslog/internal/modules/analytics/port/out"
)

const (
	sheetSummary  = "Summary"
	sheetTasks    = "Tasks"
	sheetTags     = "Tags"
	sheetApps     = "Apps"
	sheetSessions = "Sessions"
)

// XLSXExporter writes one workbook with a sheet per report section.
type XLSXExporter struct{}

func NewXLSXExporter() analyticsout.Exporter {
	return XLSXExporter{}
}

func (XLSXExporter) Format() string { return "xlsx" }

func (XLSXExporter) Export(_ context.Context, doc domain.ExportDocument, path string) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DCE0E8"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return fmt.Errorf("rename summary sheet: %w", err)
	}
	for _, name := range []string{sheetTasks, sheetTags, sheetApps, sheetSessions} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	loc := doc.Location
	if loc == nil {
		loc = time.UTC
	}
	report := doc.Report
	summary := [][]any{
		{"Metric", "Value"},
		{"Range", string(report.Range)},
		{"Generated", doc.GeneratedAt.In(loc).Format("2006-01-02 15:04")},
		{"Sessions", report.SessionCount},
		{"Total work time", report.TotalWorkTime.String()},
		{"Total seconds", report.TotalWorkTime.TotalSeconds()},
		{"Average session", report.AverageLength},
		{"Peak hour", report.PeakHour},
	}
	tasks := [][]any{{"Task", "Minutes"}}
	for _, row := range report.ByTask {
		tasks = append(tasks, []any{row.Name, row.Minutes})
	}
	tags := [][]any{{"Tag", "Minutes"}}
	for _, row := range report.ByTag {
		tags = append(tags, []any{row.Name, row.Minutes})
	}
	apps := [][]any{{"App", "Minutes today", "Daily goal", "Progress %"}}
	for _, usage := range report.Apps {
		apps = append(apps, []any{usage.App.Name, usage.TotalMinutes, usage.App.DailyGoalMinutes, usage.ProgressPercent})
	}
	sessions := [][]any{{"Start", "End", "Task", "Minutes", "Tags", "App", "Notes"}}
	for _, s := range doc.Sessions {
		sessions = append(sessions, []any{
			s.StartTime.In(loc).Format("2006-01-02 15:04:05"),
			s.EndTime.In(loc).Format("2006-01-02 15:04:05"),
			s.TaskName,
			s.Duration().Minutes(),
			strings.Join(s.Tags, ", "),
			doc.AppName(s.AppID),
			s.Notes,
		})
	}

	for _, sheet := range []struct {
		name  string
		rows  [][]any
		width float64
	}{
		{sheetSummary, summary, 20},
		{sheetTasks, tasks, 36},
		{sheetTags, tags, 24},
		{sheetApps, apps, 24},
		{sheetSessions, sessions, 22},
	} {
		if err := writeRows(f, sheet.name, sheet.rows, header); err != nil {
			return err
		}
		if err := f.SetColWidth(sheet.name, "A", "C", sheet.width); err != nil {
			return fmt.Errorf("size %s columns: %w", sheet.name, err)
		}
	}
	f.SetActiveSheet(0)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any, headerStyle int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := row
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	last, err := excelize.CoordinatesToCellName(len(rows[0]), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("style %s header: %w", sheet, err)
	}
	return nil
}
