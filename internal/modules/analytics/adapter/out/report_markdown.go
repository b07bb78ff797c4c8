package out

import (
	"fmt"
	"strings"
	"time"

	"focuslog/internal/modules/analytics/domain"
)

const barWidth = 20

// RenderMarkdown renders the report as GFM with tables, shared by the md and html exporters.
func RenderMarkdown(doc domain.ExportDocument) string {
	report := doc.Report
	loc := doc.Location
	if loc == nil {
		loc = time.UTC
	}
	b := strings.Builder{}
	fmt.Fprintf(&b, "## Productivity report (%s)\n\n", report.Range)
	fmt.Fprintf(&b, "_Generated %s_\n\n", doc.GeneratedAt.In(loc).Format("2006-01-02 15:04 MST"))

	b.WriteString("| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Sessions | %d |\n", report.SessionCount)
	fmt.Fprintf(&b, "| Total work time | %s |\n", report.TotalWorkTime)
	fmt.Fprintf(&b, "| Average session | %s |\n", report.AverageLength)
	fmt.Fprintf(&b, "| Peak hour | %s |\n\n", report.PeakHour)

	writeBreakdown(&b, "Time by task", "Task", report.ByTask)
	writeBreakdown(&b, "Time by tag", "Tag", report.ByTag)

	b.WriteString("### App usage today\n\n")
	if len(report.Apps) == 0 {
		b.WriteString("No tracked apps.\n\n")
	} else {
		b.WriteString("| App | Minutes | Goal | Progress |\n|---|---:|---:|---|\n")
		for _, usage := range report.Apps {
			goal := "none"
			if usage.App.DailyGoalMinutes > 0 {
				goal = fmt.Sprintf("%d", usage.App.DailyGoalMinutes)
			}
			fmt.Fprintf(&b, "| %s | %d | %s | %s %d%% |\n", cell(usage.App.Name), usage.TotalMinutes, goal, bar(usage.ProgressPercent), usage.ProgressPercent)
		}
		b.WriteString("\n")
	}

	b.WriteString("### Sessions\n\n")
	if len(doc.Sessions) == 0 {
		b.WriteString("No sessions in range.\n")
		return b.String()
	}
	b.WriteString("| Start | Task | Duration | Tags | App |\n|---|---|---:|---|---|\n")
	for i := len(doc.Sessions) - 1; i >= 0; i-- {
		s := doc.Sessions[i]
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			s.StartTime.In(loc).Format("2006-01-02 15:04"),
			cell(s.TaskName),
			s.Duration().Round(time.Second),
			cell(strings.Join(s.Tags, ", ")),
			cell(doc.AppName(s.AppID)),
		)
	}
	return b.String()
}

func writeBreakdown(b *strings.Builder, title, label string, rows []domain.NamedDuration) {
	fmt.Fprintf(b, "### %s\n\n", title)
	if len(rows) == 0 {
		b.WriteString("Nothing recorded.\n\n")
		return
	}
	fmt.Fprintf(b, "| %s | Minutes |\n|---|---:|\n", label)
	for _, row := range rows {
		fmt.Fprintf(b, "| %s | %d |\n", cell(row.Name), row.Minutes)
	}
	b.WriteString("\n")
}

func bar(percent int) string {
	filled := percent * barWidth / 100
	return strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
}

func cell(value string) string {
	value = strings.ReplaceAll(value, "|", `\|`)
	return strings.ReplaceAll(value, "\n", " ")
}
