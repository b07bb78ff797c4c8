package report

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	analyticsdto "focuslog/internal/modules/analytics/dto"
	insightdto "focuslog/internal/modules/insight/dto"
	apperrors "focuslog/internal/platform/errors"
	"focuslog/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type ReportPort interface {
	Report(ctx context.Context, rangeName string) (analyticsdto.ReportOutput, error)
}

type InsightPort interface {
	Generate(ctx context.Context, provider string, refresh bool) (insightdto.GenerateOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type LoadedMsg struct {
	Report analyticsdto.ReportOutput
	Err    error
}

type InsightMsg struct {
	Insight insightdto.GenerateOutput
	Err     error
}

var ranges = []string{"today", "week", "month", "all"}

const barWidth = 24

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	reports  ReportPort
	insights InsightPort

	rangeIdx   int
	report     analyticsdto.ReportOutput
	loaded     bool
	err        error
	insight    insightdto.GenerateOutput
	insightErr error
	thinking   bool

	body    viewport.Model
	spinner spinner.Model
	width   int
	height  int
}

func New(reports ReportPort, insights InsightPort) Model {
	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().Foreground(theme.Text).Padding(0, 1)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	return Model{reports: reports, insights: insights, rangeIdx: len(ranges) - 1, body: vp, spinner: sp}
}

func (m Model) Init() tea.Cmd {
	return m.Reload()
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.body.Width = m.width
		m.body.Height = m.height - 2

	case LoadedMsg:
		m.loaded = true
		m.err = msg.Err
		if msg.Err == nil {
			m.report = msg.Report
		}

	case InsightMsg:
		m.thinking = false
		m.insightErr = msg.Err
		if msg.Err == nil {
			m.insight = msg.Insight
		}

	case spinner.TickMsg:
		if m.thinking {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			m.rangeIdx = (m.rangeIdx + 1) % len(ranges)
			cmds = append(cmds, m.Reload())
		case "i":
			cmds = append(cmds, m.GenerateInsight("", false))
		case "R":
			cmds = append(cmds, m.GenerateInsight("", true))
		}
	}

	m.body.SetContent(m.render())
	var vCmd tea.Cmd
	m.body, vCmd = m.body.Update(msg)
	cmds = append(cmds, vCmd)
	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	header := theme.Title.Render("Report") + "  " + m.renderRanges()
	return lipgloss.JoinVertical(lipgloss.Left, header, "", m.body.View())
}

func (m Model) Range() string { return ranges[m.rangeIdx] }

// SetRange selects a range by name; unknown names are ignored.
func (m *Model) SetRange(name string) bool {
	for i, r := range ranges {
		if r == name {
			m.rangeIdx = i
			return true
		}
	}
	return false
}

func (m Model) Reload() tea.Cmd {
	rangeName := m.Range()
	return func() tea.Msg {
		out, err := m.reports.Report(context.Background(), rangeName)
		return LoadedMsg{Report: out, Err: err}
	}
}

// GenerateInsight asks the insight provider for coaching. The spinner runs until InsightMsg arrives.
func (m *Model) GenerateInsight(provider string, refresh bool) tea.Cmd {
	m.thinking = true
	if m.insights == nil {
		return func() tea.Msg { return InsightMsg{Err: apperrors.ErrInsightUnavailable} }
	}
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		out, err := m.insights.Generate(context.Background(), provider, refresh)
		return InsightMsg{Insight: out, Err: err}
	})
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m Model) renderRanges() string {
	parts := make([]string, len(ranges))
	for i, r := range ranges {
		if i == m.rangeIdx {
			parts[i] = theme.Hot.Render(r)
		} else {
			parts[i] = theme.Muted.Render(r)
		}
	}
	return strings.Join(parts, theme.Muted.Render(" · ")) + theme.Muted.Render("   r: range  i: insight  R: refresh insight")
}

func (m Model) render() string {
	if !m.loaded {
		return theme.Muted.Render("Loading report…")
	}
	if m.err != nil {
		return theme.Bad.Render("report: " + m.err.Error())
	}
	r := m.report
	var sb strings.Builder

	sb.WriteString(stat("Total work time", fmt.Sprintf("%dh %dm %ds", r.TotalHours, r.TotalMinutes, r.TotalSeconds)))
	sb.WriteString(stat("Sessions", fmt.Sprint(r.SessionCount)))
	sb.WriteString(stat("Average session", r.AverageLength))
	sb.WriteString(stat("Peak hour", r.PeakHour))

	sb.WriteString("\n" + theme.Title.Render("Time by task") + "\n")
	sb.WriteString(renderRows(r.ByTask))
	sb.WriteString("\n" + theme.Title.Render("Time by tag") + "\n")
	sb.WriteString(renderRows(r.ByTag))

	sb.WriteString("\n" + theme.Title.Render("App goals today") + "\n")
	if len(r.Apps) == 0 {
		sb.WriteString(theme.Muted.Render("  no tracked apps") + "\n")
	}
	for _, app := range r.Apps {
		goal := theme.Muted.Render("no goal")
		if app.DailyGoalMinutes > 0 {
			goal = fmt.Sprintf("%s %3d%%", theme.GoalBar(app.ProgressPercent, barWidth), app.ProgressPercent)
			if app.GoalReached {
				goal += " " + theme.Good.Render("✓")
			}
		}
		sb.WriteString(fmt.Sprintf("  %-18s %4d/%-4d min  %s\n", truncate(app.Name, 18), app.TotalMinutes, app.DailyGoalMinutes, goal))
	}

	sb.WriteString("\n" + theme.Title.Render("Insights") + "\n")
	sb.WriteString(m.renderInsight())
	return sb.String()
}

func (m Model) renderInsight() string {
	switch {
	case m.thinking:
		return "  " + m.spinner.View() + " asking your coach…\n"
	case errors.Is(m.insightErr, apperrors.ErrNoSessions):
		return theme.Muted.Render("  Log a few sessions first.") + "\n"
	case m.insightErr != nil:
		return theme.Bad.Render("  Insights unavailable: "+m.insightErr.Error()) + "\n"
	case m.insight.Summary == "":
		return theme.Muted.Render("  press i to generate insights") + "\n"
	}
	in := m.insight
	var sb strings.Builder
	wrap := lipgloss.NewStyle().Width(max(20, m.width-4))
	sb.WriteString(wrap.Render("  "+in.Summary) + "\n\n")
	sb.WriteString(theme.Hot.Render("  Peak: ") + in.PeakProductivity + "\n\n")
	for _, s := range in.Suggestions {
		sb.WriteString(wrap.Render("  • "+s) + "\n")
	}
	sb.WriteString("\n" + theme.Good.Render("  "+in.Motivation) + "\n")
	if len(in.Sources) > 0 {
		sb.WriteString("\n" + theme.Muted.Render("  Sources") + "\n")
		for _, src := range in.Sources {
			title := src.Title
			if title == "" {
				title = src.URI
			}
			sb.WriteString(theme.Muted.Render(fmt.Sprintf("  - %s (%s)", title, src.URI)) + "\n")
		}
	}
	via := "  via " + in.Provider
	if in.Cached {
		via += " (cached)"
	}
	sb.WriteString(theme.Muted.Render(via) + "\n")
	return sb.String()
}

func stat(label, value string) string {
	return fmt.Sprintf("  %s %s\n", theme.Muted.Render(fmt.Sprintf("%-16s", label)), value)
}

func renderRows(rows []analyticsdto.NamedMinutes) string {
	if len(rows) == 0 {
		return theme.Muted.Render("  nothing logged") + "\n"
	}
	top := rows[0].Minutes
	var sb strings.Builder
	for _, row := range rows {
		sb.WriteString(fmt.Sprintf("  %-18s %s %4d min\n", truncate(row.Name, 18), theme.Bar(row.Minutes, top, barWidth), row.Minutes))
	}
	return sb.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
