package apps

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	analyticsdto "focuslog/internal/modules/analytics/dto"
	appsdto "focuslog/internal/modules/apps/dto"
	"focuslog/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type AppsPort interface {
	List(ctx context.Context) ([]appsdto.AppOutput, error)
	Add(ctx context.Context, name string, goal int) (appsdto.AppOutput, error)
	SetGoal(ctx context.Context, appID string, minutes int) (appsdto.AppOutput, error)
	Remove(ctx context.Context, appID string) error
}

type UsagePort interface {
	Report(ctx context.Context, rangeName string) (analyticsdto.ReportOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

// LoadedMsg is also consumed by the root model to share the app list with other tabs.
type LoadedMsg struct {
	Apps  []appsdto.AppOutput
	Usage []analyticsdto.AppUsageOutput
	Err   error
}

// ChangedMsg reports a completed mutation; the root model reloads every tab on it.
type ChangedMsg struct {
	Action string
	Err    error
}

type mode int

const (
	modeBrowse mode = iota
	modeAdd
	modeGoal
	modeConfirmRemove
)

const barWidth = 20

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	apps  AppsPort
	usage UsagePort

	items   []appsdto.AppOutput
	byID    map[string]analyticsdto.AppUsageOutput
	cursor  int
	mode    mode
	input   textinput.Model
	message string
	loaded  bool
	width   int
	height  int
}

func New(apps AppsPort, usage UsagePort) Model {
	ti := textinput.New()
	ti.CharLimit = 80
	return Model{apps: apps, usage: usage, input: ti, byID: map[string]analyticsdto.AppUsageOutput{}}
}

func (m Model) Init() tea.Cmd {
	return m.Reload()
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case LoadedMsg:
		m.loaded = true
		if msg.Err != nil {
			m.message = "apps: " + msg.Err.Error()
			return m, nil
		}
		m.items = msg.Apps
		m.byID = make(map[string]analyticsdto.AppUsageOutput, len(msg.Usage))
		for _, u := range msg.Usage {
			m.byID[u.AppID] = u
		}
		if m.cursor >= len(m.items) {
			m.cursor = max(0, len(m.items)-1)
		}

	case ChangedMsg:
		if msg.Err != nil {
			m.message = msg.Action + " failed: " + msg.Err.Error()
		} else {
			m.message = msg.Action
		}

	case tea.KeyMsg:
		if m.mode == modeBrowse {
			return m.updateBrowse(msg)
		}
		return m.updateInput(msg)
	}
	return m, nil
}

func (m Model) updateBrowse(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case "a":
		m.mode = modeAdd
		m.input.Placeholder = "app name [goal minutes]"
		m.input.SetValue("")
		return m, m.input.Focus()
	case "g":
		if app, ok := m.selected(); ok {
			m.mode = modeGoal
			m.input.Placeholder = "daily goal in minutes (0 clears)"
			m.input.SetValue(strconv.Itoa(app.DailyGoalMinutes))
			return m, m.input.Focus()
		}
	case "x":
		if _, ok := m.selected(); ok {
			m.mode = modeConfirmRemove
		}
	}
	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.mode == modeConfirmRemove {
		m.mode = modeBrowse
		if msg.String() != "y" {
			m.message = "remove cancelled"
			return m, nil
		}
		app, _ := m.selected()
		return m, m.removeCmd(app.ID, app.Name)
	}
	switch msg.String() {
	case "esc":
		m.mode = modeBrowse
		m.input.Blur()
		return m, nil
	case "enter":
		value := strings.TrimSpace(m.input.Value())
		current := m.mode
		m.mode = modeBrowse
		m.input.Blur()
		if current == modeAdd {
			name, goal, err := ParseAddArgs(strings.Fields(value))
			if err != nil {
				m.message = err.Error()
				return m, nil
			}
			return m, m.AddCmd(name, goal)
		}
		minutes, err := strconv.Atoi(value)
		if err != nil {
			m.message = "goal must be a whole number of minutes"
			return m, nil
		}
		app, _ := m.selected()
		return m, m.SetGoalCmd(app.ID, minutes)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Tracked apps") + "\n\n")
	if !m.loaded {
		sb.WriteString(theme.Muted.Render("Loading…"))
	} else if len(m.items) == 0 {
		sb.WriteString(theme.Muted.Render("No apps yet. Press a to add one.") + "\n")
	}
	for i, app := range m.items {
		cursor := "  "
		if i == m.cursor {
			cursor = theme.Hot.Render("› ")
		}
		usage := m.byID[app.ID]
		line := fmt.Sprintf("%-20s %4d min today", truncate(app.Name, 20), usage.TotalMinutes)
		if app.DailyGoalMinutes > 0 {
			line += fmt.Sprintf("  goal %4d  %s %3d%%", app.DailyGoalMinutes, theme.GoalBar(usage.ProgressPercent, barWidth), usage.ProgressPercent)
			if usage.GoalReached {
				line += " " + theme.Good.Render("goal reached")
			}
		} else {
			line += "  " + theme.Muted.Render("no goal")
		}
		sb.WriteString(cursor + line + "\n")
	}
	sb.WriteString("\n")
	switch m.mode {
	case modeAdd, modeGoal:
		sb.WriteString(m.input.View() + "\n" + theme.Muted.Render("enter: save  esc: cancel"))
	case modeConfirmRemove:
		app, _ := m.selected()
		sb.WriteString(theme.Hot.Render(fmt.Sprintf("Remove %s? Sessions keep their reference. y to confirm", app.Name)))
	default:
		sb.WriteString(theme.Muted.Render("a: add  g: set goal  x: remove  ↑/↓: select"))
	}
	if m.message != "" {
		sb.WriteString("\n\n" + theme.Hot.Render(m.message))
	}
	return lipgloss.NewStyle().Width(m.width).Height(m.height).Padding(0, 1).Render(sb.String())
}

// Editing reports whether keystrokes go to the text input.
func (m Model) Editing() bool {
	return m.mode != modeBrowse
}

func (m Model) Reload() tea.Cmd {
	return func() tea.Msg {
		apps, err := m.apps.List(context.Background())
		if err != nil {
			return LoadedMsg{Err: err}
		}
		var usage []analyticsdto.AppUsageOutput
		if m.usage != nil {
			report, err := m.usage.Report(context.Background(), "today")
			if err != nil {
				return LoadedMsg{Err: err}
			}
			usage = report.Apps
		}
		return LoadedMsg{Apps: apps, Usage: usage}
	}
}

func (m Model) AddCmd(name string, goal int) tea.Cmd {
	return func() tea.Msg {
		app, err := m.apps.Add(context.Background(), name, goal)
		return ChangedMsg{Action: "added " + app.Name, Err: err}
	}
}

func (m Model) SetGoalCmd(appID string, minutes int) tea.Cmd {
	return func() tea.Msg {
		app, err := m.apps.SetGoal(context.Background(), appID, minutes)
		return ChangedMsg{Action: fmt.Sprintf("goal for %s set to %d min", app.Name, app.DailyGoalMinutes), Err: err}
	}
}

// ParseAddArgs reads "<name words...> [goal]"; a trailing integer is the goal, otherwise the default applies.
func ParseAddArgs(args []string) (string, int, error) {
	if len(args) == 0 {
		return "", 0, fmt.Errorf("app name is required")
	}
	goal := appsdto.DefaultGoal
	if n, err := strconv.Atoi(args[len(args)-1]); err == nil && len(args) > 1 {
		goal = n
		args = args[:len(args)-1]
	}
	return strings.Join(args, " "), goal, nil
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m Model) selected() (appsdto.AppOutput, bool) {
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return appsdto.AppOutput{}, false
	}
	return m.items[m.cursor], true
}

func (m Model) removeCmd(appID, name string) tea.Cmd {
	return func() tea.Msg {
		return ChangedMsg{Action: "removed " + name, Err: m.apps.Remove(context.Background(), appID)}
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
