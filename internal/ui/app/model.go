package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	analyticsdto "focuslog/internal/modules/analytics/dto"
	appsdto "focuslog/internal/modules/apps/dto"
	insightdto "focuslog/internal/modules/insight/dto"
	sessiondto "focuslog/internal/modules/session/dto"
	"focuslog/internal/platform/watch"
	"focuslog/internal/ui/components"
	"focuslog/internal/ui/theme"
	appsview "focuslog/internal/ui/views/apps"
	reportview "focuslog/internal/ui/views/report"
	sessionsview "focuslog/internal/ui/views/sessions"
	timerview "focuslog/internal/ui/views/timer"
)

// ─── ports ───────────────────────────────────────────────────────────────────
// Each port is the minimal interface that this orchestration layer requires.
// Sub-view ports are defined in their own packages and narrowed further.

type sessionPort interface {
	GetActive(ctx context.Context) (sessiondto.ActiveSessionOutput, error)
	Start(ctx context.Context, task string, tags []string, appID, notes string) (sessiondto.StartOutput, error)
	Stop(ctx context.Context, sessionID string) (sessiondto.SessionOutput, error)
	Cancel(ctx context.Context) error
	List(ctx context.Context, tag, appID string, since, until time.Time) ([]sessiondto.SessionOutput, error)
	Delete(ctx context.Context, sessionID string) error
	AddTag(ctx context.Context, tag string) ([]string, error)
	ListTags(ctx context.Context) ([]string, error)
}

type appsPort interface {
	List(ctx context.Context) ([]appsdto.AppOutput, error)
	Add(ctx context.Context, name string, goal int) (appsdto.AppOutput, error)
	SetGoal(ctx context.Context, appID string, minutes int) (appsdto.AppOutput, error)
	Remove(ctx context.Context, appID string) error
}

type analyticsPort interface {
	Report(ctx context.Context, rangeName string) (analyticsdto.ReportOutput, error)
	Export(ctx context.Context, format, path, rangeName string) (analyticsdto.ExportOutput, error)
	CheckGoals(ctx context.Context, appID string) (analyticsdto.CheckGoalsOutput, error)
}

type insightPort interface {
	Generate(ctx context.Context, provider string, refresh bool) (insightdto.GenerateOutput, error)
}

// ─── tab index ───────────────────────────────────────────────────────────────

type tabID int

const (
	tabTimer tabID = iota
	tabSessions
	tabReport
	tabApps
	tabCount
)

var tabLabels = [tabCount]string{
	"Timer", "Sessions", "Report", "Apps",
}

// ─── async messages ───────────────────────────────────────────────────────────

type vaultChangedMsg struct{ event watch.Event }

type goalsCheckedMsg struct {
	out analyticsdto.CheckGoalsOutput
	err error
}

type exportedMsg struct {
	out analyticsdto.ExportOutput
	err error
}

type tagAddedMsg struct {
	tag string
	err error
}

// ─── key bindings ─────────────────────────────────────────────────────────────

type keyMap struct {
	Tab     key.Binding
	Help    key.Binding
	Palette key.Binding
	Quit    key.Binding
	Start   key.Binding
	Stop    key.Binding
	Range   key.Binding
	Insight key.Binding
	Delete  key.Binding
	AddApp  key.Binding
	Goal    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
		Start:   key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new session")),
		Stop:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "stop session")),
		Range:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "report range")),
		Insight: key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "insights")),
		Delete:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete session")),
		AddApp:  key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add app")),
		Goal:    key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "app goal")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Help, k.Palette, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.Start, k.Stop},
		{k.Range, k.Insight, k.Delete},
		{k.AddApp, k.Goal},
		{k.Help, k.Palette, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model. It owns tab routing, the help overlay,
// the command palette and the vault watcher subscription. Business logic is
// delegated to ports and rendering to sub-views.
type Model struct {
	session   sessionPort
	apps      appsPort
	analytics analyticsPort
	changes   <-chan watch.Event

	timerView    timerview.Model
	sessionsView sessionsview.Model
	reportView   reportview.Model
	appsView     appsview.Model

	activeTab tabID
	keys      keyMap
	help      help.Model
	showHelp  bool
	palette   components.Palette
	status    string
	width     int
	height    int
}

// NewModel wires the tabs. insight and changes may be nil.
func NewModel(session sessionPort, apps appsPort, analytics analyticsPort, insight insightPort, changes <-chan watch.Event) Model {
	return Model{
		session:      session,
		apps:         apps,
		analytics:    analytics,
		changes:      changes,
		timerView:    timerview.New(session),
		sessionsView: sessionsview.New(session),
		reportView:   reportview.New(analytics, insight),
		appsView:     appsview.New(apps, analytics),
		activeTab:    tabTimer,
		keys:         defaultKeys(),
		help:         help.New(),
		palette:      components.NewPalette(),
		status:       "ready",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.timerView.Init(),
		m.sessionsView.Init(),
		m.reportView.Init(),
		m.appsView.Init(),
		m.waitForChange(),
	)
}

// ─── update ───────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	// The palette intercepts all input while open.
	if m.palette.Visible() {
		if _, isKey := msg.(tea.KeyMsg); isKey {
			var cmd tea.Cmd
			m.palette, cmd = m.palette.Update(msg)
			return m, cmd
		}
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		m.propagateSize()
		return m, nil

	case vaultChangedMsg:
		cmds = append(cmds, m.reloadFor(msg.event.Kind)...)
		cmds = append(cmds, m.waitForChange())
		return m, tea.Batch(cmds...)

	// Sub-view results that other tabs depend on are routed explicitly,
	// regardless of which tab is active.
	case timerview.ActiveLoadedMsg, timerview.TagsLoadedMsg, timerview.CancelledMsg:
		var cmd tea.Cmd
		m.timerView, cmd = m.timerView.Update(msg)
		return m, cmd

	case timerview.StartedMsg:
		if msg.Err != nil {
			m.status = "start failed: " + msg.Err.Error()
		} else {
			m.status = "started: " + msg.Out.TaskName
			cmds = append(cmds, m.timerView.ReloadTags())
		}
		var cmd tea.Cmd
		m.timerView, cmd = m.timerView.Update(msg)
		return m, tea.Batch(append(cmds, cmd)...)

	case timerview.StoppedMsg:
		var cmd tea.Cmd
		m.timerView, cmd = m.timerView.Update(msg)
		cmds = append(cmds, cmd)
		if msg.Err != nil {
			m.status = "stop failed: " + msg.Err.Error()
			return m, tea.Batch(cmds...)
		}
		m.status = fmt.Sprintf("saved %s", msg.Session.TaskName)
		cmds = append(cmds, m.reloadAll()...)
		if msg.Session.AppID != "" {
			cmds = append(cmds, m.checkGoalsCmd(msg.Session.AppID))
		}
		return m, tea.Batch(cmds...)

	case sessionsview.LoadedMsg:
		var cmd tea.Cmd
		m.sessionsView, cmd = m.sessionsView.Update(msg)
		return m, cmd

	case sessionsview.DeletedMsg:
		var cmd tea.Cmd
		m.sessionsView, cmd = m.sessionsView.Update(msg)
		cmds = append(cmds, cmd, m.reportView.Reload(), m.appsView.Reload())
		return m, tea.Batch(cmds...)

	case reportview.LoadedMsg, reportview.InsightMsg:
		var cmd tea.Cmd
		m.reportView, cmd = m.reportView.Update(msg)
		return m, cmd

	case appsview.LoadedMsg:
		var cmd tea.Cmd
		m.appsView, cmd = m.appsView.Update(msg)
		cmds = append(cmds, cmd)
		if msg.Err == nil {
			m.timerView.SetApps(msg.Apps)
			cmds = append(cmds, m.sessionsView.SetApps(msg.Apps))
		}
		return m, tea.Batch(cmds...)

	case appsview.ChangedMsg:
		var cmd tea.Cmd
		m.appsView, cmd = m.appsView.Update(msg)
		if msg.Err != nil {
			m.status = msg.Action + " failed: " + msg.Err.Error()
		} else {
			m.status = msg.Action
		}
		cmds = append(cmds, cmd, m.appsView.Reload(), m.reportView.Reload(), m.sessionsView.Reload())
		return m, tea.Batch(cmds...)

	case goalsCheckedMsg:
		if msg.err != nil {
			m.status = "goal check: " + msg.err.Error()
		} else if len(msg.out.Reached) > 0 {
			names := make([]string, 0, len(msg.out.Reached))
			for _, alert := range msg.out.Reached {
				names = append(names, alert.Name)
			}
			m.status = theme.Good.Render("goal reached: " + strings.Join(names, ", "))
		}
		return m, nil

	case exportedMsg:
		if msg.err != nil {
			m.status = "export failed: " + msg.err.Error()
		} else {
			m.status = fmt.Sprintf("exported %s report to %s", msg.out.Format, msg.out.Path)
		}
		return m, nil

	case tagAddedMsg:
		if msg.err != nil {
			m.status = "tag: " + msg.err.Error()
		} else {
			m.status = "tag added: " + msg.tag
		}
		return m, m.timerView.ReloadTags()

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "ready"
		return m, nil

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		// Yield to sub-views while they capture text.
		if m.subViewCapturing() {
			break
		}

		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case "shift+tab":
			m.activeTab = (m.activeTab + tabCount - 1) % tabCount
			return m, nil
		case "?":
			m.showHelp = !m.showHelp
			return m, nil
		case ":":
			return m, m.palette.Open()
		}
	}

	// Everything else goes to the active tab's sub-view.
	var tabCmd tea.Cmd
	switch m.activeTab {
	case tabTimer:
		m.timerView, tabCmd = m.timerView.Update(msg)
	case tabSessions:
		m.sessionsView, tabCmd = m.sessionsView.Update(msg)
	case tabReport:
		m.reportView, tabCmd = m.reportView.Update(msg)
	case tabApps:
		m.appsView, tabCmd = m.appsView.Update(msg)
	}
	cmds = append(cmds, tabCmd)

	return m, tea.Batch(cmds...)
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	tabBar := m.renderTabBar()
	statusBar := m.renderStatusBar()
	contentH := m.height - lipgloss.Height(tabBar) - lipgloss.Height(statusBar)
	if contentH < 1 {
		contentH = 1
	}

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).
			Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH,
			lipgloss.Center, lipgloss.Center, m.palette.View())
	default:
		content = m.activeView()
	}

	return lipgloss.JoinVertical(lipgloss.Left, tabBar, content, statusBar)
}

func (m Model) activeView() string {
	switch m.activeTab {
	case tabTimer:
		return m.timerView.View()
	case tabSessions:
		return m.sessionsView.View()
	case tabReport:
		return m.reportView.View()
	case tabApps:
		return m.appsView.View()
	}
	return ""
}

func (m Model) renderTabBar() string {
	parts := make([]string, tabCount)
	for i := tabID(0); i < tabCount; i++ {
		label := tabLabels[i]
		if i == m.activeTab {
			parts[i] = theme.Hot.Render(" " + label + " ")
		} else {
			parts[i] = theme.Muted.Render(" " + label + " ")
		}
	}
	sep := theme.Muted.Render(" │ ")
	bar := "focuslog  " + strings.Join(parts, sep)
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := m.status
	if active, ok := m.timerView.Active(); ok {
		left = theme.Hot.Render("● "+active.TaskName) + "  " + left
	}
	right := theme.Muted.Render("?:help  tab:switch  :::palette  q:quit")
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

// ─── palette execution ────────────────────────────────────────────────────────

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	if strings.TrimSpace(input) == "" {
		return m, nil
	}
	parts := strings.Fields(input)
	args := parts[1:]

	switch parts[0] {
	case "start":
		task, tags, appRef := components.ParseStart(args)
		m.activeTab = tabTimer
		return m, m.timerView.StartCmd(task, tags, appRef)

	case "stop":
		if _, ok := m.timerView.Active(); !ok {
			m.status = "no active session"
			return m, nil
		}
		return m, m.timerView.StopCmd()

	case "cancel":
		return m, m.timerView.CancelCmd()

	case "tag":
		if len(args) == 0 {
			m.status = "usage: tag <name>"
			return m, nil
		}
		return m, m.addTagCmd(strings.Join(args, " "))

	case "app":
		name, goal, err := appsview.ParseAddArgs(args)
		if err != nil {
			m.status = "usage: app <name> [goal-minutes]"
			return m, nil
		}
		m.activeTab = tabApps
		return m, m.appsView.AddCmd(name, goal)

	case "goal":
		if len(args) < 2 {
			m.status = "usage: goal <app> <minutes>"
			return m, nil
		}
		minutes, err := strconv.Atoi(args[len(args)-1])
		if err != nil {
			m.status = "goal must be a whole number of minutes"
			return m, nil
		}
		return m, m.appsView.SetGoalCmd(strings.Join(args[:len(args)-1], " "), minutes)

	case "range":
		if len(args) != 1 || !m.reportView.SetRange(args[0]) {
			m.status = "usage: range <all|today|week|month>"
			return m, nil
		}
		m.activeTab = tabReport
		return m, m.reportView.Reload()

	case "export":
		if len(args) != 1 {
			m.status = "usage: export <path.md|.html|.xlsx|.json>"
			return m, nil
		}
		return m, m.exportCmd(args[0], m.reportView.Range())

	case "insight":
		provider := ""
		if len(args) > 0 {
			provider = args[0]
		}
		m.activeTab = tabReport
		return m, m.reportView.GenerateInsight(provider, false)

	case "delete":
		id, ok := m.sessionsView.SelectedID()
		if !ok {
			m.status = "no session selected"
			return m, nil
		}
		return m, m.sessionsView.DeleteCmd(id)

	default:
		m.status = "unknown command: " + parts[0]
	}
	return m, nil
}

// ─── helpers ─────────────────────────────────────────────────────────────────

// subViewCapturing reports whether the active tab is taking free text,
// in which case global key bindings must yield.
func (m Model) subViewCapturing() bool {
	switch m.activeTab {
	case tabTimer:
		return m.timerView.Editing()
	case tabSessions:
		return m.sessionsView.Filtering()
	case tabApps:
		return m.appsView.Editing()
	}
	return false
}

func (m *Model) propagateSize() {
	sz := tea.WindowSizeMsg{Width: m.width, Height: m.height - 4}
	m.timerView, _ = m.timerView.Update(sz)
	m.sessionsView, _ = m.sessionsView.Update(sz)
	m.reportView, _ = m.reportView.Update(sz)
	m.appsView, _ = m.appsView.Update(sz)
}

func (m Model) reloadAll() []tea.Cmd {
	return []tea.Cmd{m.sessionsView.Reload(), m.reportView.Reload(), m.appsView.Reload()}
}

func (m Model) reloadFor(kind watch.Kind) []tea.Cmd {
	switch kind {
	case watch.ActiveChanged:
		return []tea.Cmd{m.timerView.LoadActive()}
	case watch.AppsChanged:
		return []tea.Cmd{m.appsView.Reload(), m.reportView.Reload()}
	case watch.TagsChanged:
		return []tea.Cmd{m.timerView.ReloadTags()}
	default:
		return m.reloadAll()
	}
}

// ─── async commands ───────────────────────────────────────────────────────────

func (m Model) waitForChange() tea.Cmd {
	if m.changes == nil {
		return nil
	}
	changes := m.changes
	return func() tea.Msg {
		event, ok := <-changes
		if !ok {
			return nil
		}
		return vaultChangedMsg{event: event}
	}
}

func (m Model) checkGoalsCmd(appID string) tea.Cmd {
	return func() tea.Msg {
		out, err := m.analytics.CheckGoals(context.Background(), appID)
		return goalsCheckedMsg{out: out, err: err}
	}
}

func (m Model) exportCmd(path, rangeName string) tea.Cmd {
	return func() tea.Msg {
		out, err := m.analytics.Export(context.Background(), "", path, rangeName)
		return exportedMsg{out: out, err: err}
	}
}

func (m Model) addTagCmd(tag string) tea.Cmd {
	return func() tea.Msg {
		_, err := m.session.AddTag(context.Background(), tag)
		return tagAddedMsg{tag: tag, err: err}
	}
}
