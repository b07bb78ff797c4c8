package timer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	appsdto "focuslog/internal/modules/apps/dto"
	sessiondto "focuslog/internal/modules/session/dto"
	apperrors "focuslog/internal/platform/errors"
	"focuslog/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type TimerPort interface {
	GetActive(ctx context.Context) (sessiondto.ActiveSessionOutput, error)
	Start(ctx context.Context, task string, tags []string, appID, notes string) (sessiondto.StartOutput, error)
	Stop(ctx context.Context, sessionID string) (sessiondto.SessionOutput, error)
	Cancel(ctx context.Context) error
	ListTags(ctx context.Context) ([]string, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type ActiveLoadedMsg struct {
	Active sessiondto.ActiveSessionOutput
	Err    error
}

type StartedMsg struct {
	Out sessiondto.StartOutput
	Err error
}

// StoppedMsg is also consumed by the root model to refresh reports and check goals.
type StoppedMsg struct {
	Session sessiondto.SessionOutput
	Err     error
}

type CancelledMsg struct{ Err error }

type TagsLoadedMsg struct {
	Tags []string
	Err  error
}

type tickMsg struct {
	at time.Time
	id int
}

// ─── model ───────────────────────────────────────────────────────────────────

const (
	fieldTask = iota
	fieldTags
	fieldNotes
	fieldApp
	fieldCount
)

type Model struct {
	port TimerPort

	inputs   [fieldApp]textinput.Model
	focus    int
	editing  bool
	apps     []appsdto.AppOutput
	appIndex int

	active    sessiondto.ActiveSessionOutput
	hasActive bool
	now       time.Time
	tickID    int
	last      sessiondto.SessionOutput
	message   string
	width     int
	height    int
}

func New(port TimerPort) Model {
	task := textinput.New()
	task.Placeholder = "What are you working on?"
	task.CharLimit = 200

	tags := textinput.New()
	tags.Placeholder = "tags, comma separated"
	tags.ShowSuggestions = true

	notes := textinput.New()
	notes.Placeholder = "notes (optional)"
	notes.CharLimit = 500

	return Model{
		port:     port,
		inputs:   [fieldApp]textinput.Model{task, tags, notes},
		appIndex: -1,
		now:      time.Now(),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.LoadActive(), m.loadTagsCmd())
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		for i := range m.inputs {
			m.inputs[i].Width = max(20, m.width/2)
		}
		return m, nil

	case ActiveLoadedMsg:
		if msg.Err != nil {
			m.hasActive = false
			m.active = sessiondto.ActiveSessionOutput{}
			if !errors.Is(msg.Err, apperrors.ErrNoActiveSession) {
				m.message = "active session: " + msg.Err.Error()
			}
			return m, nil
		}
		wasActive := m.hasActive
		m.hasActive = true
		m.active = msg.Active
		m.now = time.Now()
		if !wasActive {
			m.tickID++
			return m, tick(m.tickID)
		}
		return m, nil

	case StartedMsg:
		if msg.Err != nil {
			m.message = "start failed: " + msg.Err.Error()
			return m, nil
		}
		m.resetForm()
		m.message = ""
		return m, m.LoadActive()

	case StoppedMsg:
		if msg.Err != nil {
			m.message = "stop failed: " + msg.Err.Error()
			return m, nil
		}
		m.hasActive = false
		m.active = sessiondto.ActiveSessionOutput{}
		m.last = msg.Session
		m.message = fmt.Sprintf("saved %q (%s)", msg.Session.TaskName, formatClock(msg.Session.Duration))
		return m, nil

	case CancelledMsg:
		if msg.Err != nil {
			m.message = "cancel failed: " + msg.Err.Error()
			return m, nil
		}
		m.hasActive = false
		m.active = sessiondto.ActiveSessionOutput{}
		m.message = "session discarded"
		return m, nil

	case TagsLoadedMsg:
		if msg.Err == nil {
			m.inputs[fieldTags].SetSuggestions(msg.Tags)
		}
		return m, nil

	case tickMsg:
		if !m.hasActive || msg.id != m.tickID {
			return m, nil
		}
		m.now = msg.at
		return m, tick(m.tickID)

	case tea.KeyMsg:
		if m.hasActive {
			return m.updateActiveKeys(msg)
		}
		return m.updateFormKeys(msg)
	}
	return m, nil
}

func (m Model) updateActiveKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "x":
		return m, m.stopCmd()
	case "c":
		return m, m.cancelCmd()
	}
	return m, nil
}

func (m Model) updateFormKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	if !m.editing {
		switch msg.String() {
		case "n", "enter", "i":
			m.editing = true
			m.focus = fieldTask
			return m, m.inputs[fieldTask].Focus()
		}
		return m, nil
	}
	switch msg.String() {
	case "esc":
		m.blurAll()
		m.editing = false
		return m, nil
	case "enter":
		return m, m.startCmd()
	case "down":
		return m, m.moveFocus(1)
	case "up":
		return m, m.moveFocus(-1)
	case "left", "right":
		if m.focus == fieldApp {
			m.cycleApp(msg.String() == "right")
			return m, nil
		}
	}
	if m.focus == fieldApp {
		return m, nil
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m Model) View() string {
	var sb strings.Builder
	if m.hasActive {
		elapsed := m.now.Sub(m.active.StartedAt)
		if elapsed < 0 {
			elapsed = 0
		}
		sb.WriteString(theme.Title.Render(m.active.TaskName) + "\n\n")
		sb.WriteString(theme.Clock.Render(formatClock(elapsed)) + "\n\n")
		sb.WriteString(theme.Muted.Render("started: ") + m.active.StartedAt.Local().Format("15:04:05") + "\n")
		if len(m.active.Tags) > 0 {
			sb.WriteString(theme.Muted.Render("tags:    ") + "#" + strings.Join(m.active.Tags, " #") + "\n")
		}
		if m.active.AppName != "" {
			sb.WriteString(theme.Muted.Render("app:     ") + m.active.AppName + "\n")
		}
		if m.active.Notes != "" {
			sb.WriteString(theme.Muted.Render("notes:   ") + m.active.Notes + "\n")
		}
		sb.WriteString("\n" + theme.Muted.Render("enter/x: stop and save  c: discard"))
	} else {
		sb.WriteString(theme.Title.Render("New session") + "\n\n")
		labels := [fieldApp]string{"task ", "tags ", "notes"}
		for i := range m.inputs {
			sb.WriteString(m.label(i, labels[i]) + " " + m.inputs[i].View() + "\n")
		}
		sb.WriteString(m.label(fieldApp, "app  ") + " " + m.appLabel() + "\n\n")
		if m.editing {
			sb.WriteString(theme.Muted.Render("enter: start  ↑/↓: field  ←/→: app  esc: done"))
		} else {
			sb.WriteString(theme.Muted.Render("n: new session"))
		}
		if m.last.ID != "" {
			sb.WriteString("\n\n" + theme.Muted.Render("last: ") + fmt.Sprintf("%s  %s", m.last.TaskName, formatClock(m.last.Duration)))
		}
	}
	if m.message != "" {
		sb.WriteString("\n\n" + theme.Hot.Render(m.message))
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, theme.Pane.Render(sb.String()))
}

// Editing reports whether a text field has focus, in which case global keys must yield.
func (m Model) Editing() bool {
	return !m.hasActive && m.editing
}

func (m Model) Active() (sessiondto.ActiveSessionOutput, bool) {
	return m.active, m.hasActive
}

func (m *Model) SetApps(apps []appsdto.AppOutput) {
	selected := ""
	if m.appIndex >= 0 && m.appIndex < len(m.apps) {
		selected = m.apps[m.appIndex].ID
	}
	m.apps = apps
	m.appIndex = -1
	for i, app := range apps {
		if app.ID == selected {
			m.appIndex = i
		}
	}
}

func (m Model) LoadActive() tea.Cmd {
	return func() tea.Msg {
		active, err := m.port.GetActive(context.Background())
		return ActiveLoadedMsg{Active: active, Err: err}
	}
}

func (m Model) ReloadTags() tea.Cmd {
	return m.loadTagsCmd()
}

// StartCmd starts a session outside the form, e.g. from the command palette.
func (m Model) StartCmd(task string, tags []string, appRef string) tea.Cmd {
	return func() tea.Msg {
		out, err := m.port.Start(context.Background(), task, tags, appRef, "")
		return StartedMsg{Out: out, Err: err}
	}
}

func (m Model) StopCmd() tea.Cmd   { return m.stopCmd() }
func (m Model) CancelCmd() tea.Cmd { return m.cancelCmd() }

// ─── private ─────────────────────────────────────────────────────────────────

func (m Model) label(field int, text string) string {
	if m.editing && m.focus == field {
		return theme.Hot.Render("› " + text)
	}
	return theme.Muted.Render("  " + text)
}

func (m Model) appLabel() string {
	if m.appIndex < 0 || m.appIndex >= len(m.apps) {
		if len(m.apps) == 0 {
			return theme.Muted.Render("none (add apps in the Apps tab)")
		}
		return theme.Muted.Render("‹ none ›")
	}
	return "‹ " + m.apps[m.appIndex].Name + " ›"
}

func (m *Model) moveFocus(delta int) tea.Cmd {
	m.blurAll()
	m.focus = (m.focus + delta + fieldCount) % fieldCount
	if m.focus == fieldApp {
		return nil
	}
	return m.inputs[m.focus].Focus()
}

func (m *Model) cycleApp(forward bool) {
	n := len(m.apps) + 1 // slot 0 is "none"
	pos := m.appIndex + 1
	if forward {
		pos = (pos + 1) % n
	} else {
		pos = (pos - 1 + n) % n
	}
	m.appIndex = pos - 1
}

func (m *Model) blurAll() {
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
}

func (m *Model) resetForm() {
	for i := range m.inputs {
		m.inputs[i].SetValue("")
		m.inputs[i].Blur()
	}
	m.editing = false
	m.focus = fieldTask
}

func (m Model) startCmd() tea.Cmd {
	task := m.inputs[fieldTask].Value()
	tags := splitTags(m.inputs[fieldTags].Value())
	notes := m.inputs[fieldNotes].Value()
	appID := ""
	if m.appIndex >= 0 && m.appIndex < len(m.apps) {
		appID = m.apps[m.appIndex].ID
	}
	return func() tea.Msg {
		out, err := m.port.Start(context.Background(), task, tags, appID, notes)
		return StartedMsg{Out: out, Err: err}
	}
}

func (m Model) stopCmd() tea.Cmd {
	id := m.active.SessionID
	return func() tea.Msg {
		out, err := m.port.Stop(context.Background(), id)
		return StoppedMsg{Session: out, Err: err}
	}
}

func (m Model) cancelCmd() tea.Cmd {
	return func() tea.Msg {
		return CancelledMsg{Err: m.port.Cancel(context.Background())}
	}
}

func (m Model) loadTagsCmd() tea.Cmd {
	return func() tea.Msg {
		tags, err := m.port.ListTags(context.Background())
		return TagsLoadedMsg{Tags: tags, Err: err}
	}
}

func tick(id int) tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg{at: t, id: id} })
}

func splitTags(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

// formatClock renders d as HH:MM:SS.
func formatClock(d time.Duration) string {
	total := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}
