package sessions

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	appsdto "focuslog/internal/modules/apps/dto"
	sessiondto "focuslog/internal/modules/session/dto"
	"focuslog/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type SessionsPort interface {
	List(ctx context.Context, tag, appID string, since, until time.Time) ([]sessiondto.SessionOutput, error)
	Delete(ctx context.Context, sessionID string) error
}

// ─── messages ────────────────────────────────────────────────────────────────

type LoadedMsg struct {
	Sessions []sessiondto.SessionOutput
	Err      error
}

// DeletedMsg is also consumed by the root model so the report refreshes.
type DeletedMsg struct {
	ID  string
	Err error
}

// ─── list item ───────────────────────────────────────────────────────────────

type sessionItem struct {
	session sessiondto.SessionOutput
	appName string
}

func (i sessionItem) Title() string { return i.session.TaskName }

func (i sessionItem) Description() string {
	parts := []string{
		i.session.StartedAt.Local().Format("Mon Jan 2 15:04"),
		formatMinutes(i.session.Duration),
	}
	if len(i.session.Tags) > 0 {
		parts = append(parts, "#"+strings.Join(i.session.Tags, " #"))
	}
	if i.appName != "" {
		parts = append(parts, i.appName)
	}
	return strings.Join(parts, " · ")
}

func (i sessionItem) FilterValue() string {
	return i.session.TaskName + " " + strings.Join(i.session.Tags, " ") + " " + i.appName
}

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port          SessionsPort
	list          list.Model
	preview       viewport.Model
	spinner       spinner.Model
	apps          map[string]string
	sessions      []sessiondto.SessionOutput
	loading       bool
	confirmDelete string
	message       string
	width         int
	height        int
}

func New(port SessionsPort) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Lavender)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Sessions"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().
		Background(theme.Mantle).
		Foreground(theme.Text).
		Padding(1)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	return Model{
		port:    port,
		list:    l,
		preview: vp,
		spinner: sp,
		apps:    map[string]string{},
		loading: true,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.Reload(), m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case LoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.list.Title = "Sessions: " + msg.Err.Error()
			return m, nil
		}
		m.list.Title = "Sessions"
		m.sessions = msg.Sessions
		cmds = append(cmds, m.list.SetItems(m.items()))
		m.preview.SetContent(m.renderDetail())

	case DeletedMsg:
		m.confirmDelete = ""
		if msg.Err != nil {
			m.message = "delete failed: " + msg.Err.Error()
		} else {
			m.message = "session deleted"
			cmds = append(cmds, m.Reload())
		}

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case tea.KeyMsg:
		if !m.Filtering() {
			if m.confirmDelete != "" {
				if msg.String() == "y" {
					return m, m.deleteCmd(m.confirmDelete)
				}
				m.confirmDelete = ""
				m.message = "delete cancelled"
				m.preview.SetContent(m.renderDetail())
				return m, nil
			}
			if msg.String() == "d" {
				if id, ok := m.SelectedID(); ok {
					m.confirmDelete = id
					m.message = "delete this session? y to confirm"
					m.preview.SetContent(m.renderDetail())
				}
				return m, nil
			}
		}
	}

	if !m.loading {
		var lCmd tea.Cmd
		m.list, lCmd = m.list.Update(msg)
		cmds = append(cmds, lCmd)
		m.preview.SetContent(m.renderDetail())
	}

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if m.loading {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Loading sessions…")
	}

	listW := m.width * 5 / 10
	detailW := m.width - listW

	listPane := lipgloss.NewStyle().
		Width(listW).
		Height(m.height).
		Render(m.list.View())

	detailPane := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Surface1).
		Background(theme.Mantle).
		Width(detailW - 2).
		Height(m.height - 2).
		Render(m.preview.View())

	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)
}

func (m Model) SelectedID() (string, bool) {
	if item, ok := m.list.SelectedItem().(sessionItem); ok {
		return item.session.ID, true
	}
	return "", false
}

// Filtering reports whether the list's search filter is currently active.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// SetApps refreshes the id to name table used for display.
func (m *Model) SetApps(apps []appsdto.AppOutput) tea.Cmd {
	m.apps = make(map[string]string, len(apps))
	for _, app := range apps {
		m.apps[app.ID] = app.Name
	}
	if m.loading {
		return nil
	}
	m.preview.SetContent(m.renderDetail())
	return m.list.SetItems(m.items())
}

func (m Model) Reload() tea.Cmd {
	return func() tea.Msg {
		sessions, err := m.port.List(context.Background(), "", "", time.Time{}, time.Time{})
		return LoadedMsg{Sessions: sessions, Err: err}
	}
}

func (m Model) DeleteCmd(id string) tea.Cmd { return m.deleteCmd(id) }

// ─── private ─────────────────────────────────────────────────────────────────

func (m *Model) resize() {
	listW := m.width * 5 / 10
	detailW := m.width - listW
	m.list.SetSize(listW, m.height)
	m.preview.Width = detailW - 4
	m.preview.Height = m.height - 4
}

func (m Model) items() []list.Item {
	items := make([]list.Item, len(m.sessions))
	for i, s := range m.sessions {
		items[i] = sessionItem{session: s, appName: m.appName(s.AppID)}
	}
	return items
}

func (m Model) appName(appID string) string {
	if appID == "" {
		return ""
	}
	if name, ok := m.apps[appID]; ok {
		return name
	}
	return "Unknown App"
}

func (m Model) renderDetail() string {
	item, ok := m.list.SelectedItem().(sessionItem)
	if !ok {
		if len(m.sessions) == 0 {
			return theme.Muted.Render("No sessions yet. Start one from the Timer tab.")
		}
		return theme.Muted.Render("Select a session to see details")
	}
	s := item.session
	var sb strings.Builder
	sb.WriteString(theme.Title.Render(s.TaskName) + "\n\n")
	sb.WriteString(theme.Muted.Render("start:    ") + s.StartedAt.Local().Format("2006-01-02 15:04:05") + "\n")
	sb.WriteString(theme.Muted.Render("end:      ") + s.EndedAt.Local().Format("2006-01-02 15:04:05") + "\n")
	sb.WriteString(theme.Muted.Render("duration: ") + formatMinutes(s.Duration) + "\n")
	if len(s.Tags) > 0 {
		sb.WriteString(theme.Muted.Render("tags:     ") + strings.Join(s.Tags, ", ") + "\n")
	}
	if item.appName != "" {
		sb.WriteString(theme.Muted.Render("app:      ") + item.appName + "\n")
	}
	if s.Notes != "" {
		sb.WriteString("\n" + s.Notes + "\n")
	}
	if s.Path != "" {
		sb.WriteString("\n" + theme.Muted.Render("note: "+s.Path) + "\n")
	}
	sb.WriteString("\n" + theme.Muted.Render("/: filter  d: delete"))
	if m.message != "" {
		sb.WriteString("\n" + theme.Hot.Render(m.message))
	}
	return sb.String()
}

func (m Model) deleteCmd(id string) tea.Cmd {
	return func() tea.Msg {
		return DeletedMsg{ID: id, Err: m.port.Delete(context.Background(), id)}
	}
}

func formatMinutes(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d/time.Second))
	}
	h := int(d / time.Hour)
	mins := int((d % time.Hour) / time.Minute)
	if h > 0 {
		return fmt.Sprintf("%dh %02dm", h, mins)
	}
	return fmt.Sprintf("%dm", mins)
}
