package app

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	analyticsdto "focuslog/internal/modules/analytics/dto"
	appsdto "focuslog/internal/modules/apps/dto"
	insightdto "focuslog/internal/modules/insight/dto"
	sessiondto "focuslog/internal/modules/session/dto"
	apperrors "focuslog/internal/platform/errors"
	"focuslog/internal/platform/watch"
	appsview "focuslog/internal/ui/views/apps"
	reportview "focuslog/internal/ui/views/report"
	sessionsview "focuslog/internal/ui/views/sessions"
	timerview "focuslog/internal/ui/views/timer"
)

type fakeSession struct {
	tags []string
}

func (f *fakeSession) GetActive(context.Context) (sessiondto.ActiveSessionOutput, error) {
	return sessiondto.ActiveSessionOutput{}, apperrors.ErrNoActiveSession
}

func (f *fakeSession) Start(_ context.Context, task string, tags []string, appID, _ string) (sessiondto.StartOutput, error) {
	return sessiondto.StartOutput{SessionID: "s-1", TaskName: task, Tags: tags, AppID: appID, StartedAt: time.Now()}, nil
}

func (f *fakeSession) Stop(context.Context, string) (sessiondto.SessionOutput, error) {
	return sessiondto.SessionOutput{}, apperrors.ErrNoActiveSession
}

func (f *fakeSession) Cancel(context.Context) error { return nil }

func (f *fakeSession) List(context.Context, string, string, time.Time, time.Time) ([]sessiondto.SessionOutput, error) {
	return nil, nil
}

func (f *fakeSession) Delete(context.Context, string) error { return nil }

func (f *fakeSession) AddTag(_ context.Context, tag string) ([]string, error) {
	f.tags = append(f.tags, tag)
	return f.tags, nil
}

func (f *fakeSession) ListTags(context.Context) ([]string, error) { return f.tags, nil }

type fakeApps struct{}

func (fakeApps) List(context.Context) ([]appsdto.AppOutput, error) {
	return []appsdto.AppOutput{{ID: "ide", Name: "IDE", DailyGoalMinutes: 60}}, nil
}

func (fakeApps) Add(_ context.Context, name string, goal int) (appsdto.AppOutput, error) {
	return appsdto.AppOutput{ID: "new", Name: name, DailyGoalMinutes: goal}, nil
}

func (fakeApps) SetGoal(_ context.Context, id string, minutes int) (appsdto.AppOutput, error) {
	return appsdto.AppOutput{ID: id, Name: id, DailyGoalMinutes: minutes}, nil
}

func (fakeApps) Remove(context.Context, string) error { return nil }

type fakeAnalytics struct {
	checked []string
	ranges  []string
}

func (f *fakeAnalytics) Report(_ context.Context, rangeName string) (analyticsdto.ReportOutput, error) {
	f.ranges = append(f.ranges, rangeName)
	return analyticsdto.ReportOutput{Range: rangeName}, nil
}

func (f *fakeAnalytics) Export(_ context.Context, format, path, _ string) (analyticsdto.ExportOutput, error) {
	return analyticsdto.ExportOutput{Format: "md", Path: path}, nil
}

func (f *fakeAnalytics) CheckGoals(_ context.Context, appID string) (analyticsdto.CheckGoalsOutput, error) {
	f.checked = append(f.checked, appID)
	return analyticsdto.CheckGoalsOutput{Reached: []analyticsdto.GoalAlert{{AppID: appID, Name: "IDE", TotalMinutes: 60, DailyGoalMinutes: 60}}}, nil
}

type fakeInsight struct{}

func (fakeInsight) Generate(_ context.Context, provider string, _ bool) (insightdto.GenerateOutput, error) {
	return insightdto.GenerateOutput{Provider: provider, Summary: "steady"}, nil
}

func newTestModel(changes <-chan watch.Event) (Model, *fakeSession, *fakeAnalytics) {
	session := &fakeSession{}
	analytics := &fakeAnalytics{}
	return NewModel(session, fakeApps{}, analytics, fakeInsight{}, changes), session, analytics
}

// drain runs cmd and every command batched inside it, returning the produced messages.
func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, drain(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

func TestPaletteRangeSwitchesToReport(t *testing.T) {
	t.Parallel()
	m, _, analytics := newTestModel(nil)

	next, cmd := m.executePalette("range week")
	m = next.(Model)
	if m.activeTab != tabReport || m.reportView.Range() != "week" {
		t.Fatalf("expected report tab on week, got tab=%d range=%s", m.activeTab, m.reportView.Range())
	}
	msgs := drain(cmd)
	if len(msgs) != 1 {
		t.Fatalf("expected one report reload, got %d", len(msgs))
	}
	if _, ok := msgs[0].(reportview.LoadedMsg); !ok {
		t.Fatalf("expected report LoadedMsg, got %T", msgs[0])
	}
	if len(analytics.ranges) != 1 || analytics.ranges[0] != "week" {
		t.Fatalf("report requested with wrong range: %v", analytics.ranges)
	}

	next, _ = m.executePalette("range year")
	if got := next.(Model).status; !strings.HasPrefix(got, "usage: range") {
		t.Fatalf("unexpected status %q", got)
	}
}

func TestPaletteErrorsAndUnknownCommands(t *testing.T) {
	t.Parallel()
	m, _, _ := newTestModel(nil)

	for input, want := range map[string]string{
		"launch rockets": "unknown command: launch",
		"stop":           "no active session",
		"goal ide":       "usage: goal <app> <minutes>",
		"goal ide lots":  "goal must be a whole number of minutes",
		"delete":         "no session selected",
	} {
		next, _ := m.executePalette(input)
		if got := next.(Model).status; got != want {
			t.Fatalf("%q: want status %q, got %q", input, want, got)
		}
	}
}

func TestPaletteStartAndTag(t *testing.T) {
	t.Parallel()
	m, session, _ := newTestModel(nil)

	next, cmd := m.executePalette("start Write report #deep @ide")
	if next.(Model).activeTab != tabTimer {
		t.Fatalf("start should focus the timer")
	}
	msgs := drain(cmd)
	if len(msgs) != 1 {
		t.Fatalf("expected one start message, got %d", len(msgs))
	}
	started, ok := msgs[0].(timerview.StartedMsg)
	if !ok || started.Err != nil {
		t.Fatalf("expected StartedMsg, got %#v", msgs[0])
	}
	if started.Out.TaskName != "Write report" || len(started.Out.Tags) != 1 || started.Out.Tags[0] != "deep" {
		t.Fatalf("unexpected start: %+v", started.Out)
	}

	_, cmd = m.executePalette("tag writing")
	msgs = drain(cmd)
	if len(msgs) != 1 {
		t.Fatalf("expected tag message, got %d", len(msgs))
	}
	next, _ = m.Update(msgs[0])
	if got := next.(Model).status; got != "tag added: writing" || len(session.tags) != 1 {
		t.Fatalf("unexpected tag status %q tags=%v", got, session.tags)
	}
}

func TestStoppedSessionReloadsAndChecksGoals(t *testing.T) {
	t.Parallel()
	m, _, analytics := newTestModel(nil)

	stopped := timerview.StoppedMsg{Session: sessiondto.SessionOutput{ID: "s-1", TaskName: "Deep work", AppID: "ide", Duration: time.Hour}}
	next, cmd := m.Update(stopped)
	m = next.(Model)
	if m.status != "saved Deep work" {
		t.Fatalf("unexpected status %q", m.status)
	}

	var sawGoals, sawSessions, sawApps bool
	for _, msg := range drain(cmd) {
		switch msg := msg.(type) {
		case goalsCheckedMsg:
			sawGoals = true
			next, _ = m.Update(msg)
			if got := next.(Model).status; !strings.Contains(got, "goal reached: IDE") {
				t.Fatalf("goal status missing: %q", got)
			}
		case sessionsview.LoadedMsg:
			sawSessions = true
		case appsview.LoadedMsg:
			sawApps = true
		}
	}
	if !sawGoals || !sawSessions || !sawApps {
		t.Fatalf("expected goal check and reloads: goals=%t sessions=%t apps=%t", sawGoals, sawSessions, sawApps)
	}
	if len(analytics.checked) != 1 || analytics.checked[0] != "ide" {
		t.Fatalf("goal check for wrong app: %v", analytics.checked)
	}
}

func TestVaultChangeReloadsAndKeepsListening(t *testing.T) {
	t.Parallel()
	changes := make(chan watch.Event, 1)
	m, _, _ := newTestModel(changes)

	changes <- watch.Event{Kind: watch.AppsChanged}
	msg := m.waitForChange()()
	changed, ok := msg.(vaultChangedMsg)
	if !ok || changed.event.Kind != watch.AppsChanged {
		t.Fatalf("expected apps change, got %#v", msg)
	}

	cmds := m.reloadFor(changed.event.Kind)
	if len(cmds) != 2 {
		t.Fatalf("apps change should reload apps and report, got %d commands", len(cmds))
	}
	if _, ok := cmds[0]().(appsview.LoadedMsg); !ok {
		t.Fatalf("first reload should be apps")
	}

	close(changes)
	if msg := m.waitForChange()(); msg != nil {
		t.Fatalf("closed channel should stop listening, got %#v", msg)
	}
}

func TestTabCyclingYieldsWhileEditing(t *testing.T) {
	t.Parallel()
	m, _, _ := newTestModel(nil)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(Model)
	if m.activeTab != tabSessions {
		t.Fatalf("tab should move to sessions, got %d", m.activeTab)
	}
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	m = next.(Model)
	if m.activeTab != tabTimer {
		t.Fatalf("shift+tab should return to timer, got %d", m.activeTab)
	}

	// "n" opens the new session form; global keys then belong to the form.
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	m = next.(Model)
	if !m.timerView.Editing() {
		t.Fatalf("expected timer form to be editing")
	}
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	m = next.(Model)
	if m.activeTab != tabTimer {
		t.Fatalf("tab changed while editing")
	}
	for _, msg := range drain(cmd) {
		if _, quit := msg.(tea.QuitMsg); quit {
			t.Fatalf("q must be typed into the form, not quit")
		}
	}
}
