package service

import (
	"context"
	"time"

	"focuslog/internal/modules/analytics/domain"
	appsin "focuslog/internal/modules/apps/port/in"
	sessionin "focuslog/internal/modules/session/port/in"
	"focuslog/internal/platform/clock"
)

// AnalyticsService loads snapshots from the session and app registries and hands
// them to the pure engine.
type AnalyticsService struct {
	clock    clock.Clock
	loc      *time.Location
	sessions sessionin.Usecase
	apps     appsin.Usecase
}

func NewAnalyticsService(clock clock.Clock, loc *time.Location, sessions sessionin.Usecase, apps appsin.Usecase) *AnalyticsService {
	if loc == nil {
		loc = time.Local
	}
	return &AnalyticsService{clock: clock, loc: loc, sessions: sessions, apps: apps}
}

// Document computes the report for r. App usage always covers the current day.
func (s *AnalyticsService) Document(ctx context.Context, r domain.Range) (domain.ExportDocument, error) {
	sessions, err := s.loadSessions(ctx)
	if err != nil {
		return domain.ExportDocument{}, err
	}
	apps, err := s.loadApps(ctx)
	if err != nil {
		return domain.ExportDocument{}, err
	}
	now := s.clock.Now()
	inRange := r.Filter(sessions, now, s.loc)
	today := domain.RangeToday.Filter(sessions, now, s.loc)
	return domain.ExportDocument{
		Report:      domain.BuildReport(r, inRange, today, apps, s.loc),
		Sessions:    inRange,
		Apps:        apps,
		GeneratedAt: now,
		Location:    s.loc,
	}, nil
}

func (s *AnalyticsService) loadSessions(ctx context.Context) ([]domain.Session, error) {
	snapshot, err := s.sessions.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Session, 0, len(snapshot))
	for _, item := range snapshot {
		out = append(out, domain.Session{
			ID:        item.ID,
			TaskName:  item.TaskName,
			StartTime: item.StartedAt,
			EndTime:   item.EndedAt,
			Tags:      item.Tags,
			AppID:     item.AppID,
			Notes:     item.Notes,
		})
	}
	return out, nil
}

func (s *AnalyticsService) loadApps(ctx context.Context) ([]domain.TrackedApp, error) {
	if s.apps == nil {
		return []domain.TrackedApp{}, nil
	}
	apps, err := s.apps.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.TrackedApp, 0, len(apps))
	for _, app := range apps {
		out = append(out, domain.TrackedApp{ID: app.ID, Name: app.Name, DailyGoalMinutes: app.DailyGoalMinutes})
	}
	return out, nil
}
