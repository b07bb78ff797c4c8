package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"focuslog/internal/modules/session/domain"
	sessionout "focuslog/internal/modules/session/port/out"
	"focuslog/internal/platform/clock"
	apperrors "focuslog/internal/platform/errors"
	"focuslog/internal/platform/id"
	"focuslog/internal/platform/logging"
)

type SessionService struct {
	clock  clock.Clock
	idGen  id.Generator
	store  sessionout.SessionStore
	index  sessionout.SessionIndex
	logger *slog.Logger
}

// NewSessionService wires the note store and, optionally, the query index.
// A nil index makes listing fall back to scanning notes.
func NewSessionService(clock clock.Clock, idGen id.Generator, store sessionout.SessionStore, index sessionout.SessionIndex, logger *slog.Logger) *SessionService {
	if logger == nil {
		logger = logging.Discard()
	}
	return &SessionService{clock: clock, idGen: idGen, store: store, index: index, logger: logger}
}

// Elapsed is the running time of a session that started at startedAt.
func (s *SessionService) Elapsed(startedAt time.Time) time.Duration {
	return clock.Elapsed(s.clock, startedAt)
}

func (s *SessionService) Begin(taskName string, tags []string, appID, notes string) domain.ActiveSession {
	return domain.ActiveSession{
		SessionID: s.idGen.New(),
		TaskName:  domain.NormalizeTaskName(taskName),
		Tags:      domain.NormalizeTags(tags),
		AppID:     strings.TrimSpace(appID),
		Notes:     strings.TrimSpace(notes),
		StartedAt: s.clock.Now(),
	}
}

func (s *SessionService) Complete(ctx context.Context, active domain.ActiveSession) (domain.Session, error) {
	return s.persist(ctx, active.Complete(s.clock.Now()))
}

func (s *SessionService) Record(ctx context.Context, taskName string, tags []string, appID, notes string, startedAt, endedAt time.Time) (domain.Session, error) {
	if startedAt.IsZero() || endedAt.IsZero() {
		return domain.Session{}, fmt.Errorf("%w: start and end times are required", apperrors.ErrInvalidInput)
	}
	if endedAt.Before(startedAt) {
		return domain.Session{}, fmt.Errorf("%w: session ends before it starts", apperrors.ErrInvalidInput)
	}
	session := domain.Session{
		ID:        s.idGen.New(),
		TaskName:  domain.NormalizeTaskName(taskName),
		StartedAt: startedAt.UTC(),
		EndedAt:   endedAt.UTC(),
		Tags:      domain.NormalizeTags(tags),
		AppID:     strings.TrimSpace(appID),
		Notes:     strings.TrimSpace(notes),
	}
	return s.persist(ctx, session)
}

func (s *SessionService) persist(ctx context.Context, session domain.Session) (domain.Session, error) {
	path, err := s.store.Save(ctx, session)
	if err != nil {
		return domain.Session{}, err
	}
	session.NotePath = path
	if s.index != nil {
		// the note is already written; a stale index is repaired by reindex
		if err := s.index.Upsert(ctx, session); err != nil {
			s.logger.Warn("index session", "session_id", session.ID, "error", err)
		}
	}
	return session, nil
}

func (s *SessionService) List(ctx context.Context, filter domain.Filter) ([]domain.Session, error) {
	if s.index != nil {
		sessions, err := s.index.Search(ctx, filter)
		if err == nil {
			return sessions, nil
		}
		s.logger.Warn("search session index, scanning notes instead", "error", err)
	}
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Session, 0, len(all))
	for _, session := range all {
		if filter.Match(session) {
			out = append(out, session)
		}
	}
	domain.SortNewestFirst(out)
	return out, nil
}

func (s *SessionService) Snapshot(ctx context.Context) ([]domain.Session, error) {
	sessions, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	domain.SortOldestFirst(sessions)
	return sessions, nil
}

func (s *SessionService) Delete(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return fmt.Errorf("%w: session id is required", apperrors.ErrInvalidInput)
	}
	if err := s.store.Delete(ctx, sessionID); err != nil {
		return err
	}
	if s.index != nil {
		if err := s.index.Delete(ctx, sessionID); err != nil {
			s.logger.Warn("remove session from index", "session_id", sessionID, "error", err)
		}
	}
	return nil
}

func (s *SessionService) Clear(ctx context.Context) (int, error) {
	removed, err := s.store.DeleteAll(ctx)
	if err != nil {
		return removed, err
	}
	if s.index != nil {
		if err := s.index.Reset(ctx); err != nil {
			return removed, err
		}
	}
	return removed, nil
}

func (s *SessionService) Reindex(ctx context.Context) (int, error) {
	if s.index == nil {
		return 0, fmt.Errorf("session index is not configured")
	}
	sessions, err := s.store.List(ctx)
	if err != nil {
		return 0, err
	}
	if err := s.index.Reset(ctx); err != nil {
		return 0, err
	}
	for _, session := range sessions {
		if err := s.index.Upsert(ctx, session); err != nil {
			return 0, err
		}
	}
	s.logger.Info("reindexed sessions", "count", len(sessions))
	return len(sessions), nil
}
