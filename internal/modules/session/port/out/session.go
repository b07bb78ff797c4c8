package out

import (
	"context"

	"focuslog/internal/modules/session/domain"
)

// SessionStore is the source of truth for finished sessions.
type SessionStore interface {
	Save(ctx context.Context, session domain.Session) (string, error)
	List(ctx context.Context) ([]domain.Session, error)
	Delete(ctx context.Context, sessionID string) error
	DeleteAll(ctx context.Context) (int, error)
}

type ActiveSessionStore interface {
	SaveActive(ctx context.Context, session domain.ActiveSession) error
	LoadActive(ctx context.Context) (domain.ActiveSession, error)
	ClearActive(ctx context.Context) error
}

// SessionIndex is a rebuildable query projection of the session store.
type SessionIndex interface {
	Reset(ctx context.Context) error
	Upsert(ctx context.Context, session domain.Session) error
	Delete(ctx context.Context, sessionID string) error
	Search(ctx context.Context, filter domain.Filter) ([]domain.Session, error)
}

type TagStore interface {
	LoadTags(ctx context.Context) ([]string, error)
	SaveTags(ctx context.Context, tags []string) error
}
