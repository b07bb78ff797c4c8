package out

import (
	"context"

	"focuslog/internal/modules/apps/domain"
)

// AppStore persists the whole registry; it is small enough to rewrite on every change.
type AppStore interface {
	Load(ctx context.Context) ([]domain.App, error)
	Save(ctx context.Context, apps []domain.App) error
}
