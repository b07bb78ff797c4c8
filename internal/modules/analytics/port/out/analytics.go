package out

import (
	"context"

	"focuslog/internal/modules/analytics/domain"
)

type Exporter interface {
	Format() string
	Export(ctx context.Context, doc domain.ExportDocument, path string) error
}

type Notifier interface {
	Notify(ctx context.Context, title, message string) error
}

// AlertLedger remembers which goal alerts were already delivered on a given day.
type AlertLedger interface {
	Delivered(ctx context.Context, day, appID string) (bool, error)
	MarkDelivered(ctx context.Context, day, appID string) error
}
