package out

import (
	"context"

	"focuslog/internal/modules/insight/domain"
)

// Provider turns a prompt into a completion. Implementations must honour ctx cancellation.
type Provider interface {
	Name() string
	Complete(ctx context.Context, prompt string) (domain.Completion, error)
}

type ManifestStore interface {
	Load(ctx context.Context) ([]domain.Manifest, error)
}

type PluginHost interface {
	CheckLifecycle(ctx context.Context, manifest domain.Manifest) error
	GetMetadata(ctx context.Context, manifest domain.Manifest) (domain.Metadata, error)
	Complete(ctx context.Context, manifest domain.Manifest, prompt string) (domain.Completion, error)
}
