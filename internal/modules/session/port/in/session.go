package in

import (
	"context"

	"focuslog/internal/modules/session/dto"
)

type Usecase interface {
	Start(ctx context.Context, input dto.StartInput) (dto.StartOutput, error)
	Stop(ctx context.Context, input dto.StopInput) (dto.SessionOutput, error)
	Cancel(ctx context.Context) error
	GetActive(ctx context.Context) (dto.ActiveSessionOutput, error)
	Record(ctx context.Context, input dto.RecordInput) (dto.SessionOutput, error)
	List(ctx context.Context, input dto.ListInput) ([]dto.SessionOutput, error)
	// Snapshot returns every stored session, oldest first.
	Snapshot(ctx context.Context) ([]dto.SessionOutput, error)
	Delete(ctx context.Context, sessionID string) error
	Clear(ctx context.Context) (dto.ClearOutput, error)
	Reindex(ctx context.Context) (dto.ReindexOutput, error)
	AddTag(ctx context.Context, tag string) ([]string, error)
	ListTags(ctx context.Context) ([]string, error)
}
