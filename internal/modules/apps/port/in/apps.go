package in

import (
	"context"

	"focuslog/internal/modules/apps/dto"
)

type Usecase interface {
	Add(ctx context.Context, input dto.AddInput) (dto.AppOutput, error)
	List(ctx context.Context) ([]dto.AppOutput, error)
	Get(ctx context.Context, appID string) (dto.AppOutput, error)
	SetGoal(ctx context.Context, input dto.SetGoalInput) (dto.AppOutput, error)
	Rename(ctx context.Context, input dto.RenameInput) (dto.AppOutput, error)
	Remove(ctx context.Context, appID string) error
}
