package in

import (
	"context"

	"focuslog/internal/modules/analytics/dto"
)

type Usecase interface {
	Report(ctx context.Context, input dto.ReportInput) (dto.ReportOutput, error)
	Export(ctx context.Context, input dto.ExportInput) (dto.ExportOutput, error)
	CheckGoals(ctx context.Context, input dto.CheckGoalsInput) (dto.CheckGoalsOutput, error)
}
