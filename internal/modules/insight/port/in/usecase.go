package in

import (
	"context"

	"focuslog/internal/modules/insight/dto"
)

type Usecase interface {
	Generate(ctx context.Context, input dto.GenerateInput) (dto.GenerateOutput, error)
	Providers(ctx context.Context) ([]dto.ProviderInfo, error)
	Doctor(ctx context.Context) ([]dto.DoctorResult, error)
}
