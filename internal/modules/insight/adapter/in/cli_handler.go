package in

import (
	"context"

	insightdto "focuslog/internal/modules/insight/dto"
	insightin "focuslog/internal/modules/insight/port/in"
)

type CLIHandler struct {
	usecase insightin.Usecase
}

func NewCLIHandler(usecase insightin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Generate(ctx context.Context, provider string, refresh bool) (insightdto.GenerateOutput, error) {
	return h.usecase.Generate(ctx, insightdto.GenerateInput{Provider: provider, Refresh: refresh})
}

func (h CLIHandler) Providers(ctx context.Context) ([]insightdto.ProviderInfo, error) {
	return h.usecase.Providers(ctx)
}

func (h CLIHandler) Doctor(ctx context.Context) ([]insightdto.DoctorResult, error) {
	return h.usecase.Doctor(ctx)
}
