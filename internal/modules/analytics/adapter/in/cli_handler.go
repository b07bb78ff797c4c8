package in

import (
	"context"

	analyticsdto "focuslog/internal/modules/analytics/dto"
	analyticsin "focuslog/internal/modules/analytics/port/in"
)

type CLIHandler struct {
	usecase analyticsin.Usecase
}

func NewCLIHandler(usecase analyticsin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Report(ctx context.Context, rangeName string) (analyticsdto.ReportOutput, error) {
	return h.usecase.Report(ctx, analyticsdto.ReportInput{Range: rangeName})
}

func (h CLIHandler) Export(ctx context.Context, format, path, rangeName string) (analyticsdto.ExportOutput, error) {
	return h.usecase.Export(ctx, analyticsdto.ExportInput{Format: format, Path: path, Range: rangeName})
}

func (h CLIHandler) CheckGoals(ctx context.Context, appID string) (analyticsdto.CheckGoalsOutput, error) {
	return h.usecase.CheckGoals(ctx, analyticsdto.CheckGoalsInput{AppID: appID})
}
