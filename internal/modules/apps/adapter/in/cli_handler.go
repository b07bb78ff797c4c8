package in

import (
	"context"

	appsdto "focuslog/internal/modules/apps/dto"
	appsin "focuslog/internal/modules/apps/port/in"
)

type CLIHandler struct {
	usecase appsin.Usecase
}

func NewCLIHandler(usecase appsin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Add(ctx context.Context, name string, goal int) (appsdto.AppOutput, error) {
	return h.usecase.Add(ctx, appsdto.AddInput{Name: name, DailyGoalMinutes: goal})
}

func (h CLIHandler) List(ctx context.Context) ([]appsdto.AppOutput, error) {
	return h.usecase.List(ctx)
}

func (h CLIHandler) SetGoal(ctx context.Context, appID string, minutes int) (appsdto.AppOutput, error) {
	return h.usecase.SetGoal(ctx, appsdto.SetGoalInput{AppID: appID, DailyGoalMinutes: minutes})
}

func (h CLIHandler) Rename(ctx context.Context, appID, name string) (appsdto.AppOutput, error) {
	return h.usecase.Rename(ctx, appsdto.RenameInput{AppID: appID, Name: name})
}

func (h CLIHandler) Remove(ctx context.Context, appID string) error {
	return h.usecase.Remove(ctx, appID)
}
