package usecase

import (
	"context"

	"focuslog/internal/modules/apps/domain"
	appsdto "focuslog/internal/modules/apps/dto"
	appsin "focuslog/internal/modules/apps/port/in"
	"focuslog/internal/modules/apps/service"
)

type Interactor struct {
	svc *service.AppService
}

func NewInteractor(svc *service.AppService) appsin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Add(ctx context.Context, input appsdto.AddInput) (appsdto.AppOutput, error) {
	goal := input.DailyGoalMinutes
	if goal == appsdto.DefaultGoal {
		goal = domain.DefaultGoalMinutes
	}
	app, err := i.svc.Create(ctx, input.Name, goal)
	if err != nil {
		return appsdto.AppOutput{}, err
	}
	return toOutput(app), nil
}

func (i *Interactor) List(ctx context.Context) ([]appsdto.AppOutput, error) {
	apps, err := i.svc.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]appsdto.AppOutput, 0, len(apps))
	for _, app := range apps {
		out = append(out, toOutput(app))
	}
	return out, nil
}

func (i *Interactor) Get(ctx context.Context, appID string) (appsdto.AppOutput, error) {
	app, err := i.svc.Find(ctx, appID)
	if err != nil {
		return appsdto.AppOutput{}, err
	}
	return toOutput(app), nil
}

func (i *Interactor) SetGoal(ctx context.Context, input appsdto.SetGoalInput) (appsdto.AppOutput, error) {
	if err := domain.ValidateGoal(input.DailyGoalMinutes); err != nil {
		return appsdto.AppOutput{}, err
	}
	app, err := i.svc.Update(ctx, input.AppID, func(app *domain.App) {
		app.DailyGoalMinutes = input.DailyGoalMinutes
	})
	if err != nil {
		return appsdto.AppOutput{}, err
	}
	return toOutput(app), nil
}

func (i *Interactor) Rename(ctx context.Context, input appsdto.RenameInput) (appsdto.AppOutput, error) {
	app, err := i.svc.Update(ctx, input.AppID, func(app *domain.App) {
		app.Name = input.Name
	})
	if err != nil {
		return appsdto.AppOutput{}, err
	}
	return toOutput(app), nil
}

func (i *Interactor) Remove(ctx context.Context, appID string) error {
	return i.svc.Remove(ctx, appID)
}

func toOutput(app domain.App) appsdto.AppOutput {
	return appsdto.AppOutput{ID: app.ID, Name: app.Name, DailyGoalMinutes: app.DailyGoalMinutes, CreatedAt: app.CreatedAt}
}
