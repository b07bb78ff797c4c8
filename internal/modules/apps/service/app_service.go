package service

import (
	"context"
	"fmt"
	"strings"

	"focuslog/internal/modules/apps/domain"
	appsout "focuslog/internal/modules/apps/port/out"
	"focuslog/internal/platform/clock"
	apperrors "focuslog/internal/platform/errors"
	"focuslog/internal/platform/id"
)

type AppService struct {
	clock clock.Clock
	idGen id.Generator
	store appsout.AppStore
}

func NewAppService(clock clock.Clock, idGen id.Generator, store appsout.AppStore) *AppService {
	return &AppService{clock: clock, idGen: idGen, store: store}
}

func (s *AppService) List(ctx context.Context) ([]domain.App, error) {
	return s.store.Load(ctx)
}

func (s *AppService) Create(ctx context.Context, name string, goal int) (domain.App, error) {
	apps, err := s.store.Load(ctx)
	if err != nil {
		return domain.App{}, err
	}
	app := domain.App{
		ID:               s.idGen.New(),
		Name:             domain.NormalizeName(name),
		DailyGoalMinutes: goal,
		CreatedAt:        s.clock.Now(),
	}
	if err := app.Validate(); err != nil {
		return domain.App{}, err
	}
	if err := ensureUniqueName(apps, app); err != nil {
		return domain.App{}, err
	}
	if err := s.store.Save(ctx, append(apps, app)); err != nil {
		return domain.App{}, err
	}
	return app, nil
}

// Find resolves ref as an app id first, then as a case-insensitive name.
func (s *AppService) Find(ctx context.Context, ref string) (domain.App, error) {
	apps, err := s.store.Load(ctx)
	if err != nil {
		return domain.App{}, err
	}
	idx := indexOf(apps, ref)
	if idx < 0 {
		return domain.App{}, fmt.Errorf("app %q: %w", ref, apperrors.ErrNotFound)
	}
	return apps[idx], nil
}

func (s *AppService) Update(ctx context.Context, ref string, mutate func(*domain.App)) (domain.App, error) {
	apps, err := s.store.Load(ctx)
	if err != nil {
		return domain.App{}, err
	}
	idx := indexOf(apps, ref)
	if idx < 0 {
		return domain.App{}, fmt.Errorf("app %q: %w", ref, apperrors.ErrNotFound)
	}
	updated := apps[idx]
	mutate(&updated)
	updated.Name = domain.NormalizeName(updated.Name)
	if err := updated.Validate(); err != nil {
		return domain.App{}, err
	}
	if err := ensureUniqueName(apps, updated); err != nil {
		return domain.App{}, err
	}
	apps[idx] = updated
	if err := s.store.Save(ctx, apps); err != nil {
		return domain.App{}, err
	}
	return updated, nil
}

func (s *AppService) Remove(ctx context.Context, ref string) error {
	apps, err := s.store.Load(ctx)
	if err != nil {
		return err
	}
	idx := indexOf(apps, ref)
	if idx < 0 {
		return fmt.Errorf("app %q: %w", ref, apperrors.ErrNotFound)
	}
	apps = append(apps[:idx], apps[idx+1:]...)
	return s.store.Save(ctx, apps)
}

func indexOf(apps []domain.App, ref string) int {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return -1
	}
	for i, app := range apps {
		if app.ID == ref {
			return i
		}
	}
	for i, app := range apps {
		if strings.EqualFold(app.Name, domain.NormalizeName(ref)) {
			return i
		}
	}
	return -1
}

func ensureUniqueName(apps []domain.App, candidate domain.App) error {
	for _, app := range apps {
		if app.ID != candidate.ID && strings.EqualFold(app.Name, candidate.Name) {
			return fmt.Errorf("%w: an app named %q already exists", apperrors.ErrInvalidInput, app.Name)
		}
	}
	return nil
}
