package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	appsin "focuslog/internal/modules/apps/port/in"
	"focuslog/internal/modules/session/domain"
	sessiondto "focuslog/internal/modules/session/dto"
	sessionin "focuslog/internal/modules/session/port/in"
	sessionout "focuslog/internal/modules/session/port/out"
	"focuslog/internal/modules/session/service"
	apperrors "focuslog/internal/platform/errors"
)

type Interactor struct {
	svc         *service.SessionService
	apps        appsin.Usecase
	activeStore sessionout.ActiveSessionStore
	tags        sessionout.TagStore
}

// NewInteractor builds the session usecase. apps and tags may be nil, in which case
// app references are stored unchecked and the tag registry is not maintained.
func NewInteractor(svc *service.SessionService, apps appsin.Usecase, activeStore sessionout.ActiveSessionStore, tags sessionout.TagStore) sessionin.Usecase {
	return &Interactor{svc: svc, apps: apps, activeStore: activeStore, tags: tags}
}

func (i *Interactor) Start(ctx context.Context, input sessiondto.StartInput) (sessiondto.StartOutput, error) {
	if i.activeStore == nil {
		return sessiondto.StartOutput{}, fmt.Errorf("active session store is not configured")
	}
	_, err := i.activeStore.LoadActive(ctx)
	if err == nil {
		return sessiondto.StartOutput{}, apperrors.ErrActiveSessionExists
	}
	if !errors.Is(err, apperrors.ErrNoActiveSession) {
		return sessiondto.StartOutput{}, err
	}

	appID, err := i.resolveApp(ctx, input.AppID)
	if err != nil {
		return sessiondto.StartOutput{}, err
	}
	active := i.svc.Begin(input.TaskName, input.Tags, appID, input.Notes)
	if err := i.activeStore.SaveActive(ctx, active); err != nil {
		return sessiondto.StartOutput{}, err
	}
	if err := i.registerTags(ctx, active.Tags); err != nil {
		return sessiondto.StartOutput{}, err
	}
	return sessiondto.StartOutput{
		SessionID: active.SessionID,
		TaskName:  active.TaskName,
		Tags:      active.Tags,
		AppID:     active.AppID,
		StartedAt: active.StartedAt,
	}, nil
}

func (i *Interactor) Stop(ctx context.Context, input sessiondto.StopInput) (sessiondto.SessionOutput, error) {
	if i.activeStore == nil {
		return sessiondto.SessionOutput{}, apperrors.ErrNoActiveSession
	}
	active, err := i.activeStore.LoadActive(ctx)
	if err != nil {
		return sessiondto.SessionOutput{}, err
	}
	if input.SessionID != "" && input.SessionID != active.SessionID {
		return sessiondto.SessionOutput{}, fmt.Errorf("%w: session id mismatch", apperrors.ErrInvalidInput)
	}
	session, err := i.svc.Complete(ctx, active)
	if err != nil {
		return sessiondto.SessionOutput{}, err
	}
	if err := i.activeStore.ClearActive(ctx); err != nil {
		return sessiondto.SessionOutput{}, err
	}
	return toOutput(session), nil
}

func (i *Interactor) Cancel(ctx context.Context) error {
	if i.activeStore == nil {
		return apperrors.ErrNoActiveSession
	}
	if _, err := i.activeStore.LoadActive(ctx); err != nil {
		return err
	}
	return i.activeStore.ClearActive(ctx)
}

func (i *Interactor) GetActive(ctx context.Context) (sessiondto.ActiveSessionOutput, error) {
	if i.activeStore == nil {
		return sessiondto.ActiveSessionOutput{}, apperrors.ErrNoActiveSession
	}
	active, err := i.activeStore.LoadActive(ctx)
	if err != nil {
		return sessiondto.ActiveSessionOutput{}, err
	}
	out := sessiondto.ActiveSessionOutput{
		SessionID: active.SessionID,
		TaskName:  active.TaskName,
		Tags:      active.Tags,
		AppID:     active.AppID,
		Notes:     active.Notes,
		StartedAt: active.StartedAt,
		Elapsed:   i.svc.Elapsed(active.StartedAt),
	}
	if active.AppID != "" && i.apps != nil {
		// the app may have been removed since the session started
		if app, err := i.apps.Get(ctx, active.AppID); err == nil {
			out.AppName = app.Name
		}
	}
	return out, nil
}

func (i *Interactor) Record(ctx context.Context, input sessiondto.RecordInput) (sessiondto.SessionOutput, error) {
	appID, err := i.resolveApp(ctx, input.AppID)
	if err != nil {
		return sessiondto.SessionOutput{}, err
	}
	session, err := i.svc.Record(ctx, input.TaskName, input.Tags, appID, input.Notes, input.StartedAt, input.EndedAt)
	if err != nil {
		return sessiondto.SessionOutput{}, err
	}
	if err := i.registerTags(ctx, session.Tags); err != nil {
		return sessiondto.SessionOutput{}, err
	}
	return toOutput(session), nil
}

func (i *Interactor) List(ctx context.Context, input sessiondto.ListInput) ([]sessiondto.SessionOutput, error) {
	appID := strings.TrimSpace(input.AppID)
	if appID != "" && i.apps != nil {
		if app, err := i.apps.Get(ctx, appID); err == nil {
			appID = app.ID
		}
	}
	sessions, err := i.svc.List(ctx, domain.Filter{
		Tag:   strings.TrimSpace(input.Tag),
		AppID: appID,
		Since: input.Since,
		Until: input.Until,
	})
	if err != nil {
		return nil, err
	}
	return toOutputs(sessions), nil
}

func (i *Interactor) Snapshot(ctx context.Context) ([]sessiondto.SessionOutput, error) {
	sessions, err := i.svc.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return toOutputs(sessions), nil
}

func (i *Interactor) Delete(ctx context.Context, sessionID string) error {
	return i.svc.Delete(ctx, strings.TrimSpace(sessionID))
}

func (i *Interactor) Clear(ctx context.Context) (sessiondto.ClearOutput, error) {
	removed, err := i.svc.Clear(ctx)
	if err != nil {
		return sessiondto.ClearOutput{}, err
	}
	return sessiondto.ClearOutput{Removed: removed}, nil
}

func (i *Interactor) Reindex(ctx context.Context) (sessiondto.ReindexOutput, error) {
	count, err := i.svc.Reindex(ctx)
	if err != nil {
		return sessiondto.ReindexOutput{}, err
	}
	return sessiondto.ReindexOutput{Indexed: count}, nil
}

func (i *Interactor) AddTag(ctx context.Context, tag string) ([]string, error) {
	if strings.TrimSpace(tag) == "" {
		return nil, fmt.Errorf("%w: tag is required", apperrors.ErrInvalidInput)
	}
	if err := i.registerTags(ctx, []string{tag}); err != nil {
		return nil, err
	}
	return i.ListTags(ctx)
}

func (i *Interactor) ListTags(ctx context.Context) ([]string, error) {
	if i.tags == nil {
		return []string{}, nil
	}
	return i.tags.LoadTags(ctx)
}

func (i *Interactor) resolveApp(ctx context.Context, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" || i.apps == nil {
		return ref, nil
	}
	app, err := i.apps.Get(ctx, ref)
	if err != nil {
		return "", err
	}
	return app.ID, nil
}

func (i *Interactor) registerTags(ctx context.Context, tags []string) error {
	if i.tags == nil || len(tags) == 0 {
		return nil
	}
	registry, err := i.tags.LoadTags(ctx)
	if err != nil {
		return err
	}
	registry, changed := domain.RegisterTags(registry, tags...)
	if !changed {
		return nil
	}
	return i.tags.SaveTags(ctx, registry)
}

func toOutput(session domain.Session) sessiondto.SessionOutput {
	return sessiondto.SessionOutput{
		ID:        session.ID,
		TaskName:  session.TaskName,
		StartedAt: session.StartedAt,
		EndedAt:   session.EndedAt,
		Duration:  session.Duration(),
		Tags:      session.Tags,
		AppID:     session.AppID,
		Notes:     session.Notes,
		Path:      session.NotePath,
	}
}

func toOutputs(sessions []domain.Session) []sessiondto.SessionOutput {
	out := make([]sessiondto.SessionOutput, 0, len(sessions))
	for _, session := range sessions {
		out = append(out, toOutput(session))
	}
	return out
}
