package in

import (
	"context"
	"time"

	sessiondto "focuslog/internal/modules/session/dto"
	sessionin "focuslog/internal/modules/session/port/in"
)

type CLIHandler struct {
	usecase sessionin.Usecase
}

func NewCLIHandler(usecase sessionin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Start(ctx context.Context, task string, tags []string, appID, notes string) (sessiondto.StartOutput, error) {
	return h.usecase.Start(ctx, sessiondto.StartInput{TaskName: task, Tags: tags, AppID: appID, Notes: notes})
}

func (h CLIHandler) Stop(ctx context.Context, sessionID string) (sessiondto.SessionOutput, error) {
	return h.usecase.Stop(ctx, sessiondto.StopInput{SessionID: sessionID})
}

func (h CLIHandler) Cancel(ctx context.Context) error {
	return h.usecase.Cancel(ctx)
}

func (h CLIHandler) GetActive(ctx context.Context) (sessiondto.ActiveSessionOutput, error) {
	return h.usecase.GetActive(ctx)
}

func (h CLIHandler) Record(ctx context.Context, task string, tags []string, appID, notes string, startedAt, endedAt time.Time) (sessiondto.SessionOutput, error) {
	return h.usecase.Record(ctx, sessiondto.RecordInput{
		TaskName:  task,
		Tags:      tags,
		AppID:     appID,
		Notes:     notes,
		StartedAt: startedAt,
		EndedAt:   endedAt,
	})
}

func (h CLIHandler) List(ctx context.Context, tag, appID string, since, until time.Time) ([]sessiondto.SessionOutput, error) {
	return h.usecase.List(ctx, sessiondto.ListInput{Tag: tag, AppID: appID, Since: since, Until: until})
}

func (h CLIHandler) Delete(ctx context.Context, sessionID string) error {
	return h.usecase.Delete(ctx, sessionID)
}

func (h CLIHandler) Clear(ctx context.Context) (sessiondto.ClearOutput, error) {
	return h.usecase.Clear(ctx)
}

func (h CLIHandler) Reindex(ctx context.Context) (sessiondto.ReindexOutput, error) {
	return h.usecase.Reindex(ctx)
}

func (h CLIHandler) AddTag(ctx context.Context, tag string) ([]string, error) {
	return h.usecase.AddTag(ctx, tag)
}

func (h CLIHandler) ListTags(ctx context.Context) ([]string, error) {
	return h.usecase.ListTags(ctx)
}
