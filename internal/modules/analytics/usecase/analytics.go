package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"focuslog/internal/modules/analytics/domain"
	analyticsdto "focuslog/internal/modules/analytics/dto"
	analyticsin "focuslog/internal/modules/analytics/port/in"
	analyticsout "focuslog/internal/modules/analytics/port/out"
	"focuslog/internal/modules/analytics/service"
	apperrors "focuslog/internal/platform/errors"
	"focuslog/internal/platform/logging"
)

type Interactor struct {
	svc       *service.AnalyticsService
	exporters map[string]analyticsout.Exporter
	notifier  analyticsout.Notifier
	ledger    analyticsout.AlertLedger
	logger    *slog.Logger
}

// NewInteractor wires the analytics usecase. notifier and ledger may be nil:
// goals are still evaluated but nothing is delivered or remembered.
func NewInteractor(svc *service.AnalyticsService, exporters []analyticsout.Exporter, notifier analyticsout.Notifier, ledger analyticsout.AlertLedger, logger *slog.Logger) analyticsin.Usecase {
	if logger == nil {
		logger = logging.Discard()
	}
	byFormat := make(map[string]analyticsout.Exporter, len(exporters))
	for _, exporter := range exporters {
		byFormat[exporter.Format()] = exporter
	}
	return &Interactor{svc: svc, exporters: byFormat, notifier: notifier, ledger: ledger, logger: logger}
}

func (i *Interactor) Report(ctx context.Context, input analyticsdto.ReportInput) (analyticsdto.ReportOutput, error) {
	r, err := domain.ParseRange(input.Range)
	if err != nil {
		return analyticsdto.ReportOutput{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	doc, err := i.svc.Document(ctx, r)
	if err != nil {
		return analyticsdto.ReportOutput{}, err
	}
	return toReportOutput(doc), nil
}

func (i *Interactor) Export(ctx context.Context, input analyticsdto.ExportInput) (analyticsdto.ExportOutput, error) {
	format := strings.ToLower(strings.TrimSpace(input.Format))
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(input.Path)), ".")
	}
	exporter, ok := i.exporters[format]
	if !ok {
		return analyticsdto.ExportOutput{}, fmt.Errorf("%w: unsupported export format %q (want %s)", apperrors.ErrInvalidInput, format, strings.Join(i.formats(), ", "))
	}
	if strings.TrimSpace(input.Path) == "" {
		return analyticsdto.ExportOutput{}, fmt.Errorf("%w: export path is required", apperrors.ErrInvalidInput)
	}
	r, err := domain.ParseRange(input.Range)
	if err != nil {
		return analyticsdto.ExportOutput{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	doc, err := i.svc.Document(ctx, r)
	if err != nil {
		return analyticsdto.ExportOutput{}, err
	}
	if err := exporter.Export(ctx, doc, input.Path); err != nil {
		return analyticsdto.ExportOutput{}, fmt.Errorf("export %s: %w", format, err)
	}
	i.logger.Info("exported report", "format", format, "path", input.Path, "sessions", doc.Report.SessionCount)
	return analyticsdto.ExportOutput{Format: format, Path: input.Path}, nil
}

func (i *Interactor) CheckGoals(ctx context.Context, input analyticsdto.CheckGoalsInput) (analyticsdto.CheckGoalsOutput, error) {
	doc, err := i.svc.Document(ctx, domain.RangeToday)
	if err != nil {
		return analyticsdto.CheckGoalsOutput{}, err
	}
	day := doc.GeneratedAt.In(doc.Location).Format("2006-01-02")
	out := analyticsdto.CheckGoalsOutput{Reached: []analyticsdto.GoalAlert{}, Notified: []analyticsdto.GoalAlert{}}
	for _, usage := range doc.Report.Apps {
		if input.AppID != "" && usage.App.ID != input.AppID {
			continue
		}
		if !usage.GoalReached() {
			continue
		}
		alert := analyticsdto.GoalAlert{
			AppID:            usage.App.ID,
			Name:             usage.App.Name,
			TotalMinutes:     usage.TotalMinutes,
			DailyGoalMinutes: usage.App.DailyGoalMinutes,
		}
		out.Reached = append(out.Reached, alert)
		delivered, err := i.deliver(ctx, day, alert)
		if err != nil {
			return out, err
		}
		if delivered {
			out.Notified = append(out.Notified, alert)
		}
	}
	return out, nil
}

func (i *Interactor) deliver(ctx context.Context, day string, alert analyticsdto.GoalAlert) (bool, error) {
	if i.notifier == nil {
		return false, nil
	}
	if i.ledger != nil {
		done, err := i.ledger.Delivered(ctx, day, alert.AppID)
		if err != nil {
			return false, err
		}
		if done {
			return false, nil
		}
	}
	title := fmt.Sprintf("%s goal reached", alert.Name)
	message := fmt.Sprintf("%d of %d minutes on %s today.", alert.TotalMinutes, alert.DailyGoalMinutes, alert.Name)
	if err := i.notifier.Notify(ctx, title, message); err != nil {
		// desktop notifications are best effort
		i.logger.Warn("deliver goal alert", "app", alert.Name, "error", err)
		return false, nil
	}
	if i.ledger != nil {
		if err := i.ledger.MarkDelivered(ctx, day, alert.AppID); err != nil {
			return true, err
		}
	}
	return true, nil
}

func (i *Interactor) formats() []string {
	out := make([]string, 0, len(i.exporters))
	for format := range i.exporters {
		out = append(out, format)
	}
	sort.Strings(out)
	return out
}

func toReportOutput(doc domain.ExportDocument) analyticsdto.ReportOutput {
	report := doc.Report
	out := analyticsdto.ReportOutput{
		Range:         string(report.Range),
		GeneratedAt:   doc.GeneratedAt,
		SessionCount:  report.SessionCount,
		TotalHours:    report.TotalWorkTime.Hours,
		TotalMinutes:  report.TotalWorkTime.Minutes,
		TotalSeconds:  report.TotalWorkTime.Seconds,
		AverageLength: report.AverageLength,
		PeakHour:      report.PeakHour,
		ByTask:        toNamed(report.ByTask),
		ByTag:         toNamed(report.ByTag),
		Apps:          make([]analyticsdto.AppUsageOutput, 0, len(report.Apps)),
	}
	for _, usage := range report.Apps {
		out.Apps = append(out.Apps, analyticsdto.AppUsageOutput{
			AppID:            usage.App.ID,
			Name:             usage.App.Name,
			DailyGoalMinutes: usage.App.DailyGoalMinutes,
			TotalMinutes:     usage.TotalMinutes,
			ProgressPercent:  usage.ProgressPercent,
			GoalReached:      usage.GoalReached(),
		})
	}
	return out
}

func toNamed(rows []domain.NamedDuration) []analyticsdto.NamedMinutes {
	out := make([]analyticsdto.NamedMinutes, 0, len(rows))
	for _, row := range rows {
		out = append(out, analyticsdto.NamedMinutes{Name: row.Name, Minutes: row.Minutes})
	}
	return out
}
