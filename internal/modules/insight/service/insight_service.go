package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	cache "github.com/patrickmn/go-cache"

	analyticsdto "focuslog/internal/modules/analytics/dto"
	analyticsin "focuslog/internal/modules/analytics/port/in"
	appsin "focuslog/internal/modules/apps/port/in"
	"focuslog/internal/modules/insight/domain"
	insightout "focuslog/internal/modules/insight/port/out"
	sessionin "focuslog/internal/modules/session/port/in"
	apperrors "focuslog/internal/platform/errors"
	"focuslog/internal/platform/logging"
)

const defaultCacheTTL = 30 * time.Minute

type Options struct {
	DefaultProvider string
	CacheTTL        time.Duration
	Logger          *slog.Logger
}

// InsightService gathers the session snapshot, renders the prompt and asks a provider for coaching.
type InsightService struct {
	sessions  sessionin.Usecase
	apps      appsin.Usecase
	analytics analyticsin.Usecase
	builtin   map[string]insightout.Provider
	order     []string
	plugins   *PluginRegistry
	fallback  string
	results   *cache.Cache
	logger    *slog.Logger
}

func NewInsightService(sessions sessionin.Usecase, apps appsin.Usecase, analytics analyticsin.Usecase, providers []insightout.Provider, plugins *PluginRegistry, opts Options) *InsightService {
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	svc := &InsightService{
		sessions:  sessions,
		apps:      apps,
		analytics: analytics,
		builtin:   make(map[string]insightout.Provider, len(providers)),
		plugins:   plugins,
		fallback:  strings.TrimSpace(opts.DefaultProvider),
		results:   cache.New(ttl, 2*ttl),
		logger:    logger,
	}
	for _, p := range providers {
		if _, dup := svc.builtin[p.Name()]; dup {
			continue
		}
		svc.builtin[p.Name()] = p
		svc.order = append(svc.order, p.Name())
	}
	if svc.fallback == "" && len(svc.order) > 0 {
		svc.fallback = svc.order[0]
	}
	return svc
}

type Generated struct {
	Provider string
	Result   domain.Result
	Cached   bool
}

func (s *InsightService) Generate(ctx context.Context, providerName string, refresh bool) (Generated, error) {
	name := strings.TrimSpace(providerName)
	if name == "" {
		name = s.fallback
	}
	prompt, err := s.Prompt(ctx)
	if err != nil {
		return Generated{}, err
	}
	provider, err := s.resolve(ctx, name)
	if err != nil {
		return Generated{}, err
	}

	key := cacheKey(name, prompt)
	if !refresh {
		if hit, ok := s.results.Get(key); ok {
			if result, ok := hit.(domain.Result); ok {
				s.logger.Debug("insight cache hit", "provider", name)
				return Generated{Provider: name, Result: result, Cached: true}, nil
			}
		}
	}

	started := time.Now()
	completion, err := provider.Complete(ctx, prompt)
	if err != nil {
		s.logger.Warn("insight provider failed", "provider", name, "error", err)
		return Generated{}, fmt.Errorf("%w: %s: %w", apperrors.ErrInsightUnavailable, name, err)
	}
	result, err := domain.ParseCompletion(completion)
	if err != nil {
		s.logger.Warn("insight response rejected", "provider", name, "error", err)
		return Generated{}, fmt.Errorf("%w: %s: %w", apperrors.ErrInsightUnavailable, name, err)
	}
	s.results.Set(key, result, cache.DefaultExpiration)
	s.logger.Info("insight generated", "provider", name, "suggestions", len(result.Insight.Suggestions), "sources", len(result.Sources), "elapsed", time.Since(started))
	return Generated{Provider: name, Result: result}, nil
}

// Prompt renders the coaching prompt over every stored session.
func (s *InsightService) Prompt(ctx context.Context) (string, error) {
	snapshot, err := s.sessions.Snapshot(ctx)
	if err != nil {
		return "", err
	}
	if len(snapshot) == 0 {
		return "", apperrors.ErrNoSessions
	}
	req := domain.PromptRequest{Sessions: make([]domain.PromptSession, 0, len(snapshot))}
	for _, item := range snapshot {
		req.Sessions = append(req.Sessions, domain.PromptSession{
			TaskName: item.TaskName,
			Start:    item.StartedAt,
			End:      item.EndedAt,
			Tags:     item.Tags,
			AppID:    item.AppID,
			Notes:    item.Notes,
		})
	}
	if s.apps != nil {
		apps, err := s.apps.List(ctx)
		if err != nil {
			return "", err
		}
		for _, app := range apps {
			req.Apps = append(req.Apps, domain.PromptApp{ID: app.ID, Name: app.Name, DailyGoalMinutes: app.DailyGoalMinutes})
		}
	}
	if s.analytics != nil {
		report, err := s.analytics.Report(ctx, analyticsdto.ReportInput{Range: "all"})
		if err != nil {
			return "", err
		}
		req.Stats = promptStats(report)
	}
	return domain.BuildPrompt(req), nil
}

// ProviderNames lists builtin providers in registration order.
func (s *InsightService) ProviderNames() []string {
	return append([]string(nil), s.order...)
}

func (s *InsightService) DefaultProvider() string {
	return s.fallback
}

func (s *InsightService) resolve(ctx context.Context, name string) (insightout.Provider, error) {
	if p, ok := s.builtin[name]; ok {
		return p, nil
	}
	if s.plugins != nil {
		p, err := s.plugins.Provider(ctx, name)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, domain.ErrUnknownProvider) {
			return nil, fmt.Errorf("%w: %s: %w", apperrors.ErrInsightUnavailable, name, err)
		}
	}
	return nil, fmt.Errorf("%w: %w: %q", apperrors.ErrInvalidInput, domain.ErrUnknownProvider, name)
}

func promptStats(report analyticsdto.ReportOutput) domain.PromptStats {
	stats := domain.PromptStats{
		TotalWorkTime:  fmt.Sprintf("%dh %dm %ds", report.TotalHours, report.TotalMinutes, report.TotalSeconds),
		AverageSession: report.AverageLength,
		PeakHour:       report.PeakHour,
	}
	for _, row := range report.ByTask {
		stats.TopTasks = append(stats.TopTasks, fmt.Sprintf("%s: %d min", row.Name, row.Minutes))
	}
	for _, row := range report.ByTag {
		stats.TopTags = append(stats.TopTags, fmt.Sprintf("%s: %d min", row.Name, row.Minutes))
	}
	for _, app := range report.Apps {
		if app.DailyGoalMinutes <= 0 {
			continue
		}
		stats.AppProgress = append(stats.AppProgress, fmt.Sprintf("%s: %d/%d min (%d%%)", app.Name, app.TotalMinutes, app.DailyGoalMinutes, app.ProgressPercent))
	}
	return stats
}

func cacheKey(provider, prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return provider + ":" + hex.EncodeToString(sum[:])
}
