package bootstrap

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	analyticsinadapter "focuslog/internal/modules/analytics/adapter/in"
	analyticsoutadapter "focuslog/internal/modules/analytics/adapter/out"
	analyticsout "focuslog/internal/modules/analytics/port/out"
	analyticsservice "focuslog/internal/modules/analytics/service"
	analyticsusecase "focuslog/internal/modules/analytics/usecase"
	appsinadapter "focuslog/internal/modules/apps/adapter/in"
	appsoutadapter "focuslog/internal/modules/apps/adapter/out"
	appsservice "focuslog/internal/modules/apps/service"
	appsusecase "focuslog/internal/modules/apps/usecase"
	insightinadapter "focuslog/internal/modules/insight/adapter/in"
	insightoutadapter "focuslog/internal/modules/insight/adapter/out"
	insightout "focuslog/internal/modules/insight/port/out"
	insightservice "focuslog/internal/modules/insight/service"
	insightusecase "focuslog/internal/modules/insight/usecase"
	sessioninadapter "focuslog/internal/modules/session/adapter/in"
	sessionoutadapter "focuslog/internal/modules/session/adapter/out"
	sessionservice "focuslog/internal/modules/session/service"
	sessionusecase "focuslog/internal/modules/session/usecase"
	"focuslog/internal/platform/clock"
	"focuslog/internal/platform/config"
	"focuslog/internal/platform/id"
	"focuslog/internal/platform/logging"
	"focuslog/internal/platform/watch"
	uiapp "focuslog/internal/ui/app"
)

const appName = "focuslog"

type App struct {
	Config       config.Config
	Logger       *slog.Logger
	SessionCLI   sessioninadapter.CLIHandler
	AppsCLI      appsinadapter.CLIHandler
	AnalyticsCLI analyticsinadapter.CLIHandler
	InsightCLI   insightinadapter.CLIHandler

	closers []io.Closer
}

// New wires every module against the vault described by cfg. Log output goes to logOut.
func New(cfg config.Config, logOut io.Writer) (*App, error) {
	if logOut == nil {
		logOut = os.Stderr
	}
	logger := logging.Init(logOut, cfg.Log.Level, cfg.Log.Format)
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.StateDir, 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}

	clk := clock.SystemClock{}
	ids := id.UUID{}
	app := &App{Config: cfg, Logger: logger}

	appsUC := appsusecase.NewInteractor(
		appsservice.NewAppService(clk, ids, appsoutadapter.NewYAMLAppStore(cfg.StateDir)),
	)

	index, err := sessionoutadapter.NewSQLiteSessionIndex(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("new session index: %w", err)
	}
	app.closers = append(app.closers, index)
	sessionUC := sessionusecase.NewInteractor(
		sessionservice.NewSessionService(clk, ids, sessionoutadapter.NewVaultSessionStore(cfg.VaultPath, logger), index, logger),
		appsUC,
		sessionoutadapter.NewFileActiveSessionStore(cfg.StateDir),
		sessionoutadapter.NewYAMLTagStore(cfg.StateDir),
	)

	var notifier analyticsout.Notifier
	if cfg.Notify.Enabled {
		notifier = analyticsoutadapter.NewBeeepNotifier(appName)
	}
	analyticsUC := analyticsusecase.NewInteractor(
		analyticsservice.NewAnalyticsService(clk, loc, sessionUC, appsUC),
		[]analyticsout.Exporter{
			analyticsoutadapter.NewMarkdownExporter(),
			analyticsoutadapter.NewHTMLExporter(),
			analyticsoutadapter.NewXLSXExporter(),
			analyticsoutadapter.NewJSONExporter(),
		},
		notifier,
		analyticsoutadapter.NewFileAlertLedger(cfg.StateDir),
		logger,
	)

	plugins := insightservice.NewPluginRegistry(
		insightoutadapter.NewFileManifestStore(cfg.StateDir),
		insightoutadapter.NewGRPCHost(cfg.Insight.Timeout, logger),
	)
	gemini := insightoutadapter.NewGeminiProvider(insightoutadapter.GeminiConfig{
		Endpoint: cfg.Insight.Gemini.Endpoint,
		Model:    cfg.Insight.Gemini.Model,
		APIKey:   cfg.Insight.Gemini.APIKey,
		Timeout:  cfg.Insight.Timeout,
	}, nil)
	insightUC := insightusecase.NewInteractor(
		insightservice.NewInsightService(sessionUC, appsUC, analyticsUC, []insightout.Provider{gemini}, plugins, insightservice.Options{
			DefaultProvider: cfg.Insight.Provider,
			CacheTTL:        cfg.Insight.CacheTTL,
			Logger:          logger,
		}),
		plugins,
	)

	app.SessionCLI = sessioninadapter.NewCLIHandler(sessionUC)
	app.AppsCLI = appsinadapter.NewCLIHandler(appsUC)
	app.AnalyticsCLI = analyticsinadapter.NewCLIHandler(analyticsUC)
	app.InsightCLI = insightinadapter.NewCLIHandler(insightUC)
	return app, nil
}

// Close releases the session index.
func (a *App) Close() error {
	var first error
	for _, c := range a.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// RunTUI starts the vault watcher and blocks until the terminal UI exits.
// A watcher that fails to start only disables live refresh.
func RunTUI(app *App) error {
	var changes <-chan watch.Event
	watcher, err := watch.New(app.Config.VaultPath, app.Config.StateDir, app.Logger)
	if err == nil {
		defer watcher.Stop()
		err = watcher.Start()
	}
	if err != nil {
		app.Logger.Warn("vault watcher disabled", "err", err)
	} else {
		changes = watcher.Events()
	}

	model := uiapp.NewModel(app.SessionCLI, app.AppsCLI, app.AnalyticsCLI, app.InsightCLI, changes)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err = program.Run()
	return err
}
