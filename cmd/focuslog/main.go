package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/cobra"

	"focuslog/internal/bootstrap"
	appsdto "focuslog/internal/modules/apps/dto"
	"focuslog/internal/platform/config"
	apperrors "focuslog/internal/platform/errors"
)

const timestampLayout = "2006-01-02 15:04"

type rootOptions struct {
	vaultPath string
	logLevel  string
	logFormat string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "focuslog",
		Short:         "Personal time tracker with daily app goals and insights",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.vaultPath, "vault", ".", "vault path holding sessions/ and .focuslog/")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug|info|warn|error (overrides config)")
	root.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "log format: text|json (overrides config)")

	root.AddCommand(newTUICmd(opts))
	root.AddCommand(newSessionCmd(opts))
	root.AddCommand(newTagCmd(opts))
	root.AddCommand(newAppCmd(opts))
	root.AddCommand(newReportCmd(opts))
	root.AddCommand(newInsightCmd(opts))
	root.AddCommand(newReindexCmd(opts))
	return root
}

func loadApp(opts *rootOptions) (*bootstrap.App, error) {
	cfg, err := config.New(opts.vaultPath)
	if err != nil {
		return nil, err
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if opts.logFormat != "" {
		cfg.Log.Format = opts.logFormat
	}
	return bootstrap.New(cfg, os.Stderr)
}

// withApp loads the app, runs fn and releases the session index afterwards.
func withApp(opts *rootOptions, fn func(app *bootstrap.App) error) error {
	app, err := loadApp(opts)
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()
	return fn(app)
}

func newTUICmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the focuslog terminal UI",
		RunE: func(_ *cobra.Command, _ []string) error {
			return withApp(opts, bootstrap.RunTUI)
		},
	}
}

func newSessionCmd(opts *rootOptions) *cobra.Command {
	session := &cobra.Command{Use: "session", Short: "Work session lifecycle"}

	var tags []string
	var appRef, notes string
	start := &cobra.Command{
		Use:   "start <task>",
		Short: "Start timing a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(app *bootstrap.App) error {
				out, err := app.SessionCLI.Start(context.Background(), strings.Join(args, " "), tags, appRef, notes)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "session started: %s task=%q at=%s\n", out.SessionID, out.TaskName, out.StartedAt.Format(time.RFC3339))
				return nil
			})
		},
	}
	start.Flags().StringSliceVar(&tags, "tags", nil, "tags")
	start.Flags().StringVar(&appRef, "app", "", "tracked app id or name")
	start.Flags().StringVar(&notes, "notes", "", "free-form notes")

	var stopID string
	stop := &cobra.Command{
		Use:   "stop",
		Short: "Stop the active session and record it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(opts, func(app *bootstrap.App) error {
				ctx := context.Background()
				out, err := app.SessionCLI.Stop(ctx, stopID)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				_, _ = fmt.Fprintf(w, "session saved: %s task=%q duration=%s note=%s\n", out.ID, out.TaskName, out.Duration.Round(time.Second), out.Path)
				if out.AppID == "" {
					return nil
				}
				goals, err := app.AnalyticsCLI.CheckGoals(ctx, out.AppID)
				if err != nil {
					app.Logger.Warn("goal check failed", "app", out.AppID, "err", err)
					return nil
				}
				for _, alert := range goals.Reached {
					_, _ = fmt.Fprintf(w, "goal reached: %s %d/%d min\n", alert.Name, alert.TotalMinutes, alert.DailyGoalMinutes)
				}
				return nil
			})
		},
	}
	stop.Flags().StringVar(&stopID, "session-id", "", "optional session id (defaults to active session)")

	status := &cobra.Command{
		Use:   "status",
		Short: "Show the active session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(opts, func(app *bootstrap.App) error {
				active, err := app.SessionCLI.GetActive(context.Background())
				if errors.Is(err, apperrors.ErrNoActiveSession) {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no active session")
					return nil
				}
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s task=%q elapsed=%s tags=%s app=%s\n",
					active.SessionID, active.TaskName, active.Elapsed.Round(time.Second), strings.Join(active.Tags, ","), active.AppName)
				return nil
			})
		},
	}

	cancel := &cobra.Command{
		Use:   "cancel",
		Short: "Discard the active session without recording it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(opts, func(app *bootstrap.App) error {
				if err := app.SessionCLI.Cancel(context.Background()); err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "session cancelled")
				return nil
			})
		},
	}

	var recTags []string
	var recApp, recNotes, recStart, recEnd string
	record := &cobra.Command{
		Use:   "record <task> --start <time> --end <time>",
		Short: "Record a finished session after the fact",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(app *bootstrap.App) error {
				loc, err := app.Config.Location()
				if err != nil {
					return err
				}
				startedAt, err := parseTimestamp(recStart, loc)
				if err != nil {
					return fmt.Errorf("--start: %w", err)
				}
				endedAt, err := parseTimestamp(recEnd, loc)
				if err != nil {
					return fmt.Errorf("--end: %w", err)
				}
				out, err := app.SessionCLI.Record(context.Background(), strings.Join(args, " "), recTags, recApp, recNotes, startedAt, endedAt)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "session recorded: %s duration=%s note=%s\n", out.ID, out.Duration.Round(time.Second), out.Path)
				return nil
			})
		},
	}
	record.Flags().StringSliceVar(&recTags, "tags", nil, "tags")
	record.Flags().StringVar(&recApp, "app", "", "tracked app id or name")
	record.Flags().StringVar(&recNotes, "notes", "", "free-form notes")
	record.Flags().StringVar(&recStart, "start", "", "start time (RFC3339 or \"2006-01-02 15:04\" in the configured timezone)")
	record.Flags().StringVar(&recEnd, "end", "", "end time (RFC3339 or \"2006-01-02 15:04\" in the configured timezone)")

	var listTag, listApp, listSince, listUntil string
	var listJSON bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List recorded sessions, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(opts, func(app *bootstrap.App) error {
				loc, err := app.Config.Location()
				if err != nil {
					return err
				}
				since, err := parseOptionalDate(listSince, loc)
				if err != nil {
					return fmt.Errorf("--since: %w", err)
				}
				until, err := parseOptionalDate(listUntil, loc)
				if err != nil {
					return fmt.Errorf("--until: %w", err)
				}
				sessions, err := app.SessionCLI.List(context.Background(), listTag, listApp, since, until)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				if listJSON {
					return printJSON(w, sessions)
				}
				if len(sessions) == 0 {
					_, _ = fmt.Fprintln(w, "no sessions")
					return nil
				}
				for _, s := range sessions {
					_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", s.ID, s.StartedAt.In(loc).Format(timestampLayout), s.Duration.Round(time.Minute), s.TaskName, strings.Join(s.Tags, ","))
				}
				return nil
			})
		},
	}
	list.Flags().StringVar(&listTag, "tag", "", "only sessions carrying this tag")
	list.Flags().StringVar(&listApp, "app", "", "only sessions for this app id")
	list.Flags().StringVar(&listSince, "since", "", "start date, inclusive (2006-01-02)")
	list.Flags().StringVar(&listUntil, "until", "", "end date, exclusive (2006-01-02)")
	list.Flags().BoolVar(&listJSON, "json", false, "print JSON")

	del := &cobra.Command{
		Use:   "delete <session-id>",
		Short: "Delete a recorded session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(app *bootstrap.App) error {
				if err := app.SessionCLI.Delete(context.Background(), args[0]); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "session deleted: %s\n", args[0])
				return nil
			})
		},
	}

	var confirm bool
	clearCmd := &cobra.Command{
		Use:   "clear --yes",
		Short: "Delete every recorded session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !confirm {
				return fmt.Errorf("refusing to clear sessions without --yes")
			}
			return withApp(opts, func(app *bootstrap.App) error {
				out, err := app.SessionCLI.Clear(context.Background())
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "removed %d sessions\n", out.Removed)
				return nil
			})
		},
	}
	clearCmd.Flags().BoolVar(&confirm, "yes", false, "confirm deletion")

	session.AddCommand(start, stop, status, cancel, record, list, del, clearCmd)
	return session
}

func newTagCmd(opts *rootOptions) *cobra.Command {
	tag := &cobra.Command{Use: "tag", Short: "Known tag list"}

	tag.AddCommand(&cobra.Command{
		Use:   "add <tag>",
		Short: "Add a tag to the known list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(app *bootstrap.App) error {
				tags, err := app.SessionCLI.AddTag(context.Background(), args[0])
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), strings.Join(tags, "\n"))
				return nil
			})
		},
	})

	tag.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List known tags",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(opts, func(app *bootstrap.App) error {
				tags, err := app.SessionCLI.ListTags(context.Background())
				if err != nil {
					return err
				}
				if len(tags) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no tags")
					return nil
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), strings.Join(tags, "\n"))
				return nil
			})
		},
	})
	return tag
}

func newAppCmd(opts *rootOptions) *cobra.Command {
	appCmd := &cobra.Command{Use: "app", Short: "Tracked apps and daily goals"}

	var goal int
	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Track a new app",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(app *bootstrap.App) error {
				out, err := app.AppsCLI.Add(context.Background(), strings.Join(args, " "), goal)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "app added: %s (%s) goal=%dmin\n", out.Name, out.ID, out.DailyGoalMinutes)
				return nil
			})
		},
	}
	add.Flags().IntVar(&goal, "goal", appsdto.DefaultGoal, "daily goal in minutes (0 disables, omitted uses the default)")

	list := &cobra.Command{
		Use:   "list",
		Short: "List tracked apps with today's usage",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(opts, func(app *bootstrap.App) error {
				report, err := app.AnalyticsCLI.Report(context.Background(), "today")
				if err != nil {
					return err
				}
				if len(report.Apps) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no tracked apps")
					return nil
				}
				for _, a := range report.Apps {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d/%dmin\t%d%%\n", a.AppID, a.Name, a.TotalMinutes, a.DailyGoalMinutes, a.ProgressPercent)
				}
				return nil
			})
		},
	}

	setGoal := &cobra.Command{
		Use:   "goal <app> <minutes>",
		Short: "Change an app's daily goal",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			minutes, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("%w: goal must be whole minutes", apperrors.ErrInvalidInput)
			}
			return withApp(opts, func(app *bootstrap.App) error {
				out, err := app.AppsCLI.SetGoal(context.Background(), args[0], minutes)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s goal=%dmin\n", out.Name, out.DailyGoalMinutes)
				return nil
			})
		},
	}

	rename := &cobra.Command{
		Use:   "rename <app> <new-name>",
		Short: "Rename a tracked app",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(app *bootstrap.App) error {
				out, err := app.AppsCLI.Rename(context.Background(), args[0], strings.Join(args[1:], " "))
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "app renamed: %s (%s)\n", out.Name, out.ID)
				return nil
			})
		},
	}

	remove := &cobra.Command{
		Use:   "remove <app>",
		Short: "Stop tracking an app; its sessions are kept",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(app *bootstrap.App) error {
				if err := app.AppsCLI.Remove(context.Background(), args[0]); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "app removed: %s\n", args[0])
				return nil
			})
		},
	}

	appCmd.AddCommand(add, list, setGoal, rename, remove)
	return appCmd
}

func newReportCmd(opts *rootOptions) *cobra.Command {
	var rangeName string
	var asJSON bool
	report := &cobra.Command{
		Use:   "report",
		Short: "Print work statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(opts, func(app *bootstrap.App) error {
				out, err := app.AnalyticsCLI.Report(context.Background(), rangeName)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				if asJSON {
					return printJSON(w, out)
				}
				_, _ = fmt.Fprintf(w, "range: %s\nsessions: %d\ntotal: %dh %dm %ds\naverage: %s\npeak hour: %s\n",
					out.Range, out.SessionCount, out.TotalHours, out.TotalMinutes, out.TotalSeconds, out.AverageLength, out.PeakHour)
				if len(out.ByTask) > 0 {
					_, _ = fmt.Fprintln(w, "\nby task:")
					for _, row := range out.ByTask {
						_, _ = fmt.Fprintf(w, "  %-30s %dmin\n", row.Name, row.Minutes)
					}
				}
				if len(out.ByTag) > 0 {
					_, _ = fmt.Fprintln(w, "\nby tag:")
					for _, row := range out.ByTag {
						_, _ = fmt.Fprintf(w, "  %-30s %dmin\n", row.Name, row.Minutes)
					}
				}
				if len(out.Apps) > 0 {
					_, _ = fmt.Fprintln(w, "\napps today:")
					for _, a := range out.Apps {
						_, _ = fmt.Fprintf(w, "  %-30s %d/%dmin %d%%\n", a.Name, a.TotalMinutes, a.DailyGoalMinutes, a.ProgressPercent)
					}
				}
				return nil
			})
		},
	}
	report.Flags().StringVar(&rangeName, "range", "all", "range: all|today|week|month")
	report.Flags().BoolVar(&asJSON, "json", false, "print JSON")

	var format, exportRange string
	export := &cobra.Command{
		Use:   "export <path>",
		Short: "Write the report to md, html, xlsx or json",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(app *bootstrap.App) error {
				out, err := app.AnalyticsCLI.Export(context.Background(), format, args[0], exportRange)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "exported %s report to %s\n", out.Format, out.Path)
				return nil
			})
		},
	}
	export.Flags().StringVar(&format, "format", "", "md|html|xlsx|json (defaults to the path extension)")
	export.Flags().StringVar(&exportRange, "range", "all", "range: all|today|week|month")

	report.AddCommand(export)
	return report
}

func newInsightCmd(opts *rootOptions) *cobra.Command {
	var provider string
	var refresh, asJSON bool
	insight := &cobra.Command{
		Use:   "insight",
		Short: "Ask a provider for productivity coaching",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(opts, func(app *bootstrap.App) error {
				out, err := app.InsightCLI.Generate(context.Background(), provider, refresh)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				if asJSON {
					return printJSON(w, out)
				}
				_, _ = fmt.Fprintf(w, "%s\n\npeak: %s\n\n", out.Summary, out.PeakProductivity)
				for _, s := range out.Suggestions {
					_, _ = fmt.Fprintf(w, "- %s\n", s)
				}
				_, _ = fmt.Fprintf(w, "\n%s\n", out.Motivation)
				for _, src := range out.Sources {
					_, _ = fmt.Fprintf(w, "source: %s %s\n", src.Title, src.URI)
				}
				if out.Cached {
					_, _ = fmt.Fprintf(w, "(cached from %s, use --refresh to regenerate)\n", out.Provider)
				}
				return nil
			})
		},
	}
	insight.Flags().StringVar(&provider, "provider", "", "builtin provider or insight plugin name")
	insight.Flags().BoolVar(&refresh, "refresh", false, "bypass the insight cache")
	insight.Flags().BoolVar(&asJSON, "json", false, "print JSON")

	insight.AddCommand(&cobra.Command{
		Use:   "providers",
		Short: "List builtin providers and insight plugins",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(opts, func(app *bootstrap.App) error {
				providers, err := app.InsightCLI.Providers(context.Background())
				if err != nil {
					return err
				}
				for _, p := range providers {
					marker := " "
					if p.Default {
						marker = "*"
					}
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s kind=%s enabled=%t", marker, p.Name, p.Kind, p.Enabled)
					if p.Binary != "" {
						_, _ = fmt.Fprintf(cmd.OutOrStdout(), " version=%s binary=%s", p.Version, p.Binary)
					}
					_, _ = fmt.Fprintln(cmd.OutOrStdout())
				}
				return nil
			})
		},
	})

	insight.AddCommand(&cobra.Command{
		Use:   "doctor",
		Short: "Validate insight plugin checksums and lifecycle",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(opts, func(app *bootstrap.App) error {
				results, err := app.InsightCLI.Doctor(context.Background())
				if err != nil {
					return err
				}
				if len(results) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no plugins configured")
					return nil
				}
				for _, r := range results {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s binary=%t checksum=%t lifecycle=%t", r.Name, r.BinaryReachable, r.ChecksumValid, r.LifecycleOK)
					if r.Error != "" {
						_, _ = fmt.Fprintf(cmd.OutOrStdout(), " error=%s", r.Error)
					}
					_, _ = fmt.Fprintln(cmd.OutOrStdout())
				}
				return nil
			})
		},
	})
	return insight
}

func newReindexCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the SQLite session index from vault markdown",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(opts, func(app *bootstrap.App) error {
				out, err := app.SessionCLI.Reindex(context.Background())
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "reindex completed: %d sessions\n", out.Indexed)
				return nil
			})
		},
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// parseTimestamp reads RFC3339, or a wall-clock time in loc (the configured timezone).
func parseTimestamp(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%w: time is required", apperrors.ErrInvalidInput)
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(timestampLayout, raw, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q is neither RFC3339 nor %q", apperrors.ErrInvalidInput, raw, timestampLayout)
	}
	return t, nil
}

func parseOptionalDate(raw string, loc *time.Location) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(raw), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: want 2006-01-02", apperrors.ErrInvalidInput)
	}
	return t, nil
}
