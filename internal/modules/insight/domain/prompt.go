package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode"
)

const promptTimeLayout = "2006-01-02T15:04:05.000Z07:00"

type PromptSession struct {
	TaskName string
	Start    time.Time
	End      time.Time
	Tags     []string
	AppID    string
	Notes    string
}

type PromptApp struct {
	ID               string
	Name             string
	DailyGoalMinutes int
}

// PromptStats carries figures the engine already computed so the model does not redo arithmetic.
type PromptStats struct {
	TotalWorkTime  string
	AverageSession string
	PeakHour       string
	TopTasks       []string
	TopTags        []string
	AppProgress    []string
}

type PromptRequest struct {
	Sessions []PromptSession
	Apps     []PromptApp
	Stats    PromptStats
}

const promptIntro = `You are a friendly and encouraging productivity coach. I am providing you with a list of my recent work sessions (including my personal notes) and my daily time goals for specific applications. Please analyze them and provide a concise, actionable report.
Use your knowledge and search the web for the latest, most effective productivity strategies to inform your suggestions.`

const promptInstructions = `Based on all this data (including my notes), provide a report as a JSON object inside a markdown code block. The JSON object should have the following properties:
- "summary": A brief, one-paragraph overview of my work habits, considering the distribution of time across tasks, tags, notes, AND my performance against app time goals.
- "peak_productivity": A single sentence identifying my most productive time of day or day of the week, based on when I start the most sessions.
- "suggestions": An array of 2-3 actionable, personalized tips to improve my productivity. These suggestions should consider my app usage and information from web search.
- "motivation": A short, encouraging, and inspiring message.

Do not include any text outside of the JSON markdown block itself.`

// BuildPrompt renders the coaching prompt. The output is deterministic for a given request.
func BuildPrompt(req PromptRequest) string {
	var b strings.Builder
	b.WriteString(promptIntro)
	b.WriteString("\n\nHere is my work session data:\n")
	b.WriteString(FormatSessions(req.Sessions, req.Apps))
	b.WriteString("\n\n")
	b.WriteString(FormatAppGoals(req.Apps))
	if stats := formatStats(req.Stats); stats != "" {
		b.WriteString("\n\n")
		b.WriteString(stats)
	}
	b.WriteString("\n\n")
	b.WriteString(promptInstructions)
	b.WriteString("\n")
	return b.String()
}

func FormatSessions(sessions []PromptSession, apps []PromptApp) string {
	names := make(map[string]string, len(apps))
	for _, app := range apps {
		names[app.ID] = app.Name
	}
	lines := make([]string, 0, len(sessions))
	for _, s := range sessions {
		minutes := 0
		if d := s.End.Sub(s.Start); d > 0 {
			minutes = int(math.Round(float64(d.Milliseconds()) / 60000))
		}
		tags := "Tags: None"
		if len(s.Tags) > 0 {
			clean := make([]string, 0, len(s.Tags))
			for _, tag := range s.Tags {
				clean = append(clean, sanitize(tag))
			}
			tags = "Tags: [" + strings.Join(clean, ", ") + "]"
		}
		app := "App: None"
		if s.AppID != "" {
			name, ok := names[s.AppID]
			if !ok {
				name = "Unknown App"
			}
			app = "App: " + sanitize(name)
		}
		notes := "Notes: None"
		if strings.TrimSpace(s.Notes) != "" {
			notes = "Notes: " + quote(s.Notes)
		}
		lines = append(lines, fmt.Sprintf("- Task: %s, Start: %s, End: %s, Duration: %d minutes, %s, %s, %s",
			quote(s.TaskName),
			s.Start.UTC().Format(promptTimeLayout),
			s.End.UTC().Format(promptTimeLayout),
			minutes, tags, app, notes))
	}
	return strings.Join(lines, "\n")
}

func FormatAppGoals(apps []PromptApp) string {
	if len(apps) == 0 {
		return "No specific app time goals have been set."
	}
	lines := make([]string, 0, len(apps)+1)
	lines = append(lines, "Here are my daily time goals for specific apps:")
	for _, app := range apps {
		lines = append(lines, fmt.Sprintf("- %s: %d minutes per day", sanitize(app.Name), app.DailyGoalMinutes))
	}
	return strings.Join(lines, "\n")
}

func formatStats(stats PromptStats) string {
	if stats.TotalWorkTime == "" {
		return ""
	}
	lines := []string{
		"Here are statistics already computed from these sessions:",
		"- Total work time: " + stats.TotalWorkTime,
		"- Average session: " + stats.AverageSession,
		"- Most sessions start at: " + stats.PeakHour,
	}
	if len(stats.TopTasks) > 0 {
		lines = append(lines, "- Time by task: "+joinSanitized(stats.TopTasks))
	}
	if len(stats.TopTags) > 0 {
		lines = append(lines, "- Time by tag: "+joinSanitized(stats.TopTags))
	}
	if len(stats.AppProgress) > 0 {
		lines = append(lines, "- App goal progress today: "+joinSanitized(stats.AppProgress))
	}
	return strings.Join(lines, "\n")
}

func joinSanitized(items []string) string {
	clean := make([]string, 0, len(items))
	for _, item := range items {
		clean = append(clean, sanitize(item))
	}
	return strings.Join(clean, "; ")
}

// sanitize collapses control characters so user text cannot break the line structure.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
}

// quote wraps a value in plain double quotes; embedded quotes are kept as typed.
func quote(s string) string {
	return `"` + sanitize(s) + `"`
}
