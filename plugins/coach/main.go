// Command coach is a rule-based insight plugin. It needs no network access and reads
// everything it reports from the statistics block of the prompt.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hashicorp/go-plugin"

	"focuslog/internal/modules/insight/adapter/out/rpc"
)

type server struct{}

func (s *server) GetMetadata(_ context.Context, _ *rpc.Empty) (*rpc.Metadata, error) {
	return &rpc.Metadata{Name: "coach", Version: "1.0.0", Capabilities: []string{"insight"}}, nil
}

func (s *server) Generate(_ context.Context, in *rpc.GenerateRequest) (*rpc.GenerateResponse, error) {
	if strings.TrimSpace(in.Prompt) == "" {
		return nil, fmt.Errorf("empty prompt")
	}
	facts := scan(in.Prompt)
	report := map[string]any{
		"summary":           summary(facts),
		"peak_productivity": peak(facts),
		"suggestions":       suggestions(facts),
		"motivation":        "Every session you log is a vote for the person you want to be. Keep stacking them.",
	}
	raw, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, err
	}
	return &rpc.GenerateResponse{Text: "```json\n" + string(raw) + "\n```"}, nil
}

type facts struct {
	sessions    int
	untagged    int
	noted       int
	total       string
	average     string
	peakHour    string
	tasks       []string
	appProgress []string
}

func scan(prompt string) facts {
	var f facts
	for _, line := range strings.Split(prompt, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "- Task: "):
			f.sessions++
			if strings.Contains(line, "Tags: None") {
				f.untagged++
			}
			if !strings.HasSuffix(line, "Notes: None") {
				f.noted++
			}
		case strings.HasPrefix(line, "- Total work time: "):
			f.total = strings.TrimPrefix(line, "- Total work time: ")
		case strings.HasPrefix(line, "- Average session: "):
			f.average = strings.TrimPrefix(line, "- Average session: ")
		case strings.HasPrefix(line, "- Most sessions start at: "):
			f.peakHour = strings.TrimPrefix(line, "- Most sessions start at: ")
		case strings.HasPrefix(line, "- Time by task: "):
			f.tasks = strings.Split(strings.TrimPrefix(line, "- Time by task: "), "; ")
		case strings.HasPrefix(line, "- App goal progress today: "):
			f.appProgress = strings.Split(strings.TrimPrefix(line, "- App goal progress today: "), "; ")
		}
	}
	return f
}

func summary(f facts) string {
	parts := []string{fmt.Sprintf("You logged %d sessions", f.sessions)}
	if f.total != "" {
		parts[0] += " totalling " + f.total
	}
	if f.average != "" {
		parts = append(parts, "with an average length of "+f.average)
	}
	text := strings.Join(parts, " ") + "."
	if len(f.tasks) > 0 {
		text += " Most of your time went to " + f.tasks[0] + "."
	}
	if len(f.appProgress) > 0 {
		text += " App goals today: " + strings.Join(f.appProgress, ", ") + "."
	}
	return text
}

func peak(f facts) string {
	if f.peakHour == "" || f.peakHour == "N/A" {
		return "There is not enough data yet to find your peak hour."
	}
	return fmt.Sprintf("You start the most sessions around %s.", f.peakHour)
}

func suggestions(f facts) []string {
	out := []string{}
	if f.peakHour != "" && f.peakHour != "N/A" {
		out = append(out, fmt.Sprintf("Protect the hour around %s for your hardest task of the day.", f.peakHour))
	}
	if f.sessions > 0 && f.untagged*2 > f.sessions {
		out = append(out, "Tag your sessions so the tag breakdown can show where your time really goes.")
	}
	if f.noted == 0 && f.sessions > 0 {
		out = append(out, "Add a one-line note when you stop a session to capture what moved forward.")
	}
	if len(out) < 2 {
		out = append(out, "Try 50 minute focus blocks followed by a 10 minute break.")
	}
	return out
}

func main() {
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: rpc.HandshakeConfig,
		Plugins:         rpc.PluginMap(&server{}),
		GRPCServer:      plugin.DefaultGRPCServer,
	})
}
