package domain

import (
	"sort"
	"strings"
	"time"
)

const (
	SchemaVersion   = 1
	DefaultTaskName = "Untitled Task"
)

type ActiveSession struct {
	SessionID string    `json:"session_id"`
	TaskName  string    `json:"task_name"`
	Tags      []string  `json:"tags,omitempty"`
	AppID     string    `json:"app_id,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	StartedAt time.Time `json:"started_at"`
}

type Session struct {
	ID        string
	TaskName  string
	StartedAt time.Time
	EndedAt   time.Time
	Tags      []string
	AppID     string
	Notes     string
	NotePath  string
}

func (s Session) Duration() time.Duration {
	if s.EndedAt.Before(s.StartedAt) {
		return 0
	}
	return s.EndedAt.Sub(s.StartedAt)
}

// Complete turns the running session into a finished one ending at endedAt.
// An end before the start (clock skew) is pinned to the start.
func (a ActiveSession) Complete(endedAt time.Time) Session {
	if endedAt.Before(a.StartedAt) {
		endedAt = a.StartedAt
	}
	return Session{
		ID:        a.SessionID,
		TaskName:  a.TaskName,
		StartedAt: a.StartedAt,
		EndedAt:   endedAt,
		Tags:      append([]string(nil), a.Tags...),
		AppID:     a.AppID,
		Notes:     a.Notes,
	}
}

func NormalizeTaskName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultTaskName
	}
	return name
}

// NormalizeTags trims tags, drops blanks and keeps the first occurrence of each tag.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// SplitTags accepts comma separated input as typed into a single field.
func SplitTags(raw ...string) []string {
	out := []string{}
	for _, item := range raw {
		out = append(out, strings.Split(item, ",")...)
	}
	return NormalizeTags(out)
}

func HasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Filter selects sessions for listing. Zero fields match everything; Until is exclusive.
type Filter struct {
	Tag   string
	AppID string
	Since time.Time
	Until time.Time
}

func (f Filter) Match(s Session) bool {
	if f.Tag != "" && !HasTag(s.Tags, f.Tag) {
		return false
	}
	if f.AppID != "" && s.AppID != f.AppID {
		return false
	}
	if !f.Since.IsZero() && s.StartedAt.Before(f.Since) {
		return false
	}
	if !f.Until.IsZero() && !s.StartedAt.Before(f.Until) {
		return false
	}
	return true
}

func SortNewestFirst(sessions []Session) {
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].StartedAt.After(sessions[j].StartedAt)
	})
}

func SortOldestFirst(sessions []Session) {
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].StartedAt.Before(sessions[j].StartedAt)
	})
}
