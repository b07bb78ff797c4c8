package dto

import "time"

type StartInput struct {
	TaskName string
	Tags     []string
	AppID    string
	Notes    string
}

type StartOutput struct {
	SessionID string
	TaskName  string
	Tags      []string
	AppID     string
	StartedAt time.Time
}

type StopInput struct {
	SessionID string
}

// RecordInput logs a session that was not timed live.
type RecordInput struct {
	TaskName  string
	Tags      []string
	AppID     string
	Notes     string
	StartedAt time.Time
	EndedAt   time.Time
}

type ActiveSessionOutput struct {
	SessionID string
	TaskName  string
	Tags      []string
	AppID     string
	AppName   string
	Notes     string
	StartedAt time.Time
	Elapsed   time.Duration
}

type ListInput struct {
	Tag   string
	AppID string
	Since time.Time
	Until time.Time
}

type SessionOutput struct {
	ID        string
	TaskName  string
	StartedAt time.Time
	EndedAt   time.Time
	Duration  time.Duration
	Tags      []string
	AppID     string
	Notes     string
	Path      string
}

type ClearOutput struct {
	Removed int
}

type ReindexOutput struct {
	Indexed int
}
