package dto

import "time"

// DefaultGoal passed as AddInput.DailyGoalMinutes selects the registry's default goal.
const DefaultGoal = -1

type AddInput struct {
	Name             string
	DailyGoalMinutes int
}

type SetGoalInput struct {
	AppID            string
	DailyGoalMinutes int
}

type RenameInput struct {
	AppID string
	Name  string
}

type AppOutput struct {
	ID               string
	Name             string
	DailyGoalMinutes int
	CreatedAt        time.Time
}
