package domain

import (
	"fmt"
	"strings"
	"time"

	apperrors "focuslog/internal/platform/errors"
)

const (
	SchemaVersion      = 1
	DefaultGoalMinutes = 60
)

type App struct {
	ID               string    `yaml:"id"`
	Name             string    `yaml:"name"`
	DailyGoalMinutes int       `yaml:"daily_goal_minutes"`
	CreatedAt        time.Time `yaml:"created_at"`
}

func NormalizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

func ValidateGoal(minutes int) error {
	if minutes < 0 {
		return fmt.Errorf("%w: daily goal must not be negative", apperrors.ErrInvalidInput)
	}
	return nil
}

func (a App) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("%w: app id is required", apperrors.ErrInvalidInput)
	}
	if NormalizeName(a.Name) == "" {
		return fmt.Errorf("%w: app name is required", apperrors.ErrInvalidInput)
	}
	return ValidateGoal(a.DailyGoalMinutes)
}
