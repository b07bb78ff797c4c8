package out

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	analyticsout "focuslog/internal/modules/analytics/port/out"
)

const ledgerRetainDays = 14

// FileAlertLedger stores delivered goal alerts as {"2026-03-10": ["app-id"]}.
type FileAlertLedger struct {
	mu   sync.Mutex
	path string
}

func NewFileAlertLedger(stateDir string) analyticsout.AlertLedger {
	return &FileAlertLedger{path: filepath.Join(stateDir, "goal-alerts.json")}
}

func (l *FileAlertLedger) Delivered(_ context.Context, day, appID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entries, err := l.load()
	if err != nil {
		return false, err
	}
	for _, id := range entries[day] {
		if id == appID {
			return true, nil
		}
	}
	return false, nil
}

func (l *FileAlertLedger) MarkDelivered(_ context.Context, day, appID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	entries, err := l.load()
	if err != nil {
		return err
	}
	entries[day] = append(entries[day], appID)
	prune(entries)
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("create alert ledger dir: %w", err)
	}
	payload, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal alert ledger: %w", err)
	}
	if err := os.WriteFile(l.path, payload, 0o644); err != nil {
		return fmt.Errorf("write alert ledger: %w", err)
	}
	return nil
}

func (l *FileAlertLedger) load() (map[string][]string, error) {
	entries := map[string][]string{}
	payload, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return entries, nil
		}
		return nil, fmt.Errorf("read alert ledger: %w", err)
	}
	if err := json.Unmarshal(payload, &entries); err != nil {
		return nil, fmt.Errorf("decode alert ledger: %w", err)
	}
	return entries, nil
}

// prune keeps the most recent days; ISO dates sort chronologically.
func prune(entries map[string][]string) {
	if len(entries) <= ledgerRetainDays {
		return
	}
	days := make([]string, 0, len(entries))
	for day := range entries {
		days = append(days, day)
	}
	sort.Strings(days)
	for _, day := range days[:len(days)-ledgerRetainDays] {
		delete(entries, day)
	}
}
