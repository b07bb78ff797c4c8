package out

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"focuslog/internal/modules/session/domain"
	sessionout "focuslog/internal/modules/session/port/out"
	apperrors "focuslog/internal/platform/errors"
	"focuslog/internal/platform/logging"
	"focuslog/internal/platform/markdown"
	"focuslog/internal/platform/slug"
)

// TimeLayout keeps millisecond precision and sorts lexically when times are UTC.
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

type noteMeta struct {
	SchemaVersion   int      `yaml:"schema_version"`
	ID              string   `yaml:"id"`
	Task            string   `yaml:"task"`
	StartedAt       string   `yaml:"started_at"`
	EndedAt         string   `yaml:"ended_at"`
	DurationSeconds int64    `yaml:"duration_seconds"`
	Tags            []string `yaml:"tags"`
	AppID           string   `yaml:"app_id,omitempty"`
	Notes           string   `yaml:"notes,omitempty"`
}

// VaultSessionStore keeps one Markdown note per session under sessions/YYYY/MM/DD.
type VaultSessionStore struct {
	vaultPath string
	logger    *slog.Logger
}

func NewVaultSessionStore(vaultPath string, logger *slog.Logger) sessionout.SessionStore {
	if logger == nil {
		logger = logging.Discard()
	}
	return &VaultSessionStore{vaultPath: vaultPath, logger: logger}
}

func (s *VaultSessionStore) root() string {
	return filepath.Join(s.vaultPath, "sessions")
}

func (s *VaultSessionStore) Save(_ context.Context, session domain.Session) (string, error) {
	started := session.StartedAt.UTC()
	dir := filepath.Join(s.root(), started.Format("2006"), started.Format("01"), started.Format("02"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create session dir: %w", err)
	}
	shortID := session.ID
	if len(shortID) > 8 {
		shortID = shortID[:8]
	}
	name := fmt.Sprintf("%s-%s-%s.md", started.Format("150405"), slug.Make(session.TaskName), shortID)
	path := filepath.Join(dir, name)

	tags := session.Tags
	if tags == nil {
		tags = []string{}
	}
	meta := noteMeta{
		SchemaVersion:   domain.SchemaVersion,
		ID:              session.ID,
		Task:            session.TaskName,
		StartedAt:       started.Format(TimeLayout),
		EndedAt:         session.EndedAt.UTC().Format(TimeLayout),
		DurationSeconds: int64(session.Duration() / time.Second),
		Tags:            tags,
		AppID:           session.AppID,
		Notes:           session.Notes,
	}
	rendered, err := markdown.RenderFrontmatter(meta, renderBody(session))
	if err != nil {
		return "", err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(rendered), 0o644); err != nil {
		return "", fmt.Errorf("write session note: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", fmt.Errorf("write session note: %w", err)
	}
	return path, nil
}

func renderBody(session domain.Session) string {
	b := strings.Builder{}
	fmt.Fprintf(&b, "# %s\n\n", session.TaskName)
	fmt.Fprintf(&b, "- Started: %s\n", session.StartedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "- Ended: %s\n", session.EndedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "- Duration: %s\n", session.Duration().Round(time.Second))
	if len(session.Tags) > 0 {
		hashed := make([]string, 0, len(session.Tags))
		for _, tag := range session.Tags {
			hashed = append(hashed, "#"+strings.ReplaceAll(tag, " ", "-"))
		}
		fmt.Fprintf(&b, "- Tags: %s\n", strings.Join(hashed, " "))
	}
	if session.Notes != "" {
		fmt.Fprintf(&b, "\n## Notes\n\n%s\n", session.Notes)
	}
	return b.String()
}

// List reads every session note. Notes that cannot be parsed are skipped and logged
// so one hand-edited file does not hide the rest of the history.
func (s *VaultSessionStore) List(_ context.Context) ([]domain.Session, error) {
	paths, err := s.notePaths()
	if err != nil {
		return nil, err
	}
	out := make([]domain.Session, 0, len(paths))
	for _, path := range paths {
		session, readErr := readNote(path)
		if readErr != nil {
			s.logger.Warn("skip session note", "path", path, "error", readErr)
			continue
		}
		out = append(out, session)
	}
	return out, nil
}

func (s *VaultSessionStore) Delete(_ context.Context, sessionID string) error {
	paths, err := s.notePaths()
	if err != nil {
		return err
	}
	for _, path := range paths {
		session, readErr := readNote(path)
		if readErr != nil || session.ID != sessionID {
			continue
		}
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("delete session note: %w", err)
		}
		return nil
	}
	return fmt.Errorf("session %q: %w", sessionID, apperrors.ErrNotFound)
}

func (s *VaultSessionStore) DeleteAll(_ context.Context) (int, error) {
	paths, err := s.notePaths()
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, path := range paths {
		if _, readErr := readNote(path); readErr != nil {
			// leave files focuslog did not write
			continue
		}
		if err := os.Remove(path); err != nil {
			return removed, fmt.Errorf("delete session note: %w", err)
		}
		removed++
	}
	return removed, nil
}

func (s *VaultSessionStore) notePaths() ([]string, error) {
	paths := []string{}
	err := filepath.WalkDir(s.root(), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == ".md" {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("walk session notes: %w", err)
	}
	sort.Strings(paths)
	return paths, nil
}

func readNote(path string) (domain.Session, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return domain.Session{}, fmt.Errorf("read %s: %w", path, err)
	}
	meta := noteMeta{}
	if _, err := markdown.DecodeFrontmatter(string(content), &meta); err != nil {
		return domain.Session{}, err
	}
	if meta.ID == "" {
		return domain.Session{}, fmt.Errorf("session note has no id")
	}
	started, err := time.Parse(time.RFC3339Nano, meta.StartedAt)
	if err != nil {
		return domain.Session{}, fmt.Errorf("parse started_at: %w", err)
	}
	ended, err := time.Parse(time.RFC3339Nano, meta.EndedAt)
	if err != nil {
		return domain.Session{}, fmt.Errorf("parse ended_at: %w", err)
	}
	return domain.Session{
		ID:        meta.ID,
		TaskName:  domain.NormalizeTaskName(meta.Task),
		StartedAt: started.UTC(),
		EndedAt:   ended.UTC(),
		Tags:      domain.NormalizeTags(meta.Tags),
		AppID:     meta.AppID,
		Notes:     meta.Notes,
		NotePath:  path,
	}, nil
}
