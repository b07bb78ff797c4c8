package out

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"focuslog/internal/modules/apps/domain"
	appsout "focuslog/internal/modules/apps/port/out"
)

type appsFile struct {
	SchemaVersion int          `yaml:"schema_version"`
	Apps          []domain.App `yaml:"apps"`
}

type YAMLAppStore struct {
	mu   sync.Mutex
	path string
}

func NewYAMLAppStore(stateDir string) appsout.AppStore {
	return &YAMLAppStore{path: filepath.Join(stateDir, "apps.yaml")}
}

func (s *YAMLAppStore) Load(_ context.Context) ([]domain.App, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	payload, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []domain.App{}, nil
		}
		return nil, fmt.Errorf("read apps: %w", err)
	}
	file := appsFile{}
	if err := yaml.Unmarshal(payload, &file); err != nil {
		return nil, fmt.Errorf("decode apps: %w", err)
	}
	if file.SchemaVersion > domain.SchemaVersion {
		return nil, fmt.Errorf("decode apps: unsupported schema version %d", file.SchemaVersion)
	}
	if file.Apps == nil {
		file.Apps = []domain.App{}
	}
	return file.Apps, nil
}

func (s *YAMLAppStore) Save(_ context.Context, apps []domain.App) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create apps dir: %w", err)
	}
	payload, err := yaml.Marshal(appsFile{SchemaVersion: domain.SchemaVersion, Apps: apps})
	if err != nil {
		return fmt.Errorf("marshal apps: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return fmt.Errorf("write apps: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace apps: %w", err)
	}
	return nil
}
