package out

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	sessionout "focuslog/internal/modules/session/port/out"
)

type tagsFile struct {
	Tags []string `yaml:"tags"`
}

type YAMLTagStore struct {
	path string
}

func NewYAMLTagStore(stateDir string) sessionout.TagStore {
	return &YAMLTagStore{path: filepath.Join(stateDir, "tags.yaml")}
}

func (s *YAMLTagStore) LoadTags(_ context.Context) ([]string, error) {
	payload, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("read tags: %w", err)
	}
	file := tagsFile{}
	if err := yaml.Unmarshal(payload, &file); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	if file.Tags == nil {
		return []string{}, nil
	}
	sort.Strings(file.Tags)
	return file.Tags, nil
}

func (s *YAMLTagStore) SaveTags(_ context.Context, tags []string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create tags dir: %w", err)
	}
	payload, err := yaml.Marshal(tagsFile{Tags: tags})
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}
	if err := os.WriteFile(s.path, payload, 0o644); err != nil {
		return fmt.Errorf("write tags: %w", err)
	}
	return nil
}
