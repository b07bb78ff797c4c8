package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"focuslog/internal/modules/insight/domain"
	insightout "focuslog/internal/modules/insight/port/out"
)

// PluginRegistry resolves insight plugins from their manifests and verifies them before use.
type PluginRegistry struct {
	store insightout.ManifestStore
	host  insightout.PluginHost
}

func NewPluginRegistry(store insightout.ManifestStore, host insightout.PluginHost) *PluginRegistry {
	return &PluginRegistry{store: store, host: host}
}

func (r *PluginRegistry) Manifests(ctx context.Context) ([]domain.Manifest, error) {
	return r.loadValidated(ctx)
}

type DoctorReport struct {
	Name            string
	BinaryReachable bool
	ChecksumValid   bool
	LifecycleOK     bool
	Err             error
}

func (r *PluginRegistry) Doctor(ctx context.Context) ([]DoctorReport, error) {
	manifests, err := r.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	reports := make([]DoctorReport, 0, len(manifests))
	for _, m := range manifests {
		report := DoctorReport{Name: m.Name}
		if err := m.Validate(); err != nil {
			report.Err = err
			reports = append(reports, report)
			continue
		}
		report.BinaryReachable = fileExists(m.Binary)
		if report.BinaryReachable {
			report.ChecksumValid = checksumMatches(m.Binary, m.SHA256) == nil
		}
		if report.BinaryReachable && report.ChecksumValid && m.Enabled && r.host != nil {
			if err := r.host.CheckLifecycle(ctx, m); err != nil {
				report.Err = err
			} else {
				report.LifecycleOK = true
			}
		}
		switch {
		case !report.BinaryReachable:
			report.Err = fmt.Errorf("binary does not exist: %s", m.Binary)
		case !report.ChecksumValid:
			report.Err = domain.ErrChecksumMismatch
		case !m.HasCapability(domain.CapabilityInsight):
			report.Err = fmt.Errorf("%w: %s", domain.ErrCapabilityMissing, domain.CapabilityInsight)
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// Provider returns a runnable provider for the named plugin, or ErrUnknownProvider when no manifest carries that name.
func (r *PluginRegistry) Provider(ctx context.Context, name string) (insightout.Provider, error) {
	manifests, err := r.loadValidated(ctx)
	if err != nil {
		return nil, err
	}
	var manifest domain.Manifest
	found := false
	for _, item := range manifests {
		if item.Name == name {
			manifest = item
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownProvider, name)
	}
	if !manifest.Enabled {
		return nil, fmt.Errorf("%w: %s", domain.ErrPluginDisabled, name)
	}
	if !manifest.HasCapability(domain.CapabilityInsight) {
		return nil, fmt.Errorf("%w: %s", domain.ErrCapabilityMissing, domain.CapabilityInsight)
	}
	if err := checksumMatches(manifest.Binary, manifest.SHA256); err != nil {
		return nil, err
	}
	if r.host == nil {
		return nil, fmt.Errorf("plugin host is not configured")
	}
	return pluginProvider{manifest: manifest, host: r.host}, nil
}

func (r *PluginRegistry) loadValidated(ctx context.Context) ([]domain.Manifest, error) {
	if r == nil || r.store == nil {
		return []domain.Manifest{}, nil
	}
	manifests, err := r.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	seen := map[string]struct{}{}
	for _, manifest := range manifests {
		if err := manifest.Validate(); err != nil {
			return nil, fmt.Errorf("plugin %q: %w", manifest.Name, err)
		}
		if _, ok := seen[manifest.Name]; ok {
			return nil, fmt.Errorf("duplicate plugin name: %s", manifest.Name)
		}
		seen[manifest.Name] = struct{}{}
	}
	return manifests, nil
}

type pluginProvider struct {
	manifest domain.Manifest
	host     insightout.PluginHost
}

func (p pluginProvider) Name() string { return p.manifest.Name }

func (p pluginProvider) Complete(ctx context.Context, prompt string) (domain.Completion, error) {
	completion, err := p.host.Complete(ctx, p.manifest, prompt)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return domain.Completion{}, fmt.Errorf("%w: %s", domain.ErrPluginTimeout, p.manifest.Name)
		}
		return domain.Completion{}, err
	}
	return completion, nil
}

func checksumMatches(path string, expected string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read plugin binary: %w", err)
	}
	hash := sha256.Sum256(payload)
	if hex.EncodeToString(hash[:]) != expected {
		return fmt.Errorf("%w: %s", domain.ErrChecksumMismatch, filepath.Base(path))
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
