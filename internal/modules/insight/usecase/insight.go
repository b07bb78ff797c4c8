package usecase

import (
	"context"

	"focuslog/internal/modules/insight/dto"
	insightin "focuslog/internal/modules/insight/port/in"
	"focuslog/internal/modules/insight/service"
)

type Interactor struct {
	svc     *service.InsightService
	plugins *service.PluginRegistry
}

func NewInteractor(svc *service.InsightService, plugins *service.PluginRegistry) insightin.Usecase {
	return &Interactor{svc: svc, plugins: plugins}
}

func (i *Interactor) Generate(ctx context.Context, input dto.GenerateInput) (dto.GenerateOutput, error) {
	generated, err := i.svc.Generate(ctx, input.Provider, input.Refresh)
	if err != nil {
		return dto.GenerateOutput{}, err
	}
	insight := generated.Result.Insight
	out := dto.GenerateOutput{
		Provider:         generated.Provider,
		Summary:          insight.Summary,
		PeakProductivity: insight.PeakProductivity,
		Suggestions:      append([]string(nil), insight.Suggestions...),
		Motivation:       insight.Motivation,
		Sources:          make([]dto.SourceOutput, 0, len(generated.Result.Sources)),
		Cached:           generated.Cached,
	}
	for _, source := range generated.Result.Sources {
		out.Sources = append(out.Sources, dto.SourceOutput{URI: source.URI, Title: source.Title})
	}
	return out, nil
}

func (i *Interactor) Providers(ctx context.Context) ([]dto.ProviderInfo, error) {
	fallback := i.svc.DefaultProvider()
	out := []dto.ProviderInfo{}
	for _, name := range i.svc.ProviderNames() {
		out = append(out, dto.ProviderInfo{Name: name, Kind: "builtin", Enabled: true, Default: name == fallback})
	}
	if i.plugins == nil {
		return out, nil
	}
	manifests, err := i.plugins.Manifests(ctx)
	if err != nil {
		return nil, err
	}
	for _, m := range manifests {
		out = append(out, dto.ProviderInfo{
			Name:    m.Name,
			Kind:    "plugin",
			Enabled: m.Enabled,
			Default: m.Name == fallback,
			Version: m.Version,
			Binary:  m.Binary,
		})
	}
	return out, nil
}

func (i *Interactor) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	if i.plugins == nil {
		return []dto.DoctorResult{}, nil
	}
	reports, err := i.plugins.Doctor(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.DoctorResult, 0, len(reports))
	for _, r := range reports {
		result := dto.DoctorResult{
			Name:            r.Name,
			BinaryReachable: r.BinaryReachable,
			ChecksumValid:   r.ChecksumValid,
			LifecycleOK:     r.LifecycleOK,
		}
		if r.Err != nil {
			result.Error = r.Err.Error()
		}
		out = append(out, result)
	}
	return out, nil
}
