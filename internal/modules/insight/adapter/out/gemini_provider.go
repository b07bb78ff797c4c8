package out

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"focuslog/internal/modules/insight/domain"
	insightout "focuslog/internal/modules/insight/port/out"
)

const (
	GeminiProviderName    = "gemini"
	DefaultGeminiEndpoint = "https://generativelanguage.googleapis.com/"
	DefaultGeminiModel    = "gemini-2.5-flash"
	geminiAPIVersion      = "v1beta"
)

var ErrMissingAPIKey = errors.New("gemini api key is not set (GEMINI_API_KEY or insight.gemini.api_key)")

type GeminiConfig struct {
	// Endpoint is the API base URL; the API version is appended by the client.
	Endpoint string
	Model    string
	APIKey   string
	Timeout  time.Duration
}

// GeminiProvider asks a Gemini model for coaching with Google Search grounding enabled.
type GeminiProvider struct {
	cfg    GeminiConfig
	client *http.Client
}

func NewGeminiProvider(cfg GeminiConfig, client *http.Client) insightout.Provider {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultGeminiEndpoint
	}
	if cfg.Model == "" {
		cfg.Model = DefaultGeminiModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &GeminiProvider{cfg: cfg, client: client}
}

func (p *GeminiProvider) Name() string { return GeminiProviderName }

func (p *GeminiProvider) Complete(ctx context.Context, prompt string) (domain.Completion, error) {
	if strings.TrimSpace(p.cfg.APIKey) == "" {
		return domain.Completion{}, ErrMissingAPIKey
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     p.cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: p.client,
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    p.cfg.Endpoint,
			APIVersion: geminiAPIVersion,
		},
	})
	if err != nil {
		return domain.Completion{}, fmt.Errorf("create gemini client: %w", err)
	}

	resp, err := client.Models.GenerateContent(ctx, p.cfg.Model, genai.Text(prompt), &genai.GenerateContentConfig{
		Tools: []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
	})
	if err != nil {
		return domain.Completion{}, fmt.Errorf("gemini generate content: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return domain.Completion{}, fmt.Errorf("gemini returned no candidates")
	}

	candidate := resp.Candidates[0]
	var text strings.Builder
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if part != nil {
				text.WriteString(part.Text)
			}
		}
	}
	completion := domain.Completion{Text: text.String()}
	if candidate.GroundingMetadata != nil {
		for _, chunk := range candidate.GroundingMetadata.GroundingChunks {
			if chunk == nil || chunk.Web == nil {
				continue
			}
			completion.Sources = append(completion.Sources, domain.Source{URI: chunk.Web.URI, Title: chunk.Web.Title})
		}
	}
	return completion, nil
}
