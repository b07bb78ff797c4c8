package out

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"time"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"

	"focuslog/internal/modules/insight/adapter/out/rpc"
	"focuslog/internal/modules/insight/domain"
	insightout "focuslog/internal/modules/insight/port/out"
	"focuslog/internal/platform/logging"
)

const (
	defaultStartTimeout = 3 * time.Second
	defaultCallTimeout  = 5 * time.Second
)

// GRPCHost launches an insight plugin per call and talks to it over go-plugin's gRPC transport.
type GRPCHost struct {
	generateTimeout time.Duration
	logger          *slog.Logger
}

func NewGRPCHost(generateTimeout time.Duration, logger *slog.Logger) insightout.PluginHost {
	if generateTimeout <= 0 {
		generateTimeout = 60 * time.Second
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &GRPCHost{generateTimeout: generateTimeout, logger: logger}
}

func (h *GRPCHost) CheckLifecycle(ctx context.Context, manifest domain.Manifest) error {
	_, err := h.GetMetadata(ctx, manifest)
	return err
}

func (h *GRPCHost) GetMetadata(ctx context.Context, manifest domain.Manifest) (domain.Metadata, error) {
	client, closeFn, err := h.connect(manifest)
	if err != nil {
		return domain.Metadata{}, err
	}
	defer closeFn()

	callCtx, cancel := callContext(ctx, defaultCallTimeout)
	defer cancel()
	meta, err := client.GetMetadata(callCtx)
	if err != nil {
		return domain.Metadata{}, fmt.Errorf("get metadata: %w", err)
	}
	capabilities := make([]domain.Capability, 0, len(meta.Capabilities))
	for _, capability := range meta.Capabilities {
		capabilities = append(capabilities, domain.Capability(capability))
	}
	return domain.Metadata{Name: meta.Name, Version: meta.Version, Capabilities: capabilities}, nil
}

func (h *GRPCHost) Complete(ctx context.Context, manifest domain.Manifest, prompt string) (domain.Completion, error) {
	client, closeFn, err := h.connect(manifest)
	if err != nil {
		return domain.Completion{}, err
	}
	defer closeFn()

	callCtx, cancel := callContext(ctx, h.generateTimeout)
	defer cancel()
	started := time.Now()
	response, err := client.Generate(callCtx, &rpc.GenerateRequest{Prompt: prompt})
	if err != nil {
		if callCtx.Err() == context.DeadlineExceeded {
			return domain.Completion{}, fmt.Errorf("%w: %s", domain.ErrPluginTimeout, manifest.Name)
		}
		return domain.Completion{}, fmt.Errorf("generate insight: %w", err)
	}
	h.logger.Debug("plugin completion received", "plugin", manifest.Name, "elapsed", time.Since(started))
	completion := domain.Completion{Text: response.Text}
	for _, source := range response.Sources {
		completion.Sources = append(completion.Sources, domain.Source{URI: source.URI, Title: source.Title})
	}
	return completion, nil
}

func (h *GRPCHost) connect(manifest domain.Manifest) (rpc.InsightPluginClient, func(), error) {
	client := plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig:  rpc.HandshakeConfig,
		AllowedProtocols: []plugin.Protocol{plugin.ProtocolGRPC},
		Plugins:          rpc.PluginMap(nil),
		Cmd:              exec.Command(manifest.Binary),
		Managed:          true,
		StartTimeout:     defaultStartTimeout,
		Logger: hclog.New(&hclog.LoggerOptions{
			Name:   "plugin." + manifest.Name,
			Output: hclogOutput{logger: h.logger},
			Level:  hclog.Warn,
		}),
	})
	closeFn := func() { client.Kill() }

	rpcClient, err := client.Client()
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("start plugin client: %w", err)
	}
	raw, err := rpcClient.Dispense(rpc.PluginMapKey)
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("dispense plugin: %w", err)
	}
	typed, ok := raw.(rpc.InsightPluginClient)
	if !ok {
		closeFn()
		return nil, nil, fmt.Errorf("plugin rpc client type mismatch")
	}
	return typed, closeFn, nil
}

func callContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := parent.Deadline(); ok {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}

// hclogOutput forwards go-plugin's log lines into the application logger.
type hclogOutput struct {
	logger *slog.Logger
}

func (o hclogOutput) Write(p []byte) (int, error) {
	o.logger.Debug("plugin host", "line", string(bytesTrimNewline(p)))
	return len(p), nil
}

func bytesTrimNewline(p []byte) []byte {
	for len(p) > 0 && (p[len(p)-1] == '\n' || p[len(p)-1] == '\r') {
		p = p[:len(p)-1]
	}
	return p
}
