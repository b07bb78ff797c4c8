// Package rpc is the wire contract between focuslog and out-of-process insight plugins.
// Messages travel as JSON over go-plugin's gRPC transport, so plugins need no generated code.
package rpc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hashicorp/go-plugin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

const (
	PluginMapKey      = "insight"
	serviceName       = "focuslog.insight.v1.InsightPlugin"
	jsonCodecName     = "json"
	methodGetMetadata = "/" + serviceName + "/GetMetadata"
	methodGenerate    = "/" + serviceName + "/Generate"
)

var HandshakeConfig = plugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "FOCUSLOG_PLUGIN",
	MagicCookieValue: "focuslog",
}

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return jsonCodecName
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

type Empty struct{}

type Metadata struct {
	Name         string   `json:"name"`
	Version      string   `json:"version"`
	Capabilities []string `json:"capabilities"`
}

type GenerateRequest struct {
	Prompt string `json:"prompt"`
}

type Source struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// GenerateResponse carries the raw completion; Text must hold a fenced json block.
type GenerateResponse struct {
	Text    string   `json:"text"`
	Sources []Source `json:"sources"`
}

type InsightPluginServer interface {
	GetMetadata(ctx context.Context, in *Empty) (*Metadata, error)
	Generate(ctx context.Context, in *GenerateRequest) (*GenerateResponse, error)
}

type InsightPluginClient interface {
	GetMetadata(ctx context.Context) (*Metadata, error)
	Generate(ctx context.Context, in *GenerateRequest) (*GenerateResponse, error)
}

type insightPluginClient struct {
	conn *grpc.ClientConn
}

func NewInsightPluginClient(conn *grpc.ClientConn) InsightPluginClient {
	return &insightPluginClient{conn: conn}
}

func (c *insightPluginClient) GetMetadata(ctx context.Context) (*Metadata, error) {
	out := &Metadata{}
	if err := c.conn.Invoke(ctx, methodGetMetadata, &Empty{}, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *insightPluginClient) Generate(ctx context.Context, in *GenerateRequest) (*GenerateResponse, error) {
	out := &GenerateResponse{}
	if err := c.conn.Invoke(ctx, methodGenerate, in, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func RegisterInsightPluginServer(server grpc.ServiceRegistrar, impl InsightPluginServer) {
	server.RegisterService(&grpc.ServiceDesc{
		ServiceName: serviceName,
		HandlerType: (*InsightPluginServer)(nil),
		Methods: []grpc.MethodDesc{
			{
				MethodName: "GetMetadata",
				Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
					in := &Empty{}
					if err := dec(in); err != nil {
						return nil, err
					}
					if interceptor == nil {
						return impl.GetMetadata(ctx, in)
					}
					info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodGetMetadata}
					handler := func(ctx context.Context, req any) (any, error) {
						empty, ok := req.(*Empty)
						if !ok {
							return nil, fmt.Errorf("invalid request type")
						}
						return impl.GetMetadata(ctx, empty)
					}
					return interceptor(ctx, in, info, handler)
				},
			},
			{
				MethodName: "Generate",
				Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
					in := &GenerateRequest{}
					if err := dec(in); err != nil {
						return nil, err
					}
					if interceptor == nil {
						return impl.Generate(ctx, in)
					}
					info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodGenerate}
					handler := func(ctx context.Context, req any) (any, error) {
						inReq, ok := req.(*GenerateRequest)
						if !ok {
							return nil, fmt.Errorf("invalid request type")
						}
						return impl.Generate(ctx, inReq)
					}
					return interceptor(ctx, in, info, handler)
				},
			},
		},
		Streams:  []grpc.StreamDesc{},
		Metadata: "focuslog/insight/v1/insight.proto",
	}, impl)
}

type GRPCPlugin struct {
	plugin.NetRPCUnsupportedPlugin
	Impl InsightPluginServer
}

func (p *GRPCPlugin) GRPCServer(_ *plugin.GRPCBroker, server *grpc.Server) error {
	RegisterInsightPluginServer(server, p.Impl)
	return nil
}

func (p *GRPCPlugin) GRPCClient(_ context.Context, _ *plugin.GRPCBroker, conn *grpc.ClientConn) (any, error) {
	return NewInsightPluginClient(conn), nil
}

func PluginMap(impl InsightPluginServer) map[string]plugin.Plugin {
	return map[string]plugin.Plugin{
		PluginMapKey: &GRPCPlugin{Impl: impl},
	}
}
