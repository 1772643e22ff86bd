package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/matheus3301/wppmcp/internal/api"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client talks to the daemon's tool service over its Unix domain socket.
type Client struct {
	conn *grpc.ClientConn
}

// Tool describes one registered tool.
type Tool struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Params      []Param `json:"params"`
}

// Param describes one tool argument.
type Param struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Required    bool     `json:"required"`
	Default     any      `json:"default,omitempty"`
	Enum        []string `json:"enum,omitempty"`
}

// Result is the outcome of CallTool: Text for text tools, Data otherwise.
type Result struct {
	Text    string `json:"text,omitempty"`
	Data    any    `json:"data,omitempty"`
	IsError bool   `json:"is_error"`
}

// Status is the daemon's view of itself and the bridge.
type Status struct {
	Bridge      string `json:"bridge"`
	BridgeSince string `json:"bridge_since,omitempty"`
	LastError   string `json:"last_error,omitempty"`
	UptimeMS    int64  `json:"uptime_ms"`
	Tools       int    `json:"tools"`
}

// Event is one notification from WatchEvents.
type Event struct {
	Kind      string         `json:"kind"`
	Timestamp time.Time      `json:"timestamp"`
	Payload   map[string]any `json:"payload"`
}

// New dials the daemon's Unix domain socket. The connection is lazy: errors
// surface on the first call.
func New(socketPath string) (*Client, error) {
	conn, err := grpc.NewClient(
		"unix://"+socketPath,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, fmt.Errorf("dial daemon: %w", err)
	}
	return &Client{conn: conn}, nil
}

// Close closes the gRPC connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// ListTools returns the registry in registration order.
func (c *Client) ListTools(ctx context.Context) ([]Tool, error) {
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, api.MethodListTools, &emptypb.Empty{}, out); err != nil {
		return nil, err
	}
	var resp struct {
		Tools []Tool `json:"tools"`
	}
	if err := decode(out, &resp); err != nil {
		return nil, err
	}
	return resp.Tools, nil
}

// CallTool runs a tool. Unknown tools and rejected arguments come back as
// gRPC NotFound and InvalidArgument errors.
func (c *Client) CallTool(ctx context.Context, name string, args map[string]any) (*Result, error) {
	argStruct, err := structpb.NewStruct(args)
	if err != nil {
		return nil, fmt.Errorf("encode arguments: %w", err)
	}
	in := &structpb.Struct{Fields: map[string]*structpb.Value{
		"name":      structpb.NewStringValue(name),
		"arguments": structpb.NewStructValue(argStruct),
	}}
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, api.MethodCallTool, in, out); err != nil {
		return nil, err
	}
	res := &Result{}
	if err := decode(out, res); err != nil {
		return nil, err
	}
	return res, nil
}

// GetStatus returns bridge reachability and daemon uptime.
func (c *Client) GetStatus(ctx context.Context) (*Status, error) {
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, api.MethodGetStatus, &emptypb.Empty{}, out); err != nil {
		return nil, err
	}
	st := &Status{}
	if err := decode(out, st); err != nil {
		return nil, err
	}
	return st, nil
}

// WatchEvents calls fn for every daemon event until ctx is cancelled, the
// daemon closes the stream or fn returns an error.
func (c *Client) WatchEvents(ctx context.Context, fn func(Event) error) error {
	desc := &grpc.StreamDesc{StreamName: "WatchEvents", ServerStreams: true}
	stream, err := c.conn.NewStream(ctx, desc, api.MethodWatchEvents)
	if err != nil {
		return err
	}
	if err := stream.SendMsg(&emptypb.Empty{}); err != nil {
		return err
	}
	if err := stream.CloseSend(); err != nil {
		return err
	}
	for {
		msg := new(structpb.Struct)
		if err := stream.RecvMsg(msg); err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return nil
			}
			return err
		}
		var evt Event
		if err := decode(msg, &evt); err != nil {
			return err
		}
		if err := fn(evt); err != nil {
			return err
		}
	}
}

func decode(s *structpb.Struct, out any) error {
	raw, err := json.Marshal(s.AsMap())
	if err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
