package api

import (
	"context"
	"errors"
	"time"

	"github.com/matheus3301/wppmcp/internal/bus"
	"github.com/matheus3301/wppmcp/internal/status"
	"github.com/matheus3301/wppmcp/internal/tools"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	grpcstatus "google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// ToolService implements ToolServiceServer on top of the registry.
type ToolService struct {
	registry  *tools.Registry
	machine   *status.Machine
	bus       *bus.Bus
	startedAt time.Time
	logger    *zap.Logger
}

// NewToolService creates the service. machine and b may be nil.
func NewToolService(registry *tools.Registry, machine *status.Machine, b *bus.Bus, logger *zap.Logger) *ToolService {
	return &ToolService{
		registry:  registry,
		machine:   machine,
		bus:       b,
		startedAt: time.Now(),
		logger:    logger,
	}
}

func (s *ToolService) ListTools(_ context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	list := make([]any, 0, len(s.registry.Tools()))
	for _, t := range s.registry.Tools() {
		params := make([]any, 0, len(t.Params))
		for _, p := range t.Params {
			param := map[string]any{
				"name":        p.Name,
				"type":        string(p.Type),
				"description": p.Description,
				"required":    p.Required,
			}
			if p.Default != nil {
				param["default"] = p.Default
			}
			if len(p.Enum) > 0 {
				param["enum"] = p.Enum
			}
			params = append(params, param)
		}
		list = append(list, map[string]any{
			"name":        t.Name,
			"description": t.Description,
			"params":      params,
		})
	}
	out, err := toStruct(map[string]any{"tools": list})
	if err != nil {
		return nil, grpcstatus.Errorf(codes.Internal, "encode tools: %v", err)
	}
	return out, nil
}

// CallTool expects {name, arguments} and answers {text} or {data}, plus
// is_error when a flattened status reports failure.
func (s *ToolService) CallTool(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	name := in.GetFields()["name"].GetStringValue()
	if name == "" {
		return nil, grpcstatus.Error(codes.InvalidArgument, "name is required")
	}
	args := in.GetFields()["arguments"].GetStructValue().AsMap()

	res, err := s.registry.Call(ctx, name, args)
	if err != nil {
		return nil, toStatus(err)
	}

	fields := map[string]any{"is_error": false}
	if res.IsText() {
		fields["text"] = res.Text
	} else {
		fields["data"] = res.Data
		if st, ok := res.Data.(tools.Status); ok {
			fields["is_error"] = !st.Success
		}
	}
	out, err := toStruct(fields)
	if err != nil {
		return nil, grpcstatus.Errorf(codes.Internal, "encode result: %v", err)
	}
	return out, nil
}

func (s *ToolService) GetStatus(_ context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	fields := map[string]any{
		"bridge":    string(status.Unknown),
		"uptime_ms": time.Since(s.startedAt).Milliseconds(),
		"tools":     len(s.registry.Tools()),
	}
	if s.machine != nil {
		snap := s.machine.Snapshot()
		fields["bridge"] = string(snap.State)
		fields["bridge_since"] = snap.Since.Format(time.RFC3339)
		if snap.LastError != "" {
			fields["last_error"] = snap.LastError
		}
	}
	out, err := toStruct(fields)
	if err != nil {
		return nil, grpcstatus.Errorf(codes.Internal, "encode status: %v", err)
	}
	return out, nil
}

// WatchEvents streams every bus event until the client goes away.
func (s *ToolService) WatchEvents(_ *emptypb.Empty, stream grpc.ServerStream) error {
	if s.bus == nil {
		return grpcstatus.Error(codes.Unavailable, "event bus not configured")
	}
	events, unsubscribe := s.bus.Subscribe("", 64)
	defer unsubscribe()

	ctx := stream.Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case evt, ok := <-events:
			if !ok {
				return nil
			}
			msg, err := toStruct(map[string]any{
				"kind":      evt.Kind,
				"timestamp": evt.Timestamp.Format(time.RFC3339Nano),
				"payload":   evt.Payload,
			})
			if err != nil {
				s.logger.Warn("dropping unencodable event", zap.String("kind", evt.Kind), zap.Error(err))
				continue
			}
			if err := stream.SendMsg(msg); err != nil {
				return err
			}
		}
	}
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, tools.ErrUnknownTool):
		return grpcstatus.Error(codes.NotFound, err.Error())
	case errors.Is(err, tools.ErrInvalidArgument):
		return grpcstatus.Error(codes.InvalidArgument, err.Error())
	default:
		return grpcstatus.Error(codes.Internal, err.Error())
	}
}
