// Package tools is the single registry of operations exposed to MCP, gRPC,
// the CLI and the TUI. Transports only translate their framing to Call.
package tools

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/matheus3301/wppmcp/internal/bus"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// ErrUnknownTool is returned by Call for names that were never registered.
var ErrUnknownTool = errors.New("unknown tool")

// ParamType is the JSON type of a tool parameter.
type ParamType string

const (
	String  ParamType = "string"
	Number  ParamType = "number"
	Boolean ParamType = "boolean"
	Array   ParamType = "array"
)

// Param declares one named argument.
type Param struct {
	Name        string
	Type        ParamType
	Description string
	Required    bool
	Default     any
	Enum        []string
}

// Result is what a tool returns: either human-readable text or a value
// that transports encode as JSON.
type Result struct {
	Text string
	Data any
}

// IsText reports whether the result is plain text.
func (r Result) IsText() bool {
	return r.Data == nil
}

// Handler runs a tool with normalized arguments.
type Handler func(ctx context.Context, args map[string]any) (Result, error)

// Tool is a named operation with its argument schema.
type Tool struct {
	Name        string
	Description string
	Params      []Param
	Handler     Handler

	// Flatten turns every failure into a {success: false, message} result
	// instead of an error. Set for tools that act through the bridge or
	// write local state.
	Flatten bool
}

// Registry holds the tools in registration order.
type Registry struct {
	tools   []Tool
	byName  map[string]int
	logger  *zap.Logger
	bus     *bus.Bus
	metrics *metrics
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for per-call records.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Registry) { r.logger = logger }
}

// WithBus publishes a bus.KindToolCalled event after every call.
func WithBus(b *bus.Bus) Option {
	return func(r *Registry) { r.bus = b }
}

// WithMetrics registers call counters and latency histograms on reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(r *Registry) { r.metrics = newMetrics(reg) }
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		byName: make(map[string]int),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.metrics == nil {
		r.metrics = newMetrics(nil)
	}
	return r
}

// Register adds t. It panics on a duplicate name, which is a programming
// error caught at startup.
func (r *Registry) Register(t Tool) {
	if _, dup := r.byName[t.Name]; dup {
		panic(fmt.Sprintf("tools: duplicate tool %q", t.Name))
	}
	r.byName[t.Name] = len(r.tools)
	r.tools = append(r.tools, t)
}

// Tools returns every tool in registration order.
func (r *Registry) Tools() []Tool {
	out := make([]Tool, len(r.tools))
	copy(out, r.tools)
	return out
}

// Lookup returns the tool registered under name.
func (r *Registry) Lookup(name string) (Tool, bool) {
	i, ok := r.byName[name]
	if !ok {
		return Tool{}, false
	}
	return r.tools[i], true
}

// Call runs the named tool. Arguments are normalized first: empty strings
// and nulls count as absent, declared defaults fill the gaps, and scalars
// sent as strings are coerced to their declared type.
func (r *Registry) Call(ctx context.Context, name string, args map[string]any) (Result, error) {
	id := uuid.NewString()
	start := time.Now()
	logger := r.logger.With(zap.String("call_id", id), zap.String("tool", name))

	t, ok := r.Lookup(name)
	if !ok {
		err := fmt.Errorf("%w: %s", ErrUnknownTool, name)
		r.finish(logger, id, "unknown", start, outcomeUnknown, err)
		return Result{}, err
	}

	res, err := r.invoke(ctx, t, args)
	outcome := outcomeOK
	switch {
	case err != nil && t.Flatten:
		outcome = outcomeFailed
		res = Result{Data: Failure(err)}
		r.finish(logger, id, t.Name, start, outcome, err)
		return res, nil
	case errors.Is(err, ErrInvalidArgument):
		outcome = outcomeInvalid
	case err != nil:
		outcome = outcomeError
	case isFailureStatus(res):
		outcome = outcomeFailed
	}
	r.finish(logger, id, t.Name, start, outcome, err)
	return res, err
}

func (r *Registry) invoke(ctx context.Context, t Tool, args map[string]any) (Result, error) {
	normalized, err := prepare(t.Params, args)
	if err != nil {
		return Result{}, err
	}
	return t.Handler(ctx, normalized)
}

func (r *Registry) finish(logger *zap.Logger, id, tool string, start time.Time, outcome string, err error) {
	took := time.Since(start)
	r.metrics.observe(tool, outcome, took)

	fields := []zap.Field{zap.String("outcome", outcome), zap.Duration("took", took)}
	if err != nil {
		logger.Warn("tool call failed", append(fields, zap.Error(err))...)
	} else {
		logger.Info("tool call", fields...)
	}

	if r.bus == nil {
		return
	}
	payload := bus.ToolCall{
		ID:       id,
		Tool:     tool,
		Duration: took,
		IsError:  outcome != outcomeOK,
	}
	if err != nil {
		payload.Error = err.Error()
	}
	r.bus.Publish(bus.Event{
		Kind:      bus.KindToolCalled,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}

func isFailureStatus(res Result) bool {
	s, ok := res.Data.(Status)
	return ok && !s.Success
}
