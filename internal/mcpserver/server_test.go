package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/matheus3301/wppmcp/internal/tools"
	"go.uber.org/zap"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	r := tools.NewRegistry()
	r.Register(tools.Tool{
		Name:        "echo",
		Description: "Echo text back.",
		Params: []tools.Param{
			{Name: "text", Type: tools.String, Required: true, Description: "Text to echo"},
			{Name: "times", Type: tools.Number, Default: 1.0, Description: "Repetitions"},
			{Name: "mode", Type: tools.String, Default: "plain", Enum: []string{"plain", "loud"}},
			{Name: "tags", Type: tools.Array},
		},
		Handler: func(_ context.Context, args map[string]any) (tools.Result, error) {
			text := strings.Repeat(args["text"].(string), int(args["times"].(float64)))
			if args["mode"] == "loud" {
				text = strings.ToUpper(text)
			}
			return tools.Result{Text: text}, nil
		},
	})
	r.Register(tools.Tool{
		Name: "status",
		Handler: func(context.Context, map[string]any) (tools.Result, error) {
			return tools.Result{Data: tools.OK("done")}, nil
		},
	})
	r.Register(tools.Tool{
		Name: "broken",
		Handler: func(context.Context, map[string]any) (tools.Result, error) {
			return tools.Result{}, errors.New("store unavailable")
		},
	})
	return New(r, "test", zap.NewNop())
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func roundTrip(t *testing.T, s *Server, method string, params any) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(map[string]any{"jsonrpc": "2.0", "id": 1, "method": method, "params": params})
	if err != nil {
		t.Fatal(err)
	}
	out, err := json.Marshal(s.MCP().HandleMessage(context.Background(), raw))
	if err != nil {
		t.Fatal(err)
	}
	var resp rpcResponse
	if err := json.Unmarshal(out, &resp); err != nil {
		t.Fatalf("decode %s: %v", out, err)
	}
	if resp.Error != nil {
		t.Fatalf("%s error = %s", method, resp.Error.Message)
	}
	return resp.Result
}

type callResult struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StructuredContent map[string]any `json:"structuredContent"`
	IsError           bool           `json:"isError"`
}

func callTool(t *testing.T, s *Server, name string, args map[string]any) callResult {
	t.Helper()
	var res callResult
	raw := roundTrip(t, s, "tools/call", map[string]any{"name": name, "arguments": args})
	if err := json.Unmarshal(raw, &res); err != nil {
		t.Fatal(err)
	}
	if len(res.Content) != 1 {
		t.Fatalf("content = %+v, want one item", res.Content)
	}
	return res
}

func TestListToolsSchema(t *testing.T) {
	s := testServer(t)

	var listed struct {
		Tools []struct {
			Name        string `json:"name"`
			Description string `json:"description"`
			InputSchema struct {
				Properties map[string]map[string]any `json:"properties"`
				Required   []string                  `json:"required"`
			} `json:"inputSchema"`
		} `json:"tools"`
	}
	if err := json.Unmarshal(roundTrip(t, s, "tools/list", map[string]any{}), &listed); err != nil {
		t.Fatal(err)
	}
	if len(listed.Tools) != 3 {
		t.Fatalf("listed %d tools, want 3", len(listed.Tools))
	}

	var echo = listed.Tools[0]
	for _, tool := range listed.Tools {
		if tool.Name == "echo" {
			echo = tool
		}
	}
	props := echo.InputSchema.Properties
	tests := []struct {
		param, key string
		want       any
	}{
		{"text", "type", "string"},
		{"times", "type", "number"},
		{"times", "default", 1.0},
		{"mode", "default", "plain"},
		{"tags", "type", "array"},
	}
	for _, tt := range tests {
		if got := props[tt.param][tt.key]; got != tt.want {
			t.Errorf("%s.%s = %v, want %v", tt.param, tt.key, got, tt.want)
		}
	}
	if enum, _ := props["mode"]["enum"].([]any); len(enum) != 2 {
		t.Errorf("mode.enum = %v, want 2 values", props["mode"]["enum"])
	}
	if len(echo.InputSchema.Required) != 1 || echo.InputSchema.Required[0] != "text" {
		t.Errorf("required = %v, want [text]", echo.InputSchema.Required)
	}
}

func TestCallTool(t *testing.T) {
	s := testServer(t)

	tests := []struct {
		name     string
		tool     string
		args     map[string]any
		wantText string
		wantErr  bool
	}{
		{"text with defaults", "echo", map[string]any{"text": "hi"}, "hi", false},
		{"string number coerced", "echo", map[string]any{"text": "a", "times": "3", "mode": "loud"}, "AAA", false},
		{"missing required", "echo", map[string]any{}, "text must be provided", true},
		{"handler error", "broken", nil, "store unavailable", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := callTool(t, s, tt.tool, tt.args)
			if res.IsError != tt.wantErr {
				t.Errorf("isError = %v, want %v", res.IsError, tt.wantErr)
			}
			if !strings.Contains(res.Content[0].Text, tt.wantText) {
				t.Errorf("text = %q, want it to contain %q", res.Content[0].Text, tt.wantText)
			}
		})
	}
}

func TestDataResultsAreJSON(t *testing.T) {
	s := testServer(t)

	res := callTool(t, s, "status", nil)
	var decoded map[string]any
	if err := json.Unmarshal([]byte(res.Content[0].Text), &decoded); err != nil {
		t.Fatalf("text %q is not JSON: %v", res.Content[0].Text, err)
	}
	if decoded["success"] != true || decoded["message"] != "done" {
		t.Errorf("decoded = %v", decoded)
	}
	if res.StructuredContent["success"] != true {
		t.Errorf("structuredContent = %v", res.StructuredContent)
	}
}

func TestServeStdio(t *testing.T) {
	s := testServer(t)
	in, feed := io.Pipe()
	out, drain := io.Pipe()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- s.ServeStdio(ctx, in, drain) }()

	go func() {
		_, _ = io.WriteString(feed, `{"jsonrpc":"2.0","id":7,"method":"tools/call","params":{"name":"echo","arguments":{"text":"yo"}}}`+"\n")
	}()

	line := make([]byte, 4096)
	n, err := out.Read(line)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(line[:n]), `"text":"yo"`) {
		t.Errorf("response = %s", line[:n])
	}

	cancel()
	_ = feed.Close()
	go func() { _, _ = io.Copy(io.Discard, out) }()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Error("ServeStdio() did not return after cancel")
	}
}
