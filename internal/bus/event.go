package bus

import "time"

// KindToolCalled is published after every tool invocation.
const KindToolCalled = "tool.called"

// Event is a notification published on the bus.
type Event struct {
	Kind      string
	Timestamp time.Time
	Payload   any
}

// ToolCall is the payload of KindToolCalled.
type ToolCall struct {
	ID       string        `json:"id"`
	Tool     string        `json:"tool"`
	Duration time.Duration `json:"duration_ns"`
	IsError  bool          `json:"is_error"`
	Error    string        `json:"error,omitempty"`
}
