package tools

import (
	"encoding/json"
	"errors"
	"maps"
)

// Status is the {success, message} shape returned by every tool that acts
// through the bridge or writes local state.
type Status struct {
	Success bool
	Message string
	// Data is emitted under "data" when set.
	Data any
	// Extra carries additional top-level keys passed through from the bridge.
	Extra map[string]any
}

// OK builds a successful status.
func OK(message string) Status {
	return Status{Success: true, Message: message}
}

// Fail builds a failed status.
func Fail(message string) Status {
	return Status{Message: message}
}

// Failure renders err as a failed status. Argument errors keep their
// user-facing message; everything else is reported with its full chain.
func Failure(err error) Status {
	var ae *ArgumentError
	if errors.As(err, &ae) {
		return Fail(ae.Message())
	}
	return Fail(err.Error())
}

// Map returns the status as a JSON-ready map.
func (s Status) Map() map[string]any {
	out := make(map[string]any, len(s.Extra)+3)
	maps.Copy(out, s.Extra)
	out["success"] = s.Success
	if s.Message != "" || !s.Success {
		out["message"] = s.Message
	} else {
		delete(out, "message")
	}
	if s.Data != nil {
		out["data"] = s.Data
	}
	return out
}

// MarshalJSON encodes Map.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Map())
}
