package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/matheus3301/wppmcp/internal/tui/client"
)

// parseToolArgs turns key=value pairs into tool arguments, coercing each value
// to the declared parameter type. Keys the tool does not declare are decoded
// as JSON when possible and passed through as strings otherwise.
func parseToolArgs(params []client.Param, pairs []string) (map[string]any, error) {
	types := make(map[string]string, len(params))
	for _, p := range params {
		types[p.Name] = p.Type
	}

	args := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("argument %q: want key=value", pair)
		}
		v, err := coerce(types[key], raw)
		if err != nil {
			return nil, fmt.Errorf("argument %s: %w", key, err)
		}
		args[key] = v
	}
	return args, nil
}

func coerce(typ, raw string) (any, error) {
	switch typ {
	case "string":
		return raw, nil
	case "number":
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", raw)
		}
		return f, nil
	case "boolean":
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("%q is not a boolean", raw)
		}
		return b, nil
	case "array":
		if strings.HasPrefix(raw, "[") {
			var items []any
			if err := json.Unmarshal([]byte(raw), &items); err != nil {
				return nil, fmt.Errorf("invalid JSON array: %w", err)
			}
			return items, nil
		}
		var items []any
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				items = append(items, s)
			}
		}
		return items, nil
	}
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err == nil {
		return v, nil
	}
	return raw, nil
}
