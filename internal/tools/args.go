package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/matheus3301/wppmcp/internal/enrich"
)

// ErrInvalidArgument matches every argument validation failure.
var ErrInvalidArgument = errors.New("invalid argument")

// ArgumentError describes one rejected argument.
type ArgumentError struct {
	Name   string
	Reason string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("%v: %s %s", ErrInvalidArgument, e.Name, e.Reason)
}

// Is reports ErrInvalidArgument as a match.
func (e *ArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}

// Message is the sentence shown to callers, e.g. "Recipient must be provided".
func (e *ArgumentError) Message() string {
	name := strings.ReplaceAll(e.Name, "_", " ")
	if name != "" {
		name = strings.ToUpper(name[:1]) + name[1:]
	}
	return name + " " + e.Reason
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("reaction", func(fl validator.FieldLevel) bool {
		return enrich.ValidReaction(fl.Field().String())
	})
	_ = v.RegisterValidation("timestamp", func(fl validator.FieldLevel) bool {
		_, err := parseTime(fl.Field().String())
		return err == nil
	})
	return v
}

// prepare normalizes raw transport arguments against the declared params.
func prepare(params []Param, raw map[string]any) (map[string]any, error) {
	args := make(map[string]any, len(params))
	for k, v := range raw {
		if absent(v) {
			continue
		}
		args[k] = v
	}
	for _, p := range params {
		v, ok := args[p.Name]
		if !ok {
			if p.Default != nil {
				args[p.Name] = p.Default
				continue
			}
			if p.Required {
				return nil, &ArgumentError{Name: p.Name, Reason: "must be provided"}
			}
			continue
		}
		coerced, err := coerce(p, v)
		if err != nil {
			return nil, err
		}
		if len(p.Enum) > 0 {
			s, _ := coerced.(string)
			if !contains(p.Enum, s) {
				return nil, &ArgumentError{Name: p.Name, Reason: "must be one of " + strings.Join(p.Enum, ", ")}
			}
		}
		args[p.Name] = coerced
	}
	return args, nil
}

func absent(v any) bool {
	switch v := v.(type) {
	case nil:
		return true
	case string:
		return v == ""
	}
	return false
}

func coerce(p Param, v any) (any, error) {
	s, isString := v.(string)
	switch p.Type {
	case Number:
		if isString {
			f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, &ArgumentError{Name: p.Name, Reason: "must be a number"}
			}
			return f, nil
		}
		switch n := v.(type) {
		case float64, json.Number:
			return n, nil
		case int:
			return float64(n), nil
		case int64:
			return float64(n), nil
		}
		return nil, &ArgumentError{Name: p.Name, Reason: "must be a number"}
	case Boolean:
		if isString {
			b, err := strconv.ParseBool(strings.TrimSpace(s))
			if err != nil {
				return nil, &ArgumentError{Name: p.Name, Reason: "must be true or false"}
			}
			return b, nil
		}
		if _, ok := v.(bool); !ok {
			return nil, &ArgumentError{Name: p.Name, Reason: "must be true or false"}
		}
		return v, nil
	case Array:
		if isString {
			return splitList(s), nil
		}
		switch list := v.(type) {
		case []any:
			return list, nil
		case []string:
			out := make([]any, len(list))
			for i, item := range list {
				out[i] = item
			}
			return out, nil
		}
		return nil, &ArgumentError{Name: p.Name, Reason: "must be a list"}
	default:
		if !isString {
			return nil, &ArgumentError{Name: p.Name, Reason: "must be a string"}
		}
		return s, nil
	}
}

// splitList accepts a JSON array literal or a comma-separated list.
func splitList(s string) []any {
	var list []any
	if err := json.Unmarshal([]byte(s), &list); err == nil {
		return list
	}
	var out []any
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// bind decodes normalized arguments into T, validates it and calls fn.
func bind[T any](fn func(ctx context.Context, in T) (Result, error)) Handler {
	return func(ctx context.Context, args map[string]any) (Result, error) {
		var in T
		if err := decode(args, &in); err != nil {
			return Result{}, err
		}
		return fn(ctx, in)
	}
}

func decode(args map[string]any, out any) error {
	raw, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("encode arguments: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		var te *json.UnmarshalTypeError
		if errors.As(err, &te) {
			return &ArgumentError{Name: te.Field, Reason: "has the wrong type"}
		}
		return &ArgumentError{Reason: err.Error()}
	}
	if err := validate.Struct(out); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fieldError(verrs[0])
		}
		return err
	}
	return nil
}

func fieldError(fe validator.FieldError) *ArgumentError {
	name := fe.Field()
	reason := "is invalid"
	switch fe.Tag() {
	case "required":
		reason = "must be provided"
	case "oneof":
		reason = "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "min", "gte":
		if fe.Kind() == reflect.Slice {
			reason = "must have at least " + fe.Param() + " items"
		} else {
			reason = "must be at least " + fe.Param()
		}
	case "max", "lte":
		if fe.Kind() == reflect.Slice {
			reason = "must have at most " + fe.Param() + " items"
		} else {
			reason = "must be at most " + fe.Param()
		}
	case "endswith":
		reason = "must end with " + fe.Param()
	case "reaction":
		reason = "must be a single emoji or empty"
	case "timestamp":
		reason = "must be an ISO-8601 timestamp"
	}
	return &ArgumentError{Name: name, Reason: reason}
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// parseTime accepts ISO-8601 forms; values without a zone are local time.
func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

func optionalTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := parseTime(s)
	if err != nil {
		return nil
	}
	return &t
}
