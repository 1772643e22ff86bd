package model

import "time"

// fields accumulates a sparse mapping. Each setter skips the zero value of
// its type so entity serializers only list their optional keys.
type fields map[string]any

func (f fields) str(key, v string) {
	if v != "" {
		f[key] = v
	}
}

func (f fields) int64(key string, v int64) {
	if v != 0 {
		f[key] = v
	}
}

func (f fields) intp(key string, v *int) {
	if v != nil {
		f[key] = *v
	}
}

func (f fields) boolp(key string, v *bool) {
	if v != nil {
		f[key] = *v
	}
}

func (f fields) flag(key string, v bool) {
	if v {
		f[key] = true
	}
}

func (f fields) strs(key string, v []string) {
	if len(v) > 0 {
		f[key] = v
	}
}

func (f fields) counts(key string, v map[string]int) {
	if len(v) > 0 {
		f[key] = v
	}
}

func (f fields) timep(key string, v *time.Time) {
	if v != nil && !v.IsZero() {
		f[key] = v.Format(time.RFC3339)
	}
}

// Int returns a pointer to v, for optional counters.
func Int(v int) *int {
	return &v
}

// Bool returns a pointer to v.
func Bool(v bool) *bool {
	return &v
}
