package handlers

import (
	"time"

	"slotgate/utils"
)

func stringParam(params map[string]any, key string) string {
	if v, ok := params[key].(string); ok {
		return v
	}
	return ""
}

func requiredString(params map[string]any, key string) (string, error) {
	v := stringParam(params, key)
	if v == "" {
		return "", utils.Errf(utils.CodeMissingParam, "param %q is required", key)
	}
	return v, nil
}

// intParam reads a numeric parameter. JSON numbers arrive as float64.
func intParam(params map[string]any, key string, def int) (int, error) {
	v, ok := params[key]
	if !ok {
		return def, nil
	}
	switch n := v.(type) {
	case float64:
		return int(n), nil
	case int:
		return n, nil
	default:
		return 0, utils.Errf(utils.CodeInvalidRange, "param %q must be a number", key)
	}
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// timeParam reads an optional timestamp parameter, accepting RFC3339 or a
// plain date interpreted in the configured timezone.
func timeParam(params map[string]any, key string, loc *time.Location) (time.Time, error) {
	raw := stringParam(params, key)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.In(loc), nil
	}
	for _, layout := range timeLayouts[1:] {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, utils.Errf(utils.CodeInvalidRange, "param %q is not a valid timestamp: %q", key, raw)
}

func requiredTime(params map[string]any, key string, loc *time.Location) (time.Time, error) {
	t, err := timeParam(params, key, loc)
	if err != nil {
		return time.Time{}, err
	}
	if t.IsZero() {
		return time.Time{}, utils.Errf(utils.CodeMissingParam, "param %q is required", key)
	}
	return t, nil
}
