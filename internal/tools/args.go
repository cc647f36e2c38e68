package tools

import (
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"

	"github.com/ariadng/clickup-mcp/internal/core/engine"
)

// sanitize strips angle brackets and surrounding whitespace from every
// string in v, recursing into maps and slices.
func sanitize(v any) any {
	switch value := v.(type) {
	case string:
		return strings.TrimSpace(strings.NewReplacer("<", "", ">", "").Replace(value))
	case map[string]any:
		out := make(map[string]any, len(value))
		for key, item := range value {
			out[key] = sanitize(item)
		}
		return out
	case []any:
		out := make([]any, len(value))
		for i, item := range value {
			out[i] = sanitize(item)
		}
		return out
	default:
		return v
	}
}

// decodeArgs sanitizes raw tool arguments and decodes them into out.
// Type mismatches are reported as ValidationFailed.
func decodeArgs(tool string, raw map[string]any, out any) (map[string]any, error) {
	args, _ := sanitize(raw).(map[string]any)
	if args == nil {
		args = map[string]any{}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:     out,
		TagName:    "mapstructure",
		DecodeHook: integralHook(),
	})
	if err != nil {
		return nil, fmt.Errorf("create decoder: %w", err)
	}

	if err := decoder.Decode(args); err != nil {
		return nil, engine.Validation(tool, "invalid input for %s: %s", tool, decodeMessage(err))
	}
	return args, nil
}

// integralHook rejects fractional JSON numbers bound for integer fields.
func integralHook() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		switch to.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		default:
			return data, nil
		}
		if f, ok := data.(float64); ok && f != math.Trunc(f) {
			return nil, fmt.Errorf("expected an integer, got %v", f)
		}
		return data, nil
	}
}

func decodeMessage(err error) string {
	return strings.ReplaceAll(strings.TrimSpace(err.Error()), "\n", " ")
}

// problems collects argument validation failures for one tool call.
type problems struct {
	tool string
	list []string
}

func (p *problems) require(args map[string]any, names ...string) {
	for _, name := range names {
		value, ok := args[name]
		if !ok || value == nil {
			p.add("missing required property: %s", name)
			continue
		}
		if s, isString := value.(string); isString && s == "" {
			p.add("property %s must not be empty", name)
		}
	}
}

func (p *problems) priority(value *int) {
	if value != nil && (*value < 1 || *value > 4) {
		p.add("property priority must be one of: 1, 2, 3, 4")
	}
}

func (p *problems) add(format string, args ...any) {
	p.list = append(p.list, fmt.Sprintf(format, args...))
}

func (p *problems) err() error {
	if len(p.list) == 0 {
		return nil
	}
	return engine.Validation(p.tool, "invalid input for %s: %s", p.tool, strings.Join(p.list, ", "))
}

// nullable reports whether key was sent and whether it was an explicit null.
func nullable(args map[string]any, key string) (present bool, null bool) {
	value, ok := args[key]
	return ok, ok && value == nil
}
