// binder/convert.go
package binder

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tasklight/tasklight-core/pkg/schema"
)

// Conversion is a static table keyed by declared type: no runtime type
// switching on type names anywhere else. Every converter totals — failures
// resolve to the same default the type uses when the value is absent.

var converters = map[schema.ParamType]func(any) any{
	schema.ParamInt:         toInt,
	schema.ParamText:        toText,
	schema.ParamBool:        toBool,
	schema.ParamTimestamp:   toTimestamp,
	schema.ParamUUID:        toUUID,
	schema.ParamPassthrough: func(v any) any { return v },
}

var defaults = map[schema.ParamType]func() any{
	schema.ParamInt:         func() any { return int64(0) },
	schema.ParamText:        func() any { return "" },
	schema.ParamBool:        func() any { return false },
	schema.ParamTimestamp:   func() any { return time.Now().UTC() },
	schema.ParamUUID:        func() any { return nil }, // absent marker
	schema.ParamPassthrough: func() any { return nil }, // absent marker
}

func convert(t schema.ParamType, raw any) any {
	// Multi-valued entries collapse to their first element for scalar
	// types; only passthrough keeps the whole list.
	if list, ok := raw.([]any); ok && t != schema.ParamPassthrough {
		if len(list) == 0 {
			return defaultFor(t)
		}
		raw = list[0]
	}
	fn, ok := converters[t]
	if !ok {
		return raw
	}
	return fn(raw)
}

func defaultFor(t schema.ParamType) any {
	fn, ok := defaults[t]
	if !ok {
		return nil
	}
	return fn()
}

func toInt(v any) any {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case float64:
		return int64(n)
	case float32:
		return int64(n)
	case bool:
		if n {
			return int64(1)
		}
		return int64(0)
	case string:
		s := strings.TrimSpace(n)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int64(f)
		}
	}
	return int64(0)
}

func toText(v any) any {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(s, 10)
	case bool:
		return strconv.FormatBool(s)
	}
	return ""
}

// toBool uses a permissive grammar: unrecognized input is simply false.
func toBool(v any) any {
	switch b := v.(type) {
	case bool:
		return b
	case float64:
		return b != 0
	case int64:
		return b != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "1", "t", "true", "y", "yes", "on":
			return true
		}
	}
	return false
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func toTimestamp(v any) any {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range timestampLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts
			}
		}
	}
	return time.Now().UTC()
}

func toUUID(v any) any {
	switch u := v.(type) {
	case uuid.UUID:
		return u
	case string:
		id, err := uuid.Parse(strings.TrimSpace(u))
		if err != nil {
			return uuid.Nil
		}
		return id
	}
	return uuid.Nil
}
