// binder/binder.go
package binder

import (
	"encoding/json"
	"net/url"
	"strings"

	"github.com/tasklight/tasklight-core/pkg/schema"
)

// Source is the raw per-request input the binder merges: path parameters,
// query string, and an optional JSON-shaped body.
type Source struct {
	Path        map[string]string
	Query       url.Values
	Body        []byte
	ContentType string
}

// BoundParams is the fully-typed parameter set for one operation call,
// keyed by the contract's declared names. Built fresh per request and never
// shared.
type BoundParams struct {
	Contract schema.Contract
	Values   map[string]any
}

// Get returns a bound value by declared name, case- and sigil-insensitively.
func (b BoundParams) Get(name string) (any, bool) {
	if v, ok := b.Values[name]; ok {
		return v, true
	}
	want := normalizeKey(name)
	for k, v := range b.Values {
		if normalizeKey(k) == want {
			return v, true
		}
	}
	return nil, false
}

// Ordered returns the bound values in contract order, ready for positional
// invocation against the backend.
func (b BoundParams) Ordered() []any {
	out := make([]any, len(b.Contract.Params))
	for i, p := range b.Contract.Params {
		out[i] = b.Values[p.Name]
	}
	return out
}

// Bind merges the three sources and converts each contract entry to its
// declared type. It never fails: malformed bodies count as empty, conversion
// failures resolve to the type's default, and missing entries are defaulted.
// This permissiveness is deliberate and load-bearing for existing clients; a
// typo'd numeric id silently binds to zero rather than rejecting the request.
func Bind(src Source, c schema.Contract) BoundParams {
	buf := merge(src)

	values := make(map[string]any, len(c.Params))
	for _, p := range c.Params {
		raw, ok := buf[normalizeKey(p.Name)]
		if !ok {
			values[p.Name] = defaultFor(p.Type)
			continue
		}
		values[p.Name] = convert(p.Type, raw)
	}
	return BoundParams{Contract: c, Values: values}
}

// merge builds the case- and sigil-insensitive named-value buffer.
// Precedence low to high: path, query, body.
func merge(src Source) map[string]any {
	buf := make(map[string]any, len(src.Path)+len(src.Query))
	for k, v := range src.Path {
		buf[normalizeKey(k)] = v
	}
	for k, vs := range src.Query {
		switch len(vs) {
		case 0:
		case 1:
			buf[normalizeKey(k)] = vs[0]
		default:
			list := make([]any, len(vs))
			for i, v := range vs {
				list[i] = v
			}
			buf[normalizeKey(k)] = list
		}
	}
	for k, v := range parseBody(src) {
		buf[normalizeKey(k)] = v
	}
	return buf
}

// parseBody decodes a structured body into a named-value map. Anything that
// is not decodable JSON, or not a JSON object, is treated as an empty body.
func parseBody(src Source) map[string]any {
	if len(src.Body) == 0 {
		return nil
	}
	if ct := strings.ToLower(src.ContentType); ct != "" && !strings.Contains(ct, "json") {
		return nil
	}
	var fields map[string]any
	if err := json.Unmarshal(src.Body, &fields); err != nil {
		return nil
	}
	return fields
}

// normalizeKey strips a leading @ sigil and folds case so lookups are
// case- and sigil-insensitive.
func normalizeKey(name string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), "@"))
}
