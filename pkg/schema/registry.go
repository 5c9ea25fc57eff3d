// schema/registry.go
package schema

import (
	"fmt"
	"strings"
)

// Contract is the ordered name/type list an operation expects. Order matters:
// the backend invoker passes values positionally in contract order.
type Contract struct {
	Operation string
	Params    []Param
}

// Lookup finds a contract parameter by name, case- and sigil-insensitively.
func (c Contract) Lookup(name string) (Param, bool) {
	name = strings.ToLower(strings.TrimPrefix(name, "@"))
	for _, p := range c.Params {
		if strings.ToLower(strings.TrimPrefix(p.Name, "@")) == name {
			return p, true
		}
	}
	return Param{}, false
}

// Registry is the immutable endpoint/contract table. Built once at startup,
// safe for unlimited concurrent readers afterwards.
type Registry struct {
	endpoints []Endpoint
	byID      map[string]int
	byRoute   map[string]int
	contracts map[string]Contract
	writeOnly map[string]bool
}

// Build validates cross-references eagerly: every endpoint's operation must
// resolve to a contract. An unresolved reference is a startup error, never a
// per-request one.
func Build(cfg Config) (*Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return build(cfg)
}

// build assumes cfg has already passed Validate.
func build(cfg Config) (*Registry, error) {
	r := &Registry{
		endpoints: append([]Endpoint(nil), cfg.Endpoints...),
		byID:      make(map[string]int, len(cfg.Endpoints)),
		byRoute:   make(map[string]int, len(cfg.Endpoints)),
		contracts: make(map[string]Contract, len(cfg.Operations)),
		writeOnly: make(map[string]bool),
	}
	for _, o := range cfg.Operations {
		r.contracts[o.ID] = Contract{Operation: o.ID, Params: append([]Param(nil), o.Params...)}
	}
	for i, e := range r.endpoints {
		if _, ok := r.contracts[e.Operation]; !ok {
			return nil, fmt.Errorf("endpoint %q: operation %q has no contract", e.ID, e.Operation)
		}
		if _, dup := r.byID[e.ID]; dup {
			return nil, fmt.Errorf("duplicate endpoint id %q", e.ID)
		}
		r.byID[e.ID] = i
		r.byRoute[routeKey(e.Method, e.Path)] = i
	}
	// An operation referenced only by returns="none" endpoints is write-only:
	// the store invoker calls it for its affected count, not for rows.
	for _, e := range r.endpoints {
		if e.Returns == ReturnNone && e.Handler == HandlerGeneric {
			if _, seen := r.writeOnly[e.Operation]; !seen {
				r.writeOnly[e.Operation] = true
			}
		}
	}
	for _, e := range r.endpoints {
		if e.Returns != ReturnNone || e.Handler != HandlerGeneric {
			r.writeOnly[e.Operation] = false
		}
	}
	return r, nil
}

// Endpoints returns the definitions in declaration order.
func (r *Registry) Endpoints() []Endpoint {
	return append([]Endpoint(nil), r.endpoints...)
}

// ByID looks up an endpoint definition by its logical id.
func (r *Registry) ByID(id string) (Endpoint, bool) {
	i, ok := r.byID[id]
	if !ok {
		return Endpoint{}, false
	}
	return r.endpoints[i], true
}

// ByRoute looks up an endpoint definition by method and path template.
func (r *Registry) ByRoute(method, path string) (Endpoint, bool) {
	i, ok := r.byRoute[routeKey(method, path)]
	if !ok {
		return Endpoint{}, false
	}
	return r.endpoints[i], true
}

// ContractFor returns the parameter contract for an operation id. Build
// guarantees every endpoint's operation resolves, so a miss here means the
// caller invented the id.
func (r *Registry) ContractFor(op string) (Contract, bool) {
	c, ok := r.contracts[op]
	return c, ok
}

// WriteOnly reports whether the operation is only ever used for its affected
// count (every endpoint referencing it declares returns="none").
func (r *Registry) WriteOnly(op string) bool {
	return r.writeOnly[op]
}

func routeKey(method, path string) string {
	return strings.ToUpper(method) + " " + path
}
