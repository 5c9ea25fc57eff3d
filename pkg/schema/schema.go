// schema/schema.go
package schema

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

/* ===========================
   Declared types
   =========================== */

// ParamType enumerates the declared parameter types an operation contract
// may use. Passthrough values are handed to the backend unconverted.
type ParamType string

const (
	ParamInt         ParamType = "int"
	ParamText        ParamType = "text"
	ParamBool        ParamType = "bool"
	ParamTimestamp   ParamType = "timestamp"
	ParamUUID        ParamType = "uuid"
	ParamPassthrough ParamType = "passthrough"
)

// ReturnNone marks an endpoint that declares no response entity.
const ReturnNone = "none"

// HandlerKind selects a dispatch path. Empty means the generic
// bind-execute-coerce pipeline; verify/create are the identity flows.
type HandlerKind string

const (
	HandlerGeneric HandlerKind = ""
	HandlerVerify  HandlerKind = "verify"
	HandlerCreate  HandlerKind = "create"
)

/* ===========================
   Top-level config
   =========================== */

type Config struct {
	Endpoints  []Endpoint  `toml:"endpoint"`
	Operations []Operation `toml:"operation"`
}

/* ===========================
   Endpoint table
   =========================== */

type Endpoint struct {
	ID         string      `toml:"id"`
	Method     string      `toml:"method"`
	Path       string      `toml:"path"`
	Operation  string      `toml:"operation"`
	Returns    string      `toml:"returns"`
	Collection bool        `toml:"collection"`
	Handler    HandlerKind `toml:"handler"`
	Guard      Guard       `toml:"guard"`
	Policy     Policy      `toml:"policy"`
}

type Guard struct {
	RequireAuth bool     `toml:"require_auth"`
	Roles       []string `toml:"roles"`
	Users       []string `toml:"users"`
}

type Policy struct {
	TimeoutMS int `toml:"timeout_ms"`
}

/* ===========================
   Parameter contracts
   =========================== */

type Operation struct {
	ID     string  `toml:"id"`
	Params []Param `toml:"param"`
}

type Param struct {
	Name string    `toml:"name"`
	Type ParamType `toml:"type"`
}

/* ===========================
   Validation / Normalization
   =========================== */

func (e *Endpoint) normalize() error {
	if strings.TrimSpace(e.ID) == "" {
		return errors.New("id is required")
	}
	if e.Path == "" {
		return errors.New("path is required")
	}
	if !strings.HasPrefix(e.Path, "/") {
		e.Path = "/" + e.Path
	}
	if e.Path != "/" {
		e.Path = path.Clean(e.Path)
	}
	e.Method = strings.ToUpper(strings.TrimSpace(e.Method))
	if e.Method == "" {
		e.Method = "GET"
	}
	e.Operation = strings.TrimSpace(e.Operation)
	if strings.TrimSpace(e.Returns) == "" {
		e.Returns = ReturnNone
	}
	return nil
}

func (e *Endpoint) validate() error {
	if e.Operation == "" {
		return errors.New("operation is required")
	}
	if !validIdent(e.Operation) {
		return fmt.Errorf("operation %q is not a valid identifier", e.Operation)
	}
	switch e.Handler {
	case HandlerGeneric, HandlerVerify, HandlerCreate:
	default:
		return fmt.Errorf("unknown handler kind %q", e.Handler)
	}
	if e.Policy.TimeoutMS < 0 {
		return errors.New("policy.timeout_ms must be >= 0")
	}
	return nil
}

func (o *Operation) validate() error {
	if !validIdent(strings.TrimSpace(o.ID)) {
		return fmt.Errorf("operation id %q is not a valid identifier", o.ID)
	}
	seen := map[string]struct{}{}
	for i, p := range o.Params {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return fmt.Errorf("param %d: name is required", i)
		}
		// names are case-insensitive within one contract
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("param %d: duplicate name %q", i, p.Name)
		}
		seen[key] = struct{}{}
		switch p.Type {
		case ParamInt, ParamText, ParamBool, ParamTimestamp, ParamUUID, ParamPassthrough:
		default:
			return fmt.Errorf("param %q: unknown type %q", p.Name, p.Type)
		}
	}
	return nil
}

// Validate normalizes every endpoint and checks both tables in isolation.
// Cross-table resolution (endpoint operation -> contract) happens in Build,
// which is the fail-fast startup gate.
func (c *Config) Validate() error {
	if len(c.Endpoints) == 0 {
		return errors.New("no endpoints defined")
	}
	routes := map[string]struct{}{}
	for i := range c.Endpoints {
		e := &c.Endpoints[i]
		if err := e.normalize(); err != nil {
			return fmt.Errorf("endpoint %d: %w", i, err)
		}
		if err := e.validate(); err != nil {
			return fmt.Errorf("endpoint %d (%s %s): %w", i, e.Method, e.Path, err)
		}
		rk := e.Method + " " + e.Path
		if _, dup := routes[rk]; dup {
			return fmt.Errorf("endpoint %d: duplicate route %s", i, rk)
		}
		routes[rk] = struct{}{}
	}
	ops := map[string]struct{}{}
	for i := range c.Operations {
		o := &c.Operations[i]
		if err := o.validate(); err != nil {
			return fmt.Errorf("operation %d (%s): %w", i, o.ID, err)
		}
		if _, dup := ops[o.ID]; dup {
			return fmt.Errorf("operation %d: duplicate id %q", i, o.ID)
		}
		ops[o.ID] = struct{}{}
	}
	return nil
}

// validIdent accepts SQL-identifier-shaped operation names. Operation ids end
// up inside generated statements, so anything else is rejected at load time.
func validIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
