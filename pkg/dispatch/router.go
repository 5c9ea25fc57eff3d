// dispatch/router.go
package dispatch

import (
	"context"
	"fmt"
	"net/http"
	"time"

	chimd "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/tasklight/tasklight-core/pkg/coerce"
	"github.com/tasklight/tasklight-core/pkg/executor"
	"github.com/tasklight/tasklight-core/pkg/identity"
	"github.com/tasklight/tasklight-core/pkg/middleware/auth"
	"github.com/tasklight/tasklight-core/pkg/middleware/logger"
	hmetrics "github.com/tasklight/tasklight-core/pkg/middleware/metrics"
	"github.com/tasklight/tasklight-core/pkg/schema"
	httpx "github.com/tasklight/tasklight-core/pkg/transport/httpx"
)

type BuildDeps struct {
	Auth     *auth.Middleware
	LogMW    *logger.Middleware
	Metrics  http.Handler
	Router   httpx.Router
	Exec     *executor.Executor
	Identity *identity.Handlers
	Log      *zap.Logger
}

// BuildRouter turns the registry's endpoint table into a working router.
// Unresolvable return types fail here, at startup, not per request.
func BuildRouter(reg *schema.Registry, d BuildDeps) (http.Handler, error) {
	r := d.Router
	r.Use(chimd.RequestID, chimd.Recoverer, chimd.Heartbeat("/ping"))

	if d.Auth != nil {
		r.Use(d.Auth.Middleware())
		if d.LogMW != nil {
			r.Use(d.LogMW.Middleware(d.Auth))
		}
		// metrics collector that references auth state without copying it
		r.Use(hmetrics.Collect(d.Auth))
	} else if d.LogMW != nil {
		r.Use(d.LogMW.Middleware(nil))
	}

	if d.Metrics != nil {
		r.Handle(http.MethodGet, "/metrics", d.Metrics)
	}

	for _, ep := range reg.Endpoints() {
		h, err := wrapEndpoint(ep, reg, d)
		if err != nil {
			return nil, err
		}
		if ep.Policy.TimeoutMS > 0 {
			t := time.Duration(ep.Policy.TimeoutMS) * time.Millisecond
			h = withTimeout(h, t)
		}
		h = withGuard(h, d.Auth, guardFor(ep))

		switch ep.Method {
		case http.MethodGet:
			r.Get(ep.Path, h)
		case http.MethodPost:
			r.Post(ep.Path, h)
		case http.MethodPut:
			r.Put(ep.Path, h)
		case http.MethodPatch:
			r.Patch(ep.Path, h)
		case http.MethodDelete:
			r.Delete(ep.Path, h)
		default:
			r.Handle(ep.Method, ep.Path, h)
		}
	}
	return r.Mux(), nil
}

func wrapEndpoint(ep schema.Endpoint, reg *schema.Registry, d BuildDeps) (http.HandlerFunc, error) {
	c, ok := reg.ContractFor(ep.Operation)
	if !ok {
		return nil, fmt.Errorf("endpoint %s: operation %s has no contract", ep.ID, ep.Operation)
	}

	switch ep.Handler {
	case schema.HandlerVerify:
		return d.Identity.Verify(ep, c), nil
	case schema.HandlerCreate:
		return d.Identity.Create(ep, c), nil
	}

	if ep.Returns != schema.ReturnNone && !coerce.Registered(ep.Returns) {
		return nil, fmt.Errorf("endpoint %s: return type %s is not registered", ep.ID, ep.Returns)
	}
	return handleGeneric(ep, c, d), nil
}

// guardFor applies the default policy: everything except the identity flows
// requires an authenticated caller, on top of whatever the endpoint declares.
func guardFor(ep schema.Endpoint) schema.Guard {
	g := ep.Guard
	if ep.Handler == schema.HandlerGeneric {
		g.RequireAuth = true
	}
	return g
}

func withTimeout(next http.HandlerFunc, d time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), d)
		defer cancel()
		next(w, r.WithContext(ctx))
	}
}

func withGuard(next http.HandlerFunc, a *auth.Middleware, g schema.Guard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// If no auth middleware wired, only allow when the endpoint doesn't require auth
		if a == nil {
			if g.RequireAuth || len(g.Users) > 0 || len(g.Roles) > 0 {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			next(w, r)
			return
		}

		if g.RequireAuth && !a.IsAuthenticated(r.Context()) {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		if len(g.Users) > 0 {
			u := a.GetUser(r.Context()).Username
			if u == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			for _, x := range g.Users {
				if u == x {
					next(w, r)
					return
				}
			}
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		if len(g.Roles) > 0 {
			u := a.GetUser(r.Context())
			if u.Username == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			if a.IsAdmin(r.Context()) {
				next(w, r)
				return
			}
			for _, x := range g.Roles {
				if u.Role.Name == x {
					next(w, r)
					return
				}
			}
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next(w, r)
	}
}
