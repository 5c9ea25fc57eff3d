package identity

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/tasklight/tasklight-core/pkg/binder"
	"github.com/tasklight/tasklight-core/pkg/executor"
	"github.com/tasklight/tasklight-core/pkg/schema"
	httpx "github.com/tasklight/tasklight-core/pkg/transport/httpx"
)

// Profile is the created-identity payload returned by the create flow.
type Profile struct {
	DisplayName string    `json:"displayName"`
	AccountKey  string    `json:"accountKey"`
	Email       string    `json:"email,omitempty"`
	Token       string    `json:"token"`
	CreatedAt   time.Time `json:"createdAt"`
}

type verified struct {
	Token       string `json:"token"`
	DisplayName string `json:"displayName"`
	AccountKey  string `json:"accountKey"`
}

// Handlers implements the two identity flows. Both reuse the binder and
// executor, then apply their own post-processing instead of the coercer.
type Handlers struct {
	exec   *executor.Executor
	issuer TokenIssuer
	log    *zap.Logger
	now    func() time.Time
}

func NewHandlers(exec *executor.Executor, issuer TokenIssuer, log *zap.Logger) *Handlers {
	return &Handlers{exec: exec, issuer: issuer, log: log, now: time.Now}
}

// Verify binds the supplied credentials, runs the endpoint's operation,
// and requires at least one record naming the account. Anything short of
// that is unauthorized.
func (h *Handlers) Verify(ep schema.Endpoint, c schema.Contract) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params := binder.Bind(binder.FromRequest(r), c)

		res, err := h.exec.Execute(r.Context(), ep.Operation, params)
		if err != nil {
			h.log.Warn("identity verify failed", zap.String("operation", ep.Operation), zap.Error(err))
			http.Error(w, "verification unavailable", http.StatusInternalServerError)
			return
		}
		if len(res.Records) == 0 {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		rec := res.Records[0]
		key := rec.Text("account_key")
		name := rec.Text("display_name")
		if name == "" {
			name = suppliedText(params, "displayName", "display_name", "username")
		}
		if key == "" || name == "" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		email := rec.Text("email")
		if email == "" {
			email = suppliedText(params, "email")
		}

		token, err := h.issuer.Issue(key, name, email, nil)
		if err != nil {
			h.log.Error("token issue failed", zap.String("operation", ep.Operation), zap.Error(err))
			http.Error(w, "token issue failed", http.StatusInternalServerError)
			return
		}

		httpx.WriteJSON(w, http.StatusOK, verified{Token: token, DisplayName: name, AccountKey: key})
	}
}

// Create binds the new-identity fields and runs the endpoint's operation.
// The first record's result code decides the outcome: non-positive means
// the identity already exists.
func (h *Handlers) Create(ep schema.Endpoint, c schema.Contract) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params := binder.Bind(binder.FromRequest(r), c)

		res, err := h.exec.Execute(r.Context(), ep.Operation, params)
		if err != nil {
			h.log.Warn("identity create failed", zap.String("operation", ep.Operation), zap.Error(err))
			http.Error(w, "registration unavailable", http.StatusInternalServerError)
			return
		}
		if len(res.Records) == 0 {
			http.Error(w, "registration rejected", http.StatusBadRequest)
			return
		}

		rec := res.Records[0]
		code, _ := rec.Int("result")
		if code <= 0 {
			http.Error(w, "identity already exists", http.StatusConflict)
			return
		}

		key := rec.Text("account_key")
		if key == "" {
			http.Error(w, "registration rejected", http.StatusBadRequest)
			return
		}
		name := rec.Text("display_name")
		if name == "" {
			name = suppliedText(params, "displayName", "display_name", "username")
		}
		email := rec.Text("email")
		if email == "" {
			email = suppliedText(params, "email")
		}
		createdAt := h.now().UTC()
		if v, ok := rec.Get("created_at"); ok {
			if t, ok := v.(time.Time); ok {
				createdAt = t
			}
		}

		token, err := h.issuer.Issue(key, name, email, nil)
		if err != nil {
			h.log.Error("token issue failed", zap.String("operation", ep.Operation), zap.Error(err))
			http.Error(w, "token issue failed", http.StatusInternalServerError)
			return
		}

		httpx.WriteJSON(w, http.StatusOK, Profile{
			DisplayName: name,
			AccountKey:  key,
			Email:       email,
			Token:       token,
			CreatedAt:   createdAt,
		})
	}
}

// suppliedText pulls a caller-provided fallback out of the bound set.
func suppliedText(params binder.BoundParams, names ...string) string {
	for _, n := range names {
		if v, ok := params.Get(n); ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}
