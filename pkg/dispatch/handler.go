// dispatch/handler.go
package dispatch

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/tasklight/tasklight-core/pkg/binder"
	"github.com/tasklight/tasklight-core/pkg/coerce"
	hmetrics "github.com/tasklight/tasklight-core/pkg/middleware/metrics"
	"github.com/tasklight/tasklight-core/pkg/schema"
	httpx "github.com/tasklight/tasklight-core/pkg/transport/httpx"
)

// handleGeneric is the declarative pipeline every non-identity endpoint runs:
// bind request input against the contract, execute the operation, coerce the
// rows into the declared shape.
func handleGeneric(ep schema.Endpoint, c schema.Contract, d BuildDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params := binder.Bind(binder.FromRequest(r), c)

		res, err := d.Exec.Execute(r.Context(), ep.Operation, params)
		if err != nil {
			hmetrics.ObserveOperation(ep.Operation, "exec_error")
			d.Log.Error("operation failed",
				zap.String("endpoint", ep.ID),
				zap.String("operation", ep.Operation),
				zap.Error(err))
			http.Error(w, "operation failed", http.StatusInternalServerError)
			return
		}

		out, err := coerce.Coerce(res, ep)
		if err != nil {
			hmetrics.ObserveOperation(ep.Operation, "coerce_error")
			d.Log.Warn("coercion failed",
				zap.String("endpoint", ep.ID),
				zap.String("operation", ep.Operation),
				zap.Error(err))
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		hmetrics.ObserveOperation(ep.Operation, "ok")
		if out.NoContent {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, out.Value)
	}
}
