// pkg/transport/httpx/respond.go
package httpx

import (
	"net/http"

	"github.com/tasklight/tasklight-core/pkg/codec"
)

// WriteJSON encodes v with the canonical JSON codec and writes it with the
// given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	out, err := codec.JSONStrict.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", codec.JSONStrict.ContentType())
	w.WriteHeader(status)
	_, _ = w.Write(out)
}
