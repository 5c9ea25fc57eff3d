package binder

import (
	"bytes"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// FromRequest captures the three binding sources from an HTTP request. The
// body is read and restored so downstream middleware can still see it.
func FromRequest(r *http.Request) Source {
	src := Source{
		Path:        map[string]string{},
		Query:       r.URL.Query(),
		ContentType: r.Header.Get("Content-Type"),
	}

	if rc := chi.RouteContext(r.Context()); rc != nil {
		for i, k := range rc.URLParams.Keys {
			if k == "*" {
				continue
			}
			src.Path[k] = rc.URLParams.Values[i]
		}
	}

	if r.Body != nil {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))
		src.Body = body
	}
	return src
}
