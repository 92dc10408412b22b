package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/DeBrosOfficial/distcache/pkg/errors"
)

type statusResponseWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusResponseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusResponseWriter) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// writeJSON writes JSON with status code
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err onto a status code and writes the standard error body
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	errors.WriteHTTPError(w, err, requestIDFromContext(r.Context()))
}
