package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/relayvoice/callbridge/pkg/core"
	"github.com/relayvoice/callbridge/pkg/gateway/apierror"
	"github.com/relayvoice/callbridge/pkg/gateway/mw"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// writeError maps err through apierror and writes the JSON envelope.
func writeError(w http.ResponseWriter, r *http.Request, err error) (*core.Error, int) {
	reqID, _ := mw.RequestIDFrom(r.Context())
	coreErr, status := apierror.FromError(err, reqID)
	writeJSON(w, status, apierror.Envelope{Error: coreErr})
	return coreErr, status
}
