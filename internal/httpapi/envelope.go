// Package httpapi implements the External Interface Layer's JSON/HTTP
// surface of spec.md §4.J/§6: the same Task/Config services the CLI
// commands drive, exposed as `{data, meta?}` / `{error:{code,message}}`
// envelopes, grounded on the response shape of
// internal/validation.Result ({valid, errors, warnings, findings}).
package httpapi

import (
	"encoding/json"
	"net/http"

	lotarerrors "github.com/lotar-dev/lotar/internal/errors"
)

type dataEnvelope struct {
	Data any `json:"data"`
	Meta any `json:"meta,omitempty"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeData(w http.ResponseWriter, data any) {
	writeDataWithMeta(w, data, nil)
}

func writeDataWithMeta(w http.ResponseWriter, data, meta any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(dataEnvelope{Data: data, Meta: meta})
}

func writeError(w http.ResponseWriter, err error) {
	code, status := lotarerrors.HTTPStatus(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorEnvelope{Error: errorBody{Code: code, Message: err.Error()}})
}

func badRequest(w http.ResponseWriter, message string) {
	writeError(w, lotarerrors.New(lotarerrors.KindValidation, message))
}
