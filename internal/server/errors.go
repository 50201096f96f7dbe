package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"versiond/codec"
	"versiond/internal/logging"
	"versiond/transform"
	"versiond/versioning"
)

// Status is the JSON body of every error response.
type Status struct {
	Code    int    `json:"code"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

func writeStatus(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", codec.MediaTypeJSON)
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(Status{Code: code, Reason: http.StatusText(code), Message: msg})
}

func writeNotAcceptable(w http.ResponseWriter, latest int, err error) {
	w.Header().Set(HeaderAPIVersion, strconv.Itoa(latest))
	writeStatus(w, http.StatusNotAcceptable, err.Error())
}

// inboundStatus maps a failure to parse a request body.
func inboundStatus(err error) int {
	var se *transform.StepError
	switch {
	case errors.Is(err, codec.ErrUnsupportedMediaType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, versioning.ErrTransformBaseNotDeclared),
		errors.Is(err, transform.ErrNamespaceNotFound),
		errors.Is(err, transform.ErrMalformedLocator):
		return http.StatusInternalServerError
	case errors.As(err, &se) && errors.Is(se.Err, transform.ErrNotImplemented):
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

func writeError(w http.ResponseWriter, r *http.Request, code int, err error) {
	if code >= http.StatusInternalServerError {
		logging.L().Error("server: request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}
	writeStatus(w, code, err.Error())
}
