package errs

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"
)

// codes maps application error codes to HTTP status codes.
var codes = map[string]int{
	EINVALID:      http.StatusBadRequest,
	ENOTFOUND:     http.StatusNotFound,
	EUNAUTHORIZED: http.StatusForbidden,
	EINTERNAL:     http.StatusInternalServerError,
}

// ErrorStatusCode returns the HTTP status code for an application error code.
func ErrorStatusCode(code string) int {
	if status, ok := codes[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// errorResponse is the json body sent to the client when a request fails.
type errorResponse struct {
	Error  string              `json:"error"`
	Fields map[string][]string `json:"fields,omitempty"`
}

// ReturnError writes an application error to the response as json, with the
// HTTP status derived from the error code. Internal errors are logged and
// their real message is replaced by a generic one.
func ReturnError(w http.ResponseWriter, r *http.Request, err error) {
	code, message := ErrorCode(err), ErrorMessage(err)
	if code == EINTERNAL {
		LogError(r, err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(ErrorStatusCode(code))
	json.NewEncoder(w).Encode(&errorResponse{
		Error:  message,
		Fields: ErrorFields(err),
	})
}

// LogError logs an error together with the request it occurred on.
func LogError(r *http.Request, err error) {
	logrus.WithFields(logrus.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
	}).Error(err)
}
