package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/zero-day-ai/fraudgraph/internal/graph"
	"github.com/zero-day-ai/fraudgraph/internal/types"
)

// Error kinds that have no graph error code.
const (
	KindNotFound  = "NOT_FOUND"
	KindForbidden = "FORBIDDEN"
	KindInternal  = "INTERNAL"
)

// envelope is the body of every JSON response.
type envelope struct {
	Success bool       `json:"success"`
	Message string     `json:"message,omitempty"`
	Count   *int       `json:"count,omitempty"`
	Data    any        `json:"data,omitempty"`
	Error   *errorBody `json:"error,omitempty"`
}

type errorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeData writes a success envelope. Slices also carry their length as count.
func writeData(w http.ResponseWriter, status int, data any, count int, withCount bool) {
	env := envelope{Success: true, Data: data}
	if withCount {
		env.Count = &count
	}
	writeJSON(w, status, env)
}

func writeList[T any](w http.ResponseWriter, items []T) {
	if items == nil {
		items = []T{}
	}
	writeData(w, http.StatusOK, items, len(items), true)
}

func writeOne(w http.ResponseWriter, status int, data any) {
	writeData(w, status, data, 0, false)
}

func writeMessage(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, envelope{Success: true, Message: message, Data: data})
}

func writeFailure(w http.ResponseWriter, status int, kind, message string) {
	writeJSON(w, status, envelope{Error: &errorBody{Kind: kind, Message: message}})
}

func writeNotFound(w http.ResponseWriter, message string) {
	writeFailure(w, http.StatusNotFound, KindNotFound, message)
}

// statusFor maps an error onto an HTTP status and the kind reported to the caller.
// rawQuery selects 422 for rejected caller-supplied Cypher.
func statusFor(err error, rawQuery bool) (int, string, string) {
	var fgErr *types.FraudGraphError
	if !errors.As(err, &fgErr) {
		return http.StatusInternalServerError, KindInternal, err.Error()
	}

	message := fgErr.Message
	switch fgErr.Code {
	case graph.ErrCodeValidation:
		return http.StatusBadRequest, string(fgErr.Code), message
	case graph.ErrCodeConnectionFailed:
		return http.StatusServiceUnavailable, string(fgErr.Code), message
	case graph.ErrCodeQueryFailed:
		if fgErr.Cause != nil {
			message += ": " + fgErr.Cause.Error()
		}
		if rawQuery {
			return http.StatusUnprocessableEntity, string(fgErr.Code), message
		}
		return http.StatusInternalServerError, string(fgErr.Code), message
	default:
		return http.StatusInternalServerError, string(fgErr.Code), message
	}
}
