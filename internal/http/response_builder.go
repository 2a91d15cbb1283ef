package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"presupuesto/internal/core"
	"presupuesto/internal/log"
	"presupuesto/internal/services"
	"presupuesto/internal/store"
)

const msgNotFound = "No encontrado."

// errorBody is the JSON shape of every error response. Confirm carries the
// question to ask before retrying a destructive call with confirm=true.
type errorBody struct {
	Error   string `json:"error"`
	Confirm string `json:"confirm,omitempty"`
}

// savedBody answers writes the store did not accept.
type savedBody struct {
	Saved bool `json:"saved"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	var confirm *core.ConfirmationRequiredError
	switch {
	case errors.As(err, &confirm):
		return http.StatusConflict
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, core.ErrExtractionFailed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrExtractionUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, core.ErrNoCategories):
		return http.StatusConflict
	case errors.Is(err, errBadBody),
		errors.Is(err, core.ErrUnknownUser),
		core.UserMessage(err) == core.MsgIncompleteData:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeError answers with the member-facing message for err. Store write
// failures are not errors for the caller: they get 202 with saved=false.
func writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	ctx := r.Context()
	if errors.Is(err, services.ErrWriteFailed) {
		log.LogError(ctx, "Write not saved", err, op, nil)
		writeJSON(w, http.StatusAccepted, savedBody{Saved: false})
		return
	}

	status := statusFor(err)
	body := errorBody{Error: core.UserMessage(err)}
	var confirm *core.ConfirmationRequiredError
	switch {
	case errors.As(err, &confirm):
		body.Confirm = confirm.Prompt
	case errors.Is(err, store.ErrNotFound):
		body.Error = msgNotFound
	}

	if status >= http.StatusInternalServerError {
		log.LogError(ctx, "Request failed", err, op, nil)
	} else {
		log.FromContext(ctx).DebugContext(ctx, "Request rejected",
			log.FieldOperation, op, log.FieldStatusCode, status, log.FieldError, err.Error())
	}
	writeJSON(w, status, body)
}
