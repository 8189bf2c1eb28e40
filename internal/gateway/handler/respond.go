package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"hookforge/internal/gateway/repository/artifact"
	"hookforge/internal/gateway/repository/session"
	"hookforge/internal/gateway/service/wizard"
	"hookforge/internal/llm"
	"hookforge/internal/token"
)

type errorBody struct {
	Error   string             `json:"error"`
	Code    string             `json:"code"`
	Fields  []token.FieldError `json:"fields,omitempty"`
	Session *session.Session   `json:"session,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps service errors to HTTP status and a stable code.
func statusFor(err error) (int, string) {
	var (
		verr  *token.ValidationError
		empty *llm.EmptyResponseError
		up    *llm.UpstreamError
	)
	switch {
	case errors.Is(err, session.ErrNotFound), errors.Is(err, artifact.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity, "invalid_config"
	case errors.Is(err, wizard.ErrGenerationInFlight), errors.Is(err, wizard.ErrNoArtifacts):
		return http.StatusConflict, "failed_precondition"
	case errors.Is(err, wizard.ErrInvalidStep), errors.Is(err, artifact.ErrInvalidKey):
		return http.StatusBadRequest, "invalid_argument"
	case errors.As(err, &empty), errors.As(err, &up):
		return http.StatusBadGateway, "generation_failed"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func writeError(w http.ResponseWriter, err error, sess *session.Session) {
	status, code := statusFor(err)
	body := errorBody{Error: err.Error(), Code: code, Session: sess}
	var verr *token.ValidationError
	if errors.As(err, &verr) {
		body.Fields = verr.Fields
	}
	if status == http.StatusInternalServerError {
		body.Error = "internal error"
	}
	writeJSON(w, status, body)
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: msg, Code: "invalid_argument"})
}
